package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/agent"
	"main/internal/match"
	"main/internal/obs"
	"main/internal/schema"
)

// scriptParticipant records callbacks over a real ledger.
type scriptParticipant struct {
	*agent.Base
	trades  []schema.Trade
	ticks   int
	updates int
}

func (p *scriptParticipant) OnBookUpdate(schema.SymbolID, []schema.DepthLevel, []schema.DepthLevel) {
	p.updates++
}

func (p *scriptParticipant) OnTrade(trade schema.Trade) {
	p.trades = append(p.trades, trade)
}

func (p *scriptParticipant) OnTimeTick(int64) {
	p.ticks++
}

type journalEntry struct {
	header schema.EventHeader
}

// captureJournal records the headers of everything appended.
type captureJournal struct {
	orders  []journalEntry
	trades  []journalEntry
	events  []journalEntry
	cancels []journalEntry
}

func (j *captureJournal) AppendOrder(header schema.EventHeader, _ schema.Order) {
	j.orders = append(j.orders, journalEntry{header: header})
}

func (j *captureJournal) AppendTrade(header schema.EventHeader, _ schema.Trade) {
	j.trades = append(j.trades, journalEntry{header: header})
}

func (j *captureJournal) AppendMarketEvent(header schema.EventHeader, _ schema.MarketEvent) {
	j.events = append(j.events, journalEntry{header: header})
}

func (j *captureJournal) AppendCancel(header schema.EventHeader, _ schema.CancelRequest) {
	j.cancels = append(j.cancels, journalEntry{header: header})
}

func newTestScheduler(t *testing.T, journal Journal) (*Scheduler, schema.SymbolID) {
	t.Helper()
	registry := schema.NewRegistry()
	symbolID, err := registry.Add(schema.Instrument{Symbol: "TEST", Name: "Test Instrument", Scale: 2})
	require.NoError(t, err)

	cfg := Config{StartNano: 0, EndNano: 10, StepNano: 1}
	return NewScheduler(cfg, registry, match.GateConfig{}, obs.NewMetrics(), journal), symbolID
}

func TestSeqBreaksTimestampTies(t *testing.T) {
	s, symbolID := newTestScheduler(t, nil)

	// Two bids at the same price and timestamp; the first scheduled must
	// have time priority.
	first := schema.NewLimitOrder(s.NextOrderID(), symbolID, 1, schema.SideBuy, 5, 100, 0)
	second := schema.NewLimitOrder(s.NextOrderID(), symbolID, 2, schema.SideBuy, 5, 100, 0)
	s.ScheduleOrder(3, first)
	s.ScheduleOrder(3, second)

	sell := schema.NewMarketOrder(s.NextOrderID(), symbolID, 3, schema.SideSell, 5, 0)
	s.ScheduleOrder(4, sell)

	result := s.Run(context.Background())
	require.Len(t, result.Trades, 1)
	assert.Equal(t, first.ID, result.Trades[0].BuyOrderID)
	assert.Equal(t, schema.OrderStatusFilled, first.Status)
	assert.Equal(t, schema.OrderStatusPending, second.Status)
}

func TestUnknownSymbolDropped(t *testing.T) {
	s, symbolID := newTestScheduler(t, nil)

	stray := schema.NewLimitOrder(s.NextOrderID(), symbolID+99, 1, schema.SideBuy, 5, 100, 0)
	s.ScheduleOrder(1, stray)

	result := s.Run(context.Background())
	assert.Empty(t, result.Trades)
	assert.Equal(t, uint64(1), result.Metrics.OrdersDropped)
	assert.Equal(t, uint64(1), result.Metrics.EventsProcessed)

	assert.ErrorIs(t, s.Submit(stray), ErrUnknownSymbol)
}

func TestEventsPastEndExpired(t *testing.T) {
	s, symbolID := newTestScheduler(t, nil)

	late := schema.NewLimitOrder(s.NextOrderID(), symbolID, 1, schema.SideBuy, 5, 100, 0)
	s.ScheduleOrder(999, late)

	result := s.Run(context.Background())
	assert.Zero(t, result.Metrics.EventsProcessed)
	assert.Equal(t, uint64(1), result.Metrics.EventsExpired)
	assert.Equal(t, schema.OrderStatusPending, late.Status)
}

func TestTradeSettlementAndFanout(t *testing.T) {
	journal := &captureJournal{}
	s, symbolID := newTestScheduler(t, journal)

	buyer := &scriptParticipant{Base: agent.NewBase(1, "buyer", 100_000, s, nil)}
	seller := &scriptParticipant{Base: agent.NewBase(2, "seller", 100_000, s, nil)}
	watcher := &scriptParticipant{Base: agent.NewBase(3, "watcher", 0, s, nil)}
	s.Register(buyer)
	s.Register(seller)
	s.Register(watcher)

	bid := schema.NewLimitOrder(s.NextOrderID(), symbolID, buyer.ID(), schema.SideBuy, 10, 100, 0)
	ask := schema.NewLimitOrder(s.NextOrderID(), symbolID, seller.ID(), schema.SideSell, 10, 100, 0)
	s.ScheduleOrder(1, bid)
	s.ScheduleOrder(2, ask)

	result := s.Run(context.Background())
	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.Equal(t, schema.Price(100), trade.Price)
	assert.Equal(t, schema.Quantity(10), trade.Qty)

	assert.Equal(t, schema.Notional(99_000), buyer.Cash())
	assert.Equal(t, schema.Quantity(10), buyer.Position(symbolID))
	assert.Equal(t, schema.Notional(101_000), seller.Cash())
	assert.Equal(t, schema.Quantity(-10), seller.Position(symbolID))

	for _, p := range []*scriptParticipant{buyer, seller, watcher} {
		require.Len(t, p.trades, 1)
		assert.Equal(t, trade.ID, p.trades[0].ID)
	}

	assert.Len(t, journal.orders, 2)
	require.Len(t, journal.trades, 1)
	assert.Equal(t, schema.EventTrade, journal.trades[0].header.Kind)

	assert.Equal(t, 11, result.Steps)
	assert.Equal(t, 11, buyer.ticks)
	assert.Equal(t, 11, buyer.updates)
	require.NotEmpty(t, result.Metrics.AgentSamples)
}

func TestIntakeSubmission(t *testing.T) {
	s, symbolID := newTestScheduler(t, nil)

	order := schema.NewLimitOrder(s.NextOrderID(), symbolID, 1, schema.SideBuy, 5, 100, 0)
	require.NoError(t, s.TrySubmit(Event{TsNano: 2, Order: order}))

	result := s.Run(context.Background())
	assert.Equal(t, uint64(1), result.Metrics.EventsProcessed)

	engine, ok := s.Engine(symbolID)
	require.True(t, ok)
	best, found := engine.Book().Best(schema.SideBuy)
	require.True(t, found)
	assert.Equal(t, schema.Price(100), best)
}

func TestIntakeOverflowCounted(t *testing.T) {
	registry := schema.NewRegistry()
	symbolID, err := registry.Add(schema.Instrument{Symbol: "TEST", Scale: 2})
	require.NoError(t, err)

	s := NewScheduler(Config{EndNano: 1, StepNano: 1, IntakeCapacity: 1}, registry, match.GateConfig{}, obs.NewMetrics(), nil)

	a := schema.NewLimitOrder(1, symbolID, 1, schema.SideBuy, 1, 100, 0)
	b := schema.NewLimitOrder(2, symbolID, 1, schema.SideBuy, 1, 100, 0)
	require.NoError(t, s.TrySubmit(Event{Order: a}))
	assert.ErrorIs(t, s.TrySubmit(Event{Order: b}), ErrIntakeFull)
	assert.Equal(t, uint64(1), s.metrics.Snapshot().IntakeDrops)
}

type cancelOnTick struct {
	*agent.Base
	scheduler *Scheduler
	symbolID  schema.SymbolID
	orderID   uint64
	at        int64
}

func (p *cancelOnTick) OnBookUpdate(schema.SymbolID, []schema.DepthLevel, []schema.DepthLevel) {}
func (p *cancelOnTick) OnTrade(schema.Trade)                                                   {}

func (p *cancelOnTick) OnTimeTick(now int64) {
	if now == p.at {
		p.scheduler.Cancel(p.symbolID, p.orderID)
	}
}

func TestCancelJournaled(t *testing.T) {
	journal := &captureJournal{}
	s, symbolID := newTestScheduler(t, journal)

	bid := schema.NewLimitOrder(s.NextOrderID(), symbolID, 1, schema.SideBuy, 5, 100, 0)
	s.ScheduleOrder(0, bid)
	s.Register(&cancelOnTick{
		Base:      agent.NewBase(1, "canceller", 0, s, nil),
		scheduler: s,
		symbolID:  symbolID,
		orderID:   bid.ID,
		at:        3,
	})

	s.Run(context.Background())
	assert.Equal(t, schema.OrderStatusCancelled, bid.Status)
	require.Len(t, journal.cancels, 1)
	assert.Equal(t, schema.EventCancel, journal.cancels[0].header.Kind)
	assert.Equal(t, int64(3), journal.cancels[0].header.TsSim)
}

func TestMarketEventJournaled(t *testing.T) {
	journal := &captureJournal{}
	s, symbolID := newTestScheduler(t, journal)

	s.ScheduleMarketEvent(5, schema.MarketEvent{
		Kind:     schema.MarketEventPriceShock,
		SymbolID: symbolID,
		Value:    -250,
	})

	result := s.Run(context.Background())
	assert.Equal(t, uint64(1), result.Metrics.EventsProcessed)
	require.Len(t, journal.events, 1)
	assert.Equal(t, schema.EventMarketEvent, journal.events[0].header.Kind)
	assert.Equal(t, int64(5), journal.events[0].header.TsSim)
}
