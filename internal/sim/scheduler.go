package sim

import (
	"container/heap"
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/yanun0323/logs"

	"main/internal/agent"
	"main/internal/match"
	"main/internal/obs"
	"main/internal/schema"
)

var ErrUnknownSymbol = errors.New("unknown symbol")

// Journal receives every event the scheduler processes. Implementations
// must tolerate being called from the loop goroutine only.
type Journal interface {
	AppendOrder(header schema.EventHeader, order schema.Order)
	AppendTrade(header schema.EventHeader, trade schema.Trade)
	AppendMarketEvent(header schema.EventHeader, event schema.MarketEvent)
	AppendCancel(header schema.EventHeader, cancel schema.CancelRequest)
}

// Config bounds one simulation run. All times are simulation nanoseconds.
type Config struct {
	StartNano      int64
	EndNano        int64
	StepNano       int64
	SnapshotDepth  int
	IntakeCapacity int
}

func (c *Config) normalize() {
	if c.StepNano <= 0 {
		c.StepNano = int64(time.Second)
	}
	if c.SnapshotDepth <= 0 {
		c.SnapshotDepth = 5
	}
	if c.IntakeCapacity <= 0 {
		c.IntakeCapacity = 1024
	}
}

// Result summarizes one finished run.
type Result struct {
	Steps   int
	Trades  []schema.Trade
	Metrics obs.Snapshot
}

// Scheduler advances a virtual clock in fixed steps and dispatches queued
// events to per-symbol matching engines. It is the Gateway participants
// submit through. The loop is single-threaded; only the intake queue may
// be touched from other goroutines.
type Scheduler struct {
	cfg      Config
	registry *schema.Registry
	engines  map[schema.SymbolID]*match.Engine
	symbols  []schema.SymbolID

	participants []agent.Participant
	accounts     map[schema.AgentID]agent.AccountHolder
	accountOrder []schema.AgentID

	metrics *obs.Metrics
	journal Journal
	intake  *Intake

	queue   eventHeap
	now     int64
	seq     uint64
	orderID uint64
	trades  []schema.Trade
}

// NewScheduler builds a scheduler with one matching engine per registered
// instrument. Metrics and journal may be nil.
func NewScheduler(cfg Config, registry *schema.Registry, gate match.GateConfig, metrics *obs.Metrics, journal Journal) *Scheduler {
	cfg.normalize()
	if metrics == nil {
		metrics = obs.NewMetrics()
	}
	s := &Scheduler{
		cfg:      cfg,
		registry: registry,
		engines:  make(map[schema.SymbolID]*match.Engine),
		accounts: make(map[schema.AgentID]agent.AccountHolder),
		metrics:  metrics,
		journal:  journal,
		intake:   NewIntake(cfg.IntakeCapacity),
		now:      cfg.StartNano,
	}
	for i := 0; i < registry.Count(); i++ {
		inst, ok := registry.At(i)
		if !ok {
			continue
		}
		s.engines[inst.ID] = match.NewEngine(inst.ID, gate)
		s.symbols = append(s.symbols, inst.ID)
	}
	return s
}

// Engine returns the matching engine for one symbol.
func (s *Scheduler) Engine(symbolID schema.SymbolID) (*match.Engine, bool) {
	engine, ok := s.engines[symbolID]
	return engine, ok
}

// Register adds a participant. Participants that also hold an account are
// settled against and sampled each tick, in registration order.
func (s *Scheduler) Register(p agent.Participant) {
	s.participants = append(s.participants, p)
	if holder, ok := p.(agent.AccountHolder); ok {
		if _, exists := s.accounts[p.ID()]; !exists {
			s.accountOrder = append(s.accountOrder, p.ID())
		}
		s.accounts[p.ID()] = holder
	}
}

// NextOrderID hands out process-wide unique order ids.
func (s *Scheduler) NextOrderID() uint64 {
	return atomic.AddUint64(&s.orderID, 1)
}

// Now returns the current simulation time.
func (s *Scheduler) Now() int64 { return s.now }

// Submit schedules an order for the current tick. Called by participants
// from inside the loop.
func (s *Scheduler) Submit(order *schema.Order) error {
	if _, ok := s.engines[order.SymbolID]; !ok {
		return ErrUnknownSymbol
	}
	s.push(Event{TsNano: s.now, Order: order})
	return nil
}

// Cancel removes a resting order immediately. Unknown or already terminal
// orders are ignored. Successful cancels are journaled so a replay mutates
// the book in the same sequence.
func (s *Scheduler) Cancel(symbolID schema.SymbolID, orderID uint64) {
	engine, ok := s.engines[symbolID]
	if !ok {
		return
	}
	if _, err := engine.Cancel(orderID, s.now); err != nil {
		return
	}
	s.seq++
	if s.journal != nil {
		s.journal.AppendCancel(
			schema.NewHeader(schema.EventCancel, s.seq, s.now),
			schema.CancelRequest{OrderID: orderID, SymbolID: symbolID},
		)
	}
}

// ScheduleOrder queues an order event for a future timestamp.
func (s *Scheduler) ScheduleOrder(tsNano int64, order *schema.Order) {
	s.push(Event{TsNano: tsNano, Order: order})
}

// ScheduleMarketEvent queues a market event for a future timestamp.
func (s *Scheduler) ScheduleMarketEvent(tsNano int64, event schema.MarketEvent) {
	m := event
	s.push(Event{TsNano: tsNano, Market: &m})
}

// TrySubmit hands an event to the loop from another goroutine. It never
// blocks; a full queue drops the event.
func (s *Scheduler) TrySubmit(e Event) error {
	if err := s.intake.TrySubmit(e); err != nil {
		s.metrics.IncIntakeDrop()
		return err
	}
	return nil
}

func (s *Scheduler) push(e Event) {
	s.seq++
	e.Seq = s.seq
	heap.Push(&s.queue, e)
}

// Run executes the loop until the end time or context cancellation and
// returns the run summary.
func (s *Scheduler) Run(ctx context.Context) Result {
	steps := 0
	for now := s.cfg.StartNano; now <= s.cfg.EndNano; now += s.cfg.StepNano {
		if ctx.Err() != nil {
			logs.Infof("simulation aborted at %d after %d steps", s.now, steps)
			break
		}
		s.now = now
		s.drainIntake()
		s.dispatchDue()
		s.tickParticipants()
		s.publishBooks()
		s.sampleAccounts()
		steps++
	}
	s.expireRemaining()
	return Result{
		Steps:   steps,
		Trades:  s.trades,
		Metrics: s.metrics.Snapshot(),
	}
}

func (s *Scheduler) drainIntake() {
	s.intake.drain(func(e Event) {
		if e.TsNano < s.now {
			e.TsNano = s.now
		}
		s.push(e)
	})
}

func (s *Scheduler) dispatchDue() {
	for len(s.queue) > 0 && s.queue[0].TsNano <= s.now {
		e := heap.Pop(&s.queue).(Event)
		s.dispatch(e)
	}
}

func (s *Scheduler) dispatch(e Event) {
	s.metrics.IncEventProcessed()
	switch {
	case e.Order != nil:
		s.dispatchOrder(e)
	case e.Market != nil:
		s.dispatchMarketEvent(e)
	}
}

func (s *Scheduler) dispatchOrder(e Event) {
	order := e.Order
	engine, ok := s.engines[order.SymbolID]
	if !ok {
		s.metrics.IncOrderDropped()
		logs.Errorf("drop order %d: %+v: symbol %d", order.ID, ErrUnknownSymbol, order.SymbolID)
		return
	}

	if s.journal != nil {
		s.journal.AppendOrder(schema.NewHeader(schema.EventOrder, e.Seq, e.TsNano), *order)
	}

	begin := time.Now()
	trades := engine.Process(order, e.TsNano)
	s.metrics.ObserveMatch(time.Since(begin))
	s.metrics.AddTrades(len(trades))

	for _, trade := range trades {
		s.settle(trade, e.Seq)
	}
}

func (s *Scheduler) settle(trade schema.Trade, seq uint64) {
	s.trades = append(s.trades, trade)
	if s.journal != nil {
		s.journal.AppendTrade(schema.NewHeader(schema.EventTrade, seq, trade.TsNano), trade)
	}
	if buyer, ok := s.accounts[trade.BuyAgentID]; ok {
		buyer.ApplyFill(trade, true)
	}
	if seller, ok := s.accounts[trade.SellAgentID]; ok {
		seller.ApplyFill(trade, false)
	}
	for _, p := range s.participants {
		p.OnTrade(trade)
	}
}

// dispatchMarketEvent records and logs the event. The payload has no
// quantitative effect on the book; strategies react to it if they care.
func (s *Scheduler) dispatchMarketEvent(e Event) {
	if s.journal != nil {
		s.journal.AppendMarketEvent(schema.NewHeader(schema.EventMarketEvent, e.Seq, e.TsNano), *e.Market)
	}
	logs.Infof("market event %s symbol=%d value=%d", e.Market.Kind, e.Market.SymbolID, e.Market.Value)
}

func (s *Scheduler) tickParticipants() {
	for _, p := range s.participants {
		p.OnTimeTick(s.now)
	}
}

func (s *Scheduler) publishBooks() {
	for _, symbolID := range s.symbols {
		engine := s.engines[symbolID]
		bids, asks := engine.Snapshot(s.cfg.SnapshotDepth)

		sample := obs.MarketSample{TsNano: s.now, SymbolID: symbolID}
		if len(bids) > 0 {
			sample.BestBid = bids[0].Price
		}
		if len(asks) > 0 {
			sample.BestAsk = asks[0].Price
		}
		if sample.BestBid > 0 && sample.BestAsk > 0 {
			sample.Spread = sample.BestAsk - sample.BestBid
		}
		for _, level := range bids {
			sample.BidVolume += level.Qty
		}
		for _, level := range asks {
			sample.AskVolume += level.Qty
		}
		s.metrics.RecordMarket(sample)

		for _, p := range s.participants {
			p.OnBookUpdate(symbolID, bids, asks)
		}
	}
}

func (s *Scheduler) sampleAccounts() {
	if len(s.accountOrder) == 0 {
		return
	}
	mids := s.mids()
	for _, agentID := range s.accountOrder {
		summary := s.accounts[agentID].Summary(mids)
		s.metrics.RecordAgent(obs.AgentSample{
			TsNano:     s.now,
			AgentID:    agentID,
			Cash:       summary.Cash,
			TotalValue: summary.TotalValue,
			OpenOrders: summary.OpenOrders,
		})
	}
}

func (s *Scheduler) mids() map[schema.SymbolID]schema.Price {
	mids := make(map[schema.SymbolID]schema.Price, len(s.symbols))
	for _, symbolID := range s.symbols {
		engine := s.engines[symbolID]
		bid, bidOK := engine.Book().Best(schema.SideBuy)
		ask, askOK := engine.Book().Best(schema.SideSell)
		switch {
		case bidOK && askOK:
			mids[symbolID] = schema.Price((int64(bid) + int64(ask)) / 2)
		case bidOK:
			mids[symbolID] = bid
		case askOK:
			mids[symbolID] = ask
		}
	}
	return mids
}

// expireRemaining discards events scheduled past the end of the run.
func (s *Scheduler) expireRemaining() {
	for len(s.queue) > 0 {
		heap.Pop(&s.queue)
		s.metrics.IncEventExpired()
	}
}
