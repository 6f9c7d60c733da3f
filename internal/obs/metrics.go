package obs

import (
	"sync/atomic"
	"time"

	"main/internal/schema"
)

// MarketSample is a per-tick, per-symbol view of the top of the book.
type MarketSample struct {
	TsNano    int64
	SymbolID  schema.SymbolID
	BestBid   schema.Price
	BestAsk   schema.Price
	Spread    schema.Price
	BidVolume schema.Quantity
	AskVolume schema.Quantity
}

// AgentSample is a per-tick portfolio valuation for one participant.
type AgentSample struct {
	TsNano     int64
	AgentID    schema.AgentID
	Cash       schema.Notional
	TotalValue schema.Notional
	OpenOrders int
}

// Metrics collects counters, match latency and per-tick sample series for
// one simulation run.
type Metrics struct {
	eventsProcessed uint64
	ordersDropped   uint64
	eventsExpired   uint64
	intakeDrops     uint64
	tradeCount      uint64

	matchLatency LatencyStats

	marketSamples []MarketSample
	agentSamples  []AgentSample
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	EventsProcessed uint64
	OrdersDropped   uint64
	EventsExpired   uint64
	IntakeDrops     uint64
	TradeCount      uint64
	MatchLatency    LatencySnapshot
	MarketSamples   []MarketSample
	AgentSamples    []AgentSample
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// IncEventProcessed counts one dispatched simulation event.
func (m *Metrics) IncEventProcessed() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.eventsProcessed, 1)
}

// IncOrderDropped counts an order dropped for an unknown symbol.
func (m *Metrics) IncOrderDropped() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.ordersDropped, 1)
}

// IncEventExpired counts an event discarded past the end time.
func (m *Metrics) IncEventExpired() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.eventsExpired, 1)
}

// IncIntakeDrop counts a submission rejected by a full intake queue.
func (m *Metrics) IncIntakeDrop() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.intakeDrops, 1)
}

// AddTrades counts committed trades.
func (m *Metrics) AddTrades(n int) {
	if m == nil || n <= 0 {
		return
	}
	atomic.AddUint64(&m.tradeCount, uint64(n))
}

// ObserveMatch measures one matching-engine call.
func (m *Metrics) ObserveMatch(d time.Duration) {
	if m == nil {
		return
	}
	m.matchLatency.Observe(d)
}

// RecordMarket appends one market sample.
func (m *Metrics) RecordMarket(sample MarketSample) {
	if m == nil {
		return
	}
	m.marketSamples = append(m.marketSamples, sample)
}

// RecordAgent appends one agent sample.
func (m *Metrics) RecordAgent(sample AgentSample) {
	if m == nil {
		return
	}
	m.agentSamples = append(m.agentSamples, sample)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	market := make([]MarketSample, len(m.marketSamples))
	copy(market, m.marketSamples)
	agents := make([]AgentSample, len(m.agentSamples))
	copy(agents, m.agentSamples)
	return Snapshot{
		EventsProcessed: atomic.LoadUint64(&m.eventsProcessed),
		OrdersDropped:   atomic.LoadUint64(&m.ordersDropped),
		EventsExpired:   atomic.LoadUint64(&m.eventsExpired),
		IntakeDrops:     atomic.LoadUint64(&m.intakeDrops),
		TradeCount:      atomic.LoadUint64(&m.tradeCount),
		MatchLatency:    m.matchLatency.Snapshot(),
		MarketSamples:   market,
		AgentSamples:    agents,
	}
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}
