package agent

import (
	"math"

	"github.com/yanun0323/logs"

	"main/internal/risk"
	"main/internal/schema"
)

// MarketMakerConfig tunes the quoting strategy. Spread bounds are in basis
// points of the mid price and apply per side; TTL and requote interval are
// in simulation nanoseconds.
type MarketMakerConfig struct {
	SymbolID         schema.SymbolID
	TargetSpreadBps  int64
	MinSpreadBps     int64
	MaxSpreadBps     int64
	RiskFactor       float64
	OrderSize        schema.Quantity
	PositionLimit    schema.Quantity
	VolatilityWindow int
	QuoteTTL         int64
	RequoteInterval  int64
}

func (c *MarketMakerConfig) normalize() {
	if c.TargetSpreadBps <= 0 {
		c.TargetSpreadBps = 20
	}
	if c.MinSpreadBps <= 0 {
		c.MinSpreadBps = 1
	}
	if c.MaxSpreadBps <= 0 {
		c.MaxSpreadBps = 200
	}
	if c.MaxSpreadBps < c.MinSpreadBps {
		c.MaxSpreadBps = c.MinSpreadBps
	}
	if c.OrderSize <= 0 {
		c.OrderSize = 1
	}
	if c.PositionLimit <= 0 {
		c.PositionLimit = c.OrderSize * 10
	}
	if c.VolatilityWindow <= 1 {
		c.VolatilityWindow = 20
	}
	if c.QuoteTTL <= 0 {
		c.QuoteTTL = 5_000_000_000
	}
}

type quoteRef struct {
	orderID  uint64
	price    schema.Price
	placedAt int64
}

// MarketMaker continuously quotes both sides of one symbol around the mid
// price. The spread widens with realized volatility and both the per-side
// half-spreads and the order sizes shift against accumulated inventory.
type MarketMaker struct {
	*Base
	cfg MarketMakerConfig

	mids      []schema.Price
	bid       quoteRef
	ask       quoteRef
	lastQuote int64
}

// NewMarketMaker creates a market maker over a fresh ledger.
func NewMarketMaker(id schema.AgentID, name string, cash schema.Notional, gateway Gateway, riskEngine *risk.Engine, cfg MarketMakerConfig) *MarketMaker {
	cfg.normalize()
	return &MarketMaker{
		Base: NewBase(id, name, cash, gateway, riskEngine),
		cfg:  cfg,
	}
}

// OnBookUpdate re-quotes when the book has a two-sided top and the current
// quotes are missing, off the top of the book, or stale.
func (m *MarketMaker) OnBookUpdate(symbolID schema.SymbolID, bids, asks []schema.DepthLevel) {
	if symbolID != m.cfg.SymbolID || len(bids) == 0 || len(asks) == 0 {
		return
	}

	mid := schema.Price((int64(bids[0].Price) + int64(asks[0].Price)) / 2)
	if mid <= 0 {
		return
	}
	m.observeMid(mid)
	m.SetReferencePrice(symbolID, mid)

	if !m.shouldRequote(bids[0].Price, asks[0].Price) {
		return
	}
	bidPrice, askPrice := m.Quotes(mid)
	m.requote(bidPrice, askPrice)
}

// OnTrade folds the trade price into the volatility window.
func (m *MarketMaker) OnTrade(trade schema.Trade) {
	if trade.SymbolID == m.cfg.SymbolID {
		m.observeMid(trade.Price)
		m.SetReferencePrice(trade.SymbolID, trade.Price)
	}
}

// OnTimeTick expires quotes older than the configured TTL.
func (m *MarketMaker) OnTimeTick(tsNano int64) {
	m.expireQuote(&m.bid, tsNano)
	m.expireQuote(&m.ask, tsNano)
}

func (m *MarketMaker) expireQuote(q *quoteRef, tsNano int64) {
	if q.orderID == 0 {
		return
	}
	if !m.HasOpenOrder(q.orderID) {
		*q = quoteRef{}
		return
	}
	if tsNano-q.placedAt >= m.cfg.QuoteTTL {
		m.CancelOrder(q.orderID)
		*q = quoteRef{}
	}
}

func (m *MarketMaker) observeMid(mid schema.Price) {
	if mid <= 0 {
		return
	}
	m.mids = append(m.mids, mid)
	if len(m.mids) > m.cfg.VolatilityWindow {
		m.mids = m.mids[len(m.mids)-m.cfg.VolatilityWindow:]
	}
}

// Volatility returns the annualized standard deviation of log returns over
// the observed price window. Zero until two samples are seen.
func (m *MarketMaker) Volatility() float64 {
	if len(m.mids) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(m.mids)-1)
	for i := 1; i < len(m.mids); i++ {
		returns = append(returns, math.Log(float64(m.mids[i])/float64(m.mids[i-1])))
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))

	return math.Sqrt(variance) * math.Sqrt(252)
}

// SpreadBps returns the volatility-adjusted quoted spread in basis points,
// before inventory skew and per-side clamping.
func (m *MarketMaker) SpreadBps() float64 {
	return float64(m.cfg.TargetSpreadBps) * (1 + m.Volatility())
}

func (m *MarketMaker) inventoryRatio() float64 {
	if m.cfg.PositionLimit <= 0 {
		return 0
	}
	return float64(m.Position(m.cfg.SymbolID)) / float64(m.cfg.PositionLimit)
}

func (m *MarketMaker) clampBps(v float64) float64 {
	if lo := float64(m.cfg.MinSpreadBps); v < lo {
		return lo
	}
	if hi := float64(m.cfg.MaxSpreadBps); v > hi {
		return hi
	}
	return v
}

// Quotes computes the bid and ask prices around a mid. Long inventory
// tightens the bid half-spread and widens the ask half-spread; short
// inventory does the reverse. Each half-spread is clamped to the
// configured bounds.
func (m *MarketMaker) Quotes(mid schema.Price) (schema.Price, schema.Price) {
	half := m.SpreadBps() / 2
	skew := m.cfg.RiskFactor * m.inventoryRatio()

	bidBps := m.clampBps(half * (1 - skew))
	askBps := m.clampBps(half * (1 + skew))

	bid := schema.Price(math.Round(float64(mid) * (1 - bidBps/10_000)))
	ask := schema.Price(math.Round(float64(mid) * (1 + askBps/10_000)))
	if bid < 1 {
		bid = 1
	}
	if ask <= bid {
		ask = bid + 1
	}
	return bid, ask
}

func (m *MarketMaker) shouldRequote(bestBid, bestAsk schema.Price) bool {
	bidLive := m.bid.orderID != 0 && m.HasOpenOrder(m.bid.orderID)
	askLive := m.ask.orderID != 0 && m.HasOpenOrder(m.ask.orderID)
	if !bidLive || !askLive {
		return true
	}
	if m.bid.price != bestBid || m.ask.price != bestAsk {
		return true
	}
	return m.cfg.RequoteInterval > 0 && m.gateway.Now()-m.lastQuote >= m.cfg.RequoteInterval
}

// quoteSizes shifts size toward the position-reducing side and caps each
// size so the fill cannot push inventory past the limit.
func (m *MarketMaker) quoteSizes() (schema.Quantity, schema.Quantity) {
	pos := m.Position(m.cfg.SymbolID)
	ratio := m.inventoryRatio()
	adj := math.Min(math.Abs(ratio), 1)

	bidSize := float64(m.cfg.OrderSize)
	askSize := float64(m.cfg.OrderSize)
	if pos > 0 {
		bidSize *= 1 - adj
		askSize *= 1 + adj
	} else if pos < 0 {
		bidSize *= 1 + adj
		askSize *= 1 - adj
	}

	bid := schema.Quantity(math.Round(bidSize))
	ask := schema.Quantity(math.Round(askSize))
	if room := m.cfg.PositionLimit - pos; bid > room {
		bid = room
	}
	if room := m.cfg.PositionLimit + pos; ask > room {
		ask = room
	}
	return bid, ask
}

func (m *MarketMaker) requote(bidPrice, askPrice schema.Price) {
	if m.bid.orderID != 0 {
		m.CancelOrder(m.bid.orderID)
		m.bid = quoteRef{}
	}
	if m.ask.orderID != 0 {
		m.CancelOrder(m.ask.orderID)
		m.ask = quoteRef{}
	}

	now := m.gateway.Now()
	bidSize, askSize := m.quoteSizes()

	if bidSize > 0 {
		order, err := m.SubmitLimit(m.cfg.SymbolID, schema.SideBuy, bidSize, bidPrice)
		if err != nil {
			logs.Errorf("market maker %s bid quote: %+v", m.Name(), err)
		} else if order != nil && !order.Status.Terminal() {
			m.bid = quoteRef{orderID: order.ID, price: bidPrice, placedAt: now}
		}
	}

	if askSize > 0 {
		order, err := m.SubmitLimit(m.cfg.SymbolID, schema.SideSell, askSize, askPrice)
		if err != nil {
			logs.Errorf("market maker %s ask quote: %+v", m.Name(), err)
		} else if order != nil && !order.Status.Terminal() {
			m.ask = quoteRef{orderID: order.ID, price: askPrice, placedAt: now}
		}
	}

	m.lastQuote = now
}
