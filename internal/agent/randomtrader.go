package agent

import (
	"math/rand"

	"main/internal/risk"
	"main/internal/schema"
)

// RandomTraderConfig tunes the noise-trader strategy.
type RandomTraderConfig struct {
	SymbolID schema.SymbolID
	// TradeFrequency is the per-tick probability of sending an order.
	TradeFrequency float64
	MinQty         schema.Quantity
	MaxQty         schema.Quantity
	Seed           int64
}

func (c *RandomTraderConfig) normalize() {
	if c.TradeFrequency <= 0 {
		c.TradeFrequency = 0.1
	}
	if c.MinQty <= 0 {
		c.MinQty = 1
	}
	if c.MaxQty < c.MinQty {
		c.MaxQty = c.MinQty
	}
}

// RandomTrader sends market orders of uniform random size and side at a
// configured frequency. Its own seeded source keeps runs reproducible.
type RandomTrader struct {
	*Base
	cfg RandomTraderConfig
	rng *rand.Rand
}

// NewRandomTrader creates a noise trader over a fresh ledger.
func NewRandomTrader(id schema.AgentID, name string, cash schema.Notional, gateway Gateway, riskEngine *risk.Engine, cfg RandomTraderConfig) *RandomTrader {
	cfg.normalize()
	return &RandomTrader{
		Base: NewBase(id, name, cash, gateway, riskEngine),
		cfg:  cfg,
		rng:  rand.New(rand.NewSource(cfg.Seed)),
	}
}

// OnBookUpdate tracks the mid as the market-order reference price.
func (t *RandomTrader) OnBookUpdate(symbolID schema.SymbolID, bids, asks []schema.DepthLevel) {
	if symbolID != t.cfg.SymbolID || len(bids) == 0 || len(asks) == 0 {
		return
	}
	mid := schema.Price((int64(bids[0].Price) + int64(asks[0].Price)) / 2)
	t.SetReferencePrice(symbolID, mid)
}

// OnTrade is a no-op; settlement happens through the ledger's ApplyFill.
func (t *RandomTrader) OnTrade(schema.Trade) {}

// OnTimeTick rolls the dice and maybe sends one market order.
func (t *RandomTrader) OnTimeTick(int64) {
	if t.rng.Float64() >= t.cfg.TradeFrequency {
		return
	}

	side := schema.SideBuy
	if t.rng.Intn(2) == 1 {
		side = schema.SideSell
	}

	qty := t.cfg.MinQty
	if span := int64(t.cfg.MaxQty - t.cfg.MinQty); span > 0 {
		qty += schema.Quantity(t.rng.Int63n(span + 1))
	}

	// Denials and intake drops are expected for noise flow.
	t.SubmitMarket(t.cfg.SymbolID, side, qty)
}
