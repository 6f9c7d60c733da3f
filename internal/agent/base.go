package agent

import (
	"github.com/yanun0323/errors"

	"main/internal/risk"
	"main/internal/schema"
)

// PositionSummary is the per-symbol slice of a portfolio summary.
type PositionSummary struct {
	SymbolID   schema.SymbolID
	Qty        schema.Quantity
	AvgEntry   schema.Price
	Realized   schema.Notional
	Unrealized schema.Notional
}

// PortfolioSummary values a participant at a set of mid prices.
type PortfolioSummary struct {
	AgentID    schema.AgentID
	Cash       schema.Notional
	TotalValue schema.Notional
	Realized   schema.Notional
	Unrealized schema.Notional
	OpenOrders int
	Positions  []PositionSummary
}

// Base holds the cash/position ledger and open-order set shared by every
// strategy. Strategies embed it and drive it through SubmitLimit,
// SubmitMarket and CancelOrder.
type Base struct {
	id      schema.AgentID
	name    string
	gateway Gateway
	risk    *risk.Engine

	cash      schema.Notional
	positions map[schema.SymbolID]*Position
	symbols   []schema.SymbolID
	open      map[uint64]*schema.Order
	refPrice  map[schema.SymbolID]schema.Price
}

// NewBase creates a ledger with starting cash. The risk engine may be nil.
func NewBase(id schema.AgentID, name string, cash schema.Notional, gateway Gateway, riskEngine *risk.Engine) *Base {
	return &Base{
		id:        id,
		name:      name,
		gateway:   gateway,
		risk:      riskEngine,
		cash:      cash,
		positions: make(map[schema.SymbolID]*Position),
		open:      make(map[uint64]*schema.Order),
		refPrice:  make(map[schema.SymbolID]schema.Price),
	}
}

// ID returns the participant identifier.
func (b *Base) ID() schema.AgentID { return b.id }

// Name returns the participant name.
func (b *Base) Name() string { return b.name }

// Cash returns the current cash balance.
func (b *Base) Cash() schema.Notional { return b.cash }

// Position returns the signed inventory for one symbol.
func (b *Base) Position(symbolID schema.SymbolID) schema.Quantity {
	if pos, ok := b.positions[symbolID]; ok {
		return pos.Qty
	}
	return 0
}

// SetReferencePrice records the price used to estimate market-order cost.
func (b *Base) SetReferencePrice(symbolID schema.SymbolID, price schema.Price) {
	if price > 0 {
		b.refPrice[symbolID] = price
	}
}

// SubmitLimit creates, risk-checks and submits a limit order. The returned
// order is nil when the order was denied or dropped.
func (b *Base) SubmitLimit(symbolID schema.SymbolID, side schema.Side, qty schema.Quantity, price schema.Price) (*schema.Order, error) {
	order := schema.NewLimitOrder(b.gateway.NextOrderID(), symbolID, b.id, side, qty, price, b.gateway.Now())
	return b.submit(order)
}

// SubmitMarket creates, risk-checks and submits a market order.
func (b *Base) SubmitMarket(symbolID schema.SymbolID, side schema.Side, qty schema.Quantity) (*schema.Order, error) {
	order := schema.NewMarketOrder(b.gateway.NextOrderID(), symbolID, b.id, side, qty, b.gateway.Now())
	return b.submit(order)
}

func (b *Base) submit(order *schema.Order) (*schema.Order, error) {
	decision := b.risk.Evaluate(order, risk.StateView{
		Position:       b.Position(order.SymbolID),
		Cash:           b.cash,
		ReferencePrice: b.refPrice[order.SymbolID],
	})
	if decision.Action == risk.ActionDeny {
		order.MarkRejected(b.gateway.Now())
		return nil, errors.Errorf("order denied: %s", decision.Reason)
	}

	if err := b.gateway.Submit(order); err != nil {
		return nil, errors.Wrap(err, "submit order")
	}

	if !order.Status.Terminal() {
		b.open[order.ID] = order
	}
	return order, nil
}

// CancelOrder requests cancellation of one open order.
func (b *Base) CancelOrder(orderID uint64) {
	order, ok := b.open[orderID]
	if !ok {
		return
	}
	b.gateway.Cancel(order.SymbolID, orderID)
	delete(b.open, orderID)
}

// CancelAll cancels every tracked open order, optionally for one symbol.
func (b *Base) CancelAll(symbolID schema.SymbolID) {
	for id, order := range b.open {
		if symbolID != 0 && order.SymbolID != symbolID {
			continue
		}
		b.gateway.Cancel(order.SymbolID, id)
		delete(b.open, id)
	}
}

// HasOpenOrder reports whether the order is still tracked and live.
func (b *Base) HasOpenOrder(orderID uint64) bool {
	order, ok := b.open[orderID]
	if !ok {
		return false
	}
	if order.Status.Terminal() {
		delete(b.open, orderID)
		return false
	}
	return true
}

// OpenOrderCount returns the number of live tracked orders.
func (b *Base) OpenOrderCount() int {
	for id, order := range b.open {
		if order.Status.Terminal() {
			delete(b.open, id)
		}
	}
	return len(b.open)
}

// ApplyFill settles one trade leg into cash and inventory.
func (b *Base) ApplyFill(trade schema.Trade, isBuyer bool) {
	pos, ok := b.positions[trade.SymbolID]
	if !ok {
		pos = &Position{AgentID: b.id, SymbolID: trade.SymbolID}
		b.positions[trade.SymbolID] = pos
		b.symbols = append(b.symbols, trade.SymbolID)
	}

	notional := trade.Notional()
	if isBuyer {
		pos.Apply(schema.SideBuy, trade.Qty, trade.Price)
		b.cash -= notional
	} else {
		pos.Apply(schema.SideSell, trade.Qty, trade.Price)
		b.cash += notional
	}
	b.SetReferencePrice(trade.SymbolID, trade.Price)
}

// Summary values the portfolio at the given mid prices. Symbols without a
// mid fall back to the last reference price.
func (b *Base) Summary(mids map[schema.SymbolID]schema.Price) PortfolioSummary {
	summary := PortfolioSummary{
		AgentID:    b.id,
		Cash:       b.cash,
		TotalValue: b.cash,
		OpenOrders: b.OpenOrderCount(),
	}
	for _, symbolID := range b.symbols {
		pos := b.positions[symbolID]
		mark := mids[symbolID]
		if mark == 0 {
			mark = b.refPrice[symbolID]
		}
		entry := PositionSummary{
			SymbolID:   symbolID,
			Qty:        pos.Qty,
			AvgEntry:   pos.AvgEntry,
			Realized:   pos.Realized,
			Unrealized: pos.Unrealized(mark),
		}
		summary.Positions = append(summary.Positions, entry)
		summary.Realized += entry.Realized
		summary.Unrealized += entry.Unrealized
		summary.TotalValue += pos.MarketValue(mark)
	}
	return summary
}
