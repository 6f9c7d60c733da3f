// Package match turns incoming orders into trades against a per-symbol book.
//
// Matching follows price-time priority: the best opposite level first, and
// inside a level strictly in arrival order. Trades execute at the resting
// order's price. Candidates at or above the gate threshold are validated
// before any order is mutated; a rejected pairing is skipped as if it had
// never crossed. Market-order remainders are cancelled, never rested: a
// price-less order on a price level would break the book invariant.
package match

import (
	"errors"

	"main/internal/book"
	"main/internal/schema"
)

var ErrNotFound = errors.New("order not found")

// Engine matches orders for a single symbol.
type Engine struct {
	book        *book.Book
	gate        GateConfig
	trades      []schema.Trade
	nextTradeID uint64
}

// NewEngine creates a matching engine with an empty book.
func NewEngine(symbolID schema.SymbolID, gate GateConfig) *Engine {
	return &Engine{book: book.New(symbolID), gate: gate}
}

// Book exposes the underlying order book for read access.
func (e *Engine) Book() *book.Book { return e.book }

// Trades returns the append-only trade log.
func (e *Engine) Trades() []schema.Trade { return e.trades }

// Process matches the incoming order and returns the trades it produced.
// Limit remainders rest on the book; market remainders are cancelled.
func (e *Engine) Process(incoming *schema.Order, now int64) []schema.Trade {
	var trades []schema.Trade
	switch incoming.Kind {
	case schema.OrderKindMarket:
		trades = e.walk(incoming, 0, false, now)
		if incoming.LeavesQty > 0 {
			// Remainder has no price to rest at; discard it.
			_ = incoming.MarkCancelled(now)
		}
	case schema.OrderKindLimit:
		trades = e.walk(incoming, incoming.Price, true, now)
		if incoming.LeavesQty > 0 {
			_ = e.book.Add(incoming)
		}
	default:
		_ = incoming.MarkRejected(now)
	}
	return trades
}

// walk consumes opposite levels best-first until the order is exhausted,
// the book empties, or (for limits) the next level stops crossing.
func (e *Engine) walk(incoming *schema.Order, limit schema.Price, limited bool, now int64) []schema.Trade {
	var trades []schema.Trade
	opposite := incoming.Side.Opposite()

	for _, price := range e.book.Prices(opposite) {
		if incoming.LeavesQty <= 0 {
			break
		}
		if limited && !crosses(incoming.Side, limit, price) {
			break
		}

		// skipped counts makers rejected by the gate at this level; they
		// keep their place in the queue and are stepped over.
		skipped := 0
		for incoming.LeavesQty > 0 {
			level := e.book.OrdersAt(opposite, price)
			if skipped >= len(level) {
				break
			}
			maker := level[skipped]

			qty := incoming.LeavesQty
			if maker.LeavesQty < qty {
				qty = maker.LeavesQty
			}

			candidate, overflow := e.candidate(incoming, maker, qty, price)
			if !e.gate.approve(candidate, overflow) {
				skipped++
				continue
			}

			trade, err := e.commit(incoming, maker, candidate, now)
			if err != nil {
				skipped++
				continue
			}
			trades = append(trades, trade)

			if maker.LeavesQty == 0 {
				e.book.Remove(maker.ID)
			}
		}
	}
	return trades
}

func crosses(side schema.Side, limit, level schema.Price) bool {
	if side == schema.SideBuy {
		return limit >= level
	}
	return limit <= level
}

func (e *Engine) candidate(taker, maker *schema.Order, qty schema.Quantity, price schema.Price) (TradeCandidate, bool) {
	notional, overflow := schema.NotionalOf(price, qty)
	c := TradeCandidate{
		SymbolID: taker.SymbolID,
		Price:    price,
		Qty:      qty,
		Notional: notional,
	}
	if taker.Side == schema.SideBuy {
		c.BuyOrderID, c.BuyAgentID = taker.ID, taker.AgentID
		c.SellOrderID, c.SellAgentID = maker.ID, maker.AgentID
	} else {
		c.BuyOrderID, c.BuyAgentID = maker.ID, maker.AgentID
		c.SellOrderID, c.SellAgentID = taker.ID, taker.AgentID
	}
	return c, overflow
}

// commit mutates both orders as one step and records the trade. The trade
// only exists once both sides are consistent.
func (e *Engine) commit(taker, maker *schema.Order, candidate TradeCandidate, now int64) (schema.Trade, error) {
	if err := taker.ApplyFill(candidate.Qty, now); err != nil {
		return schema.Trade{}, err
	}
	if err := maker.ApplyFill(candidate.Qty, now); err != nil {
		// Undo the taker mutation to keep both sides consistent.
		taker.FilledQty -= candidate.Qty
		taker.LeavesQty += candidate.Qty
		if taker.FilledQty > 0 {
			taker.Status = schema.OrderStatusPartial
		} else {
			taker.Status = schema.OrderStatusPending
		}
		return schema.Trade{}, err
	}

	e.nextTradeID++
	trade := schema.Trade{
		ID:          e.nextTradeID,
		SymbolID:    candidate.SymbolID,
		Price:       candidate.Price,
		Qty:         candidate.Qty,
		BuyOrderID:  candidate.BuyOrderID,
		SellOrderID: candidate.SellOrderID,
		BuyAgentID:  candidate.BuyAgentID,
		SellAgentID: candidate.SellAgentID,
		TsNano:      now,
	}
	e.trades = append(e.trades, trade)
	return trade, nil
}

// Cancel removes a resting order and marks it cancelled. Unknown or
// terminal orders return ErrNotFound without mutating anything.
func (e *Engine) Cancel(orderID uint64, now int64) (*schema.Order, error) {
	order, ok := e.book.Order(orderID)
	if !ok || !order.Cancellable() {
		return nil, ErrNotFound
	}
	e.book.Remove(orderID)
	_ = order.MarkCancelled(now)
	return order, nil
}

// Snapshot aggregates both sides to the requested depth.
func (e *Engine) Snapshot(depth int) (bids, asks []schema.DepthLevel) {
	return e.book.Depth(schema.SideBuy, depth), e.book.Depth(schema.SideSell, depth)
}
