// Package book implements per-symbol price-level storage with strict
// time priority inside each level. Levels are created by the first resting
// order at a price and removed with the last one; an empty level never exists.
package book

import (
	"errors"
	"sort"

	"main/internal/schema"
)

var (
	ErrOrderExists = errors.New("order already rests on the book")
	ErrNoPrice     = errors.New("order has no limit price")
	ErrWrongSymbol = errors.New("order symbol does not match the book")
)

// Book holds both sides of a single symbol's order book.
type Book struct {
	symbolID schema.SymbolID
	bids     bookSide
	asks     bookSide
	byID     map[uint64]*schema.Order
}

type bookSide struct {
	levels map[schema.Price][]*schema.Order
	// prices is kept sorted best-first: descending for bids,
	// ascending for asks.
	prices     []schema.Price
	descending bool
}

// New creates an empty book for the symbol.
func New(symbolID schema.SymbolID) *Book {
	return &Book{
		symbolID: symbolID,
		bids:     bookSide{levels: make(map[schema.Price][]*schema.Order), descending: true},
		asks:     bookSide{levels: make(map[schema.Price][]*schema.Order)},
		byID:     make(map[uint64]*schema.Order),
	}
}

// SymbolID returns the symbol this book belongs to.
func (b *Book) SymbolID() schema.SymbolID { return b.symbolID }

// Add appends the order to the tail of its price level, creating the level
// if absent. Only priced orders may rest.
func (b *Book) Add(order *schema.Order) error {
	if order.SymbolID != b.symbolID {
		return ErrWrongSymbol
	}
	if order.Kind == schema.OrderKindMarket || order.Price == 0 {
		return ErrNoPrice
	}
	if _, ok := b.byID[order.ID]; ok {
		return ErrOrderExists
	}
	b.side(order.Side).add(order)
	b.byID[order.ID] = order
	return nil
}

// Remove detaches the order with the given ID from whichever level it rests
// on, deleting the level if it becomes empty.
func (b *Book) Remove(orderID uint64) (*schema.Order, bool) {
	order, ok := b.byID[orderID]
	if !ok {
		return nil, false
	}
	delete(b.byID, orderID)
	b.side(order.Side).remove(order)
	return order, true
}

// Order returns a resting order by ID.
func (b *Book) Order(orderID uint64) (*schema.Order, bool) {
	order, ok := b.byID[orderID]
	return order, ok
}

// OrdersAt returns the resting orders at a price level in arrival order.
// The returned slice is the live level; callers must not retain it across
// mutations.
func (b *Book) OrdersAt(side schema.Side, price schema.Price) []*schema.Order {
	return b.side(side).levels[price]
}

// Best returns the best price of a side: highest bid or lowest ask.
func (b *Book) Best(side schema.Side) (schema.Price, bool) {
	s := b.side(side)
	if len(s.prices) == 0 {
		return 0, false
	}
	return s.prices[0], true
}

// Prices returns the side's price levels best-first as a snapshot.
func (b *Book) Prices(side schema.Side) []schema.Price {
	s := b.side(side)
	out := make([]schema.Price, len(s.prices))
	copy(out, s.prices)
	return out
}

// Len returns the number of resting orders on a side.
func (b *Book) Len(side schema.Side) int {
	n := 0
	for _, level := range b.side(side).levels {
		n += len(level)
	}
	return n
}

// Depth aggregates remaining quantity per level, best-first, truncated to
// the requested number of levels.
func (b *Book) Depth(side schema.Side, depth int) []schema.DepthLevel {
	s := b.side(side)
	if depth <= 0 || depth > len(s.prices) {
		depth = len(s.prices)
	}
	out := make([]schema.DepthLevel, 0, depth)
	for _, price := range s.prices[:depth] {
		var qty schema.Quantity
		for _, order := range s.levels[price] {
			qty += order.LeavesQty
		}
		out = append(out, schema.DepthLevel{Price: price, Qty: qty})
	}
	return out
}

func (b *Book) side(side schema.Side) *bookSide {
	if side == schema.SideBuy {
		return &b.bids
	}
	return &b.asks
}

func (s *bookSide) add(order *schema.Order) {
	level, ok := s.levels[order.Price]
	if !ok {
		s.insertPrice(order.Price)
	}
	s.levels[order.Price] = append(level, order)
}

func (s *bookSide) remove(order *schema.Order) {
	level := s.levels[order.Price]
	for i, resting := range level {
		if resting.ID == order.ID {
			level = append(level[:i], level[i+1:]...)
			break
		}
	}
	if len(level) == 0 {
		delete(s.levels, order.Price)
		s.deletePrice(order.Price)
		return
	}
	s.levels[order.Price] = level
}

func (s *bookSide) insertPrice(price schema.Price) {
	idx := s.search(price)
	s.prices = append(s.prices, 0)
	copy(s.prices[idx+1:], s.prices[idx:])
	s.prices[idx] = price
}

func (s *bookSide) deletePrice(price schema.Price) {
	idx := s.search(price)
	if idx < len(s.prices) && s.prices[idx] == price {
		s.prices = append(s.prices[:idx], s.prices[idx+1:]...)
	}
}

func (s *bookSide) search(price schema.Price) int {
	if s.descending {
		return sort.Search(len(s.prices), func(i int) bool { return s.prices[i] <= price })
	}
	return sort.Search(len(s.prices), func(i int) bool { return s.prices[i] >= price })
}
