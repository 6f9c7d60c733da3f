package schema

import "errors"

var (
	ErrTerminalOrder = errors.New("order is terminal")
	ErrInvalidFill   = errors.New("invalid fill quantity")
	ErrNotCancellable = errors.New("order is not cancellable")
)

// Side describes order direction.
type Side uint16

const (
	SideUnknown Side = iota
	SideBuy
	SideSell
)

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	switch s {
	case SideBuy:
		return SideSell
	case SideSell:
		return SideBuy
	default:
		return SideUnknown
	}
}

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	default:
		return "unknown"
	}
}

// OrderKind describes order type.
type OrderKind uint16

const (
	OrderKindUnknown OrderKind = iota
	OrderKindLimit
	OrderKindMarket
)

func (k OrderKind) String() string {
	switch k {
	case OrderKindLimit:
		return "limit"
	case OrderKindMarket:
		return "market"
	default:
		return "unknown"
	}
}

// OrderStatus tracks the order lifecycle. Filled, Cancelled and Rejected
// are terminal.
type OrderStatus uint16

const (
	OrderStatusUnknown OrderStatus = iota
	OrderStatusPending
	OrderStatusPartial
	OrderStatusFilled
	OrderStatusCancelled
	OrderStatusRejected
)

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusPending:
		return "pending"
	case OrderStatusPartial:
		return "partial"
	case OrderStatusFilled:
		return "filled"
	case OrderStatusCancelled:
		return "cancelled"
	case OrderStatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are allowed.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusFilled, OrderStatusCancelled, OrderStatusRejected:
		return true
	default:
		return false
	}
}

// Order is a mutable order. Quantities are mutated only through ApplyFill,
// MarkCancelled and MarkRejected, keeping FilledQty+LeavesQty == Qty.
type Order struct {
	ID        uint64
	SymbolID  SymbolID
	AgentID   AgentID
	Side      Side
	Kind      OrderKind
	Qty       Quantity
	Price     Price // zero for market orders
	FilledQty Quantity
	LeavesQty Quantity
	Status    OrderStatus
	CreatedAt int64
	UpdatedAt int64
}

// NewLimitOrder creates a pending limit order.
func NewLimitOrder(id uint64, symbolID SymbolID, agentID AgentID, side Side, qty Quantity, price Price, now int64) *Order {
	return &Order{
		ID:        id,
		SymbolID:  symbolID,
		AgentID:   agentID,
		Side:      side,
		Kind:      OrderKindLimit,
		Qty:       qty,
		Price:     price,
		LeavesQty: qty,
		Status:    OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewMarketOrder creates a pending market order with no price.
func NewMarketOrder(id uint64, symbolID SymbolID, agentID AgentID, side Side, qty Quantity, now int64) *Order {
	return &Order{
		ID:        id,
		SymbolID:  symbolID,
		AgentID:   agentID,
		Side:      side,
		Kind:      OrderKindMarket,
		Qty:       qty,
		LeavesQty: qty,
		Status:    OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ApplyFill consumes qty from the order and advances the status.
func (o *Order) ApplyFill(qty Quantity, now int64) error {
	if o.Status.Terminal() {
		return ErrTerminalOrder
	}
	if qty <= 0 || qty > o.LeavesQty {
		return ErrInvalidFill
	}
	o.FilledQty += qty
	o.LeavesQty -= qty
	if o.LeavesQty == 0 {
		o.Status = OrderStatusFilled
	} else {
		o.Status = OrderStatusPartial
	}
	o.UpdatedAt = now
	return nil
}

// Cancellable reports whether the order may still be cancelled.
func (o *Order) Cancellable() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusPartial
}

// MarkCancelled moves the order to the Cancelled terminal state.
func (o *Order) MarkCancelled(now int64) error {
	if !o.Cancellable() {
		return ErrNotCancellable
	}
	o.Status = OrderStatusCancelled
	o.UpdatedAt = now
	return nil
}

// MarkRejected moves a pending order to the Rejected terminal state.
func (o *Order) MarkRejected(now int64) error {
	if o.Status != OrderStatusPending {
		return ErrTerminalOrder
	}
	o.Status = OrderStatusRejected
	o.UpdatedAt = now
	return nil
}
