package schema

// EventKind defines the category of a scheduled simulation event.
type EventKind uint16

const (
	EventUnknown EventKind = iota
	EventOrder
	EventMarketEvent
	EventTrade
	EventCancel
)

// EventHeader is the common metadata attached to every journaled event.
type EventHeader struct {
	Kind    EventKind
	Version uint16
	Seq     uint64
	TsSim   int64
}

// NewHeader builds a header with the current schema version.
func NewHeader(kind EventKind, seq uint64, tsSim int64) EventHeader {
	return EventHeader{
		Kind:    kind,
		Version: SchemaVersion,
		Seq:     seq,
		TsSim:   tsSim,
	}
}

// Trade is an executed match between two orders. Immutable once created;
// price and quantity are strictly positive.
type Trade struct {
	ID          uint64
	SymbolID    SymbolID
	Price       Price
	Qty         Quantity
	BuyOrderID  uint64
	SellOrderID uint64
	BuyAgentID  AgentID
	SellAgentID AgentID
	TsNano      int64
}

// Notional returns price*qty for the trade.
func (t Trade) Notional() Notional {
	n, _ := NotionalOf(t.Price, t.Qty)
	return n
}

// CancelRequest is the payload for EventCancel.
type CancelRequest struct {
	OrderID  uint64
	SymbolID SymbolID
}

// DepthLevel is the aggregated resting quantity at one price.
type DepthLevel struct {
	Price Price
	Qty   Quantity
}

// MarketEventKind describes the typed market event payload.
type MarketEventKind uint16

const (
	MarketEventUnknown MarketEventKind = iota
	MarketEventPriceShock
	MarketEventVolatilityRegime
)

func (k MarketEventKind) String() string {
	switch k {
	case MarketEventPriceShock:
		return "price_shock"
	case MarketEventVolatilityRegime:
		return "volatility_regime"
	default:
		return "unknown"
	}
}

// MarketEvent is the payload for EventMarketEvent. Value is in basis points
// for price shocks and a scaled volatility level for regime changes.
type MarketEvent struct {
	Kind     MarketEventKind
	SymbolID SymbolID
	Value    int64
}
