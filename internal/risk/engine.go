// Package risk applies pre-trade admission checks to participant orders
// before they are scheduled with the simulator.
package risk

import "main/internal/schema"

// Config defines simple risk limits. Zero values disable a check.
type Config struct {
	KillSwitch       bool            `json:"killSwitch"`
	MaxOrderQty      schema.Quantity `json:"maxOrderQty"`
	MaxOrderNotional schema.Notional `json:"maxOrderNotional"`
	MaxPosition      schema.Quantity `json:"maxPosition"`
	RequireInventory bool            `json:"requireInventory"`
	RequireCash      bool            `json:"requireCash"`
}

// Action is the outcome of a risk decision.
type Action uint16

const (
	ActionUnknown Action = iota
	ActionAllow
	ActionDeny
)

// Reason is a coarse reason code for risk decisions.
type Reason uint16

const (
	ReasonNone Reason = iota
	ReasonKillSwitch
	ReasonMaxQty
	ReasonMaxNotional
	ReasonPositionLimit
	ReasonInsufficientInventory
	ReasonInsufficientCash
	ReasonNoReferencePrice
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonKillSwitch:
		return "kill_switch"
	case ReasonMaxQty:
		return "max_qty"
	case ReasonMaxNotional:
		return "max_notional"
	case ReasonPositionLimit:
		return "position_limit"
	case ReasonInsufficientInventory:
		return "insufficient_inventory"
	case ReasonInsufficientCash:
		return "insufficient_cash"
	case ReasonNoReferencePrice:
		return "no_reference_price"
	default:
		return "unknown"
	}
}

// StateView is the participant state the engine evaluates against.
type StateView struct {
	Position schema.Quantity
	Cash     schema.Notional
	// ReferencePrice estimates market-order cost; zero when unknown.
	ReferencePrice schema.Price
}

// Decision is the evaluation result.
type Decision struct {
	Action Action
	Reason Reason
}

// Engine evaluates risk decisions.
type Engine struct {
	cfg Config
}

// NewEngine creates a risk engine with static limits.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Evaluate applies the configured checks to an order before submission.
func (e *Engine) Evaluate(order *schema.Order, state StateView) Decision {
	if e == nil {
		return Decision{Action: ActionAllow, Reason: ReasonNone}
	}
	if e.cfg.KillSwitch {
		return Decision{Action: ActionDeny, Reason: ReasonKillSwitch}
	}
	if e.cfg.MaxOrderQty > 0 && order.Qty > e.cfg.MaxOrderQty {
		return Decision{Action: ActionDeny, Reason: ReasonMaxQty}
	}

	price := order.Price
	if order.Kind == schema.OrderKindMarket {
		price = state.ReferencePrice
	}

	if e.cfg.MaxOrderNotional > 0 {
		notional, overflow := schema.NotionalOf(price, order.Qty)
		if overflow || notional > e.cfg.MaxOrderNotional {
			return Decision{Action: ActionDeny, Reason: ReasonMaxNotional}
		}
	}

	if e.cfg.MaxPosition > 0 {
		next := state.Position
		if order.Side == schema.SideBuy {
			next += order.Qty
		} else {
			next -= order.Qty
		}
		if next < 0 {
			next = -next
		}
		if next > e.cfg.MaxPosition {
			return Decision{Action: ActionDeny, Reason: ReasonPositionLimit}
		}
	}

	switch order.Side {
	case schema.SideSell:
		if e.cfg.RequireInventory && state.Position < order.Qty {
			return Decision{Action: ActionDeny, Reason: ReasonInsufficientInventory}
		}
	case schema.SideBuy:
		if e.cfg.RequireCash {
			if price <= 0 {
				return Decision{Action: ActionDeny, Reason: ReasonNoReferencePrice}
			}
			cost, overflow := schema.NotionalOf(price, order.Qty)
			if overflow || cost > state.Cash {
				return Decision{Action: ActionDeny, Reason: ReasonInsufficientCash}
			}
		}
	}

	return Decision{Action: ActionAllow, Reason: ReasonNone}
}
