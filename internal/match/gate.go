package match

import "main/internal/schema"

// TradeCandidate describes a pending pairing before it is committed.
type TradeCandidate struct {
	SymbolID    schema.SymbolID
	Price       schema.Price
	Qty         schema.Quantity
	Notional    schema.Notional
	BuyOrderID  uint64
	SellOrderID uint64
	BuyAgentID  schema.AgentID
	SellAgentID schema.AgentID
}

// Validator confirms candidate trades before they are committed. A returned
// error counts as a rejection; the engine is fail-closed.
type Validator interface {
	Validate(candidate TradeCandidate) (bool, error)
}

// GateConfig enables large-trade validation. Candidates with notional below
// Threshold bypass the validator. A zero threshold disables the gate.
type GateConfig struct {
	Threshold schema.Notional
	Validator Validator
}

func (g GateConfig) enabled() bool {
	return g.Threshold > 0
}

// approve runs the candidate through the gate. Overflowing notionals are
// always gated; a missing validator rejects.
func (g GateConfig) approve(candidate TradeCandidate, overflow bool) bool {
	if !g.enabled() {
		return true
	}
	if !overflow && candidate.Notional < g.Threshold {
		return true
	}
	if g.Validator == nil {
		return false
	}
	ok, err := g.Validator.Validate(candidate)
	if err != nil {
		return false
	}
	return ok
}
