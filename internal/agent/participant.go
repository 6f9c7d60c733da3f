// Package agent implements simulation participants: the shared
// balance/position ledger and the concrete strategies built on it.
package agent

import "main/internal/schema"

// Participant receives simulation notifications. Implementations react by
// creating or cancelling orders through their Gateway.
type Participant interface {
	ID() schema.AgentID
	Name() string
	OnBookUpdate(symbolID schema.SymbolID, bids, asks []schema.DepthLevel)
	OnTrade(trade schema.Trade)
	OnTimeTick(tsNano int64)
}

// AccountHolder is the ledger surface the scheduler settles trades against.
type AccountHolder interface {
	ApplyFill(trade schema.Trade, isBuyer bool)
	Summary(mids map[schema.SymbolID]schema.Price) PortfolioSummary
}

// Gateway is the submission path a participant uses to reach the
// simulation. Implemented by the scheduler.
type Gateway interface {
	NextOrderID() uint64
	Now() int64
	Submit(order *schema.Order) error
	Cancel(symbolID schema.SymbolID, orderID uint64)
}
