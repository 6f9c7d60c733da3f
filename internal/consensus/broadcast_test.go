package consensus

import (
	"testing"

	"main/internal/match"
)

func TestAcceptsReasonableTrade(t *testing.T) {
	b := NewBroadcast(4, 1_000_000)
	ok, err := b.Validate(match.TradeCandidate{SymbolID: 1, Price: 100, Qty: 10, Notional: 1000})
	if err != nil || !ok {
		t.Fatalf("Validate = %v, %v; want accept", ok, err)
	}
	if b.Rounds() != 1 {
		t.Fatalf("rounds = %d, want 1", b.Rounds())
	}
}

func TestRejectsOverCap(t *testing.T) {
	b := NewBroadcast(4, 1_000_000)
	ok, err := b.Validate(match.TradeCandidate{SymbolID: 1, Price: 100, Qty: 10, Notional: 2_000_000})
	if err != nil {
		t.Fatalf("Validate err = %v", err)
	}
	if ok {
		t.Fatal("over-cap candidate must be rejected")
	}
}

func TestRejectsNonPositiveNotional(t *testing.T) {
	b := NewBroadcast(4, 0)
	ok, err := b.Validate(match.TradeCandidate{SymbolID: 1, Price: 100, Qty: 10, Notional: -5})
	if err != nil {
		t.Fatalf("Validate err = %v", err)
	}
	if ok {
		t.Fatal("negative notional must be rejected")
	}
}

func TestQuorumLoss(t *testing.T) {
	b := NewBroadcast(4, 1_000_000)
	// 2f+1 for 4 nodes is 3; two dishonest nodes break quorum.
	b.Node(0).SetHonest(false)
	b.Node(1).SetHonest(false)

	ok, err := b.Validate(match.TradeCandidate{SymbolID: 1, Price: 100, Qty: 10, Notional: 1000})
	if err != ErrNoQuorum {
		t.Fatalf("err = %v, want ErrNoQuorum", err)
	}
	if ok {
		t.Fatal("no-quorum round must not accept")
	}
}

func TestSingleDishonestNodeTolerated(t *testing.T) {
	b := NewBroadcast(4, 1_000_000)
	b.Node(3).SetHonest(false)

	ok, err := b.Validate(match.TradeCandidate{SymbolID: 1, Price: 100, Qty: 10, Notional: 1000})
	if err != nil || !ok {
		t.Fatalf("Validate = %v, %v; want accept with one fault", ok, err)
	}
}
