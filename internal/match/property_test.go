package match

import (
	"math/rand"
	"testing"

	"main/internal/schema"
)

// Random order flow must conserve quantity on every order and never leave
// an empty price level behind.
func TestRandomFlowInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(20240917))
	e := NewEngine(sym, GateConfig{})

	var all []*schema.Order
	now := int64(0)
	for i := 0; i < 2000; i++ {
		now++
		id := uint64(i + 1)
		side := schema.SideBuy
		if rng.Intn(2) == 1 {
			side = schema.SideSell
		}
		qty := schema.Quantity(rng.Int63n(50) + 1)

		var order *schema.Order
		if rng.Intn(4) == 0 {
			order = schema.NewMarketOrder(id, sym, 1, side, qty, now)
		} else {
			price := schema.Price(rng.Int63n(20) + 90)
			order = schema.NewLimitOrder(id, sym, 1, side, qty, price, now)
		}
		all = append(all, order)
		e.Process(order, now)

		if rng.Intn(5) == 0 && len(all) > 0 {
			victim := all[rng.Intn(len(all))]
			e.Cancel(victim.ID, now)
		}
	}

	for _, order := range all {
		if order.FilledQty+order.LeavesQty != order.Qty {
			t.Fatalf("quantity not conserved for order %d: %+v", order.ID, order)
		}
		if order.LeavesQty < 0 {
			t.Fatalf("negative leaves for order %d: %+v", order.ID, order)
		}
	}

	for _, side := range []schema.Side{schema.SideBuy, schema.SideSell} {
		for _, price := range e.Book().Prices(side) {
			if len(e.Book().OrdersAt(side, price)) == 0 {
				t.Fatalf("empty %v level at %d", side, price)
			}
		}
	}

	for _, trade := range e.Trades() {
		if trade.Qty <= 0 || trade.Price <= 0 {
			t.Fatalf("non-positive trade: %+v", trade)
		}
	}
}

// Replaying the same flow against a fresh engine must produce the same log.
func TestReplayDeterminism(t *testing.T) {
	build := func() []schema.Trade {
		rng := rand.New(rand.NewSource(7))
		e := NewEngine(sym, GateConfig{})
		for i := 0; i < 500; i++ {
			id := uint64(i + 1)
			side := schema.SideBuy
			if rng.Intn(2) == 1 {
				side = schema.SideSell
			}
			qty := schema.Quantity(rng.Int63n(20) + 1)
			price := schema.Price(rng.Int63n(10) + 95)
			e.Process(schema.NewLimitOrder(id, sym, 1, side, qty, price, int64(i)), int64(i))
		}
		return e.Trades()
	}

	first := build()
	second := build()
	if len(first) != len(second) {
		t.Fatalf("trade counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("trade %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}
