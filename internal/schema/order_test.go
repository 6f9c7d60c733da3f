package schema

import "testing"

func TestOrderFillLifecycle(t *testing.T) {
	o := NewLimitOrder(1, 1, 7, SideBuy, 10, 100, 0)
	if o.Status != OrderStatusPending {
		t.Fatalf("status = %v, want pending", o.Status)
	}

	if err := o.ApplyFill(4, 1); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if o.Status != OrderStatusPartial || o.FilledQty != 4 || o.LeavesQty != 6 {
		t.Fatalf("after partial fill: %+v", o)
	}
	if o.FilledQty+o.LeavesQty != o.Qty {
		t.Fatalf("quantity not conserved: %+v", o)
	}

	if err := o.ApplyFill(6, 2); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if o.Status != OrderStatusFilled {
		t.Fatalf("status = %v, want filled", o.Status)
	}

	if err := o.ApplyFill(1, 3); err != ErrTerminalOrder {
		t.Fatalf("fill on terminal order: err = %v", err)
	}
	if err := o.MarkCancelled(3); err != ErrNotCancellable {
		t.Fatalf("cancel on filled order: err = %v", err)
	}
}

func TestOrderOverfillRejected(t *testing.T) {
	o := NewMarketOrder(2, 1, 7, SideSell, 5, 0)
	if err := o.ApplyFill(6, 1); err != ErrInvalidFill {
		t.Fatalf("overfill: err = %v", err)
	}
	if o.FilledQty != 0 || o.LeavesQty != 5 {
		t.Fatalf("overfill mutated order: %+v", o)
	}
}

func TestOrderCancelAndReject(t *testing.T) {
	o := NewLimitOrder(3, 1, 7, SideSell, 5, 99, 0)
	if err := o.MarkCancelled(1); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if o.Status != OrderStatusCancelled {
		t.Fatalf("status = %v, want cancelled", o.Status)
	}

	p := NewLimitOrder(4, 1, 7, SideSell, 5, 99, 0)
	if err := p.MarkRejected(1); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if err := p.MarkRejected(2); err != ErrTerminalOrder {
		t.Fatalf("double reject: err = %v", err)
	}
}

func TestParseScaled(t *testing.T) {
	cases := []struct {
		in    string
		scale Scale
		want  int64
		ok    bool
	}{
		{"100.25", 2, 10025, true},
		{"100", 2, 10000, true},
		{"0.002", 4, 20, true},
		{"-1.5", 2, -150, true},
		{"1.234", 2, 0, false},
		{"", 2, 0, false},
	}
	for _, c := range cases {
		got, err := ParseScaled(c.in, c.scale)
		if c.ok != (err == nil) {
			t.Fatalf("ParseScaled(%q, %d): err = %v", c.in, c.scale, err)
		}
		if err == nil && got != c.want {
			t.Fatalf("ParseScaled(%q, %d) = %d, want %d", c.in, c.scale, got, c.want)
		}
	}
}

func TestPriceAppendString(t *testing.T) {
	got := string(Price(10025).AppendString(2, nil))
	if got != "100.25" {
		t.Fatalf("AppendString = %q, want 100.25", got)
	}
	got = string(Price(-5).AppendString(2, nil))
	if got != "-0.05" {
		t.Fatalf("AppendString = %q, want -0.05", got)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	id, err := r.Add(Instrument{Symbol: "AAPL", Name: "Stock AAPL", Scale: 2, TickSize: 1, MinQty: 100, MaxQty: 100000000})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if id != 1 {
		t.Fatalf("id = %d, want 1", id)
	}
	if _, err := r.Add(Instrument{Symbol: "AAPL", Scale: 2}); err == nil {
		t.Fatal("duplicate add should fail")
	}
	inst, ok := r.Lookup("AAPL")
	if !ok || inst.ID != id {
		t.Fatalf("lookup = %+v, %v", inst, ok)
	}
	if _, ok := r.Instrument(99); ok {
		t.Fatal("unknown id should not resolve")
	}
}
