package agent

import "main/internal/schema"

// Position tracks signed inventory for one symbol. Increasing the position
// re-averages the entry price; decreasing it realizes P&L against the prior
// average and leaves the average untouched.
type Position struct {
	AgentID  schema.AgentID
	SymbolID schema.SymbolID
	Qty      schema.Quantity
	AvgEntry schema.Price
	Realized schema.Notional
}

// Apply updates the position from one fill.
func (p *Position) Apply(side schema.Side, qty schema.Quantity, price schema.Price) {
	signed := qty
	if side == schema.SideSell {
		signed = -qty
	}

	if p.Qty == 0 {
		p.Qty = signed
		p.AvgEntry = price
		return
	}

	increasing := (p.Qty > 0) == (signed > 0)
	if increasing {
		prev := p.Qty
		if prev < 0 {
			prev = -prev
		}
		total := int64(p.AvgEntry)*int64(prev) + int64(price)*int64(qty)
		p.Qty += signed
		size := p.Qty
		if size < 0 {
			size = -size
		}
		p.AvgEntry = schema.Price(total / int64(size))
		return
	}

	held := p.Qty
	if held < 0 {
		held = -held
	}
	closing := qty
	if closing > held {
		closing = held
	}
	if p.Qty > 0 {
		p.Realized += schema.Notional(int64(price-p.AvgEntry) * int64(closing))
	} else {
		p.Realized += schema.Notional(int64(p.AvgEntry-price) * int64(closing))
	}

	p.Qty += signed
	switch {
	case p.Qty == 0:
		p.AvgEntry = 0
	case qty > held:
		// Flipped through zero: the remainder opened at the trade price.
		p.AvgEntry = price
	}
}

// Unrealized returns mark-to-market P&L at the given price.
func (p *Position) Unrealized(mark schema.Price) schema.Notional {
	if p.Qty == 0 || mark == 0 {
		return 0
	}
	return schema.Notional(int64(mark-p.AvgEntry) * int64(p.Qty))
}

// MarketValue returns the signed value of the inventory at the given price.
func (p *Position) MarketValue(mark schema.Price) schema.Notional {
	return schema.Notional(int64(mark) * int64(p.Qty))
}
