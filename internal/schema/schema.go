package schema

import "strconv"

// SchemaVersion is the current event schema version.
const SchemaVersion uint16 = 1

// Price is a scaled integer. The scale is defined by the instrument.
type Price int64

// Quantity is a scaled integer. The scale is defined by the instrument.
type Quantity int64

// Notional is the raw product of a Price and a Quantity. Its scale is the
// sum of the price and quantity scales.
type Notional int64

// Scale is the number of decimal places used by a scaled integer.
// Example: Scale=2 means the integer value is scaled by 1e2.
type Scale int32

// SymbolID is the numeric identifier for an instrument.
type SymbolID uint32

// AgentID is the numeric identifier for a simulation participant.
type AgentID uint32

// AppendString formats the price into buf using the given scale.
func (p Price) AppendString(scale Scale, buf []byte) []byte {
	return appendScaledInt(buf, int64(p), int(scale))
}

// AppendString formats the quantity into buf using the given scale.
func (q Quantity) AppendString(scale Scale, buf []byte) []byte {
	return appendScaledInt(buf, int64(q), int(scale))
}

// AppendString formats the notional into buf using the given scale.
func (n Notional) AppendString(scale Scale, buf []byte) []byte {
	return appendScaledInt(buf, int64(n), int(scale))
}

func appendScaledInt(buf []byte, value int64, scale int) []byte {
	if scale <= 0 {
		return strconv.AppendInt(buf, value, 10)
	}

	neg := value < 0
	u := uint64(value)
	if neg {
		u = uint64(^value) + 1
	}

	var tmp [32]byte
	digits := strconv.AppendUint(tmp[:0], u, 10)

	if neg {
		buf = append(buf, '-')
	}

	if len(digits) <= scale {
		buf = append(buf, '0', '.')
		for i := 0; i < scale-len(digits); i++ {
			buf = append(buf, '0')
		}
		buf = append(buf, digits...)
		return buf
	}

	idx := len(digits) - scale
	buf = append(buf, digits[:idx]...)
	buf = append(buf, '.')
	buf = append(buf, digits[idx:]...)
	return buf
}

// ParseScaled parses a decimal string like "100.25" into a scaled integer.
// Fractional digits beyond the scale are rejected, not rounded.
func ParseScaled(s string, scale Scale) (int64, error) {
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			intPart = s[:i]
			fracPart = s[i+1:]
			break
		}
	}
	if intPart == "" && fracPart == "" {
		return 0, strconv.ErrSyntax
	}
	if len(fracPart) > int(scale) {
		return 0, strconv.ErrRange
	}

	var value int64
	if intPart != "" {
		v, err := strconv.ParseInt(intPart, 10, 64)
		if err != nil {
			return 0, err
		}
		value = v
	}
	for i := 0; i < int(scale); i++ {
		value *= 10
		if i < len(fracPart) {
			d := fracPart[i]
			if d < '0' || d > '9' {
				return 0, strconv.ErrSyntax
			}
			value += int64(d - '0')
		}
	}
	if neg {
		value = -value
	}
	return value, nil
}

// NotionalOf returns price*qty and reports overflow.
func NotionalOf(price Price, qty Quantity) (Notional, bool) {
	const maxInt64 = int64(^uint64(0) >> 1)
	p := int64(price)
	q := int64(qty)
	if p == 0 || q == 0 {
		return 0, false
	}
	ap, aq := p, q
	if ap < 0 {
		ap = -ap
	}
	if aq < 0 {
		aq = -aq
	}
	if ap > maxInt64/aq {
		return 0, true
	}
	return Notional(p * q), false
}
