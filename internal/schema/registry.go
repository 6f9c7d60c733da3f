package schema

import "fmt"

// Instrument describes a tradable instrument. Tick and size constraints are
// registered but not enforced at submission time.
type Instrument struct {
	ID       SymbolID
	Symbol   string
	Name     string
	Scale    Scale
	TickSize Price
	MinQty   Quantity
	MaxQty   Quantity
}

// Registry stores instrument mappings in registration order.
type Registry struct {
	instruments []Instrument
	byName      map[string]SymbolID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]SymbolID)}
}

// Add registers a new instrument and returns its ID.
func (r *Registry) Add(inst Instrument) (SymbolID, error) {
	if inst.Symbol == "" {
		return 0, fmt.Errorf("instrument symbol is empty")
	}
	if id, ok := r.byName[inst.Symbol]; ok {
		return id, fmt.Errorf("instrument already exists: %s", inst.Symbol)
	}
	inst.ID = SymbolID(len(r.instruments) + 1)
	r.instruments = append(r.instruments, inst)
	r.byName[inst.Symbol] = inst.ID
	return inst.ID, nil
}

// Instrument returns the instrument by ID.
func (r *Registry) Instrument(id SymbolID) (Instrument, bool) {
	if id == 0 || int(id) > len(r.instruments) {
		return Instrument{}, false
	}
	return r.instruments[id-1], true
}

// Lookup returns the instrument by symbol name.
func (r *Registry) Lookup(symbol string) (Instrument, bool) {
	id, ok := r.byName[symbol]
	if !ok {
		return Instrument{}, false
	}
	return r.Instrument(id)
}

// Count returns the number of registered instruments.
func (r *Registry) Count() int {
	return len(r.instruments)
}

// At returns the instrument by zero-based registration index.
func (r *Registry) At(index int) (Instrument, bool) {
	if index < 0 || index >= len(r.instruments) {
		return Instrument{}, false
	}
	return r.instruments[index], true
}
