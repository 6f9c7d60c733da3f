// Package ops loads the JSON run configuration and resolves it into the
// typed, scaled-integer form the simulation consumes.
package ops

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/yanun0323/decimal"

	"main/internal/risk"
	"main/internal/schema"
)

// FileConfig mirrors the JSON config layout. Decimal fields hold
// human-readable prices and quantities; Load converts them to scaled
// integers using the owning instrument's scale.
type FileConfig struct {
	Simulation  SimulationConfig   `json:"simulation"`
	Instruments []InstrumentConfig `json:"instruments"`
	MarketMaker MakerConfig        `json:"marketMaker"`
	Traders     TradersConfig      `json:"traders"`
	Gate        GateConfig         `json:"gate"`
	Risk        risk.Config        `json:"risk"`
	Journal     JournalConfig      `json:"journal"`
	Postgres    PostgresConfig     `json:"postgres"`
}

// SimulationConfig bounds the run.
type SimulationConfig struct {
	Seed            int64 `json:"seed"`
	DurationSeconds int64 `json:"durationSeconds"`
	StepMillis      int64 `json:"stepMillis"`
	SnapshotDepth   int   `json:"snapshotDepth"`
	IntakeCapacity  int   `json:"intakeCapacity"`
}

// InstrumentConfig describes one tradable instrument. Scale is the number
// of price decimals; quantities are whole units.
type InstrumentConfig struct {
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Scale     int32           `json:"scale"`
	TickSize  decimal.Decimal `json:"tickSize"`
	MinQty    decimal.Decimal `json:"minQty"`
	MaxQty    decimal.Decimal `json:"maxQty"`
	BasePrice decimal.Decimal `json:"basePrice"`
}

// MakerConfig holds the market-maker strategy parameters.
type MakerConfig struct {
	Cash                  decimal.Decimal `json:"cash"`
	TargetSpreadBps       int64           `json:"targetSpreadBps"`
	MinSpreadBps          int64           `json:"minSpreadBps"`
	MaxSpreadBps          int64           `json:"maxSpreadBps"`
	RiskFactor            float64         `json:"riskFactor"`
	OrderSize             int64           `json:"orderSize"`
	PositionLimit         int64           `json:"positionLimit"`
	VolatilityWindow      int             `json:"volatilityWindow"`
	QuoteTTLMillis        int64           `json:"quoteTtlMillis"`
	RequoteIntervalMillis int64           `json:"requoteIntervalMillis"`
}

// TradersConfig sizes the noise-trader population.
type TradersConfig struct {
	Count          int             `json:"count"`
	Cash           decimal.Decimal `json:"cash"`
	TradeFrequency float64         `json:"tradeFrequency"`
	MinQty         int64           `json:"minQty"`
	MaxQty         int64           `json:"maxQty"`
}

// GateConfig configures the large-trade validation gate.
type GateConfig struct {
	Threshold   decimal.Decimal `json:"threshold"`
	Nodes       int             `json:"nodes"`
	MaxNotional decimal.Decimal `json:"maxNotional"`
}

// JournalConfig locates the event journal.
type JournalConfig struct {
	Dir          string `json:"dir"`
	SegmentBytes int64  `json:"segmentBytes"`
}

// PostgresConfig points at the optional result sink.
type PostgresConfig struct {
	DSN string `json:"dsn"`
}

// InstrumentSpec is a resolved instrument with its seeded base price.
type InstrumentSpec struct {
	ID        schema.SymbolID
	Symbol    string
	Scale     schema.Scale
	BasePrice schema.Price
	MinQty    schema.Quantity
	MaxQty    schema.Quantity
}

// GateSpec is the resolved validation-gate configuration.
type GateSpec struct {
	Threshold   schema.Notional
	Nodes       int
	MaxNotional schema.Notional
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Seed           int64
	StartNano      int64
	EndNano        int64
	StepNano       int64
	SnapshotDepth  int
	IntakeCapacity int

	Registry    *schema.Registry
	Instruments []InstrumentSpec
	MarketMaker MakerConfig
	Traders     TradersConfig
	Gate        GateSpec
	Risk        risk.Config
	Journal     JournalConfig
	PostgresDSN string
}

// Load reads a JSON config file and resolves it.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, err
	}
	return Resolve(cfg)
}

// Resolve validates a parsed config and converts it to scaled integers.
func Resolve(cfg FileConfig) (Loaded, error) {
	if cfg.Simulation.DurationSeconds <= 0 {
		return Loaded{}, fmt.Errorf("simulation durationSeconds must be > 0")
	}
	if cfg.Simulation.StepMillis <= 0 {
		cfg.Simulation.StepMillis = 100
	}
	if len(cfg.Instruments) == 0 {
		return Loaded{}, fmt.Errorf("at least one instrument is required")
	}
	if cfg.Traders.TradeFrequency < 0 || cfg.Traders.TradeFrequency > 1 {
		return Loaded{}, fmt.Errorf("traders tradeFrequency must be within [0, 1]")
	}
	if cfg.MarketMaker.MinSpreadBps > 0 && cfg.MarketMaker.MaxSpreadBps > 0 &&
		cfg.MarketMaker.MaxSpreadBps < cfg.MarketMaker.MinSpreadBps {
		return Loaded{}, fmt.Errorf("marketMaker maxSpreadBps must be >= minSpreadBps")
	}

	registry := schema.NewRegistry()
	instruments := make([]InstrumentSpec, 0, len(cfg.Instruments))
	for _, inst := range cfg.Instruments {
		if inst.Scale < 0 {
			return Loaded{}, fmt.Errorf("instrument %s: scale must be >= 0", inst.Symbol)
		}
		scale := schema.Scale(inst.Scale)

		basePrice, err := parsePrice(inst.BasePrice, scale)
		if err != nil {
			return Loaded{}, fmt.Errorf("instrument %s: basePrice: %w", inst.Symbol, err)
		}
		if basePrice <= 0 {
			return Loaded{}, fmt.Errorf("instrument %s: basePrice must be > 0", inst.Symbol)
		}
		tickSize, err := parsePrice(inst.TickSize, scale)
		if err != nil {
			return Loaded{}, fmt.Errorf("instrument %s: tickSize: %w", inst.Symbol, err)
		}
		minQty, err := parseQty(inst.MinQty)
		if err != nil {
			return Loaded{}, fmt.Errorf("instrument %s: minQty: %w", inst.Symbol, err)
		}
		maxQty, err := parseQty(inst.MaxQty)
		if err != nil {
			return Loaded{}, fmt.Errorf("instrument %s: maxQty: %w", inst.Symbol, err)
		}

		id, err := registry.Add(schema.Instrument{
			Symbol:   inst.Symbol,
			Name:     inst.Name,
			Scale:    scale,
			TickSize: tickSize,
			MinQty:   minQty,
			MaxQty:   maxQty,
		})
		if err != nil {
			return Loaded{}, err
		}
		instruments = append(instruments, InstrumentSpec{
			ID:        id,
			Symbol:    inst.Symbol,
			Scale:     scale,
			BasePrice: basePrice,
			MinQty:    minQty,
			MaxQty:    maxQty,
		})
	}

	// Quantities are whole units, so a notional carries the price scale of
	// the first instrument.
	notionalScale := instruments[0].Scale
	gate, err := resolveGate(cfg.Gate, notionalScale)
	if err != nil {
		return Loaded{}, err
	}

	step := cfg.Simulation.StepMillis * int64(time.Millisecond)
	return Loaded{
		Seed:           cfg.Simulation.Seed,
		StartNano:      0,
		EndNano:        cfg.Simulation.DurationSeconds * int64(time.Second),
		StepNano:       step,
		SnapshotDepth:  cfg.Simulation.SnapshotDepth,
		IntakeCapacity: cfg.Simulation.IntakeCapacity,
		Registry:       registry,
		Instruments:    instruments,
		MarketMaker:    cfg.MarketMaker,
		Traders:        cfg.Traders,
		Gate:           gate,
		Risk:           cfg.Risk,
		Journal:        cfg.Journal,
		PostgresDSN:    cfg.Postgres.DSN,
	}, nil
}

func resolveGate(cfg GateConfig, scale schema.Scale) (GateSpec, error) {
	threshold, err := parseNotional(cfg.Threshold, scale)
	if err != nil {
		return GateSpec{}, fmt.Errorf("gate threshold: %w", err)
	}
	maxNotional, err := parseNotional(cfg.MaxNotional, scale)
	if err != nil {
		return GateSpec{}, fmt.Errorf("gate maxNotional: %w", err)
	}
	if cfg.Nodes < 0 {
		return GateSpec{}, fmt.Errorf("gate nodes must be >= 0")
	}
	return GateSpec{
		Threshold:   threshold,
		Nodes:       cfg.Nodes,
		MaxNotional: maxNotional,
	}, nil
}

func parsePrice(d decimal.Decimal, scale schema.Scale) (schema.Price, error) {
	s := d.String()
	if s == "" {
		return 0, nil
	}
	v, err := schema.ParseScaled(s, scale)
	if err != nil {
		return 0, err
	}
	return schema.Price(v), nil
}

func parseQty(d decimal.Decimal) (schema.Quantity, error) {
	s := d.String()
	if s == "" {
		return 0, nil
	}
	v, err := schema.ParseScaled(s, 0)
	if err != nil {
		return 0, err
	}
	return schema.Quantity(v), nil
}

func parseNotional(d decimal.Decimal, scale schema.Scale) (schema.Notional, error) {
	s := d.String()
	if s == "" {
		return 0, nil
	}
	v, err := schema.ParseScaled(s, scale)
	if err != nil {
		return 0, err
	}
	return schema.Notional(v), nil
}

// ParseCash converts a decimal cash amount at the given price scale.
func ParseCash(d decimal.Decimal, scale schema.Scale) (schema.Notional, error) {
	return parseNotional(d, scale)
}
