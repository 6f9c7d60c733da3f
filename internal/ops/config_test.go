package ops

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanun0323/decimal"

	"main/internal/schema"
)

const sampleConfig = `{
  "simulation": {
    "seed": 42,
    "durationSeconds": 60,
    "stepMillis": 100,
    "snapshotDepth": 5
  },
  "instruments": [
    {
      "symbol": "SIM",
      "name": "Simulated Instrument",
      "scale": 2,
      "tickSize": "0.01",
      "minQty": "1",
      "maxQty": "1000",
      "basePrice": "100.00"
    }
  ],
  "marketMaker": {
    "cash": "1000000.00",
    "targetSpreadBps": 20,
    "minSpreadBps": 5,
    "maxSpreadBps": 200,
    "riskFactor": 0.5,
    "orderSize": 10,
    "positionLimit": 100,
    "volatilityWindow": 20,
    "quoteTtlMillis": 5000
  },
  "traders": {
    "count": 5,
    "cash": "100000.00",
    "tradeFrequency": 0.1,
    "minQty": 1,
    "maxQty": 10
  },
  "gate": {
    "threshold": "50000.00",
    "nodes": 4,
    "maxNotional": "250000.00"
  },
  "risk": {
    "maxOrderQty": 500
  },
  "journal": {
    "dir": "journal"
  },
  "postgres": {
    "dsn": ""
  }
}`

func TestResolveSampleConfig(t *testing.T) {
	var cfg FileConfig
	require.NoError(t, json.Unmarshal([]byte(sampleConfig), &cfg))

	loaded, err := Resolve(cfg)
	require.NoError(t, err)

	assert.Equal(t, int64(42), loaded.Seed)
	assert.Equal(t, int64(60_000_000_000), loaded.EndNano)
	assert.Equal(t, int64(100_000_000), loaded.StepNano)

	require.Len(t, loaded.Instruments, 1)
	inst := loaded.Instruments[0]
	assert.Equal(t, schema.SymbolID(1), inst.ID)
	assert.Equal(t, schema.Scale(2), inst.Scale)
	assert.Equal(t, schema.Price(10_000), inst.BasePrice)
	assert.Equal(t, schema.Quantity(1000), inst.MaxQty)

	registered, ok := loaded.Registry.Lookup("SIM")
	require.True(t, ok)
	assert.Equal(t, schema.Price(1), registered.TickSize)

	assert.Equal(t, schema.Notional(5_000_000), loaded.Gate.Threshold)
	assert.Equal(t, schema.Notional(25_000_000), loaded.Gate.MaxNotional)
	assert.Equal(t, 4, loaded.Gate.Nodes)

	assert.Equal(t, schema.Quantity(500), loaded.Risk.MaxOrderQty)
	assert.Equal(t, "journal", loaded.Journal.Dir)
	assert.Empty(t, loaded.PostgresDSN)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Registry.Count())
}

func TestResolveRejectsInvalid(t *testing.T) {
	base := func(t *testing.T) FileConfig {
		t.Helper()
		var cfg FileConfig
		require.NoError(t, json.Unmarshal([]byte(sampleConfig), &cfg))
		return cfg
	}

	t.Run("missing duration", func(t *testing.T) {
		cfg := base(t)
		cfg.Simulation.DurationSeconds = 0
		_, err := Resolve(cfg)
		assert.Error(t, err)
	})

	t.Run("no instruments", func(t *testing.T) {
		cfg := base(t)
		cfg.Instruments = nil
		_, err := Resolve(cfg)
		assert.Error(t, err)
	})

	t.Run("trade frequency out of range", func(t *testing.T) {
		cfg := base(t)
		cfg.Traders.TradeFrequency = 1.5
		_, err := Resolve(cfg)
		assert.Error(t, err)
	})

	t.Run("inverted spread bounds", func(t *testing.T) {
		cfg := base(t)
		cfg.MarketMaker.MinSpreadBps = 50
		cfg.MarketMaker.MaxSpreadBps = 10
		_, err := Resolve(cfg)
		assert.Error(t, err)
	})

	t.Run("excess fractional digits", func(t *testing.T) {
		cfg := base(t)
		cfg.Instruments[0].BasePrice = decimalOf(t, "100.001")
		_, err := Resolve(cfg)
		assert.Error(t, err)
	})
}

func decimalOf(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	var d decimal.Decimal
	require.NoError(t, json.Unmarshal([]byte(`"`+s+`"`), &d))
	return d
}
