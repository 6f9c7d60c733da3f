// Package scenario assembles a runnable market-making simulation from
// resolved configuration: matching engines, validation gate, the market
// maker, the noise-trader population and the seed liquidity ladder.
package scenario

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/yanun0323/errors"

	"main/internal/agent"
	"main/internal/consensus"
	"main/internal/match"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/risk"
	"main/internal/schema"
	"main/internal/sim"
)

const (
	makerAgentID schema.AgentID = 1
	// seederAgentID places the opening liquidity ladder; it has no ledger.
	seederAgentID schema.AgentID = 1000

	seedLevels   = 5
	seedLevelBps = 10
	seedLevelQty = 50
)

// Scenario is a fully wired simulation ready to run.
type Scenario struct {
	Scheduler *sim.Scheduler
	Gate      *consensus.Broadcast
	Maker     *agent.MarketMaker
	Traders   []*agent.RandomTrader
	Metrics   *obs.Metrics
}

// Build wires a scenario from resolved configuration. The journal may be
// nil.
func Build(loaded ops.Loaded, journal sim.Journal) (*Scenario, error) {
	if len(loaded.Instruments) == 0 {
		return nil, errors.New("scenario requires at least one instrument")
	}
	primary := loaded.Instruments[0]

	metrics := obs.NewMetrics()
	gate := consensus.NewBroadcast(loaded.Gate.Nodes, loaded.Gate.MaxNotional)
	scheduler := sim.NewScheduler(
		sim.Config{
			StartNano:      loaded.StartNano,
			EndNano:        loaded.EndNano,
			StepNano:       loaded.StepNano,
			SnapshotDepth:  loaded.SnapshotDepth,
			IntakeCapacity: loaded.IntakeCapacity,
		},
		loaded.Registry,
		match.GateConfig{Threshold: loaded.Gate.Threshold, Validator: gate},
		metrics,
		journal,
	)

	riskEngine := risk.NewEngine(loaded.Risk)

	makerCash, err := ops.ParseCash(loaded.MarketMaker.Cash, primary.Scale)
	if err != nil {
		return nil, errors.Wrap(err, "market maker cash")
	}
	maker := agent.NewMarketMaker(makerAgentID, "market-maker", makerCash, scheduler, riskEngine, agent.MarketMakerConfig{
		SymbolID:         primary.ID,
		TargetSpreadBps:  loaded.MarketMaker.TargetSpreadBps,
		MinSpreadBps:     loaded.MarketMaker.MinSpreadBps,
		MaxSpreadBps:     loaded.MarketMaker.MaxSpreadBps,
		RiskFactor:       loaded.MarketMaker.RiskFactor,
		OrderSize:        schema.Quantity(loaded.MarketMaker.OrderSize),
		PositionLimit:    schema.Quantity(loaded.MarketMaker.PositionLimit),
		VolatilityWindow: loaded.MarketMaker.VolatilityWindow,
		QuoteTTL:         loaded.MarketMaker.QuoteTTLMillis * int64(time.Millisecond),
		RequoteInterval:  loaded.MarketMaker.RequoteIntervalMillis * int64(time.Millisecond),
	})
	maker.SetReferencePrice(primary.ID, primary.BasePrice)
	scheduler.Register(maker)

	traderCash, err := ops.ParseCash(loaded.Traders.Cash, primary.Scale)
	if err != nil {
		return nil, errors.Wrap(err, "trader cash")
	}
	traders := make([]*agent.RandomTrader, 0, loaded.Traders.Count)
	for i := 0; i < loaded.Traders.Count; i++ {
		id := makerAgentID + 1 + schema.AgentID(i)
		trader := agent.NewRandomTrader(id, traderName(i), traderCash, scheduler, riskEngine, agent.RandomTraderConfig{
			SymbolID:       primary.ID,
			TradeFrequency: loaded.Traders.TradeFrequency,
			MinQty:         schema.Quantity(loaded.Traders.MinQty),
			MaxQty:         schema.Quantity(loaded.Traders.MaxQty),
			Seed:           loaded.Seed + int64(i) + 1,
		})
		trader.SetReferencePrice(primary.ID, primary.BasePrice)
		scheduler.Register(trader)
		traders = append(traders, trader)
	}

	seedBook(scheduler, loaded)

	return &Scenario{
		Scheduler: scheduler,
		Gate:      gate,
		Maker:     maker,
		Traders:   traders,
		Metrics:   metrics,
	}, nil
}

// Run executes the scenario to completion.
func (s *Scenario) Run(ctx context.Context) sim.Result {
	return s.Scheduler.Run(ctx)
}

// seedBook schedules a resting ladder on both sides of each instrument's
// base price so the first tick already has a two-sided top.
func seedBook(scheduler *sim.Scheduler, loaded ops.Loaded) {
	rng := rand.New(rand.NewSource(loaded.Seed))
	for _, inst := range loaded.Instruments {
		for level := 1; level <= seedLevels; level++ {
			offset := int64(inst.BasePrice) * int64(level) * seedLevelBps / 10_000
			if offset <= 0 {
				offset = int64(level)
			}
			qty := schema.Quantity(1 + rng.Int63n(seedLevelQty))

			bidPrice := schema.Price(int64(inst.BasePrice) - offset)
			if bidPrice > 0 {
				bid := schema.NewLimitOrder(scheduler.NextOrderID(), inst.ID, seederAgentID, schema.SideBuy, qty, bidPrice, loaded.StartNano)
				scheduler.ScheduleOrder(loaded.StartNano, bid)
			}

			askPrice := schema.Price(int64(inst.BasePrice) + offset)
			ask := schema.NewLimitOrder(scheduler.NextOrderID(), inst.ID, seederAgentID, schema.SideSell, qty, askPrice, loaded.StartNano)
			scheduler.ScheduleOrder(loaded.StartNano, ask)
		}
	}
}

func traderName(index int) string {
	return fmt.Sprintf("trader-%03d", index+1)
}
