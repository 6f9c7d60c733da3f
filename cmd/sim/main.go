package main

import (
	"context"
	"flag"
	"log"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"main/internal/obs"
	"main/internal/ops"
	"main/internal/recorder"
	"main/internal/scenario"
	"main/internal/sim"
	"main/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.json", "Path to JSON config")
	journalDir := flag.String("journal-dir", "", "Journal directory (overrides config; empty=config value)")
	noJournal := flag.Bool("no-journal", false, "Disable the event journal")
	pgDSN := flag.String("pg-dsn", "", "Postgres DSN for result persistence (overrides config)")
	runID := flag.String("run-id", "", "Run identifier for persisted results (default: timestamp)")
	seed := flag.Int64("seed", 0, "Seed override (0=config value)")
	durationSec := flag.Int64("duration", 0, "Duration override in seconds (0=config value)")
	profile := flag.Bool("profile", false, "Enable pyroscope profiling")
	profileAddr := flag.String("profile-addr", "http://localhost:4040", "Pyroscope server address")
	flag.Parse()

	loaded, err := ops.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *seed != 0 {
		loaded.Seed = *seed
	}
	if *durationSec > 0 {
		loaded.EndNano = *durationSec * int64(time.Second)
	}
	if *journalDir != "" {
		loaded.Journal.Dir = *journalDir
	}
	if *pgDSN != "" {
		loaded.PostgresDSN = *pgDSN
	}

	if *profile {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "market-sim",
			ServerAddress:   *profileAddr,
			Tags: map[string]string{
				"env": "local",
			},
			Logger: emptyLogger{},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-sys.Shutdown()
		logs.Info("shutdown requested, stopping simulation")
		cancel()
	}()

	var journal sim.Journal
	var writer *recorder.Writer
	if !*noJournal && loaded.Journal.Dir != "" {
		cfg := recorder.DefaultConfig(loaded.Journal.Dir)
		if loaded.Journal.SegmentBytes > 0 {
			cfg.SegmentMaxBytes = loaded.Journal.SegmentBytes
		}
		writer, err = recorder.NewWriter(cfg)
		if err != nil {
			log.Fatalf("open journal: %v", err)
		}
		if err := writer.Start(ctx); err != nil {
			log.Fatalf("start journal: %v", err)
		}
		journal = recorder.NewJournal(writer)
	}

	scn, err := scenario.Build(loaded, journal)
	if err != nil {
		log.Fatalf("build scenario: %v", err)
	}

	logs.Infof("starting simulation: seed=%d duration=%s step=%s traders=%d",
		loaded.Seed,
		time.Duration(loaded.EndNano-loaded.StartNano),
		time.Duration(loaded.StepNano),
		len(scn.Traders))

	begin := time.Now()
	result := scn.Run(ctx)
	elapsed := time.Since(begin)

	if writer != nil {
		if err := writer.Close(); err != nil {
			logs.Errorf("close journal: %+v", err)
		}
	}

	printSummary(result, elapsed, scn)

	if loaded.PostgresDSN != "" {
		id := *runID
		if id == "" {
			id = time.Now().UTC().Format("20060102-150405")
		}
		store, err := storage.Open(loaded.PostgresDSN)
		if err != nil {
			log.Fatalf("open result store: %v", err)
		}
		defer store.Close()
		if err := store.SaveRun(id, result.Trades, result.Metrics); err != nil {
			log.Fatalf("persist run: %v", err)
		}
		logs.Infof("persisted run %s: %d trades", id, len(result.Trades))
	}
}

func printSummary(result sim.Result, elapsed time.Duration, scn *scenario.Scenario) {
	m := result.Metrics
	logs.Infof("simulation finished in %s: steps=%d events=%d trades=%d drops=%d expired=%d",
		elapsed, result.Steps, m.EventsProcessed, m.TradeCount, m.OrdersDropped, m.EventsExpired)
	logs.Infof("match latency: count=%d min=%s avg=%s max=%s",
		m.MatchLatency.Count, m.MatchLatency.Min, m.MatchLatency.Avg, m.MatchLatency.Max)
	logs.Infof("validation gate: rounds=%d", scn.Gate.Rounds())

	if len(m.MarketSamples) > 0 {
		last := m.MarketSamples[len(m.MarketSamples)-1]
		logs.Infof("final top of book: bid=%d ask=%d spread=%d", last.BestBid, last.BestAsk, last.Spread)
	}
	summarizeAgents(m.AgentSamples)
}

func summarizeAgents(samples []obs.AgentSample) {
	// Report only the last sample per agent.
	last := make(map[uint32]obs.AgentSample)
	var order []uint32
	for _, sample := range samples {
		id := uint32(sample.AgentID)
		if _, seen := last[id]; !seen {
			order = append(order, id)
		}
		last[id] = sample
	}
	for _, id := range order {
		sample := last[id]
		logs.Infof("agent %d: cash=%d value=%d open=%d", id, sample.Cash, sample.TotalValue, sample.OpenOrders)
	}
}

type emptyLogger struct{}

func (emptyLogger) Infof(_ string, _ ...interface{})  {}
func (emptyLogger) Debugf(_ string, _ ...interface{}) {}
func (emptyLogger) Errorf(_ string, _ ...interface{}) {}
