// Command replay feeds a recorded journal through fresh matching engines
// and verifies the resulting trade log matches the one on disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/internal/codec"
	"main/internal/consensus"
	"main/internal/match"
	"main/internal/ops"
	"main/internal/recorder"
	"main/internal/schema"
)

func main() {
	configPath := flag.String("config", "config.json", "Path to the JSON config of the recorded run")
	journalDir := flag.String("journal-dir", "", "Journal directory (overrides config)")
	prefix := flag.String("prefix", "", "Journal file prefix (empty=default)")
	flag.Parse()

	loaded, err := ops.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	dir := loaded.Journal.Dir
	if *journalDir != "" {
		dir = *journalDir
	}
	if dir == "" {
		log.Fatal("no journal directory: set journal.dir in the config or pass -journal-dir")
	}

	playback, err := recorder.NewPlayback(recorder.PlaybackConfig{Dir: dir, FilePrefix: *prefix})
	if err != nil {
		log.Fatalf("open journal: %v", err)
	}

	// The gate is deterministic for a given node count and notional cap,
	// so fresh engines reproduce the recorded run exactly.
	gate := consensus.NewBroadcast(loaded.Gate.Nodes, loaded.Gate.MaxNotional)
	engines := make(map[schema.SymbolID]*match.Engine, len(loaded.Instruments))
	for _, inst := range loaded.Instruments {
		engines[inst.ID] = match.NewEngine(inst.ID, match.GateConfig{
			Threshold: loaded.Gate.Threshold,
			Validator: gate,
		})
	}

	var (
		recorded []schema.Trade
		replayed []schema.Trade
		orders   int
		cancels  int
	)
	err = playback.Run(context.Background(), func(header schema.EventHeader, payload []byte) error {
		switch header.Kind {
		case schema.EventOrder:
			decoded, ok := codec.DecodeOrder(payload)
			if !ok {
				return errors.Errorf("seq %d: malformed order payload", header.Seq)
			}
			engine, ok := engines[decoded.SymbolID]
			if !ok {
				return errors.Errorf("seq %d: order %d references unknown symbol %d", header.Seq, decoded.ID, decoded.SymbolID)
			}
			order := decoded
			replayed = append(replayed, engine.Process(&order, header.TsSim)...)
			orders++
		case schema.EventCancel:
			decoded, ok := codec.DecodeCancel(payload)
			if !ok {
				return errors.Errorf("seq %d: malformed cancel payload", header.Seq)
			}
			if engine, ok := engines[decoded.SymbolID]; ok {
				_, _ = engine.Cancel(decoded.OrderID, header.TsSim)
			}
			cancels++
		case schema.EventTrade:
			decoded, ok := codec.DecodeTrade(payload)
			if !ok {
				return errors.Errorf("seq %d: malformed trade payload", header.Seq)
			}
			recorded = append(recorded, decoded)
		case schema.EventMarketEvent:
			// No book effect; nothing to replay.
		default:
			return errors.Errorf("seq %d: unknown record kind %d", header.Seq, header.Kind)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("replay: %v", err)
	}

	logs.Infof("replayed %d orders and %d cancels: journal holds %d trades, replay produced %d",
		orders, cancels, len(recorded), len(replayed))

	if diff := compare(recorded, replayed); diff != "" {
		logs.Errorf("determinism check failed: %s", diff)
		os.Exit(1)
	}
	logs.Infof("determinism check passed: %d trades identical", len(recorded))
}

func compare(recorded, replayed []schema.Trade) string {
	if len(recorded) != len(replayed) {
		return fmt.Sprintf("trade count differs: journal=%d replay=%d", len(recorded), len(replayed))
	}
	for i := range recorded {
		if recorded[i] != replayed[i] {
			return fmt.Sprintf("trade %d differs: journal=%+v replay=%+v", i, recorded[i], replayed[i])
		}
	}
	return ""
}
