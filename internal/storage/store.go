// Package storage persists finished-run results to PostgreSQL. The sink is
// optional; a nil store ignores every call.
package storage

import (
	"gorm.io/gorm"

	"github.com/yanun0323/errors"

	"main/internal/obs"
	"main/internal/schema"
	"main/pkg/conn"
)

// TradeRecord is one executed trade row.
type TradeRecord struct {
	gorm.Model
	RunID       string `gorm:"index"`
	TradeID     uint64
	SymbolID    uint32
	Price       int64
	Qty         int64
	BuyOrderID  uint64
	SellOrderID uint64
	BuyAgentID  uint32
	SellAgentID uint32
	TsNano      int64
}

// MarketSampleRecord is one per-tick top-of-book row.
type MarketSampleRecord struct {
	gorm.Model
	RunID     string `gorm:"index"`
	TsNano    int64
	SymbolID  uint32
	BestBid   int64
	BestAsk   int64
	Spread    int64
	BidVolume int64
	AskVolume int64
}

// AgentSampleRecord is one per-tick portfolio valuation row.
type AgentSampleRecord struct {
	gorm.Model
	RunID      string `gorm:"index"`
	TsNano     int64
	AgentID    uint32
	Cash       int64
	TotalValue int64
	OpenOrders int
}

// Store writes run results through a postgres connection.
type Store struct {
	client *conn.Client
}

// Open connects to postgres and migrates the result tables.
func Open(dsn string) (*Store, error) {
	client, err := conn.Open(dsn, nil)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	if err := client.DB().AutoMigrate(&TradeRecord{}, &MarketSampleRecord{}, &AgentSampleRecord{}); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "migrate result tables")
	}
	return &Store{client: client}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.client.Close()
}

// SaveRun persists the trade log and metric samples for one run.
func (s *Store) SaveRun(runID string, trades []schema.Trade, metrics obs.Snapshot) error {
	if s == nil {
		return nil
	}

	if len(trades) > 0 {
		rows := make([]TradeRecord, 0, len(trades))
		for _, trade := range trades {
			rows = append(rows, TradeRecord{
				RunID:       runID,
				TradeID:     trade.ID,
				SymbolID:    uint32(trade.SymbolID),
				Price:       int64(trade.Price),
				Qty:         int64(trade.Qty),
				BuyOrderID:  trade.BuyOrderID,
				SellOrderID: trade.SellOrderID,
				BuyAgentID:  uint32(trade.BuyAgentID),
				SellAgentID: uint32(trade.SellAgentID),
				TsNano:      trade.TsNano,
			})
		}
		if err := s.client.DB().CreateInBatches(rows, 500).Error; err != nil {
			return errors.Wrap(err, "save trades")
		}
	}

	if len(metrics.MarketSamples) > 0 {
		rows := make([]MarketSampleRecord, 0, len(metrics.MarketSamples))
		for _, sample := range metrics.MarketSamples {
			rows = append(rows, MarketSampleRecord{
				RunID:     runID,
				TsNano:    sample.TsNano,
				SymbolID:  uint32(sample.SymbolID),
				BestBid:   int64(sample.BestBid),
				BestAsk:   int64(sample.BestAsk),
				Spread:    int64(sample.Spread),
				BidVolume: int64(sample.BidVolume),
				AskVolume: int64(sample.AskVolume),
			})
		}
		if err := s.client.DB().CreateInBatches(rows, 500).Error; err != nil {
			return errors.Wrap(err, "save market samples")
		}
	}

	if len(metrics.AgentSamples) > 0 {
		rows := make([]AgentSampleRecord, 0, len(metrics.AgentSamples))
		for _, sample := range metrics.AgentSamples {
			rows = append(rows, AgentSampleRecord{
				RunID:      runID,
				TsNano:     sample.TsNano,
				AgentID:    uint32(sample.AgentID),
				Cash:       int64(sample.Cash),
				TotalValue: int64(sample.TotalValue),
				OpenOrders: sample.OpenOrders,
			})
		}
		if err := s.client.DB().CreateInBatches(rows, 500).Error; err != nil {
			return errors.Wrap(err, "save agent samples")
		}
	}

	return nil
}
