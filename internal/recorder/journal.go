package recorder

import (
	"sync/atomic"

	"github.com/yanun0323/logs"

	"main/internal/codec"
	"main/internal/schema"
)

// Journal adapts the writer to the scheduler's journal surface. Encoding
// allocates a fresh payload per record, so the writer owns the bytes.
type Journal struct {
	writer  *Writer
	dropped uint64
}

// NewJournal wraps a started writer.
func NewJournal(writer *Writer) *Journal {
	return &Journal{writer: writer}
}

// Dropped returns the number of records lost to a full or failed writer.
func (j *Journal) Dropped() uint64 {
	return atomic.LoadUint64(&j.dropped)
}

// AppendOrder journals one order event.
func (j *Journal) AppendOrder(header schema.EventHeader, order schema.Order) {
	j.append(header, codec.EncodeOrder(nil, order))
}

// AppendTrade journals one trade.
func (j *Journal) AppendTrade(header schema.EventHeader, trade schema.Trade) {
	j.append(header, codec.EncodeTrade(nil, trade))
}

// AppendMarketEvent journals one market event.
func (j *Journal) AppendMarketEvent(header schema.EventHeader, event schema.MarketEvent) {
	j.append(header, codec.EncodeMarketEvent(nil, event))
}

// AppendCancel journals one cancel.
func (j *Journal) AppendCancel(header schema.EventHeader, cancel schema.CancelRequest) {
	j.append(header, codec.EncodeCancel(nil, cancel))
}

func (j *Journal) append(header schema.EventHeader, payload []byte) {
	if err := j.writer.TryAppend(header, payload); err != nil {
		if atomic.AddUint64(&j.dropped, 1) == 1 {
			logs.Errorf("journal append: %+v", err)
		}
	}
}
