// Package sim runs the discrete-event simulation loop: a virtual clock, a
// (timestamp, seq)-ordered event queue, per-symbol matching engines and
// participant fan-out.
package sim

import "main/internal/schema"

// Event is one scheduled simulation input. Exactly one payload field is
// set. Seq is assigned when the event enters the queue and breaks
// timestamp ties in scheduling order.
type Event struct {
	TsNano int64
	Seq    uint64
	Order  *schema.Order
	Market *schema.MarketEvent
}

// Kind returns the schema event kind for the payload.
func (e Event) Kind() schema.EventKind {
	switch {
	case e.Order != nil:
		return schema.EventOrder
	case e.Market != nil:
		return schema.EventMarketEvent
	default:
		return schema.EventUnknown
	}
}

// eventHeap orders events by (TsNano, Seq) ascending.
type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].TsNano != h[j].TsNano {
		return h[i].TsNano < h[j].TsNano
	}
	return h[i].Seq < h[j].Seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) { *h = append(*h, x.(Event)) }

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
