package sim

import (
	"errors"
	"sync/atomic"
)

var (
	ErrIntakeFull   = errors.New("intake queue full")
	ErrIntakeClosed = errors.New("intake queue closed")
)

// Intake is a bounded, non-blocking hand-off for events submitted from
// outside the scheduler loop. The loop drains it at the top of each tick.
type Intake struct {
	ch     chan Event
	closed uint32
}

// NewIntake allocates an intake queue with the given capacity.
func NewIntake(capacity int) *Intake {
	if capacity <= 0 {
		capacity = 1
	}
	return &Intake{ch: make(chan Event, capacity)}
}

// TrySubmit enqueues an event without blocking.
func (q *Intake) TrySubmit(e Event) error {
	if atomic.LoadUint32(&q.closed) != 0 {
		return ErrIntakeClosed
	}
	select {
	case q.ch <- e:
		return nil
	default:
		return ErrIntakeFull
	}
}

// Close stops the queue from accepting new events.
func (q *Intake) Close() {
	if atomic.CompareAndSwapUint32(&q.closed, 0, 1) {
		close(q.ch)
	}
}

// drain hands every currently queued event to fn without blocking.
func (q *Intake) drain(fn func(Event)) {
	for {
		select {
		case e, ok := <-q.ch:
			if !ok {
				return
			}
			fn(e)
		default:
			return
		}
	}
}
