package pipeline

import "sync/atomic"

// Mailbox is a single-slot channel between one producer and one consumer.
// Offer never blocks: a value the consumer has not taken yet is replaced by
// the newer one and counted as dropped.
type Mailbox[T any] struct {
	ch    chan T
	drops atomic.Uint64
}

// NewMailbox returns an empty mailbox.
func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{ch: make(chan T, 1)}
}

// Offer publishes v, displacing any unconsumed value. It reports whether a
// value was dropped to make room.
func (m *Mailbox[T]) Offer(v T) (dropped bool) {
	select {
	case m.ch <- v:
		return false
	default:
	}
	select {
	case <-m.ch:
		m.drops.Add(1)
		dropped = true
	default:
	}
	select {
	case m.ch <- v:
	default:
		// Another producer refilled the slot; the newer value loses.
		m.drops.Add(1)
		dropped = true
	}
	return dropped
}

// Poll takes the pending value, if any, without blocking.
func (m *Mailbox[T]) Poll() (T, bool) {
	select {
	case v := <-m.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// Drops returns how many values were discarded unread.
func (m *Mailbox[T]) Drops() uint64 { return m.drops.Load() }
