package link

import (
	"context"
	"time"

	"github.com/espfly/fclink/pkg/crtp"
)

// DefaultQueueCapacity is the capacity of inbound and outbound queues.
const DefaultQueueCapacity = 5

// Queue is a bounded FIFO of packets between one producer task and
// one consumer task. A full queue never blocks the producer longer
// than the given timeout.
type Queue struct {
	ch chan crtp.Packet
}

// NewQueue creates a Queue. capacity <= 0 uses DefaultQueueCapacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Queue{ch: make(chan crtp.Packet, capacity)}
}

// Push enqueues pkt, waiting at most timeout for room.
func (q *Queue) Push(pkt crtp.Packet, timeout time.Duration) error {
	select {
	case q.ch <- pkt:
		return nil
	default:
	}
	if timeout <= 0 {
		return ErrQueueFull
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case q.ch <- pkt:
		return nil
	case <-timer.C:
		return ErrQueueFull
	}
}

// Pop dequeues the oldest packet. With timeout <= 0 it waits until a
// packet arrives or ctx is done.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (crtp.Packet, error) {
	select {
	case pkt := <-q.ch:
		return pkt, nil
	default:
	}
	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}
	select {
	case pkt := <-q.ch:
		return pkt, nil
	case <-timeoutCh:
		return crtp.Packet{}, ErrQueueEmpty
	case <-ctx.Done():
		return crtp.Packet{}, ctx.Err()
	}
}

// Len returns the number of queued packets.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Cap returns the capacity.
func (q *Queue) Cap() int {
	return cap(q.ch)
}
