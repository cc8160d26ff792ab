package service

import (
	"context"
	"errors"
	"log"
)

// ErrQueueFull is returned by Enqueue when the event buffer is at
// capacity. The webhook handler reports it upstream so Strava retries
// the delivery later.
var ErrQueueFull = errors.New("event queue is full")

// Dispatcher accepts webhook events for asynchronous processing. The
// webhook handler must acknowledge deliveries quickly, so ingestion and
// the leaderboard rebuild happen off the request path.
type Dispatcher interface {
	Enqueue(ev Event) error
}

// Queue is an in-process Dispatcher backed by a buffered channel. A
// single worker drains it, so events are applied in arrival order.
type Queue struct {
	events    chan Event
	ingestor  *Ingestor
	rebuilder *Rebuilder
}

// NewQueue creates a Queue holding up to size pending events.
func NewQueue(size int, ing *Ingestor, reb *Rebuilder) *Queue {
	return &Queue{
		events:    make(chan Event, size),
		ingestor:  ing,
		rebuilder: reb,
	}
}

// Enqueue adds an event without blocking.
func (q *Queue) Enqueue(ev Event) error {
	select {
	case q.events <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run processes events until ctx is canceled. Each event is ingested
// and then the leaderboard is republished so the public document never
// lags the stored records. Failures are logged and the worker moves on;
// a poisoned event must not wedge the queue.
func (q *Queue) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-q.events:
			if err := q.ingestor.HandleEvent(ctx, ev); err != nil {
				log.Printf("processing event for activity %d: %v", ev.ObjectID, err)
				continue
			}
			if _, err := q.rebuilder.Rebuild(ctx); err != nil {
				log.Printf("rebuilding after event: %v", err)
			}
		}
	}
}
