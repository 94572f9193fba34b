// Package broker provides an in-memory pub/sub mechanism scoped by job ID.
// It fans generation progress events out to SSE connections.
package broker

import (
	"sync"

	"github.com/moodcraft/backend/internal/models"
)

// Broker is a job-scoped progress hub. Subscriber channels are buffered to
// 1 and stale events are dropped in favor of the newest, so a slow SSE
// consumer always sees the latest progress rather than a backlog.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan models.Progress]struct{}
	last map[string]models.Progress
}

// New creates a ready-to-use Broker.
func New() *Broker {
	return &Broker{
		subs: make(map[string]map[chan models.Progress]struct{}),
		last: make(map[string]models.Progress),
	}
}

// Subscribe returns a buffered(1) channel receiving progress for the job.
// If the job already reported progress, the latest event is delivered
// immediately so late subscribers don't start blind.
func (b *Broker) Subscribe(jobID string) chan models.Progress {
	ch := make(chan models.Progress, 1)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[jobID] == nil {
		b.subs[jobID] = make(map[chan models.Progress]struct{})
	}
	b.subs[jobID][ch] = struct{}{}
	if p, ok := b.last[jobID]; ok {
		ch <- p
	}
	return ch
}

// Unsubscribe removes a channel from the job's subscriber set. When the
// last subscriber leaves, the job's retained progress is dropped too.
func (b *Broker) Unsubscribe(jobID string, ch chan models.Progress) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if subs, ok := b.subs[jobID]; ok {
		delete(subs, ch)
		if len(subs) == 0 {
			delete(b.subs, jobID)
			delete(b.last, jobID)
		}
	}
}

// Publish sends the progress event to every subscriber without blocking.
// A pending unread event is replaced by the newer one.
func (b *Broker) Publish(jobID string, p models.Progress) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last[jobID] = p
	for ch := range b.subs[jobID] {
		select {
		case ch <- p:
		default:
			// Drain the stale event and retry with the fresh one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- p:
			default:
			}
		}
	}
}
