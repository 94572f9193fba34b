package resolver

import (
	"context"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/moodcraft/backend/internal/catalog"
)

// BreakerSearcher wraps a Searcher with a circuit breaker. When the
// catalog backend fails repeatedly the breaker opens and searches miss
// fast, pushing the resolver straight to the guaranteed-pool tier instead
// of hammering a dead backend for every query variant.
type BreakerSearcher struct {
	inner Searcher
	cb    *gobreaker.CircuitBreaker[[]catalog.Track]
}

// NewBreakerSearcher wraps inner. The breaker opens after five consecutive
// failures and probes again after 30 seconds.
func NewBreakerSearcher(inner Searcher) *BreakerSearcher {
	settings := gobreaker.Settings{
		Name:    "catalog-search",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &BreakerSearcher{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[[]catalog.Track](settings),
	}
}

func (b *BreakerSearcher) Search(ctx context.Context, query string, limit int) ([]catalog.Track, error) {
	return b.cb.Execute(func() ([]catalog.Track, error) {
		return b.inner.Search(ctx, query, limit)
	})
}

func (b *BreakerSearcher) SearchGenre(ctx context.Context, genre string, limit int) ([]catalog.Track, error) {
	return b.cb.Execute(func() ([]catalog.Track, error) {
		return b.inner.SearchGenre(ctx, genre, limit)
	})
}

// State exposes the breaker state for health reporting.
func (b *BreakerSearcher) State() string {
	return b.cb.State().String()
}
