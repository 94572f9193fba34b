package resolver

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/moodcraft/backend/internal/catalog"
	"github.com/moodcraft/backend/internal/models"
)

// Resolver runs the strategy chain for each recommendation in a batch.
// A shared token bucket spaces out catalog calls and a bounded worker pool
// caps concurrency; results always come back in recommendation order.
type Resolver struct {
	strategies  []MatchStrategy
	approximate []MatchStrategy
	limiter     *rate.Limiter
	maxInFlight int
}

// Options tunes a Resolver. Zero values get sensible defaults.
type Options struct {
	// RatePerSec is the shared catalog-call budget across all workers.
	RatePerSec float64
	// MaxInFlight caps concurrent track resolutions in a batch.
	MaxInFlight int
}

// New builds a Resolver with the full strategy chain over the given
// searcher and guaranteed pool.
func New(search Searcher, pool catalog.PoolSource, opts Options) *Resolver {
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 5
	}
	if opts.MaxInFlight < 1 {
		opts.MaxInFlight = 3
	}

	return &Resolver{
		strategies: []MatchStrategy{
			ExactQuery{Catalog: search},
			AlternateQuery{Catalog: search},
			GenreFallback{Catalog: search},
			GuaranteedPool{Pool: pool},
			Placeholder{},
		},
		// The replacement path tolerates an approximate match, so it only
		// runs the query tiers before degrading to a placeholder.
		approximate: []MatchStrategy{
			ExactQuery{Catalog: search},
			AlternateQuery{Catalog: search},
			Placeholder{},
		},
		limiter:     rate.NewLimiter(rate.Limit(opts.RatePerSec), 1),
		maxInFlight: opts.MaxInFlight,
	}
}

// ResolveOne runs the full strategy chain for a single recommendation.
// It always returns a track; the placeholder tier cannot miss.
func (r *Resolver) ResolveOne(ctx context.Context, rec models.AbstractRecommendation, index int) models.ResolvedTrack {
	return r.resolve(ctx, r.strategies, rec, index)
}

// ResolveApproximate resolves with the exact and alternate query tiers
// only. Used for single-track replacement.
func (r *Resolver) ResolveApproximate(ctx context.Context, rec models.AbstractRecommendation, index int) models.ResolvedTrack {
	return r.resolve(ctx, r.approximate, rec, index)
}

func (r *Resolver) resolve(ctx context.Context, chain []MatchStrategy, rec models.AbstractRecommendation, index int) models.ResolvedTrack {
	for _, s := range chain {
		track, ok := s.Match(ctx, rec, index)
		if !ok {
			continue
		}
		slog.DebugContext(ctx, "recommendation resolved",
			slog.Int("index", index),
			slog.String("strategy", s.Name()),
			slog.String("artist", rec.Artist),
			slog.String("title", rec.Title))
		return *track
	}

	// Unreachable as long as Placeholder terminates the chain, but the
	// full-playlist contract must hold even if the chain is misconfigured.
	track, _ := Placeholder{}.Match(ctx, rec, index)
	return *track
}

// ResolveBatch resolves every recommendation, at most maxInFlight at a
// time, pacing catalog calls through the shared token bucket. onProgress
// (optional) is called after each track with the number resolved so far.
// The returned slice matches recommendation order and length exactly.
func (r *Resolver) ResolveBatch(ctx context.Context, recs []models.AbstractRecommendation, onProgress func(done, total int)) []models.ResolvedTrack {
	tracks := make([]models.ResolvedTrack, len(recs))

	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxInFlight)

	for i, rec := range recs {
		i, rec := i, rec
		g.Go(func() error {
			// A cancelled wait still resolves: the query tiers will miss
			// on the dead context and the local tiers take over.
			_ = r.limiter.Wait(gctx)

			tracks[i] = r.ResolveOne(gctx, rec, i)

			if onProgress != nil {
				mu.Lock()
				done++
				n := done
				mu.Unlock()
				onProgress(n, len(recs))
			}
			return nil
		})
	}

	// Workers never return errors; per-track failures are absorbed by
	// the strategy chain.
	_ = g.Wait()

	return tracks
}
