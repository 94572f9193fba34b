// Package engine orchestrates the generation pipeline: recommendation,
// resolution, assembly, caching and feedback-driven regeneration.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/moodcraft/backend/internal/models"
	"github.com/moodcraft/backend/internal/playlist"
	"github.com/moodcraft/backend/internal/profile"
	"github.com/moodcraft/backend/internal/recommend"
	"github.com/moodcraft/backend/internal/resolver"
)

// ProgressSink receives advisory progress events for a job. Implementations
// must not block.
type ProgressSink interface {
	Publish(jobID string, p models.Progress)
}

// Saver persists finished playlists. Persistence is best-effort; a save
// failure never fails the generate call.
type Saver interface {
	SavePlaylist(ctx context.Context, p models.GeneratedPlaylist) error
}

// Engine is the cache & regeneration controller wrapping the pipeline.
type Engine struct {
	provider recommend.Provider
	resolver *resolver.Resolver
	builder  *profile.Builder
	cache    Cache
	progress ProgressSink
	saver    Saver
	sf       singleflight.Group
	now      func() time.Time
}

// New creates an Engine. progress and saver may be nil.
func New(provider recommend.Provider, res *resolver.Resolver, builder *profile.Builder, cache Cache, progress ProgressSink, saver Saver) *Engine {
	return &Engine{
		provider: provider,
		resolver: res,
		builder:  builder,
		cache:    cache,
		progress: progress,
		saver:    saver,
		now:      time.Now,
	}
}

func (e *Engine) report(jobID string, percent int, step string) {
	if e.progress == nil || jobID == "" {
		return
	}
	e.progress.Publish(jobID, models.Progress{Percent: percent, Step: step})
}

// GenerateFromProfile builds a complete request from the snapshot and the
// current wall clock, then generates.
func (e *Engine) GenerateFromProfile(ctx context.Context, snap models.ProfileSnapshot, jobID string) (*models.GeneratedPlaylist, error) {
	req := e.builder.Build(snap, e.now().Hour())
	return e.Generate(ctx, req, jobID)
}

// Generate returns the cached playlist for the request fingerprint when one
// exists, otherwise runs the full pipeline and caches the result.
// Concurrent calls for the same fingerprint collapse into one run.
func (e *Engine) Generate(ctx context.Context, req models.PlaylistRequest, jobID string) (*models.GeneratedPlaylist, error) {
	fp := Fingerprint(req)

	if cached, ok := e.cache.Get(fp); ok {
		slog.InfoContext(ctx, "playlist served from cache",
			slog.String("fingerprint", fp),
			slog.String("playlist_id", cached.ID))
		e.report(jobID, 100, "done")
		return cached, nil
	}

	result, err, _ := e.sf.Do(fp, func() (any, error) {
		// Re-check under single-flight; a concurrent run may have
		// populated the cache while we waited.
		if cached, ok := e.cache.Get(fp); ok {
			return cached, nil
		}
		return e.run(ctx, req, fp, jobID)
	})
	if err != nil {
		return nil, err
	}

	p := result.(*models.GeneratedPlaylist)
	e.report(jobID, 100, "done")
	return p, nil
}

// run executes the pipeline once. Failures before resolution abort the
// call; once resolution starts, it always completes with a full playlist.
func (e *Engine) run(ctx context.Context, req models.PlaylistRequest, fp, jobID string) (*models.GeneratedPlaylist, error) {
	e.report(jobID, 5, "requesting recommendations")

	resp, err := e.provider.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	recs := padRecommendations(resp.Recommendations, req)
	e.report(jobID, 20, "resolving tracks")

	tracks := e.resolver.ResolveBatch(ctx, recs, func(done, total int) {
		// Resolution spans the 20-90% window.
		percent := 20 + (70*done)/total
		e.report(jobID, percent, fmt.Sprintf("resolving tracks (%d/%d)", done, total))
	})

	e.report(jobID, 95, "assembling playlist")
	resp.Recommendations = recs
	p := playlist.Assemble(resp, tracks)

	e.cache.Put(fp, &p)

	if e.saver != nil {
		if err := e.saver.SavePlaylist(ctx, p); err != nil {
			slog.WarnContext(ctx, "failed to persist playlist",
				slog.String("playlist_id", p.ID),
				slog.Any("error", err))
		}
	}

	return &p, nil
}

// Regenerate applies feedback to a copy of the original request,
// invalidates the derived fingerprint, and re-runs Generate. The original
// request and its cache entry are never touched.
func (e *Engine) Regenerate(ctx context.Context, original models.PlaylistRequest, fb *models.Feedback, jobID string) (*models.GeneratedPlaylist, error) {
	derived := ApplyFeedback(original, fb)

	e.cache.Invalidate(Fingerprint(derived))
	return e.Generate(ctx, derived, jobID)
}

// ReplaceTrack swaps the track at index for a freshly recommended and
// resolved one, keeping every other track and the playlist identity.
func (e *Engine) ReplaceTrack(ctx context.Context, p models.GeneratedPlaylist, index int, original models.PlaylistRequest) (*models.GeneratedPlaylist, error) {
	if index < 0 || index >= len(p.Tracks) {
		return nil, fmt.Errorf("track index %d out of range [0,%d)", index, len(p.Tracks))
	}

	replaced := p.Tracks[index]

	hint := recommend.ReplacementHint{
		Mood:            p.DominantMood,
		Genres:          original.Genres,
		ExcludedArtists: append(append([]string(nil), original.ExcludedArtists...), replaced.Artist),
	}
	if index > 0 {
		prev := p.Tracks[index-1]
		hint.Previous = &prev
	}
	if index < len(p.Tracks)-1 {
		next := p.Tracks[index+1]
		hint.Next = &next
	}

	rec, err := e.provider.Replacement(ctx, hint)
	if err != nil {
		return nil, err
	}

	// The replacement path tolerates an approximate match; only the query
	// tiers run before degrading.
	track := e.resolver.ResolveApproximate(ctx, *rec, index)

	out := p
	out.Tracks = append([]models.ResolvedTrack(nil), p.Tracks...)
	out.Tracks[index] = track
	out.DurationSec = playlist.TotalDuration(out.Tracks)
	return &out, nil
}

// moodScale orders moods from calmest to most energetic for feedback shifts.
var moodScale = []models.Mood{
	models.MoodSleep,
	models.MoodChill,
	models.MoodFocus,
	models.MoodEnergetic,
	models.MoodWorkout,
	models.MoodParty,
}

// ApplyFeedback derives a new request from feedback. An explicit mood
// override wins over an energy shift; disliked artists join the exclusion
// set.
func ApplyFeedback(original models.PlaylistRequest, fb *models.Feedback) models.PlaylistRequest {
	derived := original.Clone()
	if fb == nil {
		return derived
	}

	switch {
	case fb.Mood.Valid():
		derived.Mood = fb.Mood
	case fb.EnergyDelta != 0:
		derived.Mood = shiftMood(derived.Mood, fb.EnergyDelta)
	}

	if len(fb.DislikedArtists) > 0 {
		seen := make(map[string]struct{}, len(derived.ExcludedArtists))
		for _, a := range derived.ExcludedArtists {
			seen[a] = struct{}{}
		}
		for _, a := range fb.DislikedArtists {
			if _, dup := seen[a]; !dup && a != "" {
				derived.ExcludedArtists = append(derived.ExcludedArtists, a)
				seen[a] = struct{}{}
			}
		}
	}

	return derived
}

// shiftMood moves one step along the mood scale in the given direction,
// clamping at the ends.
func shiftMood(m models.Mood, delta int) models.Mood {
	idx := 0
	for i, s := range moodScale {
		if s == m {
			idx = i
			break
		}
	}

	if delta > 0 && idx < len(moodScale)-1 {
		idx++
	} else if delta < 0 && idx > 0 {
		idx--
	}
	return moodScale[idx]
}

// padRecommendations tops a short recommendation list up to the requested
// length with genre-seeded stubs. The stubs miss the query tiers and land
// in the genre or guaranteed-pool tiers, keeping the full-length contract.
func padRecommendations(recs []models.AbstractRecommendation, req models.PlaylistRequest) []models.AbstractRecommendation {
	if len(recs) >= req.Length {
		return recs[:req.Length]
	}

	out := append([]models.AbstractRecommendation(nil), recs...)
	for i := len(out); i < req.Length; i++ {
		genre := ""
		if len(req.Genres) > 0 {
			genre = req.Genres[i%len(req.Genres)]
		}
		out = append(out, models.AbstractRecommendation{
			Genre:  genre,
			Energy: 5,
			Mood:   string(req.Mood),
		})
	}
	return out
}
