// Package resolver matches abstract recommendations against the catalog.
// It never fails: an ordered chain of match strategies degrades from exact
// catalog hits down to a synthesized placeholder, so every recommendation
// produces a playable track.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/moodcraft/backend/internal/catalog"
	"github.com/moodcraft/backend/internal/models"
)

// Searcher is the slice of the catalog client the strategies need.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]catalog.Track, error)
	SearchGenre(ctx context.Context, genre string, limit int) ([]catalog.Track, error)
}

// MatchStrategy attempts to resolve one recommendation. ok=false means
// the next strategy in the chain should try.
type MatchStrategy interface {
	Name() string
	Match(ctx context.Context, rec models.AbstractRecommendation, index int) (*models.ResolvedTrack, bool)
}

const searchLimit = 10

// overlaps reports a case-insensitive substring match in either direction.
func overlaps(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// isExactMatch reports whether a catalog track matches the recommendation's
// title and artist.
func isExactMatch(t catalog.Track, rec models.AbstractRecommendation) bool {
	return overlaps(t.Name, rec.Title) && overlaps(t.ArtistNames(), rec.Artist)
}

// fromCatalog converts a catalog track into a ResolvedTrack, carrying over
// the recommendation's energy and genre.
func fromCatalog(t catalog.Track, rec models.AbstractRecommendation, reasoning string) *models.ResolvedTrack {
	return &models.ResolvedTrack{
		ID:          t.ID,
		Title:       t.Name,
		Artist:      t.ArtistNames(),
		Album:       t.Album.Name,
		DurationSec: t.DurationMS / 1000,
		CoverURL:    t.CoverURL(),
		MediaURL:    t.PreviewURL,
		Genre:       rec.Genre,
		Energy:      rec.Energy,
		Source:      models.SourceAI,
		Reasoning:   reasoning,
	}
}

// ExactQuery searches "<artist> <title>" and accepts the first result whose
// title and artist both overlap the recommendation, playable or not.
type ExactQuery struct {
	Catalog Searcher
}

func (ExactQuery) Name() string { return "exact-query" }

func (s ExactQuery) Match(ctx context.Context, rec models.AbstractRecommendation, _ int) (*models.ResolvedTrack, bool) {
	if rec.Artist == "" && rec.Title == "" {
		return nil, false
	}

	query := strings.TrimSpace(rec.Artist + " " + rec.Title)
	results, err := s.Catalog.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, false
	}

	for _, t := range results {
		if isExactMatch(t, rec) {
			return fromCatalog(t, rec, rec.Reasoning), true
		}
	}
	return nil, false
}

// AlternateQuery retries with reordered and partial queries. An exact match
// in any variant wins immediately; otherwise the first playable track seen
// across all variants is kept as the result.
type AlternateQuery struct {
	Catalog Searcher
}

func (AlternateQuery) Name() string { return "alternate-query" }

func (s AlternateQuery) Match(ctx context.Context, rec models.AbstractRecommendation, _ int) (*models.ResolvedTrack, bool) {
	queries := []string{
		strings.TrimSpace(rec.Title + " " + rec.Artist),
		rec.Artist,
		rec.Title,
	}

	var withMedia *catalog.Track
	for _, q := range queries {
		if strings.TrimSpace(q) == "" {
			continue
		}
		results, err := s.Catalog.Search(ctx, q, searchLimit)
		if err != nil {
			continue
		}
		for _, t := range results {
			// Exact match always wins over a remembered media-only candidate.
			if isExactMatch(t, rec) {
				return fromCatalog(t, rec, rec.Reasoning), true
			}
			if withMedia == nil && t.PreviewURL != "" {
				tt := t
				withMedia = &tt
			}
		}
	}

	if withMedia != nil {
		return fromCatalog(*withMedia, rec, rec.Reasoning), true
	}
	return nil, false
}

// GenreFallback searches by the recommendation's genre and takes the first
// playable result, or the first result at all when none are playable.
type GenreFallback struct {
	Catalog Searcher
}

func (GenreFallback) Name() string { return "genre-fallback" }

func (s GenreFallback) Match(ctx context.Context, rec models.AbstractRecommendation, _ int) (*models.ResolvedTrack, bool) {
	if rec.Genre == "" {
		return nil, false
	}

	results, err := s.Catalog.SearchGenre(ctx, rec.Genre, searchLimit)
	if err != nil || len(results) == 0 {
		return nil, false
	}

	pick := results[0]
	for _, t := range results {
		if t.PreviewURL != "" {
			pick = t
			break
		}
	}

	reasoning := fmt.Sprintf("similar %s track substituted for %q by %s", rec.Genre, rec.Title, rec.Artist)
	return fromCatalog(pick, rec, reasoning), true
}

// GuaranteedPool picks deterministically from the pre-vetted playable pool:
// the same position index always maps to the same pool entry.
type GuaranteedPool struct {
	Pool catalog.PoolSource
}

func (GuaranteedPool) Name() string { return "guaranteed-pool" }

func (s GuaranteedPool) Match(ctx context.Context, rec models.AbstractRecommendation, index int) (*models.ResolvedTrack, bool) {
	tracks, err := s.Pool.Tracks(ctx)
	if err != nil || len(tracks) == 0 {
		return nil, false
	}

	track := tracks[index%len(tracks)]
	track.Energy = rec.Energy
	track.Source = models.SourceAI
	track.Reasoning = fmt.Sprintf("fallback for %q by %s", rec.Title, rec.Artist)
	return &track, true
}

// Placeholder synthesizes a track from the recommendation itself with a
// known-good demo media URL. It can never miss.
type Placeholder struct{}

func (Placeholder) Name() string { return "placeholder" }

func (Placeholder) Match(_ context.Context, rec models.AbstractRecommendation, index int) (*models.ResolvedTrack, bool) {
	return &models.ResolvedTrack{
		ID:          fmt.Sprintf("placeholder-%d", index),
		Title:       rec.Title,
		Artist:      rec.Artist,
		DurationSec: 180,
		MediaURL:    catalog.DemoMediaURL,
		Genre:       rec.Genre,
		Energy:      rec.Energy,
		Source:      models.SourceAI,
		Reasoning:   "placeholder: no catalog match found",
	}, true
}
