package resolver

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/moodcraft/backend/internal/catalog"
	"github.com/moodcraft/backend/internal/models"
)

// fakeSearcher returns canned results per query and records call order.
// ResolveBatch calls it from concurrent workers, so recorded state is
// guarded by a mutex.
type fakeSearcher struct {
	results map[string][]catalog.Track
	genres  map[string][]catalog.Track
	err     error

	mu      sync.Mutex
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query string, _ int) ([]catalog.Track, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

func (f *fakeSearcher) SearchGenre(_ context.Context, genre string, _ int) ([]catalog.Track, error) {
	f.mu.Lock()
	f.queries = append(f.queries, "genre:"+genre)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.genres[genre], nil
}

type failingPool struct{}

func (failingPool) Tracks(context.Context) ([]models.ResolvedTrack, error) {
	return nil, errors.New("pool unreachable")
}

func catalogTrack(id, name, artist, preview string) catalog.Track {
	return catalog.Track{
		ID:         id,
		Name:       name,
		DurationMS: 200000,
		PreviewURL: preview,
		Artists:    []catalog.Artist{{Name: artist}},
	}
}

func rec(artist, title, genre string) models.AbstractRecommendation {
	return models.AbstractRecommendation{
		Artist:    artist,
		Title:     title,
		Genre:     genre,
		Energy:    7,
		Mood:      "energetic",
		Reasoning: "matches recent plays",
	}
}

func newResolver(s Searcher, pool catalog.PoolSource) *Resolver {
	return New(s, pool, Options{RatePerSec: 1000, MaxInFlight: 3})
}

func TestExactMatchWinsEvenWithoutMedia(t *testing.T) {
	fs := &fakeSearcher{
		results: map[string][]catalog.Track{
			"Muse Starlight": {
				catalogTrack("other", "Some Cover Version", "Tribute Band", "https://cdn/p.mp3"),
				catalogTrack("exact", "Starlight", "Muse", ""), // exact but unplayable
			},
		},
		genres: map[string][]catalog.Track{
			"Rock": {catalogTrack("genre-hit", "Filler", "Someone", "https://cdn/g.mp3")},
		},
	}
	r := newResolver(fs, catalog.DefaultPool())

	track := r.ResolveOne(context.Background(), rec("Muse", "Starlight", "Rock"), 0)

	if track.ID != "exact" {
		t.Fatalf("resolved %q, want exact catalog entry", track.ID)
	}
	if track.Reasoning != "matches recent plays" {
		t.Errorf("exact match should keep original reasoning, got %q", track.Reasoning)
	}
	if track.Energy != 7 {
		t.Errorf("Energy = %d, want carried-over 7", track.Energy)
	}
}

func TestAlternateQueryExactBeatsEarlierMediaTrack(t *testing.T) {
	fs := &fakeSearcher{
		results: map[string][]catalog.Track{
			// Tier 1 query misses entirely.
			"Muse Starlight": nil,
			// First alternate variant only has an unrelated playable track.
			"Starlight Muse": {catalogTrack("media-only", "Unrelated Song", "Other Artist", "https://cdn/m.mp3")},
			// A later variant contains the exact match.
			"Muse": {catalogTrack("exact-late", "Starlight", "Muse", "")},
		},
	}
	r := newResolver(fs, catalog.DefaultPool())

	track := r.ResolveOne(context.Background(), rec("Muse", "Starlight", "Rock"), 0)

	if track.ID != "exact-late" {
		t.Fatalf("resolved %q, want exact match from later query variant", track.ID)
	}
}

func TestAlternateQueryRemembersFirstMediaTrack(t *testing.T) {
	fs := &fakeSearcher{
		results: map[string][]catalog.Track{
			"Starlight Muse": {
				catalogTrack("no-media", "Something", "Someone", ""),
				catalogTrack("first-media", "Something Else", "Someone Else", "https://cdn/1.mp3"),
			},
			"Muse": {catalogTrack("second-media", "Another", "Band", "https://cdn/2.mp3")},
		},
	}
	r := newResolver(fs, catalog.DefaultPool())

	track := r.ResolveOne(context.Background(), rec("Muse", "Starlight", "Rock"), 0)

	if track.ID != "first-media" {
		t.Fatalf("resolved %q, want first track-with-media seen", track.ID)
	}
}

func TestGenreFallbackPrefersPlayable(t *testing.T) {
	fs := &fakeSearcher{
		genres: map[string][]catalog.Track{
			"Jazz": {
				catalogTrack("silent", "No Preview", "Quartet", ""),
				catalogTrack("playable", "Has Preview", "Trio", "https://cdn/j.mp3"),
			},
		},
	}
	r := newResolver(fs, catalog.DefaultPool())

	track := r.ResolveOne(context.Background(), rec("Nobody", "Nothing", "Jazz"), 0)

	if track.ID != "playable" {
		t.Fatalf("resolved %q, want playable genre substitute", track.ID)
	}
	if !strings.Contains(track.Reasoning, "similar") {
		t.Errorf("genre substitute should annotate reasoning, got %q", track.Reasoning)
	}
}

func TestGuaranteedPoolDeterminism(t *testing.T) {
	fs := &fakeSearcher{} // catalog has nothing at all
	pool := catalog.DefaultPool()
	r := newResolver(fs, pool)

	poolTracks, _ := pool.Tracks(context.Background())
	n := len(poolTracks)

	for run := 0; run < 3; run++ {
		for _, idx := range []int{0, 3, n, n + 2} {
			track := r.ResolveOne(context.Background(), rec("Ghost", "Unfindable", ""), idx)
			want := poolTracks[idx%n].ID
			if track.ID != want {
				t.Errorf("run %d index %d: resolved %q, want pool entry %q", run, idx, track.ID, want)
			}
			if track.MediaURL == "" {
				t.Errorf("index %d: pool track has empty media URL", idx)
			}
		}
	}
}

func TestPlaceholderWhenPoolUnreachable(t *testing.T) {
	fs := &fakeSearcher{err: errors.New("catalog down")}
	r := newResolver(fs, failingPool{})

	track := r.ResolveOne(context.Background(), rec("Muse", "Starlight", "Rock"), 4)

	if track.MediaURL == "" {
		t.Fatal("placeholder must carry a non-empty media URL")
	}
	if track.Artist != "Muse" || track.Title != "Starlight" {
		t.Errorf("placeholder should carry the original artist/title, got %q by %q", track.Title, track.Artist)
	}
	if !strings.Contains(track.Reasoning, "placeholder") {
		t.Errorf("Reasoning = %q, want placeholder annotation", track.Reasoning)
	}
}

func TestResolveBatchEmptyCatalogStillFullLength(t *testing.T) {
	fs := &fakeSearcher{}
	pool := catalog.DefaultPool()
	r := newResolver(fs, pool)

	recs := make([]models.AbstractRecommendation, 5)
	for i := range recs {
		recs[i] = rec("Unknown", "Missing", "")
	}

	tracks := r.ResolveBatch(context.Background(), recs, nil)

	if len(tracks) != 5 {
		t.Fatalf("got %d tracks, want 5", len(tracks))
	}

	poolTracks, _ := pool.Tracks(context.Background())
	for i, tr := range tracks {
		if tr.MediaURL == "" {
			t.Errorf("track %d has empty media URL", i)
		}
		if want := poolTracks[i%len(poolTracks)].ID; tr.ID != want {
			t.Errorf("track %d = %q, want pool entry %q", i, tr.ID, want)
		}
	}
}

func TestResolveBatchPreservesOrder(t *testing.T) {
	fs := &fakeSearcher{
		results: map[string][]catalog.Track{
			"A One":   {catalogTrack("a", "One", "A", "https://cdn/a.mp3")},
			"B Two":   {catalogTrack("b", "Two", "B", "https://cdn/b.mp3")},
			"C Three": {catalogTrack("c", "Three", "C", "https://cdn/c.mp3")},
		},
	}
	r := newResolver(fs, catalog.DefaultPool())

	recs := []models.AbstractRecommendation{
		rec("A", "One", "Pop"),
		rec("B", "Two", "Pop"),
		rec("C", "Three", "Pop"),
	}

	tracks := r.ResolveBatch(context.Background(), recs, nil)

	want := []string{"a", "b", "c"}
	for i, tr := range tracks {
		if tr.ID != want[i] {
			t.Errorf("track %d = %q, want %q", i, tr.ID, want[i])
		}
	}
}

func TestResolveBatchReportsProgress(t *testing.T) {
	fs := &fakeSearcher{}
	r := newResolver(fs, catalog.DefaultPool())

	recs := make([]models.AbstractRecommendation, 4)
	for i := range recs {
		recs[i] = rec("X", "Y", "")
	}

	var calls atomic.Int32
	var sawTotal atomic.Int32
	tracks := r.ResolveBatch(context.Background(), recs, func(done, total int) {
		calls.Add(1)
		if done == total {
			sawTotal.Add(1)
		}
	})

	if len(tracks) != 4 {
		t.Fatalf("got %d tracks, want 4", len(tracks))
	}
	if calls.Load() != 4 {
		t.Errorf("progress calls = %d, want 4", calls.Load())
	}
	if sawTotal.Load() != 1 {
		t.Errorf("done==total reported %d times, want 1", sawTotal.Load())
	}
}
