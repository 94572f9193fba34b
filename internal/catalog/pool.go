package catalog

import (
	"context"

	"github.com/moodcraft/backend/internal/models"
)

// PoolSource supplies the guaranteed-playable fallback tracks. A source
// may be I/O backed and can therefore fail; the resolver degrades to a
// synthesized placeholder when it does.
type PoolSource interface {
	Tracks(ctx context.Context) ([]models.ResolvedTrack, error)
}

// StaticPool is a PoolSource over a fixed in-memory list. It never fails.
type StaticPool struct {
	tracks []models.ResolvedTrack
}

// NewStaticPool creates a pool from the given tracks.
func NewStaticPool(tracks []models.ResolvedTrack) *StaticPool {
	return &StaticPool{tracks: tracks}
}

// Tracks returns the pool contents. The slice is shared; callers must not
// mutate entries.
func (p *StaticPool) Tracks(_ context.Context) ([]models.ResolvedTrack, error) {
	return p.tracks, nil
}

// DemoMediaURL is the known-good media URL used by pool entries and by the
// absolute-last-resort placeholder.
const DemoMediaURL = "https://media.moodcraft.example/demo/fallback.mp3"

// DefaultPool returns the bundled pool of pre-vetted playable tracks.
func DefaultPool() *StaticPool {
	return NewStaticPool([]models.ResolvedTrack{
		{ID: "pool-001", Title: "Golden Hour Drive", Artist: "The Harbor Lights", Album: "Coastal", DurationSec: 214, MediaURL: DemoMediaURL, Genre: "Indie"},
		{ID: "pool-002", Title: "Neon Afterglow", Artist: "Violet Static", Album: "City Signals", DurationSec: 198, MediaURL: DemoMediaURL, Genre: "Pop"},
		{ID: "pool-003", Title: "Paper Planes at Dawn", Artist: "Mira Quinn", Album: "Morning Letters", DurationSec: 243, MediaURL: DemoMediaURL, Genre: "Folk"},
		{ID: "pool-004", Title: "Static and Stone", Artist: "Grey Meridian", Album: "Fault Lines", DurationSec: 227, MediaURL: DemoMediaURL, Genre: "Rock"},
		{ID: "pool-005", Title: "Low Tide", Artist: "Cassette Summer", Album: "Driftwood", DurationSec: 186, MediaURL: DemoMediaURL, Genre: "Chill"},
		{ID: "pool-006", Title: "Midnight Arcade", Artist: "Pixel Courts", Album: "High Score", DurationSec: 205, MediaURL: DemoMediaURL, Genre: "Electronic"},
		{ID: "pool-007", Title: "Slow Orbit", Artist: "Luna Parkway", Album: "Apogee", DurationSec: 252, MediaURL: DemoMediaURL, Genre: "Ambient"},
		{ID: "pool-008", Title: "Copper Sky", Artist: "The Field Notes", Album: "Open Range", DurationSec: 219, MediaURL: DemoMediaURL, Genre: "Country"},
	})
}
