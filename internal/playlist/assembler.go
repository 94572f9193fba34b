// Package playlist assembles resolved tracks and the generative response's
// aggregate metadata into a finished playlist.
package playlist

import (
	"time"

	"github.com/google/uuid"

	"github.com/moodcraft/backend/internal/models"
	"github.com/moodcraft/backend/internal/recommend"
)

// Assemble builds a GeneratedPlaylist. Name, description, average energy
// and dominant mood come from the generative response, not from the
// resolved tracks; the resolver's matches are approximations of the
// recommendations, not a re-derivation of their musical character.
func Assemble(resp *recommend.Response, tracks []models.ResolvedTrack) models.GeneratedPlaylist {
	name := resp.PlaylistName
	if name == "" {
		name = "Generated Mix"
	}

	return models.GeneratedPlaylist{
		ID:            uuid.NewString(),
		Name:          name,
		Description:   resp.Description,
		Tracks:        tracks,
		DurationSec:   TotalDuration(tracks),
		AverageEnergy: resp.TotalEnergy,
		DominantMood:  resp.DominantMood,
		CreatedAt:     time.Now().UTC(),
		Source:        models.SourceAI,
	}
}

// TotalDuration sums track durations in seconds.
func TotalDuration(tracks []models.ResolvedTrack) int {
	total := 0
	for _, t := range tracks {
		total += t.DurationSec
	}
	return total
}
