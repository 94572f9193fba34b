// Package recommend turns a playlist request into an ordered list of
// abstract track recommendations via a generative text backend.
package recommend

import (
	"context"

	"github.com/moodcraft/backend/internal/models"
)

// Response is the validated, structured reply from the generative backend.
type Response struct {
	PlaylistName    string                          `json:"playlistName"`
	Description     string                          `json:"description"`
	Recommendations []models.AbstractRecommendation `json:"recommendations"`
	TotalEnergy     int                             `json:"totalEnergy"`
	DominantMood    string                          `json:"dominantMood"`
}

// ReplacementHint narrows a request down to a single track slot. The
// neighbor tracks give the model flow context around the replaced position.
type ReplacementHint struct {
	Mood            string
	Genres          []string
	Previous        *models.ResolvedTrack
	Next            *models.ResolvedTrack
	ExcludedArtists []string
}

// Provider is the generative backend capability. Implementations are
// selected via configuration, not compiled in.
type Provider interface {
	// Generate returns recommendations for the full request. The returned
	// list is never longer than req.Length; it may be shorter when the
	// model under-delivers (the engine pads missing slots at resolution).
	Generate(ctx context.Context, req models.PlaylistRequest) (*Response, error)

	// Replacement returns exactly one recommendation for a single slot.
	Replacement(ctx context.Context, hint ReplacementHint) (*models.AbstractRecommendation, error)
}
