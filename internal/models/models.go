// Package models defines the domain types shared across the playlist
// generation pipeline and the HTTP request/response shapes built from them.
package models

import "time"

// Mood is the listening mood a playlist is generated for.
type Mood string

const (
	MoodEnergetic Mood = "energetic"
	MoodChill     Mood = "chill"
	MoodFocus     Mood = "focus"
	MoodParty     Mood = "party"
	MoodWorkout   Mood = "workout"
	MoodSleep     Mood = "sleep"
)

// Valid reports whether m is one of the known moods.
func (m Mood) Valid() bool {
	switch m {
	case MoodEnergetic, MoodChill, MoodFocus, MoodParty, MoodWorkout, MoodSleep:
		return true
	}
	return false
}

// TimeOfDay is the coarse wall-clock bucket a request was made in.
type TimeOfDay string

const (
	TimeMorning   TimeOfDay = "morning"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeEvening   TimeOfDay = "evening"
	TimeNight     TimeOfDay = "night"
)

// RecentTrack is a lightweight summary of a track the listener played recently.
type RecentTrack struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Genre  string `json:"genre,omitempty"`
	Energy int    `json:"energy,omitempty"`
}

// PlaylistRequest is the fully-defaulted input to a generation run.
// It is immutable once built; its canonical serialization is the cache key.
type PlaylistRequest struct {
	Genres          []string      `json:"genres"`
	RecentTracks    []RecentTrack `json:"recentTracks,omitempty"`
	Mood            Mood          `json:"mood"`
	TimeOfDay       TimeOfDay     `json:"timeOfDay"`
	Length          int           `json:"length"`
	ExcludedArtists []string      `json:"excludedArtists,omitempty"`
	Discovery       bool          `json:"discovery"`
}

// Clone returns a deep copy so feedback-driven mutation never touches
// the caller's request.
func (r PlaylistRequest) Clone() PlaylistRequest {
	out := r
	out.Genres = append([]string(nil), r.Genres...)
	out.RecentTracks = append([]RecentTrack(nil), r.RecentTracks...)
	out.ExcludedArtists = append([]string(nil), r.ExcludedArtists...)
	return out
}

// ProfileSnapshot is the raw preference data the request builder works from.
// Every field may be empty; the builder fills in defaults.
type ProfileSnapshot struct {
	FavoriteGenres  []string      `json:"favoriteGenres,omitempty"`
	RecentTracks    []RecentTrack `json:"recentTracks,omitempty"`
	Mood            Mood          `json:"mood,omitempty"`
	Length          int           `json:"length,omitempty"`
	ExcludedArtists []string      `json:"excludedArtists,omitempty"`
	Discovery       *bool         `json:"discovery,omitempty"`
}

// AbstractRecommendation is one artist/title suggestion from the generative
// backend. It carries no catalog identifier and is never assumed playable.
type AbstractRecommendation struct {
	Artist    string `json:"artist"`
	Title     string `json:"title"`
	Genre     string `json:"genre"`
	Energy    int    `json:"energy"`
	Mood      string `json:"mood"`
	Reasoning string `json:"reasoning,omitempty"`
}

// ResolvedTrack is a concrete, playable catalog entry matched to one
// recommendation. MediaURL is always non-empty in a finished playlist.
type ResolvedTrack struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Album       string `json:"album,omitempty"`
	DurationSec int    `json:"durationSec"`
	CoverURL    string `json:"coverUrl,omitempty"`
	MediaURL    string `json:"mediaUrl"`
	Genre       string `json:"genre,omitempty"`
	Energy      int    `json:"energy"`
	Source      string `json:"source"`
	Reasoning   string `json:"reasoning,omitempty"`
}

// SourceAI marks tracks produced by the recommendation pipeline.
const SourceAI = "ai-recommended"

// GeneratedPlaylist is the finished output of a generation run.
type GeneratedPlaylist struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Tracks        []ResolvedTrack `json:"tracks"`
	DurationSec   int             `json:"durationSec"`
	AverageEnergy int             `json:"averageEnergy"`
	DominantMood  string          `json:"dominantMood"`
	CreatedAt     time.Time       `json:"createdAt"`
	Source        string          `json:"source"`
}

// Feedback steers a regeneration run. All fields optional.
type Feedback struct {
	// EnergyDelta is -1 (calmer), 0 (unchanged) or +1 (more energetic).
	EnergyDelta     int      `json:"energyDelta,omitempty"`
	Mood            Mood     `json:"mood,omitempty"`
	DislikedArtists []string `json:"dislikedArtists,omitempty"`
}

// Progress is an advisory signal emitted while a generation job runs.
type Progress struct {
	Percent int    `json:"percent"`
	Step    string `json:"step"`
}

// HTTP request/response shapes.

type GenerateRequest struct {
	Profile ProfileSnapshot `json:"profile"`
	JobID   string          `json:"jobId,omitempty"`
}

type RegenerateRequest struct {
	Request  PlaylistRequest `json:"request"`
	Feedback *Feedback       `json:"feedback,omitempty"`
	JobID    string          `json:"jobId,omitempty"`
}

type ReplaceTrackRequest struct {
	Request PlaylistRequest `json:"request"`
	Index   int             `json:"index"`
}

type TokenRequest struct {
	ListenerID string `json:"listenerId"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type PlaylistSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	TrackCount   int       `json:"trackCount"`
	DurationSec  int       `json:"durationSec"`
	DominantMood string    `json:"dominantMood"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
