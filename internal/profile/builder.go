// Package profile derives a complete playlist request from a raw preference
// snapshot. It is pure: no I/O, no failure modes, every optional field
// receives a defined default.
package profile

import (
	"sort"
	"strings"

	"github.com/moodcraft/backend/internal/models"
)

// defaultGenres seed a request when the listener has no stated preferences.
var defaultGenres = []string{"Pop", "Rock", "Indie"}

// moodForTime maps each time-of-day bucket to its default mood.
var moodForTime = map[models.TimeOfDay]models.Mood{
	models.TimeMorning:   models.MoodEnergetic,
	models.TimeAfternoon: models.MoodFocus,
	models.TimeEvening:   models.MoodChill,
	models.TimeNight:     models.MoodChill,
}

// Builder constructs PlaylistRequests with configurable defaults.
type Builder struct {
	defaultLength int
}

// NewBuilder creates a Builder. defaultLength is used when the snapshot
// does not request a length; values < 1 fall back to 10.
func NewBuilder(defaultLength int) *Builder {
	if defaultLength < 1 {
		defaultLength = 10
	}
	return &Builder{defaultLength: defaultLength}
}

// Build produces a complete PlaylistRequest from the snapshot and the wall
// clock hour (0-23). It always succeeds.
func (b *Builder) Build(snap models.ProfileSnapshot, hour int) models.PlaylistRequest {
	tod := TimeOfDayForHour(hour)

	mood := snap.Mood
	if !mood.Valid() {
		mood = moodForTime[tod]
	}

	genres := normalizeSet(snap.FavoriteGenres)
	if len(genres) == 0 {
		genres = append([]string(nil), defaultGenres...)
	}

	length := snap.Length
	if length < 1 {
		length = b.defaultLength
	}

	discovery := true
	if snap.Discovery != nil {
		discovery = *snap.Discovery
	}

	return models.PlaylistRequest{
		Genres:          genres,
		RecentTracks:    append([]models.RecentTrack(nil), snap.RecentTracks...),
		Mood:            mood,
		TimeOfDay:       tod,
		Length:          length,
		ExcludedArtists: normalizeSet(snap.ExcludedArtists),
		Discovery:       discovery,
	}
}

// TimeOfDayForHour buckets a wall-clock hour: [6,12) morning, [12,17)
// afternoon, [17,22) evening, everything else night.
func TimeOfDayForHour(hour int) models.TimeOfDay {
	switch {
	case hour >= 6 && hour < 12:
		return models.TimeMorning
	case hour >= 12 && hour < 17:
		return models.TimeAfternoon
	case hour >= 17 && hour < 22:
		return models.TimeEvening
	default:
		return models.TimeNight
	}
}

// normalizeSet trims, de-duplicates case-insensitively, and sorts so the
// same preference set always serializes identically for cache keying.
func normalizeSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
