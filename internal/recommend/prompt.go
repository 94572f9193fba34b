package recommend

import (
	"fmt"
	"strings"

	"github.com/moodcraft/backend/internal/models"
)

const systemPrompt = "You are a music curator. Reply with a single JSON object and nothing else."

// outputSchema tells the model exactly which fields to produce. The parser
// rejects replies missing the recommendations array.
const outputSchema = `Respond with JSON of this exact shape:
{
  "playlistName": string,
  "description": string,
  "recommendations": [
    {"artist": string, "title": string, "genre": string, "energy": integer 1-10, "mood": string, "reasoning": string}
  ],
  "totalEnergy": integer 1-10,
  "dominantMood": string
}`

// buildPrompt renders the full generation prompt for a playlist request.
func buildPrompt(req models.PlaylistRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create a %d-track playlist.\n", req.Length)
	fmt.Fprintf(&b, "Favorite genres: %s.\n", strings.Join(req.Genres, ", "))
	fmt.Fprintf(&b, "Mood: %s. Time of day: %s.\n", req.Mood, req.TimeOfDay)

	if digest := recentTracksDigest(req.RecentTracks); digest != "" {
		fmt.Fprintf(&b, "The listener recently played: %s.\n", digest)
	}

	if len(req.ExcludedArtists) > 0 {
		fmt.Fprintf(&b, "Never include these artists: %s.\n", strings.Join(req.ExcludedArtists, ", "))
	}

	if req.Discovery {
		b.WriteString("Pick roughly 70% familiar tracks close to the listener's taste and 30% new discoveries.\n")
	} else {
		b.WriteString("Pick only familiar tracks close to the listener's taste; no discoveries.\n")
	}

	b.WriteString(outputSchema)
	return b.String()
}

// buildSimplifiedPrompt is used for the one-shot fallback model after a
// rate limit. It drops the recent-track digest and discovery nuance to
// keep the request cheap.
func buildSimplifiedPrompt(req models.PlaylistRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a %d-track %s playlist in these genres: %s.\n",
		req.Length, req.Mood, strings.Join(req.Genres, ", "))
	if len(req.ExcludedArtists) > 0 {
		fmt.Fprintf(&b, "Never include these artists: %s.\n", strings.Join(req.ExcludedArtists, ", "))
	}
	b.WriteString(outputSchema)
	return b.String()
}

// buildReplacementPrompt asks for a single track that fits between the
// neighbors of the slot being replaced.
func buildReplacementPrompt(hint ReplacementHint) string {
	var b strings.Builder

	b.WriteString("Recommend exactly one track.\n")
	if hint.Mood != "" {
		fmt.Fprintf(&b, "It must fit a %s playlist.\n", hint.Mood)
	}
	if len(hint.Genres) > 0 {
		fmt.Fprintf(&b, "Preferred genres: %s.\n", strings.Join(hint.Genres, ", "))
	}
	if hint.Previous != nil {
		fmt.Fprintf(&b, "It plays right after %q by %s.\n", hint.Previous.Title, hint.Previous.Artist)
	}
	if hint.Next != nil {
		fmt.Fprintf(&b, "It plays right before %q by %s.\n", hint.Next.Title, hint.Next.Artist)
	}
	if len(hint.ExcludedArtists) > 0 {
		fmt.Fprintf(&b, "Never pick these artists: %s.\n", strings.Join(hint.ExcludedArtists, ", "))
	}

	b.WriteString(`Respond with JSON of this exact shape:
{"recommendations": [{"artist": string, "title": string, "genre": string, "energy": integer 1-10, "mood": string, "reasoning": string}]}`)
	return b.String()
}

// recentTracksDigest renders recent plays as a short natural-language list.
func recentTracksDigest(tracks []models.RecentTrack) string {
	if len(tracks) == 0 {
		return ""
	}
	const maxDigest = 10
	if len(tracks) > maxDigest {
		tracks = tracks[:maxDigest]
	}
	parts := make([]string, len(tracks))
	for i, t := range tracks {
		parts[i] = fmt.Sprintf("%q by %s", t.Title, t.Artist)
	}
	return strings.Join(parts, ", ")
}
