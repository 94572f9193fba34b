package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"github.com/moodcraft/backend/internal/models"
)

// Fingerprint returns a stable cache key for a request. Set-valued fields
// are sorted case-insensitively before serialization so logically equal
// requests always produce the same key.
func Fingerprint(req models.PlaylistRequest) string {
	canonical := req.Clone()
	sortFold(canonical.Genres)
	sortFold(canonical.ExcludedArtists)

	// Field order in the struct is fixed, so encoding/json output is
	// deterministic for a canonicalized request.
	payload, _ := json.Marshal(canonical)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func sortFold(values []string) {
	sort.Slice(values, func(i, j int) bool {
		return strings.ToLower(values[i]) < strings.ToLower(values[j])
	})
}
