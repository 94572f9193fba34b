package engine

import (
	"testing"

	"github.com/moodcraft/backend/internal/models"
)

func baseRequest() models.PlaylistRequest {
	return models.PlaylistRequest{
		Genres:    []string{"Pop", "Rock"},
		Mood:      models.MoodEnergetic,
		TimeOfDay: models.TimeMorning,
		Length:    5,
		Discovery: true,
	}
}

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint(baseRequest())
	b := Fingerprint(baseRequest())
	if a != b {
		t.Errorf("identical requests produced different fingerprints: %s vs %s", a, b)
	}
}

func TestFingerprintIgnoresSetOrder(t *testing.T) {
	req1 := baseRequest()
	req1.Genres = []string{"Rock", "Pop"}
	req1.ExcludedArtists = []string{"B", "A"}

	req2 := baseRequest()
	req2.Genres = []string{"Pop", "Rock"}
	req2.ExcludedArtists = []string{"A", "B"}

	if Fingerprint(req1) != Fingerprint(req2) {
		t.Error("set ordering should not change the fingerprint")
	}
}

func TestFingerprintSensitiveToFields(t *testing.T) {
	base := Fingerprint(baseRequest())

	variants := []func(*models.PlaylistRequest){
		func(r *models.PlaylistRequest) { r.Length = 6 },
		func(r *models.PlaylistRequest) { r.Mood = models.MoodChill },
		func(r *models.PlaylistRequest) { r.Discovery = false },
		func(r *models.PlaylistRequest) { r.Genres = append(r.Genres, "Jazz") },
		func(r *models.PlaylistRequest) { r.ExcludedArtists = []string{"Someone"} },
	}

	for i, mutate := range variants {
		req := baseRequest()
		mutate(&req)
		if Fingerprint(req) == base {
			t.Errorf("variant %d should change the fingerprint", i)
		}
	}
}

func TestFingerprintDoesNotMutateRequest(t *testing.T) {
	req := baseRequest()
	req.Genres = []string{"Rock", "Pop"}

	Fingerprint(req)

	if req.Genres[0] != "Rock" || req.Genres[1] != "Pop" {
		t.Error("Fingerprint must not reorder the caller's slices")
	}
}
