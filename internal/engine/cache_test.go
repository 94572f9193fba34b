package engine

import (
	"testing"
	"time"

	"github.com/moodcraft/backend/internal/models"
)

func TestMemoryCachePutGet(t *testing.T) {
	c := newMemoryCache(time.Minute)
	p := &models.GeneratedPlaylist{ID: "p1"}

	c.Put("fp", p)

	got, ok := c.Get("fp")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.ID != "p1" {
		t.Errorf("ID = %q, want p1", got.ID)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	c := newMemoryCache(time.Minute)
	if _, ok := c.Get("missing"); ok {
		t.Error("expected cache miss")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := newMemoryCache(time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Put("fp", &models.GeneratedPlaylist{ID: "p1"})

	c.now = func() time.Time { return base.Add(30 * time.Second) }
	if _, ok := c.Get("fp"); !ok {
		t.Error("entry should still be live before TTL")
	}

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, ok := c.Get("fp"); ok {
		t.Error("entry should have expired")
	}
}

func TestMemoryCacheDropExpiredKeepsRefreshedEntry(t *testing.T) {
	c := newMemoryCache(time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Put("fp", &models.GeneratedPlaylist{ID: "stale"})

	// A concurrent Put can refresh the entry after a reader saw it
	// expired; the deferred delete must leave the fresh entry alone.
	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	c.Put("fp", &models.GeneratedPlaylist{ID: "fresh"})
	c.dropExpired("fp")

	got, ok := c.Get("fp")
	if !ok {
		t.Fatal("refreshed entry should survive the expired-read delete")
	}
	if got.ID != "fresh" {
		t.Errorf("ID = %q, want fresh", got.ID)
	}
}

func TestMemoryCacheInvalidate(t *testing.T) {
	c := newMemoryCache(time.Minute)
	c.Put("fp", &models.GeneratedPlaylist{ID: "p1"})
	c.Invalidate("fp")

	if _, ok := c.Get("fp"); ok {
		t.Error("entry should be gone after Invalidate")
	}
}
