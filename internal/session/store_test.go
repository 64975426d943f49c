package session

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Centro-Juridico-Internacional/campanero/internal/campaign"
)

func testStore(maxAge time.Duration) *Store {
	return NewStore(maxAge, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateAndGet(t *testing.T) {
	s := testStore(time.Hour)
	c := campaign.New(campaign.Options{})

	id := s.Create(c)
	if id == "" {
		t.Fatal("empty session id")
	}

	got, ok := s.Get(id)
	if !ok {
		t.Fatal("session not found after create")
	}
	if got != c {
		t.Error("Get returned a different campaign")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestGetUnknown(t *testing.T) {
	s := testStore(time.Hour)
	if _, ok := s.Get("no-such-session"); ok {
		t.Error("Get on unknown id returned ok")
	}
}

func TestDelete(t *testing.T) {
	s := testStore(time.Hour)
	id := s.Create(campaign.New(campaign.Options{}))

	s.Delete(id)
	if _, ok := s.Get(id); ok {
		t.Error("session still present after delete")
	}
	// Deleting twice is harmless.
	s.Delete(id)
}

func TestUniqueIDs(t *testing.T) {
	s := testStore(time.Hour)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := s.Create(campaign.New(campaign.Options{}))
		if seen[id] {
			t.Fatalf("duplicate session id %s", id)
		}
		seen[id] = true
	}
}

func TestSweep(t *testing.T) {
	s := testStore(50 * time.Millisecond)
	stale := s.Create(campaign.New(campaign.Options{}))
	time.Sleep(80 * time.Millisecond)
	fresh := s.Create(campaign.New(campaign.Options{}))

	if n := s.sweep(); n != 1 {
		t.Errorf("sweep removed %d sessions, want 1", n)
	}
	if _, ok := s.Get(stale); ok {
		t.Error("stale session survived sweep")
	}
	if _, ok := s.Get(fresh); !ok {
		t.Error("fresh session removed by sweep")
	}
}

func TestGetRefreshesLastSeen(t *testing.T) {
	s := testStore(100 * time.Millisecond)
	id := s.Create(campaign.New(campaign.Options{}))

	// Keep touching the session past its original expiry.
	for i := 0; i < 4; i++ {
		time.Sleep(40 * time.Millisecond)
		if _, ok := s.Get(id); !ok {
			t.Fatal("session expired despite activity")
		}
		s.sweep()
	}
	if _, ok := s.Get(id); !ok {
		t.Error("active session was swept")
	}
}
