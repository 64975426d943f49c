// Package session keeps the in-memory registry of active campaign
// compositions, keyed by opaque session IDs.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Centro-Juridico-Internacional/campanero/internal/campaign"
)

type entry struct {
	campaign *campaign.Campaign
	lastSeen time.Time
}

// Store holds active campaigns. Every access refreshes the session's
// last-seen time; a background janitor drops sessions idle longer than
// the configured max age.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	maxAge   time.Duration
	logger   *slog.Logger
}

// NewStore creates a session store.
func NewStore(maxAge time.Duration, logger *slog.Logger) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		maxAge:   maxAge,
		logger:   logger.With("component", "sessions"),
	}
}

// Create registers a campaign under a fresh session ID.
func (s *Store) Create(c *campaign.Campaign) string {
	id := uuid.New().String()
	s.mu.Lock()
	s.sessions[id] = &entry{campaign: c, lastSeen: time.Now()}
	s.mu.Unlock()
	s.logger.Info("session created", "session_id", id)
	return id
}

// Get returns the campaign for a session ID and refreshes its last-seen
// time. The second return is false for unknown or expired sessions.
func (s *Store) Get(id string) (*campaign.Campaign, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = time.Now()
	return e.campaign, true
}

// Delete drops a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		s.logger.Info("session deleted", "session_id", id)
	}
}

// Len returns the number of active sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Run sweeps idle sessions until the context is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sweep(); n > 0 {
				s.logger.Info("expired sessions removed", "count", n)
			}
		}
	}
}

func (s *Store) sweep() int {
	cutoff := time.Now().Add(-s.maxAge)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
