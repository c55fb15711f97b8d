// Package session keeps short per-session chat history in memory.
package session

import (
	"sync"
	"time"

	"github.com/ashureev/campusguide/internal/domain"
)

// MaxTurns is the number of turns retained per session.
const MaxTurns = 6

type entry struct {
	turns    []domain.Turn
	lastSeen time.Time
}

// Store maps session IDs to their recent turns. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	maxTurns int
	now      func() time.Time
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*entry),
		maxTurns: MaxTurns,
		now:      time.Now,
	}
}

// Append adds a turn to the session, creating it if needed, and trims the
// history to the most recent MaxTurns entries.
func (s *Store) Append(sessionID string, turn domain.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		e = &entry{}
		s.sessions[sessionID] = e
	}
	e.turns = append(e.turns, turn)
	if over := len(e.turns) - s.maxTurns; over > 0 {
		e.turns = append(e.turns[:0:0], e.turns[over:]...)
	}
	e.lastSeen = s.now()
}

// Recent returns a copy of the last n turns of a session.
func (s *Store) Recent(sessionID string, n int) []domain.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[sessionID]
	if !ok || n <= 0 {
		return nil
	}
	turns := e.turns
	if n < len(turns) {
		turns = turns[len(turns)-n:]
	}
	return append([]domain.Turn(nil), turns...)
}

// History returns a copy of every retained turn of a session.
func (s *Store) History(sessionID string) []domain.Turn {
	return s.Recent(sessionID, s.maxTurns)
}

// Reset forgets a session. It reports whether the session existed.
func (s *Store) Reset(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	return ok
}

// Len returns the number of tracked sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// SweepIdle removes sessions untouched for longer than ttl and returns how
// many were removed. A non-positive ttl removes nothing.
func (s *Store) SweepIdle(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-ttl)

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
