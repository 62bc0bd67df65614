// internal/store/memory.go
//
// In-memory registry of live game sessions.
// Fed by session events; read by the HTTP status surface.
//
// Characteristics:
//   - Stores one Summary per session ID.
//   - Concurrency-safe via RWMutex (handlers write, HTTP readers read).
//   - Entries are removed when their session closes.
//   - Errors are returned for missing session IDs on Get().

package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/robalobadob/pacman/internal/game"
	"github.com/robalobadob/pacman/internal/session"
)

// ErrNotFound is returned by Get for unknown or closed sessions.
var ErrNotFound = errors.New("not found")

// Summary is what observers can see of a running session.
type Summary struct {
	ID              string        `json:"id"`
	User            string        `json:"user"`
	StartedAt       time.Time     `json:"startedAt"`
	Moves           int           `json:"moves"`
	Score           int32         `json:"score"`
	FruitsRemaining int32         `json:"fruitsRemaining"`
	Finished        bool          `json:"finished"`
	ElapsedMillis   int64         `json:"elapsedMillis,omitempty"`
	Snapshot        game.Snapshot `json:"-"`
}

// Store defines the read side used by the status endpoints.
type Store interface {
	session.Sink

	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (Summary, error)

	// List returns every live session, oldest first.
	List(ctx context.Context) []Summary
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex        // guards sessions map
	sessions map[string]*Summary // keyed by session ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*Summary)}
}

// Emit applies one session event.
func (m *memory) Emit(e session.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch ev := e.(type) {
	case session.Started:
		m.sessions[ev.ID] = &Summary{
			ID:              ev.ID,
			User:            ev.User,
			StartedAt:       ev.At,
			FruitsRemaining: ev.Snapshot.Remaining,
			Snapshot:        ev.Snapshot,
		}
	case session.MoveApplied:
		if s, ok := m.sessions[ev.ID]; ok {
			s.Moves++
			s.Score = ev.Step.Score
			s.FruitsRemaining = ev.Step.FruitsRemaining
			s.Snapshot = ev.Snapshot
		}
	case session.GameEnded:
		if s, ok := m.sessions[ev.ID]; ok {
			s.Finished = true
			s.Score = ev.TotalScore
			s.ElapsedMillis = ev.ElapsedMillis
		}
	case session.Closed:
		delete(m.sessions, ev.ID)
	}
}

// Get looks up a session by ID and returns a copy.
func (m *memory) Get(ctx context.Context, id string) (Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return *s, nil
	}
	return Summary{}, ErrNotFound
}

func (m *memory) List(ctx context.Context) []Summary {
	m.mu.RLock()
	out := make([]Summary, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, *s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}
