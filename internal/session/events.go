// internal/session/events.go
//
// Typed notifications emitted by a Session.
// Observers (live session store, stats recorder, logs) implement Sink.

package session

import (
	"time"

	"github.com/robalobadob/pacman/internal/game"
)

// Event is one of Started, MoveApplied, GameEnded or Closed.
type Event interface {
	SessionID() string
}

// Started is emitted once authentication succeeds.
type Started struct {
	ID       string
	User     string
	At       time.Time
	Snapshot game.Snapshot
}

// MoveApplied is emitted after every accepted MOVE_COMMAND.
type MoveApplied struct {
	ID       string
	Step     game.StepResult
	Snapshot game.Snapshot
}

// GameEnded is emitted when the last fruit is eaten.
type GameEnded struct {
	ID            string
	User          string
	TotalScore    int32
	ElapsedMillis int64
	FruitsEaten   []string
}

// Closed is emitted exactly once when the session is torn down, finished or not.
type Closed struct {
	ID       string
	Finished bool
}

func (e Started) SessionID() string     { return e.ID }
func (e MoveApplied) SessionID() string { return e.ID }
func (e GameEnded) SessionID() string   { return e.ID }
func (e Closed) SessionID() string      { return e.ID }

// Sink receives session events. Emit is called from the session's own goroutine
// and must not block for long.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Emit calls f(e).
func (f SinkFunc) Emit(e Event) { f(e) }

// Sinks fans one event out to several sinks in order.
type Sinks []Sink

// Emit forwards e to every non-nil sink.
func (s Sinks) Emit(e Event) {
	for _, sk := range s {
		if sk != nil {
			sk.Emit(e)
		}
	}
}

type discard struct{}

func (discard) Emit(Event) {}
