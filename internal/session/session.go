// internal/session/session.go
//
// Per-connection game session.
// Responsibilities:
//   - Drive the AWAIT_AUTH -> PLAY -> TERMINAL state machine.
//   - Own the board and the game clock for exactly one player.
//   - Translate engine results into wire responses.
//   - Emit typed events to a Sink.
//
// Notes:
//   - A Session is used by a single goroutine (its connection handler); it holds no locks.
//   - Protocol violations are reported as errors; the caller closes the socket.

package session

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/robalobadob/pacman/internal/auth"
	"github.com/robalobadob/pacman/internal/clock"
	"github.com/robalobadob/pacman/internal/game"
	"github.com/robalobadob/pacman/internal/wire"
)

// Phase is the session lifecycle state.
type Phase uint8

const (
	AwaitAuth Phase = iota
	Play
	Terminal
	Closed
)

func (p Phase) String() string {
	switch p {
	case AwaitAuth:
		return "AWAIT_AUTH"
	case Play:
		return "PLAY"
	case Terminal:
		return "TERMINAL"
	case Closed:
		return "CLOSED"
	}
	return "UNKNOWN"
}

var (
	// ErrWrongPhase reports a request that the current phase does not accept.
	ErrWrongPhase = errors.New("session: request not allowed in this phase")
	// ErrNotFinished is returned by Final before the last fruit is eaten.
	ErrNotFinished = errors.New("session: game not finished")
	// ErrInvalidDirection rejects any move other than UP, DOWN, LEFT or RIGHT.
	ErrInvalidDirection = errors.New("session: invalid direction")
)

// Config wires a Session to its collaborators. Only Auth is required.
type Config struct {
	ID       string
	Auth     auth.Authenticator
	NewBoard func() *game.Board
	Clock    *clock.Clock
	Sink     Sink
	Now      func() time.Time
}

// Session is the state of one client connection.
type Session struct {
	id       string
	auth     auth.Authenticator
	newBoard func() *game.Board
	clock    *clock.Clock
	sink     Sink
	now      func() time.Time

	phase Phase
	user  string
	board *game.Board
}

// New returns a session waiting for AUTH_REQUEST.
func New(cfg Config) *Session {
	s := &Session{
		id:       cfg.ID,
		auth:     cfg.Auth,
		newBoard: cfg.NewBoard,
		clock:    cfg.Clock,
		sink:     cfg.Sink,
		now:      cfg.Now,
	}
	if s.newBoard == nil {
		rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		s.newBoard = func() *game.Board { return game.NewRandomBoard(game.DefaultBounds, rng) }
	}
	if s.clock == nil {
		s.clock = clock.New()
	}
	if s.sink == nil {
		s.sink = discard{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Session) ID() string          { return s.id }
func (s *Session) Phase() Phase        { return s.phase }
func (s *Session) User() string        { return s.user }
func (s *Session) Clock() *clock.Clock { return s.clock }

// Authenticate handles the first message of a connection.
//
// On success the clock starts, a fresh board is created and the phase becomes PLAY.
// On failure the session is closed; the caller sends the response and hangs up.
func (s *Session) Authenticate(ctx context.Context, req *wire.AuthRequest) (*wire.AuthResponse, error) {
	if s.phase != AwaitAuth {
		return nil, ErrWrongPhase
	}
	res := s.auth.Authenticate(ctx, req.User, req.Password)
	if !res.OK {
		s.Close()
		return &wire.AuthResponse{OK: false, Message: res.Message}, nil
	}

	s.user = res.User
	s.board = s.newBoard()
	s.clock.Start()
	s.phase = Play
	s.sink.Emit(Started{ID: s.id, User: s.user, At: s.now(), Snapshot: s.board.Snapshot()})
	return &wire.AuthResponse{OK: true, Message: res.Message}, nil
}

// Move applies one MOVE_COMMAND. The step that eats the last fruit stops the
// clock and moves the session to TERMINAL.
func (s *Session) Move(dir game.Direction) (*wire.MoveResponse, error) {
	if s.phase != Play {
		return nil, ErrWrongPhase
	}
	if !dir.Valid() {
		return nil, ErrInvalidDirection
	}

	step := s.board.Apply(dir)
	s.sink.Emit(MoveApplied{ID: s.id, Step: step, Snapshot: s.board.Snapshot()})

	if step.GameOver {
		s.clock.Stop()
		s.phase = Terminal
		s.sink.Emit(GameEnded{
			ID:            s.id,
			User:          s.user,
			TotalScore:    s.board.Score,
			ElapsedMillis: s.clock.ElapsedMillis(),
			FruitsEaten:   s.board.EatenNames(),
		})
	}
	return wire.NewMoveResponse(step), nil
}

// Final builds the FINAL_RESPONSE once the game is over.
func (s *Session) Final() (*wire.FinalResponse, error) {
	if s.phase != Terminal {
		return nil, ErrNotFinished
	}
	return &wire.FinalResponse{
		PlayerName:    s.user,
		TotalScore:    s.board.Score,
		ElapsedMillis: s.clock.ElapsedMillis(),
		FruitsEaten:   s.board.EatenNames(),
	}, nil
}

// Snapshot copies the board. ok is false before authentication.
func (s *Session) Snapshot() (snap game.Snapshot, ok bool) {
	if s.board == nil {
		return game.Snapshot{}, false
	}
	return s.board.Snapshot(), true
}

// Close releases the board and emits Closed. Calling it again is a no-op.
func (s *Session) Close() {
	if s.phase == Closed {
		return
	}
	finished := s.phase == Terminal
	s.clock.Stop()
	s.phase = Closed
	s.board = nil
	s.sink.Emit(Closed{ID: s.id, Finished: finished})
}
