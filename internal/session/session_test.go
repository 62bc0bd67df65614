package session

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/robalobadob/pacman/internal/auth"
	"github.com/robalobadob/pacman/internal/clock"
	"github.com/robalobadob/pacman/internal/game"
	"github.com/robalobadob/pacman/internal/wire"
)

type recorder struct{ events []Event }

func (r *recorder) Emit(e Event) { r.events = append(r.events, e) }

// lineBoard puts four fruits on Pac-Man's row so that moving RIGHT eats
// CHERRY on move 1, APPLE on move 5, BELL on move 10 and MELON on move 15.
func lineBoard() *game.Board {
	return game.NewBoard(game.DefaultBounds, []game.Fruit{
		{Type: game.Cherry, Pos: game.Position{X: 352, Y: 230}},
		{Type: game.Apple, Pos: game.Position{X: 380, Y: 230}},
		{Type: game.Bell, Pos: game.Position{X: 400, Y: 230}},
		{Type: game.Melon, Pos: game.Position{X: 420, Y: 230}},
	})
}

type fixture struct {
	s   *Session
	rec *recorder
	now time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{rec: &recorder{}, now: time.Unix(1_700_000_000, 0)}
	f.s = New(Config{
		ID:       "s-1",
		Auth:     auth.NewService(auth.NewMemorySource(map[string]string{"alice": "secret"})),
		NewBoard: lineBoard,
		Clock:    clock.NewWithSource(func() time.Time { return f.now }),
		Sink:     f.rec,
	})
	return f
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	res, err := f.s.Authenticate(context.Background(), &wire.AuthRequest{User: "alice", Password: "secret"})
	if err != nil || !res.OK {
		t.Fatalf("login = %+v, %v", res, err)
	}
}

func TestAuthFailureClosesSession(t *testing.T) {
	f := newFixture(t)
	res, err := f.s.Authenticate(context.Background(), &wire.AuthRequest{User: "alice", Password: "wrong"})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if res.OK || res.Message != auth.MsgInvalid {
		t.Fatalf("response = %+v", res)
	}
	if f.s.Phase() != Closed {
		t.Fatalf("phase = %v, want CLOSED", f.s.Phase())
	}
	if _, err := f.s.Move(game.Right); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("move after failed auth err = %v", err)
	}
	if len(f.rec.events) != 1 {
		t.Fatalf("events = %#v, want one Closed", f.rec.events)
	}
	if c, ok := f.rec.events[0].(Closed); !ok || c.Finished {
		t.Fatalf("event = %#v", f.rec.events[0])
	}
}

func TestMoveBeforeAuthIsRejected(t *testing.T) {
	f := newFixture(t)
	if _, err := f.s.Move(game.Up); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("err = %v, want ErrWrongPhase", err)
	}
	if _, err := f.s.Final(); !errors.Is(err, ErrNotFinished) {
		t.Fatalf("Final err = %v, want ErrNotFinished", err)
	}
}

func TestSecondAuthIsRejected(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	_, err := f.s.Authenticate(context.Background(), &wire.AuthRequest{User: "alice", Password: "secret"})
	if !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("err = %v, want ErrWrongPhase", err)
	}
}

func TestNoneDirectionIsProtocolViolation(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	if _, err := f.s.Move(game.None); !errors.Is(err, ErrInvalidDirection) {
		t.Fatalf("err = %v, want ErrInvalidDirection", err)
	}
}

func TestEatInOneStep(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	got, err := f.s.Move(game.Right)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	want := &wire.MoveResponse{PacX: 354, PacY: 230, Score: 100, AteFruit: true, PointsGained: 100, FruitsRemaining: 3}
	if *got != *want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestPlayToTerminal(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	var last *wire.MoveResponse
	for i := 1; i <= 15; i++ {
		f.now = f.now.Add(100 * time.Millisecond)
		r, err := f.s.Move(game.Right)
		if err != nil {
			t.Fatalf("move %d: %v", i, err)
		}
		if r.GameOver != (i == 15) {
			t.Fatalf("move %d gameOver = %v", i, r.GameOver)
		}
		last = r
	}
	if last.FruitsRemaining != 0 || last.Score != 4800 || last.PacX != 410 {
		t.Fatalf("last response = %+v", last)
	}
	if f.s.Phase() != Terminal {
		t.Fatalf("phase = %v, want TERMINAL", f.s.Phase())
	}

	// the clock is stopped; later time must not count
	f.now = f.now.Add(time.Hour)
	final, err := f.s.Final()
	if err != nil {
		t.Fatalf("Final: %v", err)
	}
	want := &wire.FinalResponse{
		PlayerName:    "alice",
		TotalScore:    4800,
		ElapsedMillis: 1500,
		FruitsEaten:   []string{"CHERRY", "APPLE", "BELL", "MELON"},
	}
	if !reflect.DeepEqual(final, want) {
		t.Fatalf("final = %+v, want %+v", final, want)
	}

	if _, err := f.s.Move(game.Right); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("move after game over err = %v", err)
	}

	f.s.Close()
	f.s.Close()

	var started, moves, ended, closed int
	for _, e := range f.rec.events {
		switch ev := e.(type) {
		case Started:
			started++
			if ev.User != "alice" || ev.Snapshot.Remaining != 4 {
				t.Fatalf("started = %+v", ev)
			}
		case MoveApplied:
			moves++
		case GameEnded:
			ended++
			if ev.TotalScore != 4800 || ev.ElapsedMillis != 1500 {
				t.Fatalf("ended = %+v", ev)
			}
		case Closed:
			closed++
			if !ev.Finished {
				t.Fatalf("closed = %+v, want finished", ev)
			}
		}
		if e.SessionID() != "s-1" {
			t.Fatalf("event id = %q", e.SessionID())
		}
	}
	if started != 1 || moves != 15 || ended != 1 || closed != 1 {
		t.Fatalf("events: started=%d moves=%d ended=%d closed=%d", started, moves, ended, closed)
	}
}

func TestSinksFanOut(t *testing.T) {
	var a, b int
	s := Sinks{SinkFunc(func(Event) { a++ }), nil, SinkFunc(func(Event) { b++ })}
	s.Emit(Closed{ID: "x"})
	if a != 1 || b != 1 {
		t.Fatalf("a=%d b=%d, want 1 1", a, b)
	}
}
