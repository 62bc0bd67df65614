package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robalobadob/pacman/internal/game"
	"github.com/robalobadob/pacman/internal/session"
)

func TestMemoryTracksSessionLifecycle(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	t0 := time.Unix(1_700_000_000, 0)

	st.Emit(session.Started{ID: "b", User: "bob", At: t0.Add(time.Second), Snapshot: game.Snapshot{Remaining: 4}})
	st.Emit(session.Started{ID: "a", User: "alice", At: t0, Snapshot: game.Snapshot{Remaining: 4}})
	st.Emit(session.MoveApplied{ID: "a", Step: game.StepResult{Score: 100, FruitsRemaining: 3}})
	st.Emit(session.MoveApplied{ID: "missing", Step: game.StepResult{Score: 5}})

	got, err := st.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.User != "alice" || got.Moves != 1 || got.Score != 100 || got.FruitsRemaining != 3 {
		t.Fatalf("summary = %+v", got)
	}

	list := st.List(ctx)
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Fatalf("list = %+v, want a then b", list)
	}

	st.Emit(session.GameEnded{ID: "a", TotalScore: 4800, ElapsedMillis: 1500})
	got, _ = st.Get(ctx, "a")
	if !got.Finished || got.Score != 4800 || got.ElapsedMillis != 1500 {
		t.Fatalf("after end = %+v", got)
	}

	st.Emit(session.Closed{ID: "a", Finished: true})
	if _, err := st.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("closed session err = %v, want ErrNotFound", err)
	}
	if n := len(st.List(ctx)); n != 1 {
		t.Fatalf("list after close has %d entries, want 1", n)
	}
}
