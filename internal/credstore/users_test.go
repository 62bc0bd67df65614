package credstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/robalobadob/pacman/internal/auth"
	"github.com/robalobadob/pacman/internal/session"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "users.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSeedAndVerify(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	sum, err := s.Seed(ctx, map[string]string{"alice": "secret", "bob": "hunter2"})
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if sum.Inserted != 2 || sum.Existing != 0 {
		t.Fatalf("first seed = %+v, want 2 inserted", sum)
	}

	sum, err = s.Seed(ctx, map[string]string{"alice": "changed", "carol": "pw"})
	if err != nil {
		t.Fatalf("Seed again: %v", err)
	}
	if sum.Inserted != 1 || sum.Existing != 1 {
		t.Fatalf("second seed = %+v, want 1 inserted 1 existing", sum)
	}

	cases := []struct {
		user, pw string
		want     bool
	}{
		{"alice", "secret", true},
		{"alice", "changed", false},
		{"ALICE", "secret", true},
		{"carol", "pw", true},
		{"nobody", "pw", false},
	}
	for _, c := range cases {
		ok, err := s.Verify(ctx, c.user, c.pw)
		if err != nil {
			t.Fatalf("Verify(%s): %v", c.user, err)
		}
		if ok != c.want {
			t.Fatalf("Verify(%s,%s) = %v, want %v", c.user, c.pw, ok, c.want)
		}
	}
}

func TestAuthenticatorOverStore(t *testing.T) {
	s := openTemp(t)
	if _, err := s.Seed(context.Background(), map[string]string{"alice": "secret"}); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	svc := auth.NewService(s)
	if r := svc.Authenticate(context.Background(), "alice", "wrong"); r.OK || r.Message != auth.MsgInvalid {
		t.Fatalf("wrong password result = %+v", r)
	}
	if r := svc.Authenticate(context.Background(), "alice", "secret"); !r.OK {
		t.Fatalf("valid login rejected: %+v", r)
	}
}

func TestRecordGame(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	if _, err := s.Seed(ctx, map[string]string{"alice": "secret"}); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	for _, score := range []int32{1600, 900} {
		if err := s.RecordGame(ctx, "alice", score); err != nil {
			t.Fatalf("RecordGame: %v", err)
		}
	}
	u, err := s.FindUser(ctx, "alice")
	if err != nil {
		t.Fatalf("FindUser: %v", err)
	}
	if u.GamesPlayed != 2 || u.BestScore != 1600 {
		t.Fatalf("stats = %d games, best %d; want 2, 1600", u.GamesPlayed, u.BestScore)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := openTemp(t)
	if err := migrate(s.db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestStatsSinkRecordsFinishedGames(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	if _, err := s.Seed(ctx, map[string]string{"alice": "secret"}); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	sink := s.StatsSink()
	sink.Emit(session.Started{ID: "s-1", User: "alice"})
	sink.Emit(session.GameEnded{ID: "s-1", User: "alice", TotalScore: 4800})
	sink.Emit(session.Closed{ID: "s-1", Finished: true})

	u, err := s.FindUser(ctx, "alice")
	if err != nil {
		t.Fatalf("FindUser: %v", err)
	}
	if u.GamesPlayed != 1 || u.BestScore != 4800 {
		t.Fatalf("stats = %d games, best %d; want 1, 4800", u.GamesPlayed, u.BestScore)
	}
}
