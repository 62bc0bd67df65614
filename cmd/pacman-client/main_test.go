package main

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/robalobadob/pacman/internal/auth"
	"github.com/robalobadob/pacman/internal/game"
	"github.com/robalobadob/pacman/internal/ranking"
	"github.com/robalobadob/pacman/internal/render"
	"github.com/robalobadob/pacman/internal/server"
)

func TestParseInput(t *testing.T) {
	cases := map[string]game.Direction{
		"w": game.Up, " ARRIBA ": game.Up, "down": game.Down,
		"izquierda": game.Left, "D": game.Right,
	}
	for in, want := range cases {
		if got, ok := parseInput(in); !ok || got != want {
			t.Fatalf("parseInput(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
	if _, ok := parseInput("ninguna"); ok {
		t.Fatalf("parseInput accepted ninguna")
	}
}

func TestRunPlaysGameAndSavesRanking(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := server.New(server.Config{
		Auth:   auth.NewService(auth.NewMemorySource(map[string]string{"alice": "secret"})),
		Frames: render.NewProducer(),
		NewBoard: func() *game.Board {
			return game.NewBoard(game.DefaultBounds, []game.Fruit{
				{Type: game.Cherry, Pos: game.Position{X: 354, Y: 230}},
			})
		},
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = srv.Serve(ctx, ln)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	dir := t.TempDir()
	rank := ranking.NewStore(filepath.Join(dir, "ranking.dat"))
	frames := filepath.Join(dir, "frames")

	// an unknown word is skipped, then one move right eats the only fruit
	in := strings.NewReader("jump\nd\n")
	if err := run(context.Background(), ln.Addr().String(), "alice", "secret", 5*time.Second, frames, rank, in); err != nil {
		t.Fatalf("run: %v", err)
	}

	recs, err := rank.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(recs) != 1 || recs[0].PlayerName != "alice" || recs[0].TotalScore != 100 {
		t.Fatalf("ranking = %+v", recs)
	}
	if _, err := os.Stat(filepath.Join(frames, "frame-00001.jpg")); err != nil {
		t.Fatalf("frame not saved: %v", err)
	}
}
