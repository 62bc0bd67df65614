// cmd/pacman-client/main.go
//
// Terminal client for the Pac-Man server.
// Responsibilities:
//   - Resolve host/port from the properties file before any network call.
//   - Log in, then turn stdin lines (w/a/s/d, up/down/left/right, arriba/abajo/...) into moves.
//   - Print the telemetry of every move; optionally save received frames as JPEG files.
//   - On game over, append the result to the local ranking file and show the ranking.

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pacman/internal/client"
	"github.com/robalobadob/pacman/internal/config"
	"github.com/robalobadob/pacman/internal/game"
	"github.com/robalobadob/pacman/internal/ranking"
	"github.com/robalobadob/pacman/internal/wire"
)

func main() {
	var (
		configPath  = flag.String("config", "pacman.properties", "properties file with server.host / server.port")
		user        = flag.String("user", "", "player name")
		password    = flag.String("password", "", "player password")
		rankingPath = flag.String("ranking", "ranking.dat", "local ranking file")
		framesDir   = flag.String("frames", "", "directory to save received frames (optional)")
		showRanking = flag.Bool("show-ranking", false, "print the ranking and exit")
		clearRank   = flag.Bool("clear-ranking", false, "delete the ranking file and exit")
		timeout     = flag.Duration("timeout", 10*time.Second, "per-request network timeout")
		level       = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	if lvl, err := zerolog.ParseLevel(*level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	rank := ranking.NewStore(*rankingPath)
	switch {
	case *clearRank:
		if err := rank.Clear(); err != nil {
			log.Fatal().Err(err).Str("path", rank.Path()).Msg("clear ranking")
		}
		fmt.Println("Ranking borrado.")
		return
	case *showRanking:
		if err := printRanking(rank); err != nil {
			log.Fatal().Err(err).Msg("read ranking")
		}
		return
	}

	props, err := config.ReadProperties(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("read properties")
	}
	cc, err := config.ClientFromProperties(props)
	if err != nil {
		log.Fatal().Err(err).Msg("client config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cc.Addr(), *user, *password, *timeout, *framesDir, rank, os.Stdin); err != nil {
		log.Error().Err(err).Msg("client exited")
		os.Exit(1)
	}
}

func run(ctx context.Context, addr, user, password string, timeout time.Duration, framesDir string, rank *ranking.Store, in io.Reader) error {
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	c, err := client.Dial(dialCtx, addr, timeout)
	if err != nil {
		return fmt.Errorf("connect %s: %w", addr, err)
	}
	defer c.Close()

	ctx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()

	res, err := c.Login(user, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	fmt.Println(res.Message)
	if !res.OK {
		return nil
	}

	if framesDir != "" {
		if err := os.MkdirAll(framesDir, 0o755); err != nil {
			return err
		}
	}

	fmt.Println("Mover: w/a/s/d, up/down/left/right o arriba/abajo/izquierda/derecha. Ctrl-D para salir.")
	sc := bufio.NewScanner(in)
	for n := 1; sc.Scan(); {
		dir, ok := parseInput(sc.Text())
		if !ok {
			fmt.Println("Dirección no reconocida.")
			continue
		}
		turn, err := c.Move(dir)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return errors.New("connection lost")
			}
			return err
		}
		printMove(turn.Move)
		if framesDir != "" && len(turn.Frame) > 0 {
			name := filepath.Join(framesDir, fmt.Sprintf("frame-%05d.jpg", n))
			if err := os.WriteFile(name, turn.Frame, 0o644); err != nil {
				log.Warn().Err(err).Str("file", name).Msg("save frame")
			}
		}
		n++

		if turn.Final != nil {
			return finish(turn.Final, rank)
		}
	}
	return sc.Err()
}

func finish(f *wire.FinalResponse, rank *ranking.Store) error {
	rec := ranking.FromFinal(f, time.Now())
	fmt.Printf("\n¡Juego terminado, %s!\n", f.PlayerName)
	fmt.Printf("Puntaje: %d  Tiempo: %s  Puntos/s: %s\n",
		f.TotalScore, ranking.FormatElapsed(f.ElapsedMillis), ranking.FormatRank(rec.Rank))
	fmt.Printf("Frutas: %s\n\n", strings.Join(f.FruitsEaten, ", "))

	if err := rank.Append(rec); err != nil {
		log.Error().Err(err).Str("path", rank.Path()).Msg("ranking append failed")
		return nil
	}
	log.Info().Str("path", rank.Path()).Msg("result saved to ranking")
	return printRanking(rank)
}

func printRanking(rank *ranking.Store) error {
	recs, err := rank.ReadAll()
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("Ranking vacío.")
		return nil
	}
	fmt.Print(ranking.Table(recs))
	return nil
}

func printMove(m *wire.MoveResponse) {
	line := fmt.Sprintf("pos=(%d,%d) score=%d remaining=%d", m.PacX, m.PacY, m.Score, m.FruitsRemaining)
	if m.HitWall {
		line += " [pared]"
	}
	if m.AteFruit {
		line += fmt.Sprintf(" [+%d]", m.PointsGained)
	}
	fmt.Println(line)
}

var inputs = map[string]game.Direction{
	"w": game.Up, "up": game.Up, "arriba": game.Up,
	"s": game.Down, "down": game.Down, "abajo": game.Down,
	"a": game.Left, "left": game.Left, "izquierda": game.Left,
	"d": game.Right, "right": game.Right, "derecha": game.Right,
}

func parseInput(line string) (game.Direction, bool) {
	d, ok := inputs[strings.ToLower(strings.TrimSpace(line))]
	return d, ok
}
