// main.go
//
// Pac-Man game server.
// Responsibilities:
//   - Load configuration (.env + environment) and set the log level.
//   - Build the credential source: properties file, or SQLite seeded from it when DB_PATH is set.
//   - Wire the session event sinks (live-session store, player stats).
//   - Run the TCP game server and, when STATUS_ADDR is set, the HTTP status surface.
//   - Shut down on SIGINT/SIGTERM, closing live connections.

package main

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pacman/internal/auth"
	"github.com/robalobadob/pacman/internal/config"
	"github.com/robalobadob/pacman/internal/credstore"
	"github.com/robalobadob/pacman/internal/game"
	"github.com/robalobadob/pacman/internal/httpserver"
	"github.com/robalobadob/pacman/internal/render"
	"github.com/robalobadob/pacman/internal/server"
	"github.com/robalobadob/pacman/internal/session"
	"github.com/robalobadob/pacman/internal/store"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users := loadUsers(cfg.CredentialsFile)

	var (
		src     auth.Source
		players httpserver.Players
		sinks   session.Sinks
	)
	live := store.NewMemoryStore()
	sinks = append(sinks, live)

	if cfg.DBPath != "" {
		db, err := credstore.Open(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open credential database")
		}
		defer db.Close()
		if _, err := db.Seed(ctx, users); err != nil {
			log.Fatal().Err(err).Msg("seed credential database")
		}
		src, players = db, db
		sinks = append(sinks, db.StatsSink())
		log.Info().Str("path", cfg.DBPath).Msg("using SQLite credentials")
	} else {
		mem := auth.NewMemorySource(users)
		src = mem
		log.Info().Int("users", mem.Len()).Str("file", cfg.CredentialsFile).Msg("using properties credentials")
	}

	authn := auth.NewService(src)
	frames := render.NewProducer()
	bounds := cfg.Bounds

	srv := server.New(server.Config{
		Auth:   authn,
		Frames: frames,
		NewBoard: func() *game.Board {
			return game.NewRandomBoard(bounds, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
		},
		Sink:         sinks,
		IdleTimeout:  cfg.IdleTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if cfg.StatusAddr != "" {
		status := httpserver.New(httpserver.Options{
			Auth:      authn,
			Sessions:  live,
			Frames:    frames,
			Players:   players,
			JWTSecret: cfg.JWTSecret,
			JWTExpiry: cfg.JWTExpiry,
		})
		go func() {
			if err := status.ListenAndServe(ctx, cfg.StatusAddr); err != nil {
				log.Error().Err(err).Msg("status server exited")
			}
		}()
	}

	addr := ":" + strconv.Itoa(cfg.Port)
	if err := srv.ListenAndServe(ctx, addr); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("game server exited")
	}
	log.Info().Msg("game server stopped")
}

// loadUsers reads usuario.* entries; a missing file yields no users.
func loadUsers(path string) map[string]string {
	props, err := config.ReadProperties(path)
	if err != nil {
		log.Warn().Err(err).Str("file", path).Msg("credentials file not loaded")
		return map[string]string{}
	}
	return props.Users()
}
