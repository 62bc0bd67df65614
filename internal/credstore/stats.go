package credstore

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pacman/internal/session"
)

// StatsSink records every finished game in the player's row.
func (s *Store) StatsSink() session.Sink {
	return session.SinkFunc(func(e session.Event) {
		ev, ok := e.(session.GameEnded)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.RecordGame(ctx, ev.User, ev.TotalScore); err != nil {
			log.Warn().Err(err).Str("user", ev.User).Str("session", ev.ID).Msg("record game stats")
		}
	})
}
