// internal/server/server.go
//
// TCP game server.
// Responsibilities:
//   - Accept connections and run one handler goroutine per client.
//   - Read AUTH_REQUEST, then loop MOVE_COMMAND -> MOVE_RESPONSE + FRAME.
//   - Send FINAL_RESPONSE after the winning move and hang up.
//   - Close silently on protocol violations, EOF or I/O errors.
//   - Track live connections so shutdown can close them and wait.
//
// Notes:
//   - Every handler owns its socket and its session; nothing is shared but the
//     authenticator, the frame producer and the event sink.
//   - A frame that fails to render is sent as an empty FRAME and play continues.

package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pacman/internal/auth"
	"github.com/robalobadob/pacman/internal/clock"
	"github.com/robalobadob/pacman/internal/game"
	"github.com/robalobadob/pacman/internal/session"
	"github.com/robalobadob/pacman/internal/wire"
)

// FrameProducer renders the board after a move. Implementations must be safe
// for concurrent use by several handlers.
type FrameProducer interface {
	Frame(game.Snapshot) ([]byte, error)
}

// Config bundles the collaborators shared by all handlers.
type Config struct {
	Auth   auth.Authenticator
	Frames FrameProducer
	// NewBoard is called once per authenticated session and must be safe for
	// concurrent use. Nil means a random board on game.DefaultBounds.
	NewBoard func() *game.Board
	// NewClock supplies each session's game clock. Nil means clock.New.
	NewClock func() *clock.Clock
	Sink     session.Sink

	// IdleTimeout bounds the wait for the next client message. Zero disables it.
	IdleTimeout time.Duration
	// WriteTimeout bounds each response write. Zero disables it.
	WriteTimeout time.Duration
}

// Server accepts game clients.
type Server struct {
	cfg Config

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

// New constructs a Server.
func New(cfg Config) *Server {
	return &Server{cfg: cfg, conns: make(map[net.Conn]struct{})}
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	log.Info().Str("addr", ln.Addr().String()).Msg("game server listening")
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled or ln fails.
// On return the listener and every live connection are closed and all
// handlers have finished. Cancellation yields a nil error.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = ln.Close()
			s.closeAll()
		case <-stop:
		}
	}()
	defer func() {
		close(stop)
		_ = ln.Close()
		s.closeAll()
		s.wg.Wait()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				log.Warn().Err(err).Msg("accept timeout")
				continue
			}
			return err
		}
		if !s.track(conn) {
			_ = conn.Close()
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.handle(ctx, conn)
		}()
	}
}

// Active reports the number of open client connections.
func (s *Server) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) track(c net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns == nil {
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *Server) untrack(c net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, c)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		_ = c.Close()
	}
	s.conns = nil
}

// handle runs one client from AUTH_REQUEST to hang-up.
func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	id := uuid.NewString()
	lg := log.With().Str("session", id).Str("remote", conn.RemoteAddr().String()).Logger()
	lg.Debug().Msg("client connected")

	h := &handler{
		conn: conn,
		r:    bufio.NewReader(conn),
		w:    bufio.NewWriter(conn),
		lg:   lg,
		cfg:  &s.cfg,
		sess: session.New(session.Config{
			ID:       id,
			Auth:     s.cfg.Auth,
			NewBoard: s.cfg.NewBoard,
			Clock:    s.newClock(),
			Sink:     s.cfg.Sink,
		}),
	}
	defer h.sess.Close()

	if !h.login(ctx) {
		return
	}
	h.play()
}

func (s *Server) newClock() *clock.Clock {
	if s.cfg.NewClock == nil {
		return nil
	}
	return s.cfg.NewClock()
}

type handler struct {
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer
	lg   zerolog.Logger
	cfg  *Config
	sess *session.Session
}

func (h *handler) login(ctx context.Context) bool {
	msg, err := h.read()
	if err != nil {
		h.readFailed(err)
		return false
	}
	req, ok := msg.(*wire.AuthRequest)
	if !ok {
		h.lg.Warn().Stringer("kind", msg.Kind()).Msg("protocol violation: expected AUTH_REQUEST")
		return false
	}

	res, err := h.sess.Authenticate(ctx, req)
	if err != nil {
		h.lg.Warn().Err(err).Msg("authenticate")
		return false
	}
	if err := h.send(res); err != nil {
		h.lg.Warn().Err(err).Msg("write auth response")
		return false
	}
	if !res.OK {
		h.lg.Info().Str("user", auth.NormalizeUsername(req.User)).Msg("authentication rejected")
		return false
	}
	h.lg = h.lg.With().Str("user", h.sess.User()).Logger()
	h.lg.Info().Msg("game started")
	return true
}

func (h *handler) play() {
	for {
		msg, err := h.read()
		if err != nil {
			h.readFailed(err)
			return
		}
		cmd, ok := msg.(*wire.MoveCommand)
		if !ok {
			h.lg.Warn().Stringer("kind", msg.Kind()).Msg("protocol violation: expected MOVE_COMMAND")
			return
		}
		res, err := h.sess.Move(cmd.Direction)
		if err != nil {
			h.lg.Warn().Err(err).Msg("protocol violation")
			return
		}

		if err := h.send(res, h.frame()); err != nil {
			h.lg.Warn().Err(err).Msg("write move response")
			return
		}
		if !res.GameOver {
			continue
		}

		final, err := h.sess.Final()
		if err != nil {
			h.lg.Error().Err(err).Msg("build final response")
			return
		}
		if err := h.send(final); err != nil {
			h.lg.Warn().Err(err).Msg("write final response")
			return
		}
		h.lg.Info().
			Int32("score", final.TotalScore).
			Int64("elapsedMs", final.ElapsedMillis).
			Msg("game finished")
		return
	}
}

// frame renders the current board; failures degrade to an empty FRAME.
func (h *handler) frame() *wire.Frame {
	if h.cfg.Frames == nil {
		return &wire.Frame{}
	}
	snap, ok := h.sess.Snapshot()
	if !ok {
		return &wire.Frame{}
	}
	data, err := h.cfg.Frames.Frame(snap)
	if err != nil {
		h.lg.Warn().Err(err).Msg("frame render failed, sending empty frame")
		return &wire.Frame{}
	}
	if len(data) > wire.MaxFrameBytes {
		h.lg.Warn().Int("bytes", len(data)).Msg("frame too large, sending empty frame")
		return &wire.Frame{}
	}
	return &wire.Frame{Data: data}
}

func (h *handler) read() (wire.Message, error) {
	if t := h.cfg.IdleTimeout; t > 0 {
		_ = h.conn.SetReadDeadline(time.Now().Add(t))
	}
	return wire.ReadKinds(h.r, wire.KindAuthRequest, wire.KindMoveCommand)
}

func (h *handler) readFailed(err error) {
	switch {
	case errors.Is(err, io.EOF):
		h.lg.Info().Msg("client disconnected")
	case errors.Is(err, net.ErrClosed):
		h.lg.Debug().Msg("connection closed by server")
	case errors.Is(err, wire.ErrMalformed):
		h.lg.Warn().Err(err).Msg("protocol violation")
	default:
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			h.lg.Info().Msg("idle timeout")
			return
		}
		h.lg.Warn().Err(err).Msg("read")
	}
}

// send writes msgs and flushes them as one batch.
func (h *handler) send(msgs ...wire.Message) error {
	if t := h.cfg.WriteTimeout; t > 0 {
		_ = h.conn.SetWriteDeadline(time.Now().Add(t))
	}
	for _, m := range msgs {
		if err := wire.Write(h.w, m); err != nil {
			return err
		}
	}
	return h.w.Flush()
}
