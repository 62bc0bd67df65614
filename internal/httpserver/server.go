// internal/httpserver/server.go
//
// HTTP status surface for the game server.
// Responsibilities:
//   - Router + middleware (JSON, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", POST /auth/login.
//   - Gated endpoints (JWT): /sessions, /sessions/{id}, /sessions/{id}/frame, /players/me.
//
// Notes:
//   - Login uses the same Authenticator as the TCP game; tokens are HS256 JWTs.
//   - Session data comes from the live-session store, which is fed by session events.
//   - The spectator frame is rendered on demand from the last snapshot.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pacman/internal/auth"
	"github.com/robalobadob/pacman/internal/credstore"
	"github.com/robalobadob/pacman/internal/game"
	"github.com/robalobadob/pacman/internal/store"
)

// FrameProducer renders a snapshot as JPEG.
type FrameProducer interface {
	Frame(game.Snapshot) ([]byte, error)
}

// Players looks up persisted player stats. Only the SQLite credential store provides it.
type Players interface {
	FindUser(ctx context.Context, username string) (*credstore.User, error)
}

// Options configures a Server. Auth and Sessions are required.
type Options struct {
	Auth      auth.Authenticator
	Sessions  store.Store
	Frames    FrameProducer
	Players   Players
	JWTSecret string
	JWTExpiry time.Duration
}

// Server bundles router and collaborators.
type Server struct {
	r        *chi.Mux
	auth     auth.Authenticator
	sessions store.Store
	frames   FrameProducer
	players  Players
	secret   []byte
	expiry   time.Duration
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		auth:     opts.Auth,
		sessions: opts.Sessions,
		frames:   opts.Frames,
		players:  opts.Players,
		secret:   []byte(opts.JWTSecret),
		expiry:   opts.JWTExpiry,
	}
	if len(s.secret) == 0 {
		s.secret = []byte("dev_secret_change_me")
	}
	if s.expiry <= 0 {
		s.expiry = 12 * time.Hour
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"pacman-status","endpoints":["/health","POST /auth/login","/sessions","/sessions/{id}/frame","/players/me"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Post("/auth/login", s.handleLogin)

	s.r.Group(func(r chi.Router) {
		r.Use(s.requireAuth())
		r.Get("/sessions", s.handleSessions)
		r.Get("/sessions/{id}", s.handleSession)
		r.Get("/sessions/{id}/frame", s.handleFrame)
		r.Get("/players/me", s.handlePlayer)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	hs := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()
	log.Info().Str("addr", addr).Msg("status server listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errc
		return nil
	}
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ------------------------------- AUTH --------------------------------------

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRes struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
	Message   string `json:"message"`
}

// handleLogin checks credentials with the game authenticator and returns a JWT.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}
	res := s.auth.Authenticate(r.Context(), body.Username, body.Password)
	if !res.OK {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": res.Message})
		return
	}
	token, exp, err := s.signJWT(res.User)
	if err != nil {
		log.Error().Err(err).Msg("sign jwt")
		http.Error(w, `{"error":"token_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(loginRes{Token: token, ExpiresAt: exp.Unix(), Message: res.Message})
}

// ----------------------------- SESSIONS ------------------------------------

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(s.sessions.List(r.Context()))
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sum, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	_ = json.NewEncoder(w).Encode(sum)
}

// handleFrame renders the latest snapshot of a live session as JPEG.
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	if s.frames == nil {
		http.Error(w, `{"error":"frames_disabled"}`, http.StatusNotFound)
		return
	}
	sum, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	data, err := s.frames.Frame(sum.Snapshot)
	if err != nil {
		log.Warn().Err(err).Str("session", sum.ID).Msg("render spectator frame")
		http.Error(w, `{"error":"render_failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}

// handlePlayer returns persisted stats for the token's user.
func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	if me == nil {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}
	if s.players == nil {
		_ = json.NewEncoder(w).Encode(map[string]any{"username": me.Username})
		return
	}
	u, err := s.players.FindUser(r.Context(), me.Username)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"username":    u.Username,
		"gamesPlayed": u.GamesPlayed,
		"bestScore":   u.BestScore,
		"createdAt":   u.CreatedAt,
	})
}
