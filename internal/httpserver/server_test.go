package httpserver

import (
	"bytes"
	"encoding/json"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/robalobadob/pacman/internal/auth"
	"github.com/robalobadob/pacman/internal/game"
	"github.com/robalobadob/pacman/internal/render"
	"github.com/robalobadob/pacman/internal/session"
	"github.com/robalobadob/pacman/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	s := New(Options{
		Auth:      auth.NewService(auth.NewMemorySource(map[string]string{"alice": "secret"})),
		Sessions:  st,
		Frames:    render.NewProducer(),
		JWTSecret: "test-secret",
		JWTExpiry: time.Hour,
	})
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return ts, st
}

func login(t *testing.T, ts *httptest.Server, user, pw string) (*http.Response, loginRes) {
	t.Helper()
	body, _ := json.Marshal(loginReq{Username: user, Password: pw})
	resp, err := http.Post(ts.URL+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post login: %v", err)
	}
	defer resp.Body.Close()
	var out loginRes
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func get(t *testing.T, ts *httptest.Server, path, token string) *http.Response {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := get(t, ts, "/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content type = %q", ct)
	}
}

func TestLogin(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := login(t, ts, "alice", "wrong")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d", resp.StatusCode)
	}

	resp, out := login(t, ts, "alice", "secret")
	if resp.StatusCode != http.StatusOK || out.Token == "" {
		t.Fatalf("login = %d %+v", resp.StatusCode, out)
	}
	if out.Message != "Bienvenido alice!" {
		t.Fatalf("message = %q", out.Message)
	}
}

func TestSessionsRequireToken(t *testing.T) {
	ts, _ := newTestServer(t)
	if resp := get(t, ts, "/sessions", ""); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token status = %d", resp.StatusCode)
	}
	if resp := get(t, ts, "/sessions", "not-a-jwt"); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d", resp.StatusCode)
	}
}

func TestSessionsAndFrame(t *testing.T) {
	ts, st := newTestServer(t)
	_, out := login(t, ts, "alice", "secret")

	b := game.NewBoard(game.DefaultBounds, []game.Fruit{{Type: game.Bell, Pos: game.Position{X: 100, Y: 100}}})
	st.Emit(session.Started{ID: "s-1", User: "alice", At: time.Now(), Snapshot: b.Snapshot()})

	resp := get(t, ts, "/sessions", out.Token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sessions status = %d", resp.StatusCode)
	}
	var list []store.Summary
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 || list[0].ID != "s-1" || list[0].User != "alice" || list[0].FruitsRemaining != 1 {
		t.Fatalf("sessions = %+v", list)
	}

	resp = get(t, ts, "/sessions/s-1/frame", out.Token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("frame status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Fatalf("frame content type = %q", ct)
	}
	if _, err := jpeg.Decode(resp.Body); err != nil {
		t.Fatalf("frame decode: %v", err)
	}

	if resp := get(t, ts, "/sessions/nope/frame", out.Token); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing session status = %d", resp.StatusCode)
	}
}

func TestPlayerWithoutStatsSource(t *testing.T) {
	ts, _ := newTestServer(t)
	_, out := login(t, ts, "alice", "secret")
	resp := get(t, ts, "/players/me", out.Token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body["username"] != "alice" {
		t.Fatalf("body = %v", body)
	}
}
