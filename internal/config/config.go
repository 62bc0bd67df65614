// internal/config/config.go
//
// Server and client configuration.
//
// The server follows the usual .env flow: godotenv.Load() fills the process
// environment (missing file is fine), then each setting is read with a default.
// The client and the credential loader read a key-value properties file:
//
//   server.host = localhost
//   server.port = 5000
//   usuario.alice = secret
//
// Properties files are parsed with godotenv.Read, which accepts dotted keys,
// spaces around '=', and '#' comments.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pacman/internal/auth"
	"github.com/robalobadob/pacman/internal/game"
)

// Server holds every server setting.
type Server struct {
	Port            int
	LogLevel        string
	CredentialsFile string
	DBPath          string
	IdleTimeout     time.Duration
	WriteTimeout    time.Duration
	Bounds          game.Bounds
	StatusAddr      string
	JWTSecret       string
	JWTExpiry       time.Duration
}

// LoadServer reads .env (if present) and the environment.
func LoadServer() (Server, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg(".env not loaded")
	}

	bounds, err := ParseBounds(getEnv("BOARD_BOUNDS", "10,10,690,450"))
	if err != nil {
		return Server{}, err
	}
	return Server{
		Port:            envInt("PORT", 5000),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CredentialsFile: getEnv("CREDENTIALS_FILE", "pacman.properties"),
		DBPath:          os.Getenv("DB_PATH"),
		IdleTimeout:     envDuration("IDLE_TIMEOUT", 60*time.Second),
		WriteTimeout:    envDuration("WRITE_TIMEOUT", 10*time.Second),
		Bounds:          bounds,
		StatusAddr:      os.Getenv("STATUS_ADDR"),
		JWTSecret:       getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTExpiry:       time.Duration(envInt("JWT_EXPIRES_HOURS", 12)) * time.Hour,
	}, nil
}

// MaxBoardCoord caps every BOARD_BOUNDS coordinate so frames stay a sane size.
const MaxBoardCoord = 2048

// ParseBounds reads "minX,minY,maxX,maxY". Coordinates must lie in [0, MaxBoardCoord].
func ParseBounds(s string) (game.Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return game.Bounds{}, fmt.Errorf("BOARD_BOUNDS %q: want minX,minY,maxX,maxY", s)
	}
	var v [4]int32
	for i, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return game.Bounds{}, fmt.Errorf("BOARD_BOUNDS %q: %w", s, err)
		}
		if n < 0 || n > MaxBoardCoord {
			return game.Bounds{}, fmt.Errorf("BOARD_BOUNDS %q: %d outside [0,%d]", s, n, MaxBoardCoord)
		}
		v[i] = int32(n)
	}
	return game.NewBounds(v[0], v[1], v[2], v[3])
}

// Properties is a parsed key-value file.
type Properties map[string]string

// ReadProperties parses a properties file.
func ReadProperties(path string) (Properties, error) {
	m, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Properties(m), nil
}

// Users returns every usuario.<name> entry as name -> password.
func (p Properties) Users() map[string]string {
	out := make(map[string]string)
	for k, v := range p {
		if name, ok := strings.CutPrefix(k, auth.UserPrefix); ok && name != "" {
			out[name] = v
		}
	}
	return out
}

// Client holds what the client needs before dialing.
type Client struct {
	Host string
	Port int
}

// Addr is host:port.
func (c Client) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ClientFromProperties resolves the server address.
// server.* keys win; servidor.host / servidor.puerto are accepted as fallbacks.
func ClientFromProperties(p Properties) (Client, error) {
	host := first(p, "server.host", "servidor.host")
	if host == "" {
		host = "localhost"
	}
	port := 5000
	if raw := first(p, "server.port", "servidor.puerto"); raw != "" {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || n <= 0 || n > 65535 {
			return Client{}, fmt.Errorf("invalid server port %q", raw)
		}
		port = n
	}
	return Client{Host: strings.TrimSpace(host), Port: port}, nil
}

func first(p Properties, keys ...string) string {
	for _, k := range keys {
		if v := p[k]; v != "" {
			return v
		}
	}
	return ""
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
	}
	return def
}

func envDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not a duration, using default")
	}
	return def
}
