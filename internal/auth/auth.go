// internal/auth/auth.go
//
// Credential checks for incoming game sessions.
// Responsibilities:
//   - Validate (user, password) pairs against an injected credential source.
//   - Produce the user-facing message sent back in AUTH_RESPONSE.
//
// Notes:
//   - The source decides where credentials live (properties file, SQLite, ...).
//   - Usernames are normalized with strings.TrimSpace; passwords are compared as given
//     but rejected when blank.

package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
)

// User-facing messages. Clients display them verbatim.
const (
	MsgEmptyUser     = "El nombre de usuario no puede estar vacío"
	MsgEmptyPassword = "La contraseña no puede estar vacía"
	MsgInvalid       = "Credenciales inválidas. Acceso denegado."
	MsgUnavailable   = "Error del servidor. Intente nuevamente."
)

// ErrUnavailable is returned by sources that cannot be reached.
var ErrUnavailable = errors.New("credential source unavailable")

// Source checks a credential pair. A nil error with false means unknown
// user or wrong password; a non-nil error means the source could not answer.
type Source interface {
	Verify(ctx context.Context, user, password string) (bool, error)
}

// Result is the outcome of an authentication attempt.
type Result struct {
	OK      bool
	User    string
	Message string
}

// Authenticator is what a session needs to admit a player.
type Authenticator interface {
	Authenticate(ctx context.Context, user, password string) Result
}

// Service is the default Authenticator.
type Service struct {
	src Source
}

// NewService wires a Service to its credential source.
func NewService(src Source) *Service {
	return &Service{src: src}
}

// NormalizeUsername trims surrounding whitespace.
func NormalizeUsername(u string) string {
	return strings.TrimSpace(u)
}

// Authenticate validates the pair and never returns the password in any form.
func (s *Service) Authenticate(ctx context.Context, user, password string) Result {
	user = NormalizeUsername(user)
	if user == "" {
		return Result{Message: MsgEmptyUser}
	}
	if strings.TrimSpace(password) == "" {
		return Result{User: user, Message: MsgEmptyPassword}
	}

	ok, err := s.src.Verify(ctx, user, password)
	if err != nil {
		log.Error().Err(err).Str("user", user).Msg("credential lookup failed")
		return Result{User: user, Message: MsgUnavailable}
	}
	if !ok {
		return Result{User: user, Message: MsgInvalid}
	}
	return Result{OK: true, User: user, Message: "Bienvenido " + user + "!"}
}
