// internal/credstore/users.go
//
// SQLite-backed credential source.
// Responsibilities:
//   - Seeding users from the properties file (insert if absent, bcrypt hash).
//   - Verifying (user, password) pairs for the authenticator.
//   - Recording per-user game totals when a session finishes.

package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/pacman/internal/auth"
)

// User is a row of the users table.
type User struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	GamesPlayed  int
	BestScore    int32
}

// Store implements auth.Source on top of SQLite.
type Store struct {
	db *sql.DB
}

// Open opens the database at path and applies migrations.
func Open(path string) (*Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

func hashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost) // cost=10
	return string(b), err
}

func checkPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// SeedSummary counts what Seed did.
type SeedSummary struct {
	Inserted int
	Existing int
}

// Seed inserts every user missing from the table. Existing rows keep their password.
func (s *Store) Seed(ctx context.Context, users map[string]string) (SeedSummary, error) {
	var sum SeedSummary
	for name, pw := range users {
		name = auth.NormalizeUsername(name)
		if name == "" {
			continue
		}
		var exists int
		err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE username=?`, name).Scan(&exists)
		if err == nil {
			sum.Existing++
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return sum, fmt.Errorf("lookup %s: %w", name, err)
		}
		h, err := hashPassword(pw)
		if err != nil {
			return sum, fmt.Errorf("hash %s: %w", name, err)
		}
		_, err = s.db.ExecContext(ctx, `INSERT INTO users (username, password_hash, created_at) VALUES (?,?,?)`,
			name, h, time.Now().UTC().Format(time.RFC3339))
		if err != nil {
			return sum, fmt.Errorf("insert %s: %w", name, err)
		}
		sum.Inserted++
	}
	log.Info().Int("inserted", sum.Inserted).Int("existing", sum.Existing).Msg("credential seed complete")
	return sum, nil
}

// FindUser loads a user by name (case-insensitive).
func (s *Store) FindUser(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT username, password_hash, created_at, games_played, best_score
	                                  FROM users WHERE username=?`, username)
	var u User
	var created string
	if err := row.Scan(&u.Username, &u.PasswordHash, &created, &u.GamesPlayed, &u.BestScore); err != nil {
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &u, nil
}

// Verify implements auth.Source.
func (s *Store) Verify(ctx context.Context, user, password string) (bool, error) {
	u, err := s.FindUser(ctx, user)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", auth.ErrUnavailable, err)
	}
	return checkPassword(u.PasswordHash, password), nil
}

// RecordGame bumps the player's counters after a finished game.
func (s *Store) RecordGame(ctx context.Context, username string, score int32) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users
	    SET games_played = games_played + 1,
	        best_score   = MAX(best_score, ?)
	    WHERE username=?`, score, username)
	return err
}
