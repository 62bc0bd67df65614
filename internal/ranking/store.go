// internal/ranking/store.go
//
// Append-only ranking file.
// Responsibilities:
//   - Append one 256-byte record per finished game, under an exclusive file lock.
//   - Read every record back, rejecting files whose size is not a multiple of 256.
//   - Clear the file.

package ranking

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ErrCorrupt reports a ranking file that does not hold whole records.
var ErrCorrupt = errors.New("ranking: corrupt file")

// Store reads and writes one ranking file.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a store for path. The file is created on first Append.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the file location.
func (s *Store) Path() string { return s.path }

// Append writes r at the end of the file as a single 256-byte write and syncs it.
func (s *Store) Append(r Record) error {
	buf, err := r.MarshalBinary()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := lockFile(f, true); err != nil {
		return fmt.Errorf("lock %s: %w", s.path, err)
	}
	defer unlockFile(f)

	if n, err := f.Write(buf); err != nil {
		return err
	} else if n != RecordSize {
		return io.ErrShortWrite
	}
	return f.Sync()
}

// ReadAll returns every record sorted by rank, highest first.
// A missing file reads as an empty ranking.
func (s *Store) ReadAll() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := lockFile(f, false); err != nil {
		return nil, fmt.Errorf("lock %s: %w", s.path, err)
	}
	defer unlockFile(f)

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if len(data)%RecordSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrCorrupt, len(data), RecordSize)
	}

	out := make([]Record, 0, len(data)/RecordSize)
	for off := 0; off < len(data); off += RecordSize {
		var r Record
		if err := r.UnmarshalBinary(data[off : off+RecordSize]); err != nil {
			return nil, fmt.Errorf("record %d: %w", off/RecordSize, err)
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank > out[j].Rank })
	return out, nil
}

// Clear deletes the file. Clearing a missing file succeeds.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
