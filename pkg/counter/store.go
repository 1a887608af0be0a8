package counter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrPersist is returned when the counter file cannot be written.
var ErrPersist = errors.New("persist counter")

// PersistEvery is how many increments pass between two writes of the counter file.
const PersistEvery = 10

// FileMode is the permission of the counter file; other tools read it.
const FileMode os.FileMode = 0o644

// Store holds the action counter and its backing file.
type Store struct {
	path  string
	mu    sync.Mutex
	count int
}

// Open loads the persisted count at path (0 when absent or unreadable).
func Open(path string) *Store {
	return &Store{path: path, count: Load(path)}
}

// Load returns the count stored at path. Missing, unreadable, negative or
// non-numeric content all yield 0.
func Load(path string) int {
	b, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("counter file unreadable, starting at 0")
		}
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || n < 0 {
		log.Warn().Str("path", path).Str("content", snippet(string(b), 32)).Msg("counter file not numeric, starting at 0")
		return 0
	}
	return n
}

// Count returns the current value.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Increment adds one and, on every PersistEvery-th value, overwrites the
// counter file. The in-memory count advances even if the write fails.
func (s *Store) Increment() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	if s.count%PersistEvery != 0 {
		return s.count, nil
	}
	if err := writeFile(s.path, s.count); err != nil {
		return s.count, fmt.Errorf("%w: %s: %v", ErrPersist, s.path, err)
	}
	log.Info().Int("count", s.count).Str("path", s.path).Msg("action count persisted")
	return s.count, nil
}

// writeFile replaces path atomically: temp file in the same directory, then rename.
func writeFile(path string, n int) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".counter-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if err := tmp.Chmod(FileMode); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if _, err := tmp.WriteString(strconv.Itoa(n)); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return err
	}
	return nil
}

func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
