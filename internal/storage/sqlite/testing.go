package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

// NewTestStorage opens a fresh database file inside t.TempDir and closes it
// when the test ends.
func NewTestStorage(t testing.TB) *Storage {
	t.Helper()

	s, err := New(zerolog.Nop(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test storage: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}
