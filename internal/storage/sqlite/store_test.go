package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// testStore opens a fresh database in a temporary directory.
func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "todo.db")
	st, err := Open(path, nil)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// steppingClock returns a clock that advances one second per call so that
// created_at ordering is deterministic.
func steppingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open("", nil); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.db")
	first, err := Open(path, nil)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := NewCategoryRepository(first).Create(context.Background(), "Work"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := Open(path, nil)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer second.Close()

	if _, err := NewCategoryRepository(second).GetByName(context.Background(), "Work"); err != nil {
		t.Fatalf("expected category to survive reopen: %v", err)
	}
}

func TestPing(t *testing.T) {
	st := testStore(t)
	if err := st.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestTimeRoundTripKeepsOrdering(t *testing.T) {
	a := time.Date(2024, 3, 1, 10, 0, 0, 500_000_000, time.UTC)
	b := time.Date(2024, 3, 1, 10, 0, 0, 123_000_000, time.UTC)
	if !(formatTime(b) < formatTime(a)) {
		t.Fatalf("expected %s < %s", formatTime(b), formatTime(a))
	}

	parsed, err := parseTime(formatTime(a))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !parsed.Equal(a) {
		t.Fatalf("expected %v, got %v", a, parsed)
	}
}
