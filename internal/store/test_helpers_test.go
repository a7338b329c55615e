package store

import (
	"path/filepath"
	"testing"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with minimal required fields.
func createTestRun(id, session string) Run {
	return Run{
		ID:         id,
		Session:    session,
		Ticks:      3,
		ScopeState: "SAMPLED",
		Samples:    2,
		Prediv:     1,
	}
}

// createTestCapture creates a two-channel capture with two rows.
func createTestCapture() *Capture {
	return &Capture{
		Channels: []Channel{
			{Name: "ramp", Kind: "int"},
			{Name: "pid_out", Kind: "float"},
		},
		Rows: [][]float64{
			{1, 0.5},
			{3, 1.25},
		},
	}
}
