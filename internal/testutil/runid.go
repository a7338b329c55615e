package testutil

// FixedRunID generates the same run ID every time.
//
// This enables deterministic test execution and golden capture comparison:
// the same session run with the same FixedRunID produces byte-identical
// snapshots.
//
// Unlike engine.FixedGenerator which returns IDs in sequence, this generator
// never runs out, so a test may start any number of runs.
//
// Thread-safety: FixedRunID is stateless and safe for concurrent use.
type FixedRunID struct {
	id string
}

// NewFixedRunID creates a new fixed run ID generator.
//
// If id is empty, Generate() returns "test-run-default".
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunID{id: id}
}

// Generate returns the fixed run ID.
//
// Implements engine.RunIDGenerator interface.
func (g *FixedRunID) Generate() string {
	return g.id
}
