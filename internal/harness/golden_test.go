package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Ramp(t *testing.T) {
	sc, err := LoadScenario("testdata/scenarios/ramp.yaml")
	require.NoError(t, err)

	// Regenerate with:
	//   go test ./internal/harness -run TestRunWithGolden_Ramp -update
	result, err := RunWithGolden(t, sc)
	require.NoError(t, err)
	assert.True(t, result.Pass)
}

func TestGoldenPath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("scenarios", "golden", "ramp.golden"),
		GoldenPath(filepath.Join("scenarios", "ramp.yaml")),
	)
}

func TestWriteAndMatchGolden(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golden", "snap.golden")
	snap := testSnapshot()

	require.NoError(t, WriteGolden(path, snap))

	match, err := MatchGolden(path, snap)
	require.NoError(t, err)
	assert.True(t, match)

	snap.Rows[0][1] = 9
	match, err = MatchGolden(path, snap)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestMatchGolden_MissingFile(t *testing.T) {
	_, err := MatchGolden(filepath.Join(t.TempDir(), "none.golden"), testSnapshot())
	assert.Error(t, err)
}

func TestSnapshot_JSONIsCanonical(t *testing.T) {
	data, err := testSnapshot().JSON()
	require.NoError(t, err)
	assert.Equal(t,
		`{"channels":[{"kind":"int","name":"ramp"},{"kind":"float","name":"out"}],`+
			`"roots":[{"kind":"float","name":"out","value":0.75}],`+
			`"rows":[[1,0.5],[3,0.75]],"run_id":"","samples":2,"scope_state":"SAMPLED","session":"s","start":0,"ticks":0}`,
		string(data))
}
