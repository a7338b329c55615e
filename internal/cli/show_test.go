package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedDatabase runs the ramp fixture once into a fresh database.
func seedDatabase(t *testing.T, runID string) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "siglib.db")
	_, err := runFixed(t, runID, "--db", dbPath, writeFixture(t))
	require.NoError(t, err)
	return dbPath
}


func TestShowCommand_Text(t *testing.T) {
	dbPath := seedDatabase(t, "run-1")

	out, err := execute(t, NewShowCommand(&RootOptions{Format: "text"}), "--db", dbPath, "run-1")
	require.NoError(t, err)

	assert.Contains(t, out, "Run run-1 (seq 1)")
	assert.Contains(t, out, "roots:    ramp=7 level=2")
	assert.Contains(t, out, "ramp")
	assert.Contains(t, out, "1.5")
	assert.Regexp(t, `(?m)^\s*3\s+7\s+2\s*$`, out)
}

func TestShowCommand_JSON(t *testing.T) {
	dbPath := seedDatabase(t, "run-1")

	out, err := execute(t, NewShowCommand(&RootOptions{Format: "json"}), "--db", dbPath, "run-1")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			RunID    string      `json:"run_id"`
			Session  string      `json:"session"`
			Prediv   int         `json:"prediv"`
			Rows     [][]float64 `json:"rows"`
			Channels []struct {
				Name string `json:"name"`
				Kind string `json:"kind"`
			} `json:"channels"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-1", resp.Data.RunID)
	assert.Equal(t, "ramp", resp.Data.Session)
	assert.Equal(t, 1, resp.Data.Prediv)
	assert.Equal(t, [][]float64{{1, 0.5}, {3, 1}, {5, 1.5}, {7, 2}}, resp.Data.Rows)
	require.Len(t, resp.Data.Channels, 2)
	assert.Equal(t, "ramp", resp.Data.Channels[0].Name)
	assert.Equal(t, "int", resp.Data.Channels[0].Kind)
}

func TestShowCommand_Export(t *testing.T) {
	dbPath := seedDatabase(t, "run-1")
	csvPath := filepath.Join(t.TempDir(), "capture.csv")

	_, err := execute(t, NewShowCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--export", csvPath, "run-1")
	require.NoError(t, err)

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "ramp,level\n1,0.5\n3,1\n5,1.5\n7,2\n", string(data))
}

func TestShowCommand_RunNotFound(t *testing.T) {
	dbPath := seedDatabase(t, "run-1")

	out, err := execute(t, NewShowCommand(&RootOptions{Format: "json"}), "--db", dbPath, "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "run not found: nope")
	assert.Contains(t, out, ErrCodeNotFound)
}

func TestShowCommand_DatabaseNotFound(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.db")

	_, err := execute(t, NewShowCommand(&RootOptions{Format: "text"}), "--db", missing, "run-1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database not found")
	assert.NoFileExists(t, missing)
}

func TestShowCommand_RequiresDB(t *testing.T) {
	_, err := execute(t, NewShowCommand(&RootOptions{Format: "text"}), "run-1")
	require.Error(t, err)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "7", formatValue(7))
	assert.Equal(t, "0.1", formatValue(0.1))
	assert.Equal(t, "-2.5", formatValue(-2.5))
}
