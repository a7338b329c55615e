package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand_Valid(t *testing.T) {
	path := writeFixture(t)

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Session ramp is valid (1 float nodes, 1 int nodes, scope holds")
}

func TestValidateCommand_ValidJSON(t *testing.T) {
	path := writeFixture(t)

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, "ramp", resp.Data.Session)
	assert.Equal(t, 1, resp.Data.FloatNodes)
	assert.Equal(t, 1, resp.Data.IntNodes)
	assert.Positive(t, resp.Data.MaxSamples)
	assert.Empty(t, resp.Data.Errors)
}

func TestValidateCommand_FileNotFound(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "["+ErrCodeNotFound+"]")
}

func TestValidateCommand_ReportsEveryProblem(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", `ticks: 3
int_nodes:
  - name: x
    kind: wat
`)

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed with 2 error(s):")
	assert.Contains(t, out, "name is required")
	assert.Contains(t, out, `unknown kind "wat"`)
}

func TestValidateCommand_BuildFailureJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "level.csv", levelCSV)
	path := writeFile(t, dir, "column.yaml", `name: column
ticks: 2
data:
  csv: level.csv
float_nodes:
  - name: level
    kind: buffer
    column: pressure
`)

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string           `json:"code"`
			Details ValidationResult `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeBuildFailed, resp.Error.Code)
	assert.False(t, resp.Error.Details.Valid)
	require.NotEmpty(t, resp.Error.Details.Errors)
	assert.Contains(t, resp.Error.Details.Errors[0].Message, `unknown data column "pressure"`)
}

func TestValidateCommand_MissingData(t *testing.T) {
	path := writeFile(t, t.TempDir(), "nodata.yaml", `name: nodata
ticks: 2
data:
  csv: absent.csv
`)

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "["+ErrCodeLoadFailed+"]")
}
