package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/chmousset/siglib/internal/testutil"
)

const rampSession = `name: ramp
description: integer ramp and recorded level
ticks: 4
data:
  csv: level.csv
int_nodes:
  - name: ramp
    kind: linear
    slope: 2
    intercept: 1
    div: 1
float_nodes:
  - name: level
    kind: buffer
    column: level
scope:
  buffer: 64
  signals: level,ramp
roots: [ramp, level]
`

const levelCSV = "level\n0.5\n1\n1.5\n2\n"

const brokenSession = `name: broken
ticks: 10
int_nodes:
  - name: bad
    kind: linear
    slope: 1
roots: [bad]
`

// writeFixture writes the ramp session and its data into a temp directory
// and returns the session path.
func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "level.csv"), []byte(levelCSV), 0644))
	path := filepath.Join(dir, "ramp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(rampSession), 0644))
	return path
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs cmd with args and returns its stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// runFixed runs a session with a fixed run ID.
func runFixed(t *testing.T, runID string, args ...string) (string, error) {
	t.Helper()
	cmd := newRunCommand(&RunOptions{
		RootOptions: &RootOptions{Format: "text"},
		RunIDs:      testutil.NewFixedRunID(runID),
	})
	return execute(t, cmd, args...)
}
