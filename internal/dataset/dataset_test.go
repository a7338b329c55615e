package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead_Columns(t *testing.T) {
	in := "setpoint, feedback\n1, 0\n2, 0.5\n\n3, 1.5\n"

	table, err := Read(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"setpoint", "feedback"}, table.Names())
	assert.Equal(t, 3, table.Rows())

	col, ok := table.Column("feedback")
	require.True(t, ok)
	assert.Equal(t, []float64{0, 0.5, 1.5}, col)

	col, ok = table.Column("setpoint")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, col)
}

func TestRead_Empty(t *testing.T) {
	table, err := Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, table.Rows())
	assert.Empty(t, table.Names())
}

func TestRead_NormalisesHeader(t *testing.T) {
	table, err := Read(strings.NewReader("de\u0301bit\n1\n"))
	require.NoError(t, err)

	_, ok := table.Column("d\u00e9bit")
	assert.True(t, ok)
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr string
	}{
		{name: "unnamed column", in: "a,\n1,2\n", wantErr: "column 1 has no name"},
		{name: "duplicate column", in: "a,a\n1,2\n", wantErr: `duplicate dataset column "a"`},
		{name: "short row", in: "a,b\n1\n", wantErr: "row 2 has 1 fields, want 2"},
		{name: "not a number", in: "a\nx\n", wantErr: `parse dataset row 2 column "a"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTable_UnknownColumn(t *testing.T) {
	table, err := Read(strings.NewReader("a\n1\n"))
	require.NoError(t, err)

	_, ok := table.Column("b")
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("a\n4\n"), 0o644))

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Rows())

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
