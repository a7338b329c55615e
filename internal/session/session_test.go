package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chmousset/siglib/internal/engine"
	"github.com/chmousset/siglib/internal/scope"
	"github.com/chmousset/siglib/internal/sig"
)

func writeSession(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func mustBuild(t *testing.T, yamlSrc string) *Built {
	t.Helper()
	s, err := ParseYAML([]byte(yamlSrc))
	require.NoError(t, err)
	b, err := s.Build(nil)
	require.NoError(t, err)
	return b
}

// =============================================================================
// Loading
// =============================================================================

func TestLoad_YAML(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "pidf.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "pidf", s.Name)
	assert.Equal(t, 6, s.Ticks)
	assert.Equal(t, "testdata", s.Dir())
	assert.Equal(t, filepath.Join("testdata", "pidf.csv"), s.DataPath())
	require.Len(t, s.Floats, 3)

	pid := s.Floats[2]
	assert.Equal(t, KindPID, pid.Kind)
	assert.Equal(t, 0.1, pid.I)
	require.NotNil(t, pid.FeedForward)
	assert.Equal(t, []float64{1, 2, 3}, pid.FeedForward.Gains)

	require.NotNil(t, s.Scope)
	assert.True(t, s.Scope.NamesEnabled())
	assert.Equal(t, []string{"pid_out"}, s.Roots)
}

func TestLoad_CUEMatchesYAML(t *testing.T) {
	fromYAML, err := Load(filepath.Join("testdata", "pidf.yaml"))
	require.NoError(t, err)
	fromCUE, err := Load(filepath.Join("testdata", "pidf.cue"))
	require.NoError(t, err)

	assert.Equal(t, fromYAML, fromCUE)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read session file")
}

func TestParseYAML_UnknownField(t *testing.T) {
	_, err := ParseYAML([]byte("name: x\nticks: 1\nrootz: [a]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field rootz not found")
}

func TestParseCUE_UnknownField(t *testing.T) {
	_, err := ParseCUE([]byte(`name: "x", ticks: 1, rootz: ["a"]`), "x.cue")
	assert.Error(t, err)
}

func TestParseCUE_BadKind(t *testing.T) {
	_, err := ParseCUE([]byte(`
name: "x"
ticks: 1
float_nodes: [{name: "a", kind: "wobble"}]
`), "x.cue")
	assert.Error(t, err)
}

func TestLoad_CUEFile(t *testing.T) {
	path := writeSession(t, "ramp.cue", `
name: "ramp"
ticks: 3
int_nodes: [{name: "ramp", kind: "linear", slope: 2, intercept: 1, div: 1}]
roots: ["ramp"]
`)
	s, err := Load(path)
	require.NoError(t, err)

	require.Len(t, s.Ints, 1)
	assert.Equal(t, int32(1), s.Ints[0].Div)
	assert.Equal(t, filepath.Dir(path), s.Dir())
}

// =============================================================================
// Validation
// =============================================================================

func TestParseYAML_Validation(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name:    "missing name",
			src:     "ticks: 1\n",
			wantErr: "name is required",
		},
		{
			name:    "negative ticks",
			src:     "name: x\nticks: -1\n",
			wantErr: "ticks must be non-negative",
		},
		{
			name:    "duplicate node",
			src:     "name: x\nfloat_nodes:\n  - {name: a, kind: const}\n  - {name: a, kind: const}\n",
			wantErr: `float_nodes[1]: duplicate node name "a"`,
		},
		{
			name:    "unknown kind",
			src:     "name: x\nfloat_nodes:\n  - {name: a, kind: wobble}\n",
			wantErr: `float_nodes[0]: unknown kind "wobble"`,
		},
		{
			name:    "integer kind in float graph",
			src:     "name: x\nfloat_nodes:\n  - {name: a, kind: linear}\n",
			wantErr: `unknown kind "linear"`,
		},
		{
			name:    "float kind in integer graph",
			src:     "name: x\nint_nodes:\n  - {name: a, kind: pid}\n",
			wantErr: `int_nodes[0]: unknown kind "pid"`,
		},
		{
			name:    "adder operands",
			src:     "name: x\nint_nodes:\n  - {name: a, kind: adder, operands: [{const: 1}]}\n",
			wantErr: "adder needs exactly 2 operands, got 1",
		},
		{
			name:    "pid form",
			src:     "name: x\nfloat_nodes:\n  - {name: a, kind: pid, form: clever}\n",
			wantErr: `unknown pid form "clever"`,
		},
		{
			name:    "scope buffer",
			src:     "name: x\nscope: {buffer: 0}\n",
			wantErr: "scope: buffer must be positive",
		},
		{
			name:    "step window",
			src:     "name: x\nint_nodes:\n  - {name: a, kind: step}\n",
			wantErr: "step needs a window",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid session")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// =============================================================================
// Building
// =============================================================================

func TestBuild_PIDF(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "pidf.yaml"))
	require.NoError(t, err)
	table, err := s.LoadData()
	require.NoError(t, err)
	require.NotNil(t, table)

	b, err := s.Build(table)
	require.NoError(t, err)

	require.NotNil(t, b.Scope)
	assert.Equal(t, []scope.Channel{
		{Name: "pid_out", Kind: scope.KindFloat},
		{Name: "pid_feedback", Kind: scope.KindFloat},
	}, b.Scope.Channels())

	e := b.Engine(engine.WithRunIDs(engine.NewFixedGenerator("run-1")))
	report, err := e.Run(context.Background(), s.Ticks)
	require.NoError(t, err)
	assert.Equal(t, 6, report.Samples)

	rows := b.Scope.Rows()
	require.Len(t, rows, 6)
	assert.InDelta(t, 3.1, rows[0].Floats[0], 1e-5)
	assert.InDelta(t, 0.0, rows[0].Floats[1], 1e-6)
	assert.InDelta(t, 3.15, rows[1].Floats[0], 1e-5)
	assert.InDelta(t, 0.5, rows[1].Floats[1], 1e-6)
}

func TestBuild_NoData(t *testing.T) {
	s, err := ParseYAML([]byte("name: x\n"))
	require.NoError(t, err)

	table, err := s.LoadData()
	require.NoError(t, err)
	assert.Nil(t, table)
}

func TestBuild_ForwardReference(t *testing.T) {
	b := mustBuild(t, `
name: x
float_nodes:
  - {name: lp, kind: iir, alpha: 0.5, source: in}
  - {name: in, kind: const, value: 2}
roots: [lp]
`)
	ref, ok := b.Floats.Lookup("lp")
	require.True(t, ok)
	assert.Equal(t, float32(1), b.Floats.Get(ref, 0))
	assert.Equal(t, []sig.Ref{ref}, b.FloatRoots)
}

func TestBuild_UnknownReference(t *testing.T) {
	s, err := ParseYAML([]byte(`
name: x
float_nodes:
  - {name: lp, kind: iir, source: ghost}
`))
	require.NoError(t, err)

	_, err = s.Build(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `float_nodes[0] "lp": unknown node "ghost"`)
}

func TestBuild_Cycle(t *testing.T) {
	s, err := ParseYAML([]byte(`
name: x
int_nodes:
  - {name: a, kind: adder, operands: [{node: b}, {const: 1}]}
  - {name: b, kind: adder, operands: [{node: a}, {const: 1}]}
`))
	require.NoError(t, err)

	_, err = s.Build(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "int graph")
	assert.Contains(t, err.Error(), "cycle detected")
}

func TestBuild_UnknownRoot(t *testing.T) {
	s, err := ParseYAML([]byte("name: x\nroots: [nope]\n"))
	require.NoError(t, err)

	_, err = s.Build(nil)
	assert.EqualError(t, err, `root "nope": unknown node`)
}

func TestBuild_ColumnWithoutData(t *testing.T) {
	s, err := ParseYAML([]byte(`
name: x
float_nodes:
  - {name: sp, kind: buffer, column: setpoint}
`))
	require.NoError(t, err)

	_, err = s.Build(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "setpoint" needs a data file`)
}

func TestBuild_SamplerVariable(t *testing.T) {
	b := mustBuild(t, `
name: x
int_nodes:
  - {name: knob, kind: sampler, value: 3}
`)
	ref, _ := b.Ints.Lookup("knob")
	assert.Equal(t, int32(3), b.Ints.Get(ref, 0))

	*b.IntVars["knob"] = 9
	assert.Equal(t, int32(3), b.Ints.Get(ref, 0), "held for the rest of the tick")
	assert.Equal(t, int32(9), b.Ints.Get(ref, 1))
}

func TestBuild_IntKinds(t *testing.T) {
	b := mustBuild(t, `
name: x
int_nodes:
  - {name: ramp, kind: linear, slope: 3, intercept: 1, div: 1}
  - {name: gate, kind: step, window: {min: 2, max: 4}, active: 10, inactive: -1}
  - {name: sum, kind: adder, operands: [{node: ramp}, {node: gate}]}
  - {name: table, kind: buffer, values: [5, 6, 7], circular: true}
roots: [sum, table]
`)
	sum, _ := b.Ints.Lookup("sum")
	table, _ := b.Ints.Lookup("table")

	assert.Equal(t, int32(0), b.Ints.Get(sum, 0))
	assert.Equal(t, int32(17), b.Ints.Get(sum, 2))
	assert.Equal(t, int32(5), b.Ints.Get(table, 3))
	assert.Len(t, b.IntRoots, 2)
	assert.Empty(t, b.FloatRoots)
}

func TestBuild_RootInBothGraphs(t *testing.T) {
	b := mustBuild(t, `
name: x
float_nodes:
  - {name: v, kind: const, value: 1.5}
int_nodes:
  - {name: v, kind: const, value: 2}
roots: [v]
`)
	assert.Len(t, b.IntRoots, 1)
	assert.Len(t, b.FloatRoots, 1)
}

func TestBuild_ScopeNamesDisabled(t *testing.T) {
	b := mustBuild(t, `
name: x
float_nodes:
  - {name: a, kind: const, value: 1}
  - {name: b, kind: const, value: 2}
scope: {buffer: 64, signals: "b,a", names: false, prediv: 3}
`)
	require.NotNil(t, b.Scope)
	assert.Len(t, b.Scope.ActiveFloats(), 2)
	assert.Empty(t, b.Scope.KnownFloats())
	assert.Equal(t, 3, b.Scope.Prediv())
	assert.Equal(t, scope.Ready, b.Scope.State())
}

func TestBuild_NormalisedNames(t *testing.T) {
	// node name spelled with a combining accent, root precomposed
	b := mustBuild(t, `
name: x
float_nodes:
  - {name: "de\u0301bit", kind: const, value: 1}
roots: ["d\u00e9bit"]
`)
	assert.Len(t, b.FloatRoots, 1)
}

func TestBuild_MaxTicks(t *testing.T) {
	b := mustBuild(t, `
name: x
max_ticks: 2
int_nodes:
  - {name: c, kind: const, value: 1}
roots: [c]
`)
	e := b.Engine(engine.WithRunIDs(engine.NewFixedGenerator("run-1")))

	_, err := e.Run(context.Background(), 5)
	assert.True(t, engine.IsQuotaError(err))
}

func TestBuild_NoConfigLatch(t *testing.T) {
	b := mustBuild(t, `
name: x
int_nodes:
  - {name: ramp, kind: linear, slope: 1}
roots: [ramp]
`)
	e := b.Engine(engine.WithRunIDs(engine.NewFixedGenerator("run-1")))

	_, err := e.Run(context.Background(), 5)
	require.Error(t, err)
	assert.True(t, engine.IsLatchedError(err))
	assert.True(t, sig.IsNoConfig(err))
}
