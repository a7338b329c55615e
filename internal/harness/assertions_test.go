package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chmousset/siglib/internal/engine"
	"github.com/chmousset/siglib/internal/scope"
	"github.com/chmousset/siglib/internal/sig"
)

func ptr(v float64) *float64 { return &v }

func testSnapshot() *Snapshot {
	return &Snapshot{
		Session:    "s",
		ScopeState: "SAMPLED",
		Samples:    2,
		Channels: []scope.Channel{
			{Name: "ramp", Kind: scope.KindInt},
			{Name: "out", Kind: scope.KindFloat},
		},
		Rows: [][]float64{
			{1, 0.5},
			{3, 0.75},
		},
		Roots: []engine.RootValue{
			{Name: "out", Kind: scope.KindFloat, Value: 0.75},
		},
	}
}

func TestEvaluateAssertions_AllPass(t *testing.T) {
	errs := EvaluateAssertions(testSnapshot(), []Assertion{
		{Type: AssertSamples, Count: 2},
		{Type: AssertScopeState, State: "SAMPLED"},
		{Type: AssertValue, Channel: "out", Row: 1, Value: ptr(0.75)},
		{Type: AssertValue, Channel: "ramp", Row: 0, Value: ptr(1.01), Tolerance: 0.05},
		{Type: AssertRoot, Node: "out", Value: ptr(0.75)},
		{Type: AssertFault, Code: "OK"},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{"samples", Assertion{Type: AssertSamples, Count: 3}, "Expected: 3 samples"},
		{"scope state", Assertion{Type: AssertScopeState, State: "READY"}, "Actual: SAMPLED"},
		{"missing channel", Assertion{Type: AssertValue, Channel: "x", Value: ptr(0)}, "channel not captured"},
		{"row out of range", Assertion{Type: AssertValue, Channel: "out", Row: 5, Value: ptr(0)}, "2 rows captured"},
		{"value", Assertion{Type: AssertValue, Channel: "out", Row: 0, Value: ptr(1)}, "Actual: out[0] = 0.5"},
		{"missing root", Assertion{Type: AssertRoot, Node: "ramp", Value: ptr(3)}, "root not reported"},
		{"root", Assertion{Type: AssertRoot, Node: "out", Value: ptr(1)}, "Actual: root out = 0.75"},
		{"fault", Assertion{Type: AssertFault, Code: "NO_CONFIG"}, "Actual: OK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(testSnapshot(), []Assertion{tt.assertion})
			if assert.Len(t, errs, 1) {
				assert.Contains(t, errs[0], tt.want)
			}
		})
	}
}

func TestAssertFault_Node(t *testing.T) {
	snap := testSnapshot()
	snap.Fault = &sig.Fault{Code: sig.NWindow, Node: "gate"}

	assert.Empty(t, EvaluateAssertions(snap, []Assertion{{Type: AssertFault, Code: "N_WINDOW"}}))
	assert.Empty(t, EvaluateAssertions(snap, []Assertion{{Type: AssertFault, Code: "N_WINDOW", Node: "gate"}}))

	errs := EvaluateAssertions(snap, []Assertion{{Type: AssertFault, Code: "N_WINDOW", Node: "other"}})
	if assert.Len(t, errs, 1) {
		assert.Contains(t, errs[0], "Actual: N_WINDOW on gate")
	}
}

func TestAssertionError_IncludesCapture(t *testing.T) {
	errs := EvaluateAssertions(testSnapshot(), []Assertion{{Type: AssertSamples, Count: 1}})
	if assert.Len(t, errs, 1) {
		assert.Contains(t, errs[0], "Capture:")
		assert.Contains(t, errs[0], "ramp out")
		assert.Contains(t, errs[0], "[1] [3 0.75]")
	}
}
