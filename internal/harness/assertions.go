package harness

import (
	"fmt"
	"math"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It carries the captured rows to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Snapshot *Snapshot
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Snapshot != nil && len(e.Snapshot.Channels) > 0 {
		fmt.Fprintf(&buf, "\nCapture:\n ")
		for _, ch := range e.Snapshot.Channels {
			fmt.Fprintf(&buf, " %s", ch.Name)
		}
		buf.WriteByte('\n')
		for i, row := range e.Snapshot.Rows {
			fmt.Fprintf(&buf, "  [%d] %v\n", i, row)
		}
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against the snapshot and
// returns the failure messages. An empty result means all passed.
func EvaluateAssertions(snap *Snapshot, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluateAssertion(snap, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluateAssertion(snap *Snapshot, a Assertion) error {
	switch a.Type {
	case AssertSamples:
		return assertSamples(snap, a)
	case AssertScopeState:
		return assertScopeState(snap, a)
	case AssertValue:
		return assertValue(snap, a)
	case AssertRoot:
		return assertRoot(snap, a)
	case AssertFault:
		return assertFault(snap, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

func assertSamples(snap *Snapshot, a Assertion) error {
	if snap.Samples == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertSamples,
		Expected: fmt.Sprintf("%d samples", a.Count),
		Actual:   fmt.Sprintf("%d samples", snap.Samples),
		Snapshot: snap,
	}
}

func assertScopeState(snap *Snapshot, a Assertion) error {
	if snap.ScopeState == a.State {
		return nil
	}
	return &AssertionError{
		Type:     AssertScopeState,
		Expected: a.State,
		Actual:   snap.ScopeState,
	}
}

func assertValue(snap *Snapshot, a Assertion) error {
	col := snap.Column(a.Channel)
	if col < 0 {
		return &AssertionError{
			Type:     AssertValue,
			Expected: fmt.Sprintf("channel %s", a.Channel),
			Actual:   "channel not captured",
			Snapshot: snap,
		}
	}
	if a.Row >= len(snap.Rows) {
		return &AssertionError{
			Type:     AssertValue,
			Expected: fmt.Sprintf("row %d", a.Row),
			Actual:   fmt.Sprintf("%d rows captured", len(snap.Rows)),
			Snapshot: snap,
		}
	}

	got := snap.Rows[a.Row][col]
	if within(got, *a.Value, a.Tolerance) {
		return nil
	}
	return &AssertionError{
		Type:     AssertValue,
		Expected: fmt.Sprintf("%s[%d] = %v", a.Channel, a.Row, *a.Value),
		Actual:   fmt.Sprintf("%s[%d] = %v", a.Channel, a.Row, got),
		Snapshot: snap,
	}
}

func assertRoot(snap *Snapshot, a Assertion) error {
	root, ok := snap.Root(a.Node)
	if !ok {
		return &AssertionError{
			Type:     AssertRoot,
			Expected: fmt.Sprintf("root %s = %v", a.Node, *a.Value),
			Actual:   "root not reported",
		}
	}
	if within(root.Value, *a.Value, a.Tolerance) {
		return nil
	}
	return &AssertionError{
		Type:     AssertRoot,
		Expected: fmt.Sprintf("root %s = %v", a.Node, *a.Value),
		Actual:   fmt.Sprintf("root %s = %v", a.Node, root.Value),
	}
}

// assertFault checks the latched code. "OK" asserts that nothing latched.
func assertFault(snap *Snapshot, a Assertion) error {
	actual := "OK"
	node := ""
	if snap.Fault != nil {
		actual = snap.Fault.Code.String()
		node = snap.Fault.Node
	}

	if actual == a.Code && (a.Node == "" || a.Node == node) {
		return nil
	}

	expected := a.Code
	if a.Node != "" {
		expected += " on " + a.Node
	}
	if node != "" {
		actual += " on " + node
	}
	return &AssertionError{
		Type:     AssertFault,
		Expected: expected,
		Actual:   actual,
	}
}

func within(got, want, tolerance float64) bool {
	if tolerance == 0 {
		return got == want
	}
	return math.Abs(got-want) <= tolerance
}
