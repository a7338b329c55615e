package session

import (
	"errors"
	"fmt"
	"slices"

	"golang.org/x/text/unicode/norm"
)

var floatKinds = []string{KindConst, KindSampler, KindAdder, KindStep, KindBuffer, KindIIR, KindFIR, KindPID, KindLinearF}

var intKinds = []string{KindConst, KindSampler, KindAdder, KindStep, KindBuffer, KindLinear, KindStepInterp}

// normalize rewrites every node name and reference in NFC so visually equal
// names compare equal.
func (s *Session) normalize() {
	s.Name = norm.NFC.String(s.Name)
	for i := range s.Roots {
		s.Roots[i] = norm.NFC.String(s.Roots[i])
	}
	if s.Scope != nil {
		s.Scope.Signals = norm.NFC.String(s.Scope.Signals)
	}
	for _, nodes := range [][]NodeSpec{s.Floats, s.Ints} {
		for i := range nodes {
			n := &nodes[i]
			n.Name = norm.NFC.String(n.Name)
			n.Source = norm.NFC.String(n.Source)
			n.Column = norm.NFC.String(n.Column)
			n.Setpoint = norm.NFC.String(n.Setpoint)
			n.Feedback = norm.NFC.String(n.Feedback)
			for j := range n.Operands {
				n.Operands[j].Node = norm.NFC.String(n.Operands[j].Node)
			}
			if n.FeedForward != nil {
				n.FeedForward.Source = norm.NFC.String(n.FeedForward.Source)
			}
		}
	}
}

// Validate checks the fields every session needs. Node references are
// checked when the session is built.
func (s *Session) Validate() error {
	var errs []error

	if s.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if s.Ticks < 0 {
		errs = append(errs, errors.New("ticks must be non-negative"))
	}
	if s.MaxTicks < 0 {
		errs = append(errs, errors.New("max_ticks must be non-negative"))
	}
	if s.Data != nil && s.Data.CSV == "" {
		errs = append(errs, errors.New("data: csv is required"))
	}
	if s.Scope != nil && s.Scope.Buffer <= 0 {
		errs = append(errs, errors.New("scope: buffer must be positive"))
	}

	errs = append(errs, validateNodes("float_nodes", s.Floats, floatKinds)...)
	errs = append(errs, validateNodes("int_nodes", s.Ints, intKinds)...)

	return errors.Join(errs...)
}

func validateNodes(field string, nodes []NodeSpec, kinds []string) []error {
	var errs []error
	seen := make(map[string]bool, len(nodes))

	for i, n := range nodes {
		at := fmt.Sprintf("%s[%d]", field, i)
		if n.Name == "" {
			errs = append(errs, fmt.Errorf("%s: name is required", at))
		} else if seen[n.Name] {
			errs = append(errs, fmt.Errorf("%s: duplicate node name %q", at, n.Name))
		}
		seen[n.Name] = true

		if !slices.Contains(kinds, n.Kind) {
			errs = append(errs, fmt.Errorf("%s: unknown kind %q", at, n.Kind))
			continue
		}

		switch n.Kind {
		case KindAdder:
			if len(n.Operands) != 2 {
				errs = append(errs, fmt.Errorf("%s: adder needs exactly 2 operands, got %d", at, len(n.Operands)))
			}
		case KindIIR:
			if n.Source == "" {
				errs = append(errs, fmt.Errorf("%s: iir needs a source", at))
			}
		case KindFIR:
			if n.Source == "" {
				errs = append(errs, fmt.Errorf("%s: fir needs a source", at))
			}
		case KindStep:
			if n.Window == nil {
				errs = append(errs, fmt.Errorf("%s: step needs a window", at))
			}
		case KindBuffer:
			if n.Column != "" && len(n.Values) > 0 {
				errs = append(errs, fmt.Errorf("%s: buffer takes a column or values, not both", at))
			}
		case KindPID:
			if n.Form != "" && n.Form != "naive" && n.Form != "optimized" {
				errs = append(errs, fmt.Errorf("%s: unknown pid form %q", at, n.Form))
			}
			if n.FeedForward != nil && len(n.FeedForward.Gains) > 3 {
				errs = append(errs, fmt.Errorf("%s: feedforward takes at most 3 gains", at))
			}
		}
	}
	return errs
}
