package scope

import (
	"strings"

	"github.com/chmousset/siglib/internal/sig"
)

// EnlistInt adds ref to the known integer signals.
// Returns the remaining capacity, or Full if the signal was not added.
func (s *Scope) EnlistInt(ref sig.Ref) int {
	if s.ints == nil || s.ints.Node(ref) == nil || len(s.knownInts) >= MaxKnown {
		return Full
	}
	s.knownInts = append(s.knownInts, ref)
	return MaxKnown - len(s.knownInts)
}

// EnlistFloat adds ref to the known float signals. Unnamed signals cannot be
// selected by name and are rejected.
// Returns the remaining capacity, or Full if the signal was not added.
func (s *Scope) EnlistFloat(ref sig.Ref) int {
	if s.floats == nil || len(s.knownFloats) >= MaxKnown {
		return Full
	}
	node := s.floats.Node(ref)
	if node == nil || node.Name == "" {
		return Full
	}
	s.knownFloats = append(s.knownFloats, ref)
	return MaxKnown - len(s.knownFloats)
}

// AddInt registers ref directly as an active integer channel, bypassing
// name selection. Returns the remaining capacity, or Full. The row layout
// cannot change while a capture is running.
func (s *Scope) AddInt(ref sig.Ref) int {
	if s.state == Sampling || s.ints == nil || s.ints.Node(ref) == nil || len(s.activeInts) >= MaxSignals {
		return Full
	}
	s.activeInts = append(s.activeInts, ref)
	s.depth = s.MaxSamples()
	return MaxSignals - len(s.activeInts)
}

// AddFloat registers ref directly as an active float channel, bypassing
// name selection. Returns the remaining capacity, or Full. The row layout
// cannot change while a capture is running.
func (s *Scope) AddFloat(ref sig.Ref) int {
	if s.state == Sampling || s.floats == nil || s.floats.Node(ref) == nil || len(s.activeFloats) >= MaxSignals {
		return Full
	}
	s.activeFloats = append(s.activeFloats, ref)
	s.depth = s.MaxSamples()
	return MaxSignals - len(s.activeFloats)
}

// ActiveInts returns the integer channels in capture order.
func (s *Scope) ActiveInts() []sig.Ref { return s.activeInts }

// ActiveFloats returns the float channels in capture order.
func (s *Scope) ActiveFloats() []sig.Ref { return s.activeFloats }

// KnownInts returns the enlisted integer signals.
func (s *Scope) KnownInts() []sig.Ref { return s.knownInts }

// KnownFloats returns the enlisted float signals.
func (s *Scope) KnownFloats() []sig.Ref { return s.knownFloats }

// selectByName appends to dst, for each name in order, the first known
// signal whose name is exactly equal. Names without a match are skipped.
func selectByName[T sig.Scalar](dst, known []sig.Ref, names string, g *sig.Graph[T]) []sig.Ref {
	for _, name := range strings.Split(names, ",") {
		if name == "" {
			continue
		}
		for _, ref := range known {
			if len(dst) >= MaxSignals {
				return dst
			}
			if node := g.Node(ref); node != nil && node.Name == name {
				dst = append(dst, ref)
				break
			}
		}
	}
	return dst
}
