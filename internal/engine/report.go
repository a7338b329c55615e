package engine

import (
	"github.com/chmousset/siglib/internal/scope"
	"github.com/chmousset/siglib/internal/sig"
)

// Report summarises one Run.
type Report struct {
	RunID      string      `json:"run_id"`
	Start      sig.Tick    `json:"start"`
	Ticks      int         `json:"ticks"`
	Roots      []RootValue `json:"roots,omitempty"`
	ScopeState string      `json:"scope_state,omitempty"`
	Samples    int         `json:"samples"`
	Fault      *sig.Fault  `json:"fault,omitempty"`
}

// RootValue is the value of a root node at the last evaluated tick.
type RootValue struct {
	Name  string     `json:"name"`
	Kind  scope.Kind `json:"kind"`
	Value float64    `json:"value"`
}
