// Package session loads signal graph sessions from YAML or CUE files and
// builds the graphs, scope and engine roots they describe.
//
// A session names its nodes per value kind. Nodes reference each other by
// name, in any order; references are resolved when the session is built and
// the resulting graphs are checked for dangling references and cycles.
package session

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Session describes one run of a signal graph.
type Session struct {
	// Name identifies the session in the store and in metrics.
	Name string `yaml:"name" json:"name"`

	// Description is free text.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Ticks is the number of ticks a run evaluates.
	Ticks int `yaml:"ticks" json:"ticks"`

	// MaxTicks overrides the engine tick quota. Zero keeps the default.
	MaxTicks int `yaml:"max_ticks,omitempty" json:"max_ticks,omitempty"`

	// Data points at the CSV file whose columns feed buffer nodes.
	Data *DataSpec `yaml:"data,omitempty" json:"data,omitempty"`

	// Floats and Ints declare the nodes of each graph.
	Floats []NodeSpec `yaml:"float_nodes,omitempty" json:"float_nodes,omitempty"`
	Ints   []NodeSpec `yaml:"int_nodes,omitempty" json:"int_nodes,omitempty"`

	// Scope configures capture. Nil disables it.
	Scope *ScopeSpec `yaml:"scope,omitempty" json:"scope,omitempty"`

	// Roots are the nodes evaluated every tick, integer nodes first.
	Roots []string `yaml:"roots,omitempty" json:"roots,omitempty"`

	dir string
}

// DataSpec locates external data.
type DataSpec struct {
	// CSV is the dataset path, relative to the session file.
	CSV string `yaml:"csv" json:"csv"`
}

// ScopeSpec configures the capture scope.
type ScopeSpec struct {
	// Buffer is the capture buffer size in bytes.
	Buffer int `yaml:"buffer" json:"buffer"`

	// Signals is the comma-separated list of captured node names.
	Signals string `yaml:"signals,omitempty" json:"signals,omitempty"`

	// Prediv is the under-sampling divisor. Values below 1 mean 1.
	Prediv int `yaml:"prediv,omitempty" json:"prediv,omitempty"`

	// Names enables name-based selection. Defaults to true.
	Names *bool `yaml:"names,omitempty" json:"names,omitempty"`
}

// NamesEnabled reports whether the scope selects channels by name.
func (s *ScopeSpec) NamesEnabled() bool {
	return s.Names == nil || *s.Names
}

// Operand is a node reference or a constant.
type Operand struct {
	Node  string   `yaml:"node,omitempty" json:"node,omitempty"`
	Const *float64 `yaml:"const,omitempty" json:"const,omitempty"`
}

// WindowSpec is an inclusive tick range; Min > Max wraps.
type WindowSpec struct {
	Min uint32 `yaml:"min" json:"min"`
	Max uint32 `yaml:"max" json:"max"`
}

// FeedForwardSpec configures PID feed-forward. Source defaults to the
// setpoint.
type FeedForwardSpec struct {
	Gains  []float64 `yaml:"gains" json:"gains"`
	Source string    `yaml:"source,omitempty" json:"source,omitempty"`
}

// NodeSpec declares one node. Kind selects which of the other fields apply.
type NodeSpec struct {
	Name string `yaml:"name" json:"name"`
	Kind string `yaml:"kind" json:"kind"`

	// const, sampler (initial variable value)
	Value float64 `yaml:"value,omitempty" json:"value,omitempty"`

	// adder
	Operands []Operand `yaml:"operands,omitempty" json:"operands,omitempty"`

	// iir, fir, pid feed-forward
	Source string    `yaml:"source,omitempty" json:"source,omitempty"`
	Alpha  float64   `yaml:"alpha,omitempty" json:"alpha,omitempty"`
	Taps   []float64 `yaml:"taps,omitempty" json:"taps,omitempty"`

	// fir history length, defaults to len(taps)
	History int `yaml:"history,omitempty" json:"history,omitempty"`

	// step
	Window   *WindowSpec `yaml:"window,omitempty" json:"window,omitempty"`
	Active   float64     `yaml:"active,omitempty" json:"active,omitempty"`
	Inactive float64     `yaml:"inactive,omitempty" json:"inactive,omitempty"`
	Strict   bool        `yaml:"strict,omitempty" json:"strict,omitempty"`

	// buffer
	Column      string    `yaml:"column,omitempty" json:"column,omitempty"`
	Values      []float64 `yaml:"values,omitempty" json:"values,omitempty"`
	Size        int       `yaml:"size,omitempty" json:"size,omitempty"`
	Delta       int       `yaml:"delta,omitempty" json:"delta,omitempty"`
	Circular    bool      `yaml:"circular,omitempty" json:"circular,omitempty"`
	CheckBuffer bool      `yaml:"check_buffer,omitempty" json:"check_buffer,omitempty"`

	// pid
	Form        string           `yaml:"form,omitempty" json:"form,omitempty"`
	P           float64          `yaml:"p,omitempty" json:"p,omitempty"`
	I           float64          `yaml:"i,omitempty" json:"i,omitempty"`
	D           float64          `yaml:"d,omitempty" json:"d,omitempty"`
	Max         float64          `yaml:"max,omitempty" json:"max,omitempty"`
	Setpoint    string           `yaml:"setpoint,omitempty" json:"setpoint,omitempty"`
	Feedback    string           `yaml:"feedback,omitempty" json:"feedback,omitempty"`
	FeedForward *FeedForwardSpec `yaml:"feedforward,omitempty" json:"feedforward,omitempty"`

	// linear, linear_f
	Slope     float64 `yaml:"slope,omitempty" json:"slope,omitempty"`
	Intercept float64 `yaml:"intercept,omitempty" json:"intercept,omitempty"`
	Delay     uint32  `yaml:"delay,omitempty" json:"delay,omitempty"`
	Div       int32   `yaml:"div,omitempty" json:"div,omitempty"`
}

// Node kinds.
const (
	KindConst      = "const"
	KindSampler    = "sampler"
	KindAdder      = "adder"
	KindStep       = "step"
	KindBuffer     = "buffer"
	KindIIR        = "iir"
	KindFIR        = "fir"
	KindPID        = "pid"
	KindLinear     = "linear"
	KindLinearF    = "linear_f"
	KindStepInterp = "step_interp"
)

// Dir returns the directory relative paths in the session resolve against.
func (s *Session) Dir() string {
	return s.dir
}

// DataPath returns the resolved dataset path, or "" without data.
func (s *Session) DataPath() string {
	if s.Data == nil || s.Data.CSV == "" {
		return ""
	}
	if filepath.IsAbs(s.Data.CSV) || s.dir == "" {
		return s.Data.CSV
	}
	return filepath.Join(s.dir, s.Data.CSV)
}

// Load reads a session file. Files ending in .cue are loaded as CUE,
// everything else as YAML.
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var s *Session
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		s, err = ParseCUE(data, path)
	} else {
		s, err = ParseYAML(data)
	}
	if err != nil {
		return nil, err
	}
	s.dir = filepath.Dir(path)
	return s, nil
}

// ParseYAML decodes and validates a YAML session. Unknown fields are
// rejected so typos surface as errors.
func ParseYAML(data []byte) (*Session, error) {
	var s Session
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return finish(&s)
}

func finish(s *Session) (*Session, error) {
	s.normalize()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session: %w", err)
	}
	return s, nil
}
