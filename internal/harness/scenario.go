package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a capture test: a session to run and the assertions its
// snapshot must satisfy.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Session is the path to the YAML or CUE session file, relative to the
	// scenario file.
	Session string `yaml:"session"`

	// RunID is the fixed run ID for deterministic snapshots.
	// If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	// Ticks overrides the session's tick count when positive.
	Ticks int `yaml:"ticks,omitempty"`

	// Assertions validate the snapshot.
	// Supported types: samples, scope_state, value, root, fault.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one aspect of a snapshot.
type Assertion struct {
	// Type specifies the assertion type:
	// - "samples": the scope captured exactly Count rows
	// - "scope_state": the scope ended in State
	// - "value": the Channel column of row Row equals Value
	// - "root": the root Node ended at Value
	// - "fault": the run latched Code, optionally on Node
	Type string `yaml:"type"`

	Count     int      `yaml:"count,omitempty"`
	State     string   `yaml:"state,omitempty"`
	Channel   string   `yaml:"channel,omitempty"`
	Row       int      `yaml:"row,omitempty"`
	Node      string   `yaml:"node,omitempty"`
	Value     *float64 `yaml:"value,omitempty"`
	Tolerance float64  `yaml:"tolerance,omitempty"`
	Code      string   `yaml:"code,omitempty"`
}

// Assertion type constants.
const (
	AssertSamples    = "samples"
	AssertScopeState = "scope_state"
	AssertValue      = "value"
	AssertRoot       = "root"
	AssertFault      = "fault"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Session != "" && !filepath.IsAbs(scenario.Session) {
		scenario.Session = filepath.Join(filepath.Dir(path), scenario.Session)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Session == "" {
		return fmt.Errorf("session is required")
	}
	if _, err := os.Stat(s.Session); os.IsNotExist(err) {
		return fmt.Errorf("session file not found: %s", s.Session)
	}

	if s.Ticks < 0 {
		return fmt.Errorf("ticks must be non-negative")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Tolerance < 0 {
		return fmt.Errorf("assertions[%d]: tolerance must be non-negative", index)
	}

	switch a.Type {
	case AssertSamples:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for samples", index)
		}
	case AssertScopeState:
		if a.State == "" {
			return fmt.Errorf("assertions[%d]: state is required for scope_state", index)
		}
	case AssertValue:
		if a.Channel == "" {
			return fmt.Errorf("assertions[%d]: channel is required for value", index)
		}
		if a.Row < 0 {
			return fmt.Errorf("assertions[%d]: row must be non-negative for value", index)
		}
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for value", index)
		}
	case AssertRoot:
		if a.Node == "" {
			return fmt.Errorf("assertions[%d]: node is required for root", index)
		}
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for root", index)
		}
	case AssertFault:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for fault", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
