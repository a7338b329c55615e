// Package harness runs sessions deterministically and checks their captures.
//
// A run is summarised as a Snapshot: the run metadata, the scope channels
// and decoded rows, the root values at the last tick and the latched fault,
// if any. Snapshots serialise to canonical JSON (RFC 8785), so the same
// session with the same run ID always produces the same bytes.
//
// # Scenario Format
//
// Scenarios are YAML files that name a session and list assertions on the
// resulting snapshot:
//
//	name: pidf
//	description: "PID with feed-forward tracks the recorded setpoint"
//	session: ../sessions/pidf.yaml
//	run_id: test-run-pidf
//	assertions:
//	  - type: samples
//	    count: 6
//	  - type: scope_state
//	    state: SAMPLED
//	  - type: value
//	    channel: pid_out
//	    row: 0
//	    value: 3.1
//	  - type: root
//	    node: pid_out
//	    value: 5
//	  - type: fault
//	    code: NO_CONFIG
//	    node: lp
//
// The session path resolves against the scenario file's directory.
//
// # Golden Captures
//
// AssertGolden compares a snapshot against testdata/golden/<name>.golden
// with goldie. Regenerate with:
//
//	go test ./internal/harness -update
package harness
