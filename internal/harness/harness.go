package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/chmousset/siglib/internal/engine"
	"github.com/chmousset/siglib/internal/session"
	"github.com/chmousset/siglib/internal/testutil"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Snapshot is the captured run.
	Snapshot *Snapshot `json:"snapshot"`

	// Errors contains assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// Run executes a scenario and evaluates its assertions.
//
// The run uses a fixed run ID so its snapshot is reproducible. A run that
// stops on a latched fault or the tick quota is a valid outcome and is
// returned as a result; only load and build failures are errors.
func Run(ctx context.Context, sc *Scenario) (*Result, error) {
	sess, err := session.Load(sc.Session)
	if err != nil {
		return nil, err
	}
	if sc.Ticks > 0 {
		sess.Ticks = sc.Ticks
	}

	snap, err := RunSession(ctx, sess, engine.WithRunIDs(testutil.NewFixedRunID(sc.RunID)))
	if snap == nil {
		return nil, err
	}
	if err != nil && !isRunOutcome(err) {
		return nil, err
	}

	result := &Result{Pass: true, Snapshot: snap, Errors: []string{}}
	for _, msg := range EvaluateAssertions(snap, sc.Assertions) {
		result.Errors = append(result.Errors, msg)
		result.Pass = false
	}
	return result, nil
}

// RunSession builds a session, runs it for its tick count and snapshots the
// outcome.
//
// The snapshot is nil only when the session cannot be built. When the
// engine stops early the snapshot is returned along with the engine error.
func RunSession(ctx context.Context, sess *session.Session, opts ...engine.EngineOption) (*Snapshot, error) {
	table, err := sess.LoadData()
	if err != nil {
		return nil, fmt.Errorf("load data: %w", err)
	}
	built, err := sess.Build(table)
	if err != nil {
		return nil, fmt.Errorf("build session %s: %w", sess.Name, err)
	}

	report, runErr := built.Engine(opts...).Run(ctx, sess.Ticks)
	return NewSnapshot(sess.Name, report, built.Scope), runErr
}

// isRunOutcome reports whether err is an engine stop rather than a failure
// to run at all.
func isRunOutcome(err error) bool {
	var rtErr *engine.RuntimeError
	return errors.As(err, &rtErr)
}
