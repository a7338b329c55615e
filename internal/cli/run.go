package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chmousset/siglib/internal/engine"
	"github.com/chmousset/siglib/internal/harness"
	"github.com/chmousset/siglib/internal/metrics"
	"github.com/chmousset/siglib/internal/session"
	"github.com/chmousset/siglib/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	CSV      string
	Ticks    int
	Metrics  string

	// RunIDs allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// RunResult is the output of the run command.
type RunResult struct {
	Seq      int64             `json:"seq,omitempty"`
	Snapshot *harness.Snapshot `json:"snapshot"`
	Stopped  string            `json:"stopped,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <session-file>",
		Short: "Run a session and store its capture",
		Long: `Run a signal graph session for its tick count.

The session file (YAML, or CUE when it ends in .cue) declares the float and
integer nodes, the scope and the roots evaluated every tick. Buffer nodes
read columns of the session's CSV file, or of --csv when given.

With --db the run and its capture are stored; with --metrics the run's
Prometheus metrics are written as a node-exporter textfile.

Exit codes:
  0 - Run completed every tick
  1 - Run stopped early (latched fault, tick quota, interrupt) or invalid session
  2 - Command error (database, metrics file)

Examples:
  siglib run session.yaml
  siglib run --db ./siglib.db --csv ./pidf.csv pidf.yaml
  siglib run --db ./siglib.db --metrics ./siglib.prom --format json pidf.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database to store the run in")
	cmd.Flags().StringVar(&opts.CSV, "csv", "", "CSV data file, overrides the session's data")
	cmd.Flags().IntVar(&opts.Ticks, "ticks", 0, "number of ticks, overrides the session's ticks")
	cmd.Flags().StringVar(&opts.Metrics, "metrics", "", "write Prometheus metrics to this textfile")

	return cmd
}

func runSession(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	sess, err := session.Load(path)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to load session", err)
	}
	formatter.VerboseLog("Loaded session %s from %s", sess.Name, path)

	if opts.CSV != "" {
		csvPath, err := filepath.Abs(opts.CSV)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid csv path", err)
		}
		sess.Data = &session.DataSpec{CSV: csvPath}
	}
	if cmd.Flags().Changed("ticks") {
		if opts.Ticks < 0 {
			return NewExitError(ExitCommandError, "ticks must be non-negative")
		}
		sess.Ticks = opts.Ticks
	}

	runIDs := opts.RunIDs
	if runIDs == nil {
		runIDs = engine.UUIDv7Generator{}
	}
	engineOpts := []engine.EngineOption{engine.WithRunIDs(runIDs)}

	var collector *metrics.Collector
	if opts.Metrics != "" {
		collector = metrics.New(sess.Name)
		engineOpts = append(engineOpts, engine.WithMetrics(collector))
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	snap, runErr := harness.RunSession(ctx, sess, engineOpts...)
	if snap == nil {
		return WrapExitError(ExitFailure, "failed to build session", runErr)
	}

	result := RunResult{Snapshot: snap}
	if runErr != nil {
		result.Stopped = runErr.Error()
	}

	if opts.Database != "" {
		// The capture is stored even when the run was interrupted.
		seq, err := storeSnapshot(context.WithoutCancel(ctx), opts.Database, snap)
		if err != nil {
			_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to store run", err)
		}
		result.Seq = seq
		formatter.VerboseLog("Stored run %s as seq %d in %s", snap.RunID, seq, opts.Database)
	}

	if collector != nil {
		if err := collector.WriteTextfile(opts.Metrics); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to write metrics", err)
		}
		formatter.VerboseLog("Wrote metrics to %s", opts.Metrics)
	}

	if err := formatter.Success(result, func(w io.Writer) { renderRun(w, result) }); err != nil {
		return err
	}

	if runErr != nil {
		return WrapExitError(ExitFailure, "run stopped", runErr)
	}
	return nil
}

func storeSnapshot(ctx context.Context, dbPath string, snap *harness.Snapshot) (int64, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return 0, err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	run, capture := snap.Record()
	return st.WriteRun(ctx, run, capture)
}

func renderRun(w io.Writer, result RunResult) {
	snap := result.Snapshot
	if result.Seq > 0 {
		fmt.Fprintf(w, "Run %s (seq %d)\n", snap.RunID, result.Seq)
	} else {
		fmt.Fprintf(w, "Run %s\n", snap.RunID)
	}
	renderSummary(w, snap)
	if result.Stopped != "" {
		fmt.Fprintf(w, "  stopped:  %s\n", result.Stopped)
	}
}

// renderSummary writes the run fields shared by run and show.
func renderSummary(w io.Writer, snap *harness.Snapshot) {
	fmt.Fprintf(w, "  session:  %s\n", snap.Session)
	fmt.Fprintf(w, "  ticks:    %d from %d\n", snap.Ticks, snap.Start)
	if snap.ScopeState != "" {
		fmt.Fprintf(w, "  scope:    %s, %d samples, prediv %d\n", snap.ScopeState, snap.Samples, snap.Prediv)
	}
	if len(snap.Roots) > 0 {
		roots := make([]string, len(snap.Roots))
		for i, r := range snap.Roots {
			roots[i] = fmt.Sprintf("%s=%v", r.Name, r.Value)
		}
		fmt.Fprintf(w, "  roots:    %s\n", strings.Join(roots, " "))
	}
	if snap.Fault != nil {
		if snap.Fault.Node != "" {
			fmt.Fprintf(w, "  fault:    %s on %s\n", snap.Fault.Code, snap.Fault.Node)
		} else {
			fmt.Fprintf(w, "  fault:    %s\n", snap.Fault.Code)
		}
	}
}
