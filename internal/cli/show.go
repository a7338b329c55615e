package cli

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chmousset/siglib/internal/harness"
	"github.com/chmousset/siglib/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database string
	Export   string // optional - write the capture as CSV
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a stored run and its capture",
		Long: `Show a stored run: its summary, root values, latched fault and
every captured row.

Examples:
  siglib show --db ./siglib.db 0190b6a4-7c1e-7d2a-9a51-3f2b1c0d9e8f
  siglib show --db ./siglib.db --export capture.csv <run-id>
  siglib show --db ./siglib.db --format json <run-id>`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Export, "export", "", "write the capture to this CSV file")

	return cmd
}

func runShow(opts *ShowOptions, runID string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.ReadRun(ctx, runID)
	if errors.Is(err, sql.ErrNoRows) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("run not found: %s", runID), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", runID))
	}
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	capture, err := st.ReadCapture(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read capture", err)
	}
	snap := harness.FromRecord(run, capture)

	if opts.Export != "" {
		if err := exportCSV(opts.Export, snap); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to export capture", err)
		}
		formatter.VerboseLog("Exported %d rows to %s", len(snap.Rows), opts.Export)
	}

	return formatter.Success(snap, func(w io.Writer) {
		fmt.Fprintf(w, "Run %s (seq %d)\n", run.ID, run.Seq)
		renderSummary(w, snap)
		if len(snap.Channels) > 0 {
			fmt.Fprintln(w)
			renderRows(w, snap)
		}
	})
}

// openExisting opens a store that must already exist, so a mistyped path
// does not silently create an empty database.
func openExisting(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, "database not found", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func renderRows(w io.Writer, snap *harness.Snapshot) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "#\t")
	for _, ch := range snap.Channels {
		fmt.Fprintf(tw, "%s\t", ch.Name)
	}
	fmt.Fprintln(tw)
	for i, row := range snap.Rows {
		fmt.Fprintf(tw, "%d\t", i)
		for _, v := range row {
			fmt.Fprintf(tw, "%s\t", formatValue(v))
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
}

// exportCSV writes the capture with a header of channel names, the same
// layout the dataset loader reads.
func exportCSV(path string, snap *harness.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := make([]string, len(snap.Channels))
	for i, ch := range snap.Channels {
		header[i] = ch.Name
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range snap.Rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = formatValue(v)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
