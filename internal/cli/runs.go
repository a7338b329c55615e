package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chmousset/siglib/internal/store"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Database string
	Session  string // optional - filter to one session
}

// RunSummary is one line of the runs listing.
type RunSummary struct {
	Seq        int64  `json:"seq"`
	ID         string `json:"id"`
	Session    string `json:"session"`
	Ticks      int    `json:"ticks"`
	ScopeState string `json:"scope_state,omitempty"`
	Samples    int    `json:"samples"`
	Fault      string `json:"fault,omitempty"`
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs",
		Long: `List the runs stored in a database, oldest first.

Examples:
  siglib runs --db ./siglib.db
  siglib runs --db ./siglib.db --session pidf --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "only list runs of this session")

	return cmd
}

func runRuns(opts *RunsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(context.Background(), opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	summaries := make([]RunSummary, len(runs))
	for i, r := range runs {
		summaries[i] = summarize(r)
	}

	return formatter.Success(summaries, func(w io.Writer) {
		if len(summaries) == 0 {
			fmt.Fprintln(w, "No runs found.")
			return
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SEQ\tRUN\tSESSION\tTICKS\tSCOPE\tSAMPLES\tFAULT")
		for _, s := range summaries {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%d\t%s\n",
				s.Seq, s.ID, s.Session, s.Ticks, dash(s.ScopeState), s.Samples, dash(s.Fault))
		}
		tw.Flush()
	})
}

func summarize(r store.Run) RunSummary {
	s := RunSummary{
		Seq:        r.Seq,
		ID:         r.ID,
		Session:    r.Session,
		Ticks:      r.Ticks,
		ScopeState: r.ScopeState,
		Samples:    r.Samples,
		Fault:      r.FaultCode,
	}
	if r.FaultNode != "" {
		s.Fault += "@" + r.FaultNode
	}
	return s
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
