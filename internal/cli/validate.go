package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chmousset/siglib/internal/session"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool              `json:"valid"`
	Session    string            `json:"session,omitempty"`
	FloatNodes int               `json:"float_nodes"`
	IntNodes   int               `json:"int_nodes"`
	MaxSamples int               `json:"max_samples,omitempty"`
	Errors     []ValidationError `json:"errors,omitempty"`
}

// ValidationError is one problem found in a session.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <session-file>",
		Short: "Validate a session without running it",
		Long: `Validate a session file without running it.

Parses the file, checks the schema and node parameters, loads the data
file and builds both graphs, reporting unknown references and cycles.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	sess, err := session.Load(path)
	if err != nil {
		code := ErrCodeLoadFailed
		if errors.Is(err, fs.ErrNotExist) {
			code = ErrCodeNotFound
		}
		return outputValidationErrors(formatter, ValidationResult{}, code, err)
	}
	formatter.VerboseLog("Loaded session %s", sess.Name)

	result := ValidationResult{
		Session:    sess.Name,
		FloatNodes: len(sess.Floats),
		IntNodes:   len(sess.Ints),
	}

	table, err := sess.LoadData()
	if err != nil {
		return outputValidationErrors(formatter, result, ErrCodeLoadFailed, err)
	}
	if table != nil {
		formatter.VerboseLog("Loaded %d rows of %v from %s", table.Rows(), table.Names(), sess.DataPath())
	}

	built, err := sess.Build(table)
	if err != nil {
		return outputValidationErrors(formatter, result, ErrCodeBuildFailed, err)
	}
	if built.Scope != nil {
		result.MaxSamples = built.Scope.MaxSamples()
	}

	result.Valid = true
	return formatter.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Session %s is valid (%d float nodes, %d int nodes", result.Session, result.FloatNodes, result.IntNodes)
		if built.Scope != nil {
			fmt.Fprintf(w, ", scope holds %d samples", result.MaxSamples)
		}
		fmt.Fprintln(w, ")")
	})
}

// outputValidationErrors reports every line of err as its own problem.
// Joined errors print one cause per line.
func outputValidationErrors(f *OutputFormatter, result ValidationResult, code string, err error) error {
	for _, line := range strings.Split(err.Error(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			result.Errors = append(result.Errors, ValidationError{Code: code, Message: line})
		}
	}

	if f.Format == "json" {
		if outErr := f.Error(code, "validation failed", result); outErr != nil {
			return outErr
		}
	} else {
		fmt.Fprintf(f.Writer, "✗ Validation failed with %d error(s):\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(f.Writer, "  [%s] %s\n", e.Code, e.Message)
		}
	}

	exitCode := ExitFailure
	if code == ErrCodeNotFound {
		exitCode = ExitCommandError
	}
	return WrapExitError(exitCode, "validation failed", err)
}
