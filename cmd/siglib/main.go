// Command siglib runs signal graph sessions and manages their captures.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/chmousset/siglib/internal/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
