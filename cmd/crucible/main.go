package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "crucible",
	Short: "Crucible - web chat with sandboxed code execution",
	Long: `Crucible is a web chat application whose editor can execute untrusted
code inside an in-process sandbox with constrained globals and a wall-clock
budget.

Run the web server with "crucible serve", execute a file directly with
"crucible run", or experiment interactively with "crucible repl".`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
