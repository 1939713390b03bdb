/*
PURPOSE:
  Entry point for the UA Bench harness.
  Initializes the CLI root command and executes it.

REQUIREMENTS:
  User-specified:
  - Must serve as the single binary entry point.
  - Exit 0 when the run completed, even with adapter failures;
    non-zero only when it could not start.

ARCHITECTURE INTEGRATION:
  - Calls: internal/cli.Execute()

ERROR HANDLING:
  - Explicit error check on Execute(); exit code 1 on failure.

IMPLEMENTATION RULES:
  - Critical: Keep main() minimal. All logic belongs in internal/ packages.

USAGE:
  go build -o ua-bench ./cmd/ua-bench
  ./ua-bench [command] [flags]

RELATED FILES:
  - internal/cli/root.go - The actual root command definition.
*/

package main

import (
	"fmt"
	"os"

	"github.com/daryltucker/ua-bench/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
