package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

// Execute runs the dagedit CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// Before any command runs, .env files and the --config file are loaded and
// the log level is set from --verbose:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// Example:
//
//	func main() {
//	    if err := cli.Execute(ctx, os.Stderr, os.Args[1:]); err != nil {
//	        os.Exit(1)
//	    }
//	}
func Execute(ctx context.Context, stderr io.Writer, args []string) error {
	var verbose bool

	c := New(stderr, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := LogInfo
		if verbose {
			level = LogDebug
		}
		c.SetLogLevel(level)
		return c.LoadConfig()
	}

	return root.ExecuteContext(ctx)
}
