package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/dagedit/pkg/errors"
	"github.com/matzehuels/dagedit/pkg/graph"
)

// applyCommand creates the apply command for scripted edits.
func (c *CLI) applyCommand() *cobra.Command {
	var (
		output  string
		dryRun  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "apply [graph.json] [edit...]",
		Short: "Apply edits to a graph file",
		Long: `Apply a sequence of edits to a graph file.

Edits run in order with full validation, exactly as in the interactive
editor. The first rejected edit aborts the run and nothing is written.
Undo and redo with an empty history are skipped with a warning.

Edits:
` + editUsage + `

Example:
  dagedit apply org.json add:eve:ops parent:eve:security delete:bob`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops := make([]editOp, 0, len(args)-1)
			for _, a := range args[1:] {
				op, err := parseEdit(a)
				if err != nil {
					return err
				}
				ops = append(ops, op)
			}
			return c.runApply(cmd.Context(), args[0], ops, output, dryRun, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "print the result instead of writing it")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "do not read or update cached positions")

	return cmd
}

// runApply loads input, applies ops and writes the result.
func (c *CLI) runApply(ctx context.Context, input string, ops []editOp, output string, dryRun, noCache bool) error {
	e, _, err := c.openDocument(input)
	if err != nil {
		return err
	}

	session, closeCache, err := c.newSession(ctx, noCache || dryRun)
	if err != nil {
		return err
	}
	defer closeCache()
	graphID, keyOpts := c.sessionKey(input)
	if _, _, err := session.Restore(ctx, graphID, keyOpts, e); err != nil {
		c.Logger.Warn("initial layout failed", "err", err)
	}

	prog := newProgress(c.Logger)
	for i, op := range ops {
		err := op.apply(ctx, e)
		switch {
		case err == nil:
			c.Logger.Debug("edit applied", "n", i+1, "edit", op)
		case apperr.IsHistoryUnderflow(err):
			printWarning("%s: %s", op, apperr.UserMessage(err))
		default:
			printError("edit %d (%s) rejected", i+1, op)
			return err
		}
	}
	prog.done("edits applied", "count", len(ops), "nodes", e.Len())

	if dryRun {
		return graph.Write(e.Nodes(), os.Stdout)
	}

	if output == "" {
		output = input
	}
	if err := graph.WriteFile(e.Nodes(), output); err != nil {
		return err
	}
	outID, outOpts := c.sessionKey(output)
	if err := session.Save(ctx, outID, outOpts, e); err != nil {
		c.Logger.Warn("could not cache positions", "err", err)
	}

	printSuccess("Applied %d edit(s)", len(ops))
	printFile(output)
	printStats(e.Len(), edgeCount(e.Nodes()), false)
	return nil
}
