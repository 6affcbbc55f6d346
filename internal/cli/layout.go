package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dagedit/pkg/editor"
	"github.com/matzehuels/dagedit/pkg/graph"
)

// layoutCommand creates the layout command for placing nodes on the canvas.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		engine  string
		embed   bool
		reset   bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute node positions for a graph file",
		Long: `Compute node positions for a graph file.

Positions from the previous run are restored from the cache, so only nodes
added since then are placed and everything else stays where it was. Use
--reset to lay out the whole graph from scratch.

The result is written as a view file (<input>.view.json) holding positions
and the collapsed set. With --embed the positions are stored in the graph
file itself instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if engine != "" {
				c.Config.Layout.Engine = engine
				if err := c.Config.Validate(); err != nil {
					return err
				}
			}
			return c.runLayout(cmd.Context(), args[0], output, embed, reset, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "view file (default: <input>.view.json)")
	cmd.Flags().StringVarP(&engine, "engine", "e", "", "layout engine: force, neato, hold (default from config)")
	cmd.Flags().BoolVar(&embed, "embed", false, "write positions into the graph file")
	cmd.Flags().BoolVar(&reset, "reset", false, "ignore cached positions")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runLayout loads the graph, places its nodes, and writes the output.
func (c *CLI) runLayout(ctx context.Context, input, output string, embed, reset, noCache bool) error {
	e, _, err := c.openDocument(input)
	if err != nil {
		return err
	}

	session, closeCache, err := c.newSession(ctx, noCache)
	if err != nil {
		return err
	}
	defer closeCache()
	graphID, keyOpts := c.sessionKey(input)

	spinner := newSpinner(ctx, fmt.Sprintf("Computing %s layout...", c.Config.Layout.Engine))
	spinner.Start()

	var (
		restored bool
		u        editor.Update
	)
	if reset {
		_, _, err = session.Restore(ctx, graphID, keyOpts, e)
		if err == nil {
			u, err = e.ResetLayout(ctx)
		}
	} else {
		restored, u, err = session.Restore(ctx, graphID, keyOpts, e)
	}
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	c.Logger.Debug("layout pass", "full", u.Layout.Full, "affected", len(u.Layout.Affected), "moved", len(u.Layout.Moved))

	if err := session.Save(ctx, graphID, keyOpts, e); err != nil {
		c.Logger.Warn("could not cache positions", "err", err)
	}

	if embed {
		if err := graph.WriteFile(e.PlacedNodes(), input); err != nil {
			return err
		}
		output = input
	} else {
		if output == "" {
			output = viewPath(input)
		}
		if err := graph.WriteViewFile(viewOf(e, c.Config.Layout.Engine), output); err != nil {
			return err
		}
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(e.Len(), edgeCount(e.Nodes()), restored)
	printNewline()
	printNextStep("Edit", "dagedit edit "+input)

	return nil
}

// viewOf captures the presentation state of e.
func viewOf(e *editor.Editor, engine string) graph.View {
	vp := e.Viewport()
	return graph.View{
		Engine:    engine,
		Width:     vp.Width,
		Height:    vp.Height,
		Positions: e.Positions(),
		Collapsed: e.Collapsed(),
		Hidden:    e.Hidden(),
	}
}
