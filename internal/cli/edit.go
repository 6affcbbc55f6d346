package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dagedit/pkg/graph"
)

// editCommand creates the interactive edit command.
func (c *CLI) editCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "edit [graph.json]",
		Short: "Edit a graph file interactively",
		Long: `Open a graph file in an interactive tree editor.

Nodes with several parents are shown once, under their first parent, with
the other parents listed beside them. Press s to save; positions and the
collapsed set are cached for the next session.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd.Context(), args[0], noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "do not read or update cached positions")

	return cmd
}

func (c *CLI) runEdit(ctx context.Context, path string, noCache bool) error {
	e, repaired, err := c.openDocument(path)
	if err != nil {
		return err
	}

	session, closeCache, err := c.newSession(ctx, noCache)
	if err != nil {
		return err
	}
	defer closeCache()
	graphID, keyOpts := c.sessionKey(path)
	if _, _, err := session.Restore(ctx, graphID, keyOpts, e); err != nil {
		c.Logger.Warn("initial layout failed", "err", err)
	}

	save := func() error {
		if err := graph.WriteFile(e.Nodes(), path); err != nil {
			return err
		}
		if err := session.Save(ctx, graphID, keyOpts, e); err != nil {
			c.Logger.Warn("could not cache positions", "err", err)
		}
		return nil
	}

	model := NewEditModel(ctx, e, path, save)
	if repaired {
		model.setStatus("file was repaired on load, saving rewrites it", true)
	}

	final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("editor: %w", err)
	}

	// The collapsed set and positions persist even when the document was
	// not saved.
	if err := session.Save(ctx, graphID, keyOpts, e); err != nil {
		c.Logger.Warn("could not cache positions", "err", err)
	}
	if m, ok := final.(EditModel); ok && m.Unsaved() {
		printWarning("quit with unsaved changes to %s", path)
	}
	return nil
}
