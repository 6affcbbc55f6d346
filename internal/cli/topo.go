package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dagedit/pkg/dag"
)

// topoCommand creates the topo command for printing a topological order.
func (c *CLI) topoCommand() *cobra.Command {
	var tree bool

	cmd := &cobra.Command{
		Use:   "topo [graph.json]",
		Short: "Print nodes in topological order",
		Long: `Print the nodes of a graph file in root-to-leaf order, one per line.

Ties are broken by file order, so the output is stable. With --tree every
node is indented by its depth and shown with its label and parents.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := c.openDocument(args[0])
			if err != nil {
				return err
			}
			return writeTopo(os.Stdout, e.Nodes(), tree)
		},
	}

	cmd.Flags().BoolVarP(&tree, "tree", "t", false, "indent by depth and show labels")

	return cmd
}

// writeTopo writes nodes in topological order. Nodes on a cycle (only
// possible when the policy allows cycles) come last in file order.
func writeTopo(w io.Writer, nodes []dag.Node, tree bool) error {
	g := dag.NewGuard(nodes)
	order, complete := g.TopologicalOrder()
	labels := make(map[string]string, len(nodes))
	for _, n := range nodes {
		labels[n.ID] = n.DisplayLabel()
	}

	for _, id := range order {
		if !tree {
			if _, err := fmt.Fprintln(w, id); err != nil {
				return err
			}
			continue
		}
		line := strings.Repeat("  ", g.Depth(id)) + id
		if labels[id] != id {
			line += " " + StyleDim.Render("("+labels[id]+")")
		}
		if parents := g.Parents(id); len(parents) > 1 {
			line += " " + styleCommand.Render(iconArrow+" "+strings.Join(parents, ", "))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if !complete {
		printWarning("graph contains a cycle; unordered nodes are listed last")
	}
	return nil
}
