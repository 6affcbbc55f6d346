package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/dagedit/pkg/errors"
)

// checkCommand creates the check command for validating graph files.
func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [graph.json]",
		Short: "Validate a graph file against the policy",
		Long: `Validate a graph file against the configured policy.

Structural problems (unknown parents, duplicate ids, cycles unless allowed)
make the file unreadable and are reported as errors. Depth and parent limits
are only enforced on edits, so a file that exceeds them still loads; check
reports those as well and fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(args[0])
		},
	}
}

// runCheck loads the file and prints its shape.
func (c *CLI) runCheck(path string) error {
	e, repaired, err := c.openDocument(path)
	if err != nil {
		printError("%s is invalid", path)
		return err
	}

	nodes := e.Nodes()
	g := e.Guard()
	multi := 0
	widest := 0
	for _, n := range nodes {
		if len(n.ParentIDs) > 1 {
			multi++
		}
		widest = max(widest, len(n.ParentIDs))
	}
	depth := g.MaxDepth()

	printSuccess("%s loads", path)
	printKeyValue("nodes", strconv.Itoa(len(nodes)))
	printKeyValue("links", strconv.Itoa(edgeCount(nodes)))
	printKeyValue("roots", strconv.Itoa(len(g.Roots())))
	printKeyValue("leaves", strconv.Itoa(len(g.Leaves())))
	printKeyValue("multi-parent", strconv.Itoa(multi))
	printKeyValue("depth", strconv.Itoa(depth))
	if repaired {
		printWarning("file contains malformed JSON; it will be rewritten on the next save")
	}

	policy := c.Config.ValidationPolicy()
	if policy.MaxDepth > 0 && depth > policy.MaxDepth {
		return apperr.New(apperr.ErrCodeMaxDepthExceeded, "depth %d exceeds policy.max_depth %d", depth, policy.MaxDepth)
	}
	if policy.MaxParents > 0 && widest > policy.MaxParents {
		return apperr.New(apperr.ErrCodeMaxParentsExceeded,
			"a node has %d parents, policy.max_parents is %d", widest, policy.MaxParents)
	}
	return nil
}
