package cli

import (
	"context"
	"strings"

	"github.com/matzehuels/dagedit/pkg/dag"
	"github.com/matzehuels/dagedit/pkg/editor"
	apperr "github.com/matzehuels/dagedit/pkg/errors"
)

// editOp is one command-line edit such as "parent:C:A".
type editOp struct {
	Kind string
	Args []string
}

// editKinds maps each edit kind to its number of ":"-separated arguments.
// The last argument of "add" (the parent list) is optional.
var editKinds = map[string]int{
	"add":      2,
	"label":    2,
	"parent":   2,
	"unparent": 2,
	"reparent": 2,
	"parents":  2,
	"detach":   1,
	"delete":   1,
	"collapse": 1,
	"expand":   1,
	"reveal":   1,
	"undo":     0,
	"redo":     0,
}

// editUsage documents the edit syntax for help texts.
const editUsage = `  add:ID[:P1,P2]        add a node, optionally under parents (ID "_" = random)
  label:ID:TEXT         set the display label
  parent:CHILD:PARENT   add a parent
  unparent:CHILD:PARENT remove a parent
  reparent:CHILD:PARENT replace all parents with one
  parents:CHILD:P1,P2   replace the parent list (empty = detach)
  detach:CHILD          remove all parents
  delete:ID             remove a node and its links
  collapse:ID           hide the descendants of a node
  expand:ID             show them again
  reveal:ID             expand every collapsed ancestor of a node
  undo, redo            step through history`

// parseEdit parses "kind:arg:arg". Labels may contain ":".
func parseEdit(s string) (editOp, error) {
	kind, rest, hasArgs := strings.Cut(s, ":")
	want, ok := editKinds[kind]
	if !ok {
		return editOp{}, apperr.New(apperr.ErrCodeInvalidInput, "unknown edit %q", kind)
	}
	if want == 0 {
		if hasArgs {
			return editOp{}, apperr.New(apperr.ErrCodeInvalidInput, "%s takes no arguments", kind)
		}
		return editOp{Kind: kind}, nil
	}
	var args []string
	if hasArgs {
		args = strings.SplitN(rest, ":", want)
	}

	n := len(args)
	switch {
	case kind == "add" && n == 1:
		args = append(args, "")
	case n != want:
		return editOp{}, apperr.New(apperr.ErrCodeInvalidInput, "%s needs %d argument(s), got %q", kind, want, s)
	}
	if args[0] == "" {
		return editOp{}, apperr.New(apperr.ErrCodeInvalidInput, "%s: missing node id", kind)
	}
	return editOp{Kind: kind, Args: args}, nil
}

// splitIDs splits a comma-separated id list, dropping empty entries.
func splitIDs(s string) []string {
	var out []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// apply runs the edit against e.
func (op editOp) apply(ctx context.Context, e *editor.Editor) error {
	var err error
	switch op.Kind {
	case "add":
		id := op.Args[0]
		if id == "_" {
			id = ""
		}
		_, err = e.AddNode(ctx, dag.Node{ID: id, ParentIDs: splitIDs(op.Args[1])})
	case "label":
		n, ok := e.Node(op.Args[0])
		if !ok {
			return apperr.New(apperr.ErrCodeNodeNotFound, "node %q not found", op.Args[0])
		}
		n.Label = op.Args[1]
		_, err = e.UpdateNode(ctx, n)
	case "parent":
		_, err = e.AddParent(ctx, op.Args[0], op.Args[1])
	case "unparent":
		_, err = e.RemoveParent(ctx, op.Args[0], op.Args[1])
	case "reparent":
		_, err = e.Reparent(ctx, op.Args[0], op.Args[1])
	case "parents":
		_, err = e.SetParents(ctx, op.Args[0], splitIDs(op.Args[1]))
	case "detach":
		_, err = e.Detach(ctx, op.Args[0])
	case "delete":
		_, err = e.DeleteNode(ctx, op.Args[0])
	case "collapse":
		err = e.Collapse(ctx, op.Args[0])
	case "expand":
		err = e.Expand(ctx, op.Args[0])
	case "reveal":
		_, err = e.Reveal(ctx, op.Args[0])
	case "undo":
		_, err = e.Undo(ctx)
	case "redo":
		_, err = e.Redo(ctx)
	}
	return err
}

// String returns the edit in command-line syntax.
func (op editOp) String() string {
	return strings.Join(append([]string{op.Kind}, op.Args...), ":")
}
