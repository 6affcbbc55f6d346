// Package pkg provides the core libraries for dagedit, an editing engine for
// multi-parent hierarchies.
//
// # Overview
//
// A document is a list of nodes, each carrying an ordered list of parent
// ids, so any node may sit under several parents. Every edit is checked
// against a validation policy before it touches the document, recorded for
// undo and laid out without disturbing the nodes it did not affect. The pkg
// directory is organized into four main areas:
//
//  1. Structure - [dag] stores nodes and answers graph queries
//  2. Editing - [validate], [mutate], [history] and [collapse] check, apply,
//     record and fold edits
//  3. Layout - [layout] keeps positions stable across edits; [layout/force]
//     and [layout/neato] are the engines behind it
//  4. Hosting - [editor] ties the above together; [graph], [config] and
//     [cache] load, configure and persist it
//
// # Architecture
//
// The flow of one edit through the engine:
//
//	    host (CLI, TUI, ...)
//	         ↓
//	    [editor] operation
//	         ↓
//	    [validate] policy check ──✗──→ coded error, document untouched
//	         ↓
//	    [history] snapshot
//	         ↓
//	    [mutate] change + events
//	         ↓
//	    [collapse] refresh
//	         ↓
//	    [layout] stabilizer pass
//
// # Quick Start
//
// Load a document, add a second parent and undo it:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/dagedit/pkg/editor"
//	    "github.com/matzehuels/dagedit/pkg/graph"
//	)
//
//	nodes, _ := graph.ReadFile("org.json", dag.InvariantOptions{})
//
//	e := editor.New(editor.Options{})
//	_ = e.Load(nodes)
//	_, _ = e.Sync(ctx)
//
//	if _, err := e.AddParent(ctx, "eve", "security"); err != nil {
//	    fmt.Println(errors.UserMessage(err))
//	}
//	_, _ = e.Undo(ctx)
//
// # Main Packages
//
// [dag] - Node store with insertion order and a logical clock, plus a
// read-only [dag.Guard] for roots, depths, topological order and cycle
// checks.
//
// [validate] - Policy checks for every structural edit: self-loops, cycles,
// parent limits, depth limits and a custom predicate run under a timeout.
//
// [mutate] - Applies validated changes to the store and publishes events to
// subscribers.
//
// [history] - Bounded undo and redo stacks of document snapshots.
//
// [collapse] - Folded subtrees and the hidden set they imply.
//
// [layout] - The stabilizer: pins unaffected nodes, seeds new ones near
// their parents and caches settled positions.
//
// [editor] - The facade hosts use, and [editor.Session] for persisting
// positions and folds between runs.
//
// [graph] - JSON document and view formats.
//
// [config] - TOML configuration with DAGEDIT_* environment overrides.
//
// [cache] - Memory, file and Redis backends for session state.
//
// [errors] - Coded errors shared by all packages.
//
// # Testing
//
// Run tests:
//
//	go test ./...                        # All tests
//	go test ./pkg/editor/...             # Specific package
//	go test -run Example ./pkg/...       # Examples only
//	go test -tags integration ./pkg/...  # Include Redis tests
//
// [dag]: https://pkg.go.dev/github.com/matzehuels/dagedit/pkg/dag
// [validate]: https://pkg.go.dev/github.com/matzehuels/dagedit/pkg/validate
// [mutate]: https://pkg.go.dev/github.com/matzehuels/dagedit/pkg/mutate
// [history]: https://pkg.go.dev/github.com/matzehuels/dagedit/pkg/history
// [collapse]: https://pkg.go.dev/github.com/matzehuels/dagedit/pkg/collapse
// [layout]: https://pkg.go.dev/github.com/matzehuels/dagedit/pkg/layout
// [layout/force]: https://pkg.go.dev/github.com/matzehuels/dagedit/pkg/layout/force
// [layout/neato]: https://pkg.go.dev/github.com/matzehuels/dagedit/pkg/layout/neato
// [editor]: https://pkg.go.dev/github.com/matzehuels/dagedit/pkg/editor
// [editor.Session]: https://pkg.go.dev/github.com/matzehuels/dagedit/pkg/editor#Session
// [graph]: https://pkg.go.dev/github.com/matzehuels/dagedit/pkg/graph
// [config]: https://pkg.go.dev/github.com/matzehuels/dagedit/pkg/config
// [cache]: https://pkg.go.dev/github.com/matzehuels/dagedit/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/dagedit/pkg/errors
// [dag.Guard]: https://pkg.go.dev/github.com/matzehuels/dagedit/pkg/dag#Guard
package pkg
