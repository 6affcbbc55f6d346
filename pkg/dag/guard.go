package dag

import "slices"

// Guard answers structural queries over a fixed node collection: cycle
// prediction, depth, height, closures and topological order.
//
// Edges run parent → child. Parent references to ids outside the collection
// are ignored, so a guard can reason about corrupted input. All traversals
// keep visited sets and terminate even if the input already has a cycle.
type Guard struct {
	order    []string
	index    map[string]int
	parents  map[string][]string // child -> present parents, deduplicated
	children map[string][]string // parent -> children, in collection order
}

// NewGuard indexes nodes. The slice is not retained.
func NewGuard(nodes []Node) *Guard {
	g := &Guard{
		order:    make([]string, 0, len(nodes)),
		index:    make(map[string]int, len(nodes)),
		parents:  make(map[string][]string, len(nodes)),
		children: make(map[string][]string, len(nodes)),
	}
	for _, n := range nodes {
		if _, dup := g.index[n.ID]; dup {
			continue
		}
		g.index[n.ID] = len(g.order)
		g.order = append(g.order, n.ID)
	}
	indexed := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if indexed[n.ID] {
			continue // duplicate id; first one wins
		}
		indexed[n.ID] = true
		seen := make(map[string]bool, len(n.ParentIDs))
		for _, p := range n.ParentIDs {
			if _, ok := g.index[p]; !ok || seen[p] {
				continue
			}
			seen[p] = true
			g.parents[n.ID] = append(g.parents[n.ID], p)
			g.children[p] = append(g.children[p], n.ID)
		}
	}
	return g
}

// Has reports whether id is part of the collection.
func (g *Guard) Has(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Len returns the number of distinct nodes.
func (g *Guard) Len() int { return len(g.order) }

// Parents returns the present parents of id. The slice must not be modified.
func (g *Guard) Parents(id string) []string { return g.parents[id] }

// Children returns the children of id. The slice must not be modified.
func (g *Guard) Children(id string) []string { return g.children[id] }

// HasEdge reports whether parent → child exists.
func (g *Guard) HasEdge(parent, child string) bool {
	return slices.Contains(g.parents[child], parent)
}

// WouldCreateCycle reports whether adding the edge source → target (source
// becomes a parent of target) would close a cycle. It searches breadth-first
// from target along parent → child edges and reports true if source is
// reached. A self-loop always counts as a cycle; callers that permit
// self-loops must check that case before calling.
func (g *Guard) WouldCreateCycle(source, target string) bool {
	if source == target {
		return true
	}
	visited := map[string]bool{target: true}
	queue := []string{target}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range g.children[cur] {
			if c == source {
				return true
			}
			if !visited[c] {
				visited[c] = true
				queue = append(queue, c)
			}
		}
	}
	return false
}

// Depth returns the length of the longest path from any root to id. Roots
// have depth 0. Unknown ids have depth 0. Back edges of an existing cycle
// are ignored.
func (g *Guard) Depth(id string) int {
	return g.longest(id, g.parents)
}

// Height returns the length of the longest path from id to any leaf. Leaves
// have height 0.
func (g *Guard) Height(id string) int {
	return g.longest(id, g.children)
}

// MaxDepth returns the largest depth of any node, or 0 for an empty graph.
func (g *Guard) MaxDepth() int {
	memo := make(map[string]int, len(g.order))
	onStack := make(map[string]bool)
	best := 0
	for _, id := range g.order {
		best = max(best, g.longestMemo(id, g.parents, memo, onStack))
	}
	return best
}

func (g *Guard) longest(id string, next map[string][]string) int {
	return g.longestMemo(id, next, make(map[string]int), make(map[string]bool))
}

// longestMemo computes the longest path along next with per-query memoization.
// A neighbour already on the recursion stack closes a cycle and contributes
// nothing.
func (g *Guard) longestMemo(id string, next map[string][]string, memo map[string]int, onStack map[string]bool) int {
	if d, ok := memo[id]; ok {
		return d
	}
	onStack[id] = true
	best := 0
	for _, n := range next[id] {
		if onStack[n] {
			continue
		}
		best = max(best, g.longestMemo(n, next, memo, onStack)+1)
	}
	onStack[id] = false
	memo[id] = best
	return best
}

// Ancestors returns every node that reaches id, nearest first, excluding id.
func (g *Guard) Ancestors(id string) []string { return g.closure(id, g.parents) }

// Descendants returns every node reachable from id, nearest first, excluding id.
func (g *Guard) Descendants(id string) []string { return g.closure(id, g.children) }

// DescendantSet returns the descendant closure of all ids as a set. The
// starting ids themselves are only included when reachable from another
// starting id.
func (g *Guard) DescendantSet(ids ...string) map[string]bool {
	out := make(map[string]bool)
	for _, id := range ids {
		for _, d := range g.Descendants(id) {
			out[d] = true
		}
	}
	return out
}

func (g *Guard) closure(id string, next map[string][]string) []string {
	visited := map[string]bool{id: true}
	queue := []string{id}
	var out []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range next[cur] {
			if visited[n] {
				continue
			}
			visited[n] = true
			out = append(out, n)
			queue = append(queue, n)
		}
	}
	return out
}

// Roots returns nodes without present parents, in collection order.
func (g *Guard) Roots() []string {
	var out []string
	for _, id := range g.order {
		if len(g.parents[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Leaves returns nodes without children, in collection order.
func (g *Guard) Leaves() []string {
	var out []string
	for _, id := range g.order {
		if len(g.children[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// TopologicalOrder returns a root-to-leaf ordering using Kahn's algorithm.
// Ties are broken by collection order, so the result is deterministic.
//
// If the collection contains a cycle, the nodes that could not be ordered are
// appended in collection order and complete is false.
func (g *Guard) TopologicalOrder() (order []string, complete bool) {
	indeg := make(map[string]int, len(g.order))
	var queue []string
	for _, id := range g.order {
		indeg[id] = len(g.parents[id])
		if indeg[id] == 0 {
			queue = append(queue, id)
		}
	}

	order = make([]string, 0, len(g.order))
	placed := make(map[string]bool, len(g.order))
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)
		placed[cur] = true
		for _, c := range g.children[cur] {
			indeg[c]--
			if indeg[c] == 0 {
				queue = append(queue, c)
			}
		}
	}

	if len(order) == len(g.order) {
		return order, true
	}
	for _, id := range g.order {
		if !placed[id] {
			order = append(order, id)
		}
	}
	return order, false
}

// HasCycle reports whether the collection contains a directed cycle,
// self-loops included.
func (g *Guard) HasCycle() bool {
	_, complete := g.TopologicalOrder()
	return !complete
}
