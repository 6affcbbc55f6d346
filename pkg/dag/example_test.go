package dag_test

import (
	"fmt"

	"github.com/matzehuels/dagedit/pkg/dag"
)

func ExampleStore_basic() {
	// A -> B -> C
	s := dag.New()
	_ = s.Insert(dag.Node{ID: "A"})
	_ = s.Insert(dag.Node{ID: "B", ParentIDs: []string{"A"}})
	_ = s.Insert(dag.Node{ID: "C", ParentIDs: []string{"B"}})

	fmt.Println("Nodes:", s.Len())
	fmt.Println("Children of A:", s.Children("A"))
	fmt.Println("Parents of C:", s.Parents("C"))
	// Output:
	// Nodes: 3
	// Children of A: [B]
	// Parents of C: [B]
}

func ExampleStore_Delete() {
	s := dag.New()
	_ = s.Insert(dag.Node{ID: "A"})
	_ = s.Insert(dag.Node{ID: "B", ParentIDs: []string{"A"}})
	_ = s.Insert(dag.Node{ID: "C", ParentIDs: []string{"B"}})

	severed, _ := s.Delete("B")
	c, _ := s.Node("C")
	fmt.Println("Severed:", severed)
	fmt.Println("C is root:", c.IsRoot())
	// Output:
	// Severed: [C]
	// C is root: true
}

func ExampleGuard_WouldCreateCycle() {
	s := dag.New()
	_ = s.Insert(dag.Node{ID: "A"})
	_ = s.Insert(dag.Node{ID: "B", ParentIDs: []string{"A"}})
	_ = s.Insert(dag.Node{ID: "C", ParentIDs: []string{"B"}})

	g := s.Guard()
	fmt.Println("C -> A:", g.WouldCreateCycle("C", "A"))
	fmt.Println("A -> C:", g.WouldCreateCycle("A", "C"))
	fmt.Println("Depth of C:", g.Depth("C"))
	fmt.Println("Height of A:", g.Height("A"))
	// Output:
	// C -> A: true
	// A -> C: false
	// Depth of C: 2
	// Height of A: 2
}

func ExampleGuard_TopologicalOrder() {
	// Diamond: root fans out to left and right, both feed leaf.
	nodes := []dag.Node{
		{ID: "leaf", ParentIDs: []string{"left", "right"}},
		{ID: "left", ParentIDs: []string{"root"}},
		{ID: "right", ParentIDs: []string{"root"}},
		{ID: "root"},
	}
	order, complete := dag.NewGuard(nodes).TopologicalOrder()
	fmt.Println(order, complete)
	// Output:
	// [root left right leaf] true
}
