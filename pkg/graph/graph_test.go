package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/dagedit/pkg/dag"
	apperr "github.com/matzehuels/dagedit/pkg/errors"
)

func sample() []dag.Node {
	return []dag.Node{
		{ID: "root", Data: dag.Metadata{"owner": "ops"}},
		{ID: "b", Label: "Bee", ParentIDs: []string{"root"}},
		{ID: "a", ParentIDs: []string{"root", "b"}, Position: &dag.Point{X: 1, Y: 2}},
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Marshal(sample())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if bytes.Contains(data, []byte(`"edges"`)) {
		t.Errorf("edges written:\n%s", data)
	}

	nodes, err := Unmarshal(data, dag.InvariantOptions{})
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got := dag.NodeIDs(nodes); strings.Join(got, ",") != "root,b,a" {
		t.Errorf("order = %v, want root,b,a", got)
	}
	a := nodes[2]
	if strings.Join(a.ParentIDs, ",") != "root,b" {
		t.Errorf("parents = %v, want [root b]", a.ParentIDs)
	}
	if a.Position == nil || *a.Position != (dag.Point{X: 1, Y: 2}) {
		t.Errorf("position = %v", a.Position)
	}
	if nodes[1].Label != "Bee" {
		t.Errorf("label = %q", nodes[1].Label)
	}
	if nodes[0].Data["owner"] != "ops" {
		t.Errorf("data = %v", nodes[0].Data)
	}
}

func TestFromNodesNoAliasing(t *testing.T) {
	nodes := sample()
	g := FromNodes(nodes)
	g.Nodes[2].Parents[0] = "mutated"
	g.Nodes[2].Position.X = 99
	if nodes[2].ParentIDs[0] != "root" || nodes[2].Position.X != 1 {
		t.Error("FromNodes shares memory with its input")
	}
}

func TestUnmarshalEdges(t *testing.T) {
	data := `{"nodes":[{"id":"a"},{"id":"b","parents":["a"]},{"id":"c"}],
		"edges":[{"from":"a","to":"b"},{"from":"b","to":"c"},{"from":"a","to":"c"}]}`
	nodes, err := Unmarshal([]byte(data), dag.InvariantOptions{})
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got := strings.Join(nodes[1].ParentIDs, ","); got != "a" {
		t.Errorf("b parents = %s, want a (edge deduplicated)", got)
	}
	if got := strings.Join(nodes[2].ParentIDs, ","); got != "b,a" {
		t.Errorf("c parents = %s, want b,a", got)
	}
}

func TestUnmarshalRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
		code apperr.Code
	}{
		{"wrong shape", `[1, 2, 3]`, apperr.ErrCodeInvalidInput},
		{"dangling parent", `{"nodes":[{"id":"a","parents":["ghost"]}]}`, apperr.ErrCodeInvalidGraph},
		{"duplicate id", `{"nodes":[{"id":"a"},{"id":"a"}]}`, apperr.ErrCodeInvalidGraph},
		{"cycle", `{"nodes":[{"id":"a","parents":["b"]},{"id":"b","parents":["a"]}]}`, apperr.ErrCodeInvalidGraph},
		{"edge to unknown", `{"nodes":[{"id":"a"}],"edges":[{"from":"a","to":"x"}]}`, apperr.ErrCodeInvalidGraph},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.data), dag.InvariantOptions{})
			if err == nil {
				t.Fatal("expected error")
			}
			if code := apperr.GetCode(err); code != tt.code {
				t.Errorf("code = %s, want %s (%v)", code, tt.code, err)
			}
		})
	}
}

func TestUnmarshalAllowsCyclesByPolicy(t *testing.T) {
	data := `{"nodes":[{"id":"a","parents":["b"]},{"id":"b","parents":["a"]}]}`
	if _, err := Unmarshal([]byte(data), dag.InvariantOptions{AllowCycles: true}); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
}

func TestDecodeRepairs(t *testing.T) {
	data := `{"nodes": [{"id": "a",}, {"id": "b", "parents": ["a"],},]}`
	g, repaired, err := Decode([]byte(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !repaired {
		t.Error("repaired = false, want true")
	}
	if len(g.Nodes) != 2 || g.Nodes[1].Parents[0] != "a" {
		t.Errorf("decoded %+v", g)
	}

	_, repaired, err = Decode([]byte(`{"nodes":[]}`))
	if err != nil || repaired {
		t.Errorf("strict input: repaired=%v err=%v", repaired, err)
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := WriteFile(sample(), path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}
	nodes, err := ReadFile(path, dag.InvariantOptions{})
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(nodes) != 3 {
		t.Errorf("len = %d, want 3", len(nodes))
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.json"), dag.InvariantOptions{}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestView(t *testing.T) {
	v := View{
		Positions: map[string]dag.Point{"a": {X: 5, Y: 6}},
		Collapsed: []string{"root"},
		Hidden:    []string{"b", "a"},
	}
	if got := v.Visible([]string{"root", "b", "a"}); strings.Join(got, ",") != "root" {
		t.Errorf("Visible = %v", got)
	}

	placed := v.ApplyTo(sample())
	if *placed[2].Position != (dag.Point{X: 5, Y: 6}) {
		t.Errorf("position = %v", placed[2].Position)
	}
	if placed[0].Position != nil {
		t.Errorf("root position = %v, want nil", placed[0].Position)
	}

	path := filepath.Join(t.TempDir(), "view.json")
	if err := WriteViewFile(v, path); err != nil {
		t.Fatalf("WriteViewFile: %v", err)
	}
	back, err := ReadViewFile(path)
	if err != nil {
		t.Fatalf("ReadViewFile: %v", err)
	}
	if strings.Join(back.Hidden, ",") != "a,b" {
		t.Errorf("hidden = %v, want sorted", back.Hidden)
	}
}
