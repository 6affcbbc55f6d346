package graph

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/matzehuels/dagedit/pkg/dag"
)

// View is the presentation state of a document: where nodes were placed
// and which subtrees are folded away.
type View struct {
	Engine    string               `json:"engine,omitempty"`
	Width     float64              `json:"width"`
	Height    float64              `json:"height"`
	Positions map[string]dag.Point `json:"positions"`
	Collapsed []string             `json:"collapsed,omitempty"`
	Hidden    []string             `json:"hidden,omitempty"`
}

// Visible returns the ids of nodes not in the hidden set, in the given
// order.
func (v View) Visible(order []string) []string {
	return slices.DeleteFunc(slices.Clone(order), func(id string) bool {
		return slices.Contains(v.Hidden, id)
	})
}

// ApplyTo returns copies of nodes with Position set from the view. Nodes
// missing from the view keep their own position.
func (v View) ApplyTo(nodes []dag.Node) []dag.Node {
	out := dag.CloneNodes(nodes)
	for i := range out {
		if p, ok := v.Positions[out[i].ID]; ok {
			out[i].Position = &p
		}
	}
	return out
}

// MarshalView converts a view to indented JSON. Ids are sorted for
// deterministic output.
func MarshalView(v View) ([]byte, error) {
	v.Positions = maps.Clone(v.Positions)
	if v.Positions == nil {
		v.Positions = map[string]dag.Point{}
	}
	v.Collapsed = slices.Sorted(slices.Values(v.Collapsed))
	v.Hidden = slices.Sorted(slices.Values(v.Hidden))
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode view: %w", err)
	}
	return append(data, '\n'), nil
}

// UnmarshalView parses a view.
func UnmarshalView(data []byte) (View, error) {
	var v View
	if err := json.Unmarshal(data, &v); err != nil {
		return View{}, fmt.Errorf("decode view: %w", err)
	}
	return v, nil
}

// ReadViewFile reads a view from a JSON file.
func ReadViewFile(path string) (View, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return View{}, fmt.Errorf("open %s: %w", path, err)
	}
	return UnmarshalView(data)
}

// WriteViewFile writes a view to a JSON file.
func WriteViewFile(v View, path string) error {
	data, err := MarshalView(v)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
