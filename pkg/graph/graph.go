package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kaptinlin/jsonrepair"

	"github.com/matzehuels/dagedit/pkg/dag"
	apperr "github.com/matzehuels/dagedit/pkg/errors"
)

// =============================================================================
// Serialization API
// =============================================================================

// Marshal converts nodes to indented JSON.
func Marshal(nodes []dag.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(nodes, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes nodes as JSON to w.
func Write(nodes []dag.Node, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromNodes(nodes)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes nodes to a JSON file. The file is replaced atomically
// and created with 0644 permissions.
func WriteFile(nodes []dag.Node, path string) error {
	data, err := Marshal(nodes)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadFile reads and verifies a JSON document.
func ReadFile(path string, opts dag.InvariantOptions) ([]dag.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return Unmarshal(data, opts)
}

// Read decodes and verifies a JSON document from r.
func Read(r io.Reader, opts dag.InvariantOptions) ([]dag.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Unmarshal(data, opts)
}

// Unmarshal decodes and verifies a JSON document.
func Unmarshal(data []byte, opts dag.InvariantOptions) ([]dag.Node, error) {
	g, _, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return ToNodes(g, opts)
}

// Decode parses a document without verifying it. When strict decoding
// fails the input is run through jsonrepair and decoded again; repaired
// reports whether that fallback was used.
func Decode(data []byte) (g Graph, repaired bool, err error) {
	strictErr := json.Unmarshal(data, &g)
	if strictErr == nil {
		return g, false, nil
	}

	fixed, repairErr := jsonrepair.JSONRepair(string(data))
	if repairErr != nil {
		return Graph{}, false, apperr.Wrap(apperr.ErrCodeInvalidInput, strictErr, "decode graph")
	}
	g = Graph{}
	if err := json.Unmarshal([]byte(fixed), &g); err != nil {
		return Graph{}, false, apperr.Wrap(apperr.ErrCodeInvalidInput, strictErr, "decode graph")
	}
	return g, true, nil
}
