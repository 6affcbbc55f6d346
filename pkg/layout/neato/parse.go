package neato

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/dagedit/pkg/dag"
)

// nodePosRe matches a node statement and its pos attribute. Edge statements
// never match because their id is followed by an arrow, not a bracket.
var nodePosRe = regexp.MustCompile(`(?m)^\s*("(?:[^"\\]|\\.)*"|[A-Za-z0-9_.]+)\s*\[[^\]]*?\bpos="([-+0-9.eE]+),([-+0-9.eE]+)!?"`)

// ParsePositions extracts node positions from rendered DOT output and
// converts them to canvas coordinates.
func ParsePositions(out []byte) (map[string]dag.Point, error) {
	// Graphviz folds long attribute lists with a backslash-newline.
	text := strings.ReplaceAll(string(out), "\\\n", "")

	positions := make(map[string]dag.Point)
	for _, m := range nodePosRe.FindAllStringSubmatch(text, -1) {
		id := m[1]
		switch id {
		case "graph", "node", "edge":
			continue
		}
		if strings.HasPrefix(id, `"`) {
			id = unquote(id)
		}
		x, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return nil, fmt.Errorf("parse x of %q: %w", id, err)
		}
		y, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			return nil, fmt.Errorf("parse y of %q: %w", id, err)
		}
		positions[id] = dag.Point{X: x, Y: -y}
	}
	return positions, nil
}

func unquote(s string) string {
	s = s[1 : len(s)-1]
	return strings.NewReplacer(`\"`, `"`, `\\`, `\`).Replace(s)
}
