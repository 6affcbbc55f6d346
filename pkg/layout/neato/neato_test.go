package neato

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/dagedit/pkg/dag"
	"github.com/matzehuels/dagedit/pkg/layout"
)

const rendered = `digraph G {
	graph [bb="0,0,170,116",
		inputscale=72,
		notranslate=true
	];
	node [label="\N",
		shape=box
	];
	a	[height=0.5,
		pin=true,
		pos="27,-18!",
		width=0.75];
	"b \"c\""	[height=0.5,
		pos="103.5,-98",
		width=1.0694];
	a -> "b \"c\""	[pos="e,90,-80 40,-36 55,-50 70,-64"];
}
`

func TestParsePositions(t *testing.T) {
	got, err := ParsePositions([]byte(rendered))
	require.NoError(t, err)
	assert.Equal(t, map[string]dag.Point{
		"a":     {X: 27, Y: 18},
		`b "c"`:   {X: 103.5, Y: 98},
	}, got)
}

func TestParsePositionsFolded(t *testing.T) {
	out := "digraph {\n\tlong\t[pos=\"1,\\\n-2\"];\n}\n"
	got, err := ParsePositions([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, dag.Point{X: 1, Y: 2}, got["long"])
}

func TestToDOT(t *testing.T) {
	req := layout.Request{
		Nodes: []layout.RequestNode{
			{ID: "child", Position: dag.Point{X: 10, Y: 20}},
			{ID: `odd "id"`, Position: dag.Point{X: 0, Y: 5}, Pinned: true},
		},
		Edges: []layout.Edge{{Parent: `odd "id"`, Child: "child"}},
	}
	dot := ToDOT(req, New(Options{}).opts)

	assert.Contains(t, dot, `"child" [pos="10.00,-20.00"];`)
	assert.Contains(t, dot, `"odd \"id\"" [pos="0.00,-5.00!", pin=true];`)
	assert.Contains(t, dot, `"odd \"id\"" -> "child";`)
	assert.Contains(t, dot, `overlap="prism";`)
	assert.NotContains(t, dot, "mode=hier")
}

func TestAlignFollowsPins(t *testing.T) {
	req := layout.Request{Nodes: []layout.RequestNode{
		{ID: "p", Position: dag.Point{X: 100, Y: 100}, Pinned: true},
		{ID: "c", Position: dag.Point{X: 0, Y: 0}},
	}}
	// Neato translated the drawing by (-90, -90).
	got := map[string]dag.Point{"p": {X: 10, Y: 10}, "c": {X: 10, Y: 100}}
	out, err := Align(req, got)
	require.NoError(t, err)
	assert.Equal(t, map[string]dag.Point{"c": {X: 100, Y: 190}}, out)
}

func TestAlignCentresFreeLayouts(t *testing.T) {
	req := layout.Request{
		Nodes:    []layout.RequestNode{{ID: "a"}, {ID: "b"}},
		Viewport: layout.Viewport{Width: 200, Height: 100},
	}
	got := map[string]dag.Point{"a": {X: 0, Y: 0}, "b": {X: 20, Y: 0}}
	out, err := Align(req, got)
	require.NoError(t, err)
	assert.Equal(t, dag.Point{X: 90, Y: 50}, out["a"])
	assert.Equal(t, dag.Point{X: 110, Y: 50}, out["b"])
}

func TestAlignMissingNode(t *testing.T) {
	req := layout.Request{Nodes: []layout.RequestNode{{ID: "a"}}}
	_, err := Align(req, map[string]dag.Point{})
	assert.Error(t, err)
}
