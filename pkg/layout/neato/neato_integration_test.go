//go:build integration

package neato

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/dagedit/pkg/dag"
	"github.com/matzehuels/dagedit/pkg/layout"
)

func TestNeatoKeepsPinnedFrame(t *testing.T) {
	s := layout.NewStabilizer(New(Options{}), layout.Options{})
	nodes := []dag.Node{
		{ID: "a"},
		{ID: "b", ParentIDs: []string{"a"}},
		{ID: "c", ParentIDs: []string{"a"}},
	}
	_, err := s.Apply(context.Background(), nodes, layout.Full())
	require.NoError(t, err)
	before := s.Cache().Positions()

	nodes = append(nodes, dag.Node{ID: "d", ParentIDs: []string{"c"}})
	out, err := s.Apply(context.Background(), nodes, layout.Added("d"))
	require.NoError(t, err)
	for id, p := range before {
		assert.Equal(t, p, out.Positions[id], "%s moved", id)
	}
	assert.Contains(t, out.Positions, "d")
}
