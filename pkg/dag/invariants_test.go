package dag

import (
	"errors"
	"testing"

	apperr "github.com/matzehuels/dagedit/pkg/errors"
)

func TestCheckInvariants(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []Node
		opts    InvariantOptions
		wantErr error
	}{
		{
			name:  "empty",
			nodes: nil,
		},
		{
			name: "diamond",
			nodes: []Node{
				{ID: "A"},
				{ID: "B", ParentIDs: []string{"A"}},
				{ID: "C", ParentIDs: []string{"A"}},
				{ID: "D", ParentIDs: []string{"B", "C"}},
			},
		},
		{
			name:    "empty id",
			nodes:   []Node{{ID: ""}},
			wantErr: ErrInvalidNodeID,
		},
		{
			name:    "duplicate id",
			nodes:   []Node{{ID: "A"}, {ID: "A"}},
			wantErr: ErrDuplicateNodeID,
		},
		{
			name:    "duplicate parent",
			nodes:   []Node{{ID: "A"}, {ID: "B", ParentIDs: []string{"A", "A"}}},
			wantErr: ErrDuplicateParent,
		},
		{
			name:    "dangling parent",
			nodes:   []Node{{ID: "B", ParentIDs: []string{"A"}}},
			wantErr: ErrUnknownParent,
		},
		{
			name:    "self parent",
			nodes:   []Node{{ID: "A", ParentIDs: []string{"A"}}},
			wantErr: ErrSelfParent,
		},
		{
			name:  "self parent allowed",
			nodes: []Node{{ID: "A", ParentIDs: []string{"A"}}},
			opts:  InvariantOptions{AllowSelfLoops: true},
		},
		{
			name: "cycle",
			nodes: []Node{
				{ID: "A", ParentIDs: []string{"B"}},
				{ID: "B", ParentIDs: []string{"A"}},
			},
			wantErr: ErrGraphHasCycle,
		},
		{
			name: "cycle allowed",
			nodes: []Node{
				{ID: "A", ParentIDs: []string{"B"}},
				{ID: "B", ParentIDs: []string{"A"}},
			},
			opts: InvariantOptions{AllowCycles: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckInvariants(tt.nodes, tt.opts)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("CheckInvariants() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CheckInvariants() = %v, want %v", err, tt.wantErr)
			}
			if !apperr.Is(err, apperr.ErrCodeInvalidGraph) {
				t.Errorf("code = %v, want %v", apperr.GetCode(err), apperr.ErrCodeInvalidGraph)
			}
		})
	}
}
