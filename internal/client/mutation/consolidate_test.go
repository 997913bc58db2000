package mutation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iudanet/gophsync/internal/models"
)

func mut(id string, typ models.MutationType, nodeID string, reaction string) *models.Mutation {
	target := models.MutationTarget{NodeID: nodeID, Reaction: reaction}
	if typ == models.MutationTypeUpdateDocument {
		target = models.MutationTarget{DocumentID: nodeID}
	}
	data, _ := json.Marshal(target)
	return &models.Mutation{ID: id, Type: typ, Data: data}
}

func ids(mutations []*models.Mutation) []string {
	result := make([]string, 0, len(mutations))
	for _, m := range mutations {
		result = append(result, m.ID)
	}
	return result
}

func TestConsolidate(t *testing.T) {
	tests := []struct {
		name        string
		input       []*models.Mutation
		wantKept    []string
		wantDropped []string
	}{
		{
			name: "nothing to consolidate",
			input: []*models.Mutation{
				mut("1", models.MutationTypeCreateNode, "n1", ""),
				mut("2", models.MutationTypeUpdateNode, "n1", ""),
				mut("3", models.MutationTypeCreateNode, "n2", ""),
			},
			wantKept:    []string{"1", "2", "3"},
			wantDropped: nil,
		},
		{
			name: "create then delete cancels both",
			input: []*models.Mutation{
				mut("1", models.MutationTypeCreateNode, "n1", ""),
				mut("2", models.MutationTypeUpdateNode, "n1", ""),
				mut("3", models.MutationTypeUpdateDocument, "n1", ""),
				mut("4", models.MutationTypeDeleteNode, "n1", ""),
			},
			wantKept:    nil,
			wantDropped: []string{"1", "2", "3", "4"},
		},
		{
			name: "update then delete keeps delete",
			input: []*models.Mutation{
				mut("1", models.MutationTypeUpdateNode, "n1", ""),
				mut("2", models.MutationTypeMarkNodeSeen, "n1", ""),
				mut("3", models.MutationTypeCreateNodeReaction, "n1", "like"),
				mut("4", models.MutationTypeDeleteNode, "n1", ""),
			},
			wantKept:    []string{"4"},
			wantDropped: []string{"1", "2", "3"},
		},
		{
			name: "mutations after delete are kept",
			input: []*models.Mutation{
				mut("1", models.MutationTypeDeleteNode, "n1", ""),
				mut("2", models.MutationTypeMarkNodeSeen, "n1", ""),
			},
			wantKept:    []string{"1", "2"},
			wantDropped: nil,
		},
		{
			name: "reaction create and delete cancel",
			input: []*models.Mutation{
				mut("1", models.MutationTypeCreateNodeReaction, "n1", "like"),
				mut("2", models.MutationTypeCreateNodeReaction, "n1", "fire"),
				mut("3", models.MutationTypeDeleteNodeReaction, "n1", "like"),
			},
			wantKept:    []string{"2"},
			wantDropped: []string{"1", "3"},
		},
		{
			name: "reaction delete then create is kept",
			input: []*models.Mutation{
				mut("1", models.MutationTypeDeleteNodeReaction, "n1", "like"),
				mut("2", models.MutationTypeCreateNodeReaction, "n1", "like"),
			},
			wantKept:    []string{"1", "2"},
			wantDropped: nil,
		},
		{
			name: "repeated reaction toggles cancel pairwise",
			input: []*models.Mutation{
				mut("1", models.MutationTypeCreateNodeReaction, "n1", "like"),
				mut("2", models.MutationTypeDeleteNodeReaction, "n1", "like"),
				mut("3", models.MutationTypeCreateNodeReaction, "n1", "like"),
				mut("4", models.MutationTypeDeleteNodeReaction, "n1", "like"),
			},
			wantKept:    nil,
			wantDropped: []string{"1", "2", "3", "4"},
		},
		{
			name: "seen and opened collapse to newest per node",
			input: []*models.Mutation{
				mut("1", models.MutationTypeMarkNodeSeen, "n1", ""),
				mut("2", models.MutationTypeMarkNodeOpened, "n1", ""),
				mut("3", models.MutationTypeMarkNodeSeen, "n2", ""),
				mut("4", models.MutationTypeMarkNodeSeen, "n1", ""),
				mut("5", models.MutationTypeMarkNodeOpened, "n1", ""),
			},
			wantKept:    []string{"3", "4", "5"},
			wantDropped: []string{"1", "2"},
		},
		{
			name: "other nodes are untouched by delete",
			input: []*models.Mutation{
				mut("1", models.MutationTypeCreateNode, "n1", ""),
				mut("2", models.MutationTypeCreateNode, "n2", ""),
				mut("3", models.MutationTypeDeleteNode, "n1", ""),
				mut("4", models.MutationTypeUpdateNode, "n2", ""),
			},
			wantKept:    []string{"2", "4"},
			wantDropped: []string{"1", "3"},
		},
		{
			name: "unreadable payload is kept",
			input: []*models.Mutation{
				{ID: "1", Type: models.MutationTypeCreateNode, Data: json.RawMessage(`not json`)},
				mut("2", models.MutationTypeDeleteNode, "n1", ""),
			},
			wantKept:    []string{"1", "2"},
			wantDropped: nil,
		},
		{
			name:        "empty window",
			input:       nil,
			wantKept:    nil,
			wantDropped: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept, dropped := Consolidate(tt.input)

			if tt.wantKept == nil {
				assert.Empty(t, kept)
			} else {
				assert.Equal(t, tt.wantKept, ids(kept))
			}
			if tt.wantDropped == nil {
				assert.Empty(t, dropped)
			} else {
				assert.Equal(t, tt.wantDropped, ids(dropped))
			}
		})
	}
}

func TestConsolidate_IsPure(t *testing.T) {
	input := []*models.Mutation{
		mut("1", models.MutationTypeCreateNode, "n1", ""),
		mut("2", models.MutationTypeDeleteNode, "n1", ""),
	}

	Consolidate(input)
	kept, dropped := Consolidate(input)

	assert.Empty(t, kept)
	assert.Len(t, dropped, 2)
	assert.Equal(t, []string{"1", "2"}, ids(input))
}

func TestDiscardedNodes(t *testing.T) {
	tests := []struct {
		name    string
		dropped []*models.Mutation
		want    []string
	}{
		{
			name: "created and deleted locally",
			dropped: []*models.Mutation{
				mut("1", models.MutationTypeCreateNode, "n1", ""),
				mut("2", models.MutationTypeUpdateDocument, "n1", ""),
				mut("3", models.MutationTypeDeleteNode, "n1", ""),
			},
			want: []string{"n1"},
		},
		{
			name: "delete of a synced node is not dropped",
			dropped: []*models.Mutation{
				mut("1", models.MutationTypeUpdateNode, "n1", ""),
			},
			want: nil,
		},
		{
			name: "only collapsed marks",
			dropped: []*models.Mutation{
				mut("1", models.MutationTypeMarkNodeSeen, "n1", ""),
				mut("2", models.MutationTypeMarkNodeOpened, "n2", ""),
			},
			want: nil,
		},
		{
			name: "several nodes",
			dropped: []*models.Mutation{
				mut("1", models.MutationTypeCreateNode, "n1", ""),
				mut("2", models.MutationTypeCreateNode, "n2", ""),
				mut("3", models.MutationTypeDeleteNode, "n2", ""),
				mut("4", models.MutationTypeDeleteNode, "n1", ""),
			},
			want: []string{"n2", "n1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DiscardedNodes(tt.dropped))
		})
	}
}

func TestDiscardedNodes_FromConsolidate(t *testing.T) {
	_, dropped := Consolidate([]*models.Mutation{
		mut("1", models.MutationTypeCreateNode, "n1", ""),
		mut("2", models.MutationTypeUpdateNode, "n2", ""),
		mut("3", models.MutationTypeDeleteNode, "n2", ""),
		mut("4", models.MutationTypeDeleteNode, "n1", ""),
	})

	assert.Equal(t, []string{"n1"}, DiscardedNodes(dropped))
}
