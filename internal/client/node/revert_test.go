package node

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/internal/client/mutation"
	"github.com/iudanet/gophsync/internal/client/storage"
	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/pkg/api"
)

// revertLast откатывает последнюю мутацию очереди через реестр, как это делает очередь
func revertLast(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	mutations, err := f.store.ListMutations(ctx, 100)
	require.NoError(t, err)
	require.NotEmpty(t, mutations)

	last := mutations[len(mutations)-1]
	registry := mutation.NewRegistry(f.service, &mutation.DocumentReverterMock{})
	require.NoError(t, registry.Revert(ctx, last))
	require.NoError(t, f.store.DeleteMutations(ctx, []string{last.ID}))
}

func TestRevert_CreateNode(t *testing.T) {
	f := newFixture(t)
	space := f.createSpace(t)

	revertLast(t, f)

	_, err := f.store.GetNode(context.Background(), space.ID)
	assert.ErrorIs(t, err, storage.ErrNodeNotFound)
}

func TestRevert_UpdateNodeRestoresServerAttributes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.service.ApplyServerNode(ctx, api.Node{
		ID:         "n1sp",
		Type:       string(models.NodeTypeSpace),
		RootID:     "n1sp",
		Attributes: json.RawMessage(`{"name":"server"}`),
		Revision:   3,
	}))

	_, err := f.service.UpdateNode(ctx, "n1sp", json.RawMessage(`{"name":"local"}`), nil)
	require.NoError(t, err)

	revertLast(t, f)

	stored, err := f.store.GetNode(ctx, "n1sp")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"server"}`, string(stored.Attributes))
}

func TestRevert_DeleteNodeRestoresNode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.service.ApplyServerNode(ctx, api.Node{
		ID:         "n1sp",
		Type:       string(models.NodeTypeSpace),
		RootID:     "n1sp",
		Attributes: json.RawMessage(`{"name":"server"}`),
		Revision:   3,
	}))
	require.NoError(t, f.service.DeleteNode(ctx, "n1sp"))

	revertLast(t, f)

	stored, err := f.store.GetNode(ctx, "n1sp")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"server"}`, string(stored.Attributes))
}

func TestRevert_Reactions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	space := f.createSpace(t)

	_, err := f.service.AddReaction(ctx, space.ID, "like")
	require.NoError(t, err)
	revertLast(t, f)
	_, err = f.store.GetNodeReaction(ctx, space.ID, testUser, "like")
	assert.ErrorIs(t, err, storage.ErrReactionNotFound)

	_, err = f.service.AddReaction(ctx, space.ID, "fire")
	require.NoError(t, err)
	require.NoError(t, f.service.RemoveReaction(ctx, space.ID, "fire"))
	revertLast(t, f)
	restored, err := f.store.GetNodeReaction(ctx, space.ID, testUser, "fire")
	require.NoError(t, err)
	assert.Equal(t, space.ID, restored.RootID)
}

func TestRevert_MissingTargetsAreIgnored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.NoError(t, f.service.RevertCreateNode(ctx, models.CreateNodeMutationData{NodeID: "gone"}))
	assert.NoError(t, f.service.RevertUpdateNode(ctx, models.UpdateNodeMutationData{NodeID: "gone"}))
	assert.NoError(t, f.service.RevertDeleteNode(ctx, models.DeleteNodeMutationData{NodeID: "gone"}))
	assert.NoError(t, f.service.RevertCreateReaction(ctx, models.NodeReactionMutationData{NodeID: "gone", Reaction: "x"}))
}
