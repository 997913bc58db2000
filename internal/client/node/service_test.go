package node

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/internal/client/eventbus"
	"github.com/iudanet/gophsync/internal/client/events"
	"github.com/iudanet/gophsync/internal/client/storage"
	"github.com/iudanet/gophsync/internal/client/storage/boltdb"
	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/pkg/api"
)

const (
	testWorkspace = "ws1"
	testUser      = "user1"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type eventRecorder struct {
	events []events.Event
	mu     sync.Mutex
}

func (r *eventRecorder) handle(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]string, 0, len(r.events))
	for _, e := range r.events {
		result = append(result, e.Name())
	}
	return result
}

func (r *eventRecorder) waitFor(t *testing.T, names ...string) {
	t.Helper()
	require.Eventually(t, func() bool {
		got := r.names()
		return assert.ObjectsAreEqual(names, got)
	}, time.Second, time.Millisecond, "expected events %v, got %v", names, r.names())
}

func (r *eventRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type fixture struct {
	store    *boltdb.Storage
	service  *Service
	recorder *eventRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	bus := eventbus.New(setupTestLogger())
	t.Cleanup(bus.Close)
	recorder := &eventRecorder{}
	bus.Subscribe(recorder.handle)

	service := NewService(Config{WorkspaceID: testWorkspace, UserID: testUser}, store, bus, setupTestLogger())
	return &fixture{store: store, service: service, recorder: recorder}
}

func (f *fixture) createSpace(t *testing.T) *models.Node {
	t.Helper()
	space, err := f.service.CreateNode(context.Background(), CreateNodeInput{
		Type:       models.NodeTypeSpace,
		Attributes: json.RawMessage(`{"name":"space"}`),
	})
	require.NoError(t, err)
	return space
}

func (f *fixture) mutationTypes(t *testing.T) []models.MutationType {
	t.Helper()
	mutations, err := f.store.ListMutations(context.Background(), 100)
	require.NoError(t, err)
	result := make([]models.MutationType, 0, len(mutations))
	for _, m := range mutations {
		result = append(result, m.Type)
	}
	return result
}

func TestService_CreateNode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	space := f.createSpace(t)
	assert.Equal(t, space.ID, space.RootID)
	assert.Equal(t, models.IDTypeSpace, models.GetIDType(space.ID))

	page, err := f.service.CreateNode(ctx, CreateNodeInput{
		Type:       models.NodeTypePage,
		ParentID:   space.ID,
		Attributes: json.RawMessage(`{"name":"page"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, space.ID, page.RootID)
	assert.Equal(t, space.ID, page.ParentID)
	assert.Equal(t, testUser, page.CreatedBy)

	stored, err := f.store.GetNode(ctx, page.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"page"}`, string(stored.Attributes))

	assert.Equal(t, []models.MutationType{models.MutationTypeCreateNode, models.MutationTypeCreateNode}, f.mutationTypes(t))
	f.recorder.waitFor(t, "node_created", "mutation_created", "node_created", "mutation_created")
}

func TestService_CreateNode_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   CreateNodeInput
		wantErr error
	}{
		{
			name:    "array attributes",
			input:   CreateNodeInput{Type: models.NodeTypeSpace, Attributes: json.RawMessage(`[1]`)},
			wantErr: ErrInvalidAttributes,
		},
		{
			name:    "null attributes",
			input:   CreateNodeInput{Type: models.NodeTypeSpace, Attributes: json.RawMessage(`null`)},
			wantErr: ErrInvalidAttributes,
		},
		{
			name:    "page without parent",
			input:   CreateNodeInput{Type: models.NodeTypePage, Attributes: json.RawMessage(`{}`)},
			wantErr: ErrInvalidParent,
		},
		{
			name:    "missing parent",
			input:   CreateNodeInput{Type: models.NodeTypePage, ParentID: "nope", Attributes: json.RawMessage(`{}`)},
			wantErr: storage.ErrNodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CreateNode(ctx, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Empty(t, f.mutationTypes(t))
}

func TestService_UpdateAndDeleteNode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	space := f.createSpace(t)

	updated, err := f.service.UpdateNode(ctx, space.ID, json.RawMessage(`{"name":"renamed"}`), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.LocalRevision)
	require.NotNil(t, updated.UpdatedAt)

	require.NoError(t, f.service.DeleteNode(ctx, space.ID))
	_, err = f.store.GetNode(ctx, space.ID)
	assert.ErrorIs(t, err, storage.ErrNodeNotFound)

	assert.Equal(t, []models.MutationType{
		models.MutationTypeCreateNode,
		models.MutationTypeUpdateNode,
		models.MutationTypeDeleteNode,
	}, f.mutationTypes(t))
}

func TestService_Reactions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	space := f.createSpace(t)

	reaction, err := f.service.AddReaction(ctx, space.ID, "like")
	require.NoError(t, err)
	assert.Equal(t, testUser, reaction.CollaboratorID)
	assert.Equal(t, space.ID, reaction.RootID)

	// повторная реакция не создает мутацию
	_, err = f.service.AddReaction(ctx, space.ID, "like")
	require.NoError(t, err)

	_, err = f.service.AddReaction(ctx, space.ID, "thumbs up")
	require.Error(t, err)

	require.NoError(t, f.service.RemoveReaction(ctx, space.ID, "like"))
	_, err = f.store.GetNodeReaction(ctx, space.ID, testUser, "like")
	assert.ErrorIs(t, err, storage.ErrReactionNotFound)

	assert.Equal(t, []models.MutationType{
		models.MutationTypeCreateNode,
		models.MutationTypeCreateNodeReaction,
		models.MutationTypeDeleteNodeReaction,
	}, f.mutationTypes(t))
}

func TestService_MarkSeen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	clock := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	f.service.now = func() time.Time { return clock }
	space := f.createSpace(t)
	f.recorder.waitFor(t, "node_created", "mutation_created")
	f.recorder.reset()

	interaction, err := f.service.MarkSeen(ctx, space.ID)
	require.NoError(t, err)
	require.NotNil(t, interaction.LastSeenAt)
	assert.Equal(t, clock, *interaction.FirstSeenAt)
	f.recorder.waitFor(t, "node_interaction_updated", "mutation_created")

	// тот же момент времени ничего не меняет
	f.recorder.reset()
	_, err = f.service.MarkSeen(ctx, space.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.MutationType{models.MutationTypeCreateNode, models.MutationTypeMarkNodeSeen}, f.mutationTypes(t))

	clock = clock.Add(time.Minute)
	interaction, err = f.service.MarkOpened(ctx, space.ID)
	require.NoError(t, err)
	require.NotNil(t, interaction.LastOpenedAt)
	assert.Equal(t, clock, *interaction.LastOpenedAt)
	assert.Equal(t, clock.Add(-time.Minute), *interaction.LastSeenAt)
}

func TestService_ApplyServerNode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item := api.Node{
		ID:         "n1sp",
		Type:       string(models.NodeTypeSpace),
		RootID:     "n1sp",
		CreatedBy:  "user2",
		Attributes: json.RawMessage(`{"name":"v1"}`),
		References: []api.NodeReference{{ReferenceID: testUser, Type: models.ReferenceTypeMention}},
		Revision:   5,
	}
	require.NoError(t, f.service.ApplyServerNode(ctx, item))

	// повторная доставка той же ревизии ничего не меняет
	require.NoError(t, f.service.ApplyServerNode(ctx, item))

	item.Attributes = json.RawMessage(`{"name":"v2"}`)
	item.Revision = 6
	require.NoError(t, f.service.ApplyServerNode(ctx, item))

	stored, err := f.store.GetNode(ctx, "n1sp")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"v2"}`, string(stored.Attributes))
	assert.JSONEq(t, `{"name":"v2"}`, string(stored.ServerAttributes))
	assert.True(t, stored.Mentions(testUser))
	f.recorder.waitFor(t, "node_created", "node_updated")
}

func TestService_ApplyServerTombstone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	space := f.createSpace(t)
	_, err := f.service.AddReaction(ctx, space.ID, "like")
	require.NoError(t, err)
	f.recorder.waitFor(t, "node_created", "mutation_created", "node_reaction_created", "mutation_created")
	f.recorder.reset()

	require.NoError(t, f.service.ApplyServerTombstone(ctx, api.NodeTombstone{ID: space.ID, RootID: space.ID, Revision: 9}))
	_, err = f.store.GetNode(ctx, space.ID)
	assert.ErrorIs(t, err, storage.ErrNodeNotFound)
	reactions, err := f.store.ListNodeReactions(ctx, space.ID)
	require.NoError(t, err)
	assert.Empty(t, reactions)

	// tombstone для неизвестного узла молча игнорируется
	require.NoError(t, f.service.ApplyServerTombstone(ctx, api.NodeTombstone{ID: "unknown", Revision: 10}))
	f.recorder.waitFor(t, "node_deleted")
}

func TestService_ApplyServerReaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item := api.NodeReaction{NodeID: "n1", CollaboratorID: "user2", Reaction: "fire", RootID: "r1", Revision: 3}
	require.NoError(t, f.service.ApplyServerReaction(ctx, item))
	require.NoError(t, f.service.ApplyServerReaction(ctx, item))

	deletedAt := time.Now()
	item.DeletedAt = &deletedAt
	item.Revision = 4
	require.NoError(t, f.service.ApplyServerReaction(ctx, item))

	_, err := f.store.GetNodeReaction(ctx, "n1", "user2", "fire")
	assert.ErrorIs(t, err, storage.ErrReactionNotFound)
	f.recorder.waitFor(t, "node_reaction_created", "node_reaction_deleted")
}

func TestService_ApplyServerInteraction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seen := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	item := api.NodeInteraction{NodeID: "n1", CollaboratorID: testUser, RootID: "r1", LastSeenAt: &seen, FirstSeenAt: &seen, Revision: 2}
	require.NoError(t, f.service.ApplyServerInteraction(ctx, item))
	require.NoError(t, f.service.ApplyServerInteraction(ctx, item))

	// более старое значение не откатывает watermark
	older := seen.Add(-time.Hour)
	item.LastSeenAt = &older
	item.FirstSeenAt = &older
	require.NoError(t, f.service.ApplyServerInteraction(ctx, item))

	stored, err := f.store.GetNodeInteraction(ctx, "n1", testUser)
	require.NoError(t, err)
	assert.Equal(t, seen, *stored.LastSeenAt)
	assert.Equal(t, older, *stored.FirstSeenAt)
}
