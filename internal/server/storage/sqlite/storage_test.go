package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/internal/server/storage"
	"github.com/iudanet/gophsync/pkg/api"
)

const (
	testWorkspace = "ws1ws"
	testRoot      = "root1sp"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	// Используем in-memory database для тестов
	s, err := New(ctx, ":memory:")
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
	}

	return s, cleanup
}

func createTestUser(t *testing.T, ctx context.Context, s *Storage, accountID, userID string) *api.User {
	t.Helper()
	user := &api.User{
		ID:          userID,
		WorkspaceID: testWorkspace,
		Email:       userID + "@example.com",
		Name:        userID,
		Role:        "member",
		CreatedAt:   time.Now(),
	}
	require.NoError(t, s.CreateUser(ctx, accountID, user))
	return user
}

func createTestRoot(t *testing.T, ctx context.Context, s *Storage, ownerID string) *api.Node {
	t.Helper()
	root := &api.Node{
		ID:         testRoot,
		Type:       "space",
		RootID:     testRoot,
		Attributes: []byte(`{"name":"space"}`),
		CreatedAt:  time.Now(),
		CreatedBy:  ownerID,
	}
	created, err := s.CreateNode(ctx, testWorkspace, root, &api.Collaboration{
		NodeID:         testRoot,
		CollaboratorID: ownerID,
		Role:           "admin",
		CreatedAt:      time.Now(),
	})
	require.NoError(t, err)
	require.True(t, created)
	return root
}

func TestStorage_Ping(t *testing.T) {
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	assert.NoError(t, s.Ping(context.Background()))
}

func TestStorage_RevisionsAreMonotonicPerWorkspace(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	first := createTestUser(t, ctx, s, "acc1", "user1us")
	second := createTestUser(t, ctx, s, "acc2", "user2us")
	assert.Equal(t, int64(1), first.Revision)
	assert.Equal(t, int64(2), second.Revision)

	other := &api.User{
		ID:          "user3us",
		WorkspaceID: "ws2ws",
		Email:       "user3@example.com",
		CreatedAt:   time.Now(),
	}
	require.NoError(t, s.CreateUser(ctx, "acc1", other))
	assert.Equal(t, int64(1), other.Revision)
}

func TestStorage_ListPartitionUnknownType(t *testing.T) {
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.ListPartition(context.Background(), storage.PartitionQuery{Type: "files", Limit: 10})
	assert.ErrorIs(t, err, storage.ErrUnknownPartition)
}
