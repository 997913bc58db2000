package storage

import (
	"context"

	"github.com/iudanet/gophsync/pkg/api"
)

// UserStorage defines interface for workspace users persistence
type UserStorage interface {
	// CreateUser creates a new user bound to the account.
	// Assigns the next workspace revision to user.Revision.
	// Returns ErrUserAlreadyExists if the account or email is taken in the workspace
	CreateUser(ctx context.Context, accountID string, user *api.User) error

	// GetUser retrieves user by ID within the workspace
	// Returns ErrUserNotFound if user doesn't exist
	GetUser(ctx context.Context, workspaceID, userID string) (*api.User, error)

	// GetUserByAccount retrieves the user the account owns in the workspace
	// Returns ErrUserNotFound if the account has no user there
	GetUserByAccount(ctx context.Context, workspaceID, accountID string) (*api.User, error)
}

// CollaborationStorage defines interface for root collaborations persistence
type CollaborationStorage interface {
	// GetCollaboration retrieves collaboration of the user on the root node
	// Returns ErrCollaborationNotFound if it doesn't exist
	GetCollaboration(ctx context.Context, nodeID, collaboratorID string) (*api.Collaboration, error)

	// SaveCollaboration creates or replaces collaboration and assigns a new revision
	SaveCollaboration(ctx context.Context, workspaceID string, collaboration *api.Collaboration) error
}
