package storage

import (
	"context"

	"github.com/iudanet/gophsync/internal/models"
)

// CollaborationStorage коллаборации текущего пользователя
type CollaborationStorage interface {
	// ApplyCollaboration upserts a collaboration observed from the server.
	// Returns the previous copy (nil if absent) and whether anything was written.
	ApplyCollaboration(ctx context.Context, collaboration *models.Collaboration) (previous *models.Collaboration, applied bool, err error)

	// ListActiveCollaborations returns non-deleted collaborations
	ListActiveCollaborations(ctx context.Context) ([]*models.Collaboration, error)
}

// UserStorage участники workspace
type UserStorage interface {
	// ApplyUser upserts a user observed from the server; created reports a new row
	ApplyUser(ctx context.Context, user *models.User) (created, applied bool, err error)

	// GetUser returns ErrUserNotFound if user doesn't exist
	GetUser(ctx context.Context, id string) (*models.User, error)
}
