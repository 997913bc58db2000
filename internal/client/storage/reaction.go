package storage

import (
	"context"

	"github.com/iudanet/gophsync/internal/models"
)

// ReactionStorage реакции на узлы
type ReactionStorage interface {
	// GetNodeReaction returns ErrReactionNotFound if reaction doesn't exist
	GetNodeReaction(ctx context.Context, nodeID, collaboratorID, reaction string) (*models.NodeReaction, error)

	// ListNodeReactions returns reactions of a node
	ListNodeReactions(ctx context.Context, nodeID string) ([]*models.NodeReaction, error)

	// CreateNodeReaction stores the reaction; mutation is optional
	CreateNodeReaction(ctx context.Context, reaction *models.NodeReaction, mutation *models.Mutation) error

	// DeleteNodeReaction removes the reaction; mutation is optional.
	// Returns ErrReactionNotFound if reaction doesn't exist.
	DeleteNodeReaction(ctx context.Context, nodeID, collaboratorID, reaction string, mutation *models.Mutation) (*models.NodeReaction, error)

	// ApplyServerReaction upserts or removes a reaction observed from the server.
	// Items with a revision not newer than the stored one are skipped.
	ApplyServerReaction(ctx context.Context, reaction *models.NodeReaction, deleted bool) (applied bool, err error)
}
