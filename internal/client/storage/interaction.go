package storage

import (
	"context"

	"github.com/iudanet/gophsync/internal/models"
)

// InteractionStorage watermark-и взаимодействий (узел, участник)
type InteractionStorage interface {
	// GetNodeInteraction returns ErrInteractionNotFound if interaction doesn't exist
	GetNodeInteraction(ctx context.Context, nodeID, collaboratorID string) (*models.NodeInteraction, error)

	// MergeNodeInteraction merges the interaction monotonically into the stored one.
	// The mutation, when given, is stored in the same transaction only if anything changed.
	// previous is nil when nothing was stored before.
	MergeNodeInteraction(ctx context.Context, interaction *models.NodeInteraction, mutation *models.Mutation) (previous, current *models.NodeInteraction, changed bool, err error)
}
