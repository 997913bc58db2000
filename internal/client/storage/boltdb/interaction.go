package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/gophsync/internal/client/storage"
	"github.com/iudanet/gophsync/internal/models"
)

// GetNodeInteraction retrieves the interaction of a collaborator with a node
func (s *Storage) GetNodeInteraction(ctx context.Context, nodeID, collaboratorID string) (*models.NodeInteraction, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var interaction *models.NodeInteraction
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		interaction, err = getJSON[models.NodeInteraction](tx.Bucket(bucketInteractions), compositeKey(nodeID, collaboratorID))
		return err
	})
	if err != nil {
		return nil, err
	}
	if interaction == nil {
		return nil, storage.ErrInteractionNotFound
	}
	return interaction, nil
}

// MergeNodeInteraction merges the interaction monotonically into the stored one
func (s *Storage) MergeNodeInteraction(
	ctx context.Context,
	interaction *models.NodeInteraction,
	mutation *models.Mutation,
) (previous, current *models.NodeInteraction, changed bool, err error) {
	if s.db == nil {
		return nil, nil, false, storage.ErrStorageClosed
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketInteractions)
		key := compositeKey(interaction.NodeID, interaction.CollaboratorID)
		stored, err := getJSON[models.NodeInteraction](bucket, key)
		if err != nil {
			return err
		}

		if stored == nil {
			current = interaction.Clone()
			changed = true
		} else {
			previous = stored.Clone()
			current = stored
			changed = current.Merge(interaction)
		}
		if !changed {
			return nil
		}

		if err := putJSON(bucket, key, current); err != nil {
			return err
		}
		return putMutation(tx, mutation)
	})
	if err != nil {
		return nil, nil, false, fmt.Errorf("failed to merge interaction: %w", err)
	}
	return previous, current, changed, nil
}
