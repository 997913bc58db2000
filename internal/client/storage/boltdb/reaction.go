package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/gophsync/internal/client/storage"
	"github.com/iudanet/gophsync/internal/models"
)

func reactionKey(nodeID, collaboratorID, reaction string) []byte {
	return compositeKey(nodeID, collaboratorID, reaction)
}

// GetNodeReaction retrieves a reaction
func (s *Storage) GetNodeReaction(ctx context.Context, nodeID, collaboratorID, reaction string) (*models.NodeReaction, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var result *models.NodeReaction
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		result, err = getJSON[models.NodeReaction](tx.Bucket(bucketReactions), reactionKey(nodeID, collaboratorID, reaction))
		return err
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, storage.ErrReactionNotFound
	}
	return result, nil
}

// ListNodeReactions returns reactions of a node
func (s *Storage) ListNodeReactions(ctx context.Context, nodeID string) ([]*models.NodeReaction, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var reactions []*models.NodeReaction
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		reactions, err = listPrefix[models.NodeReaction](tx.Bucket(bucketReactions), prefixKey(nodeID))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list reactions of %s: %w", nodeID, err)
	}
	return reactions, nil
}

// CreateNodeReaction stores the reaction with an optional mutation
func (s *Storage) CreateNodeReaction(ctx context.Context, reaction *models.NodeReaction, mutation *models.Mutation) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		key := reactionKey(reaction.NodeID, reaction.CollaboratorID, reaction.Reaction)
		if err := putJSON(tx.Bucket(bucketReactions), key, reaction); err != nil {
			return err
		}
		return putMutation(tx, mutation)
	})
}

// DeleteNodeReaction removes the reaction with an optional mutation
func (s *Storage) DeleteNodeReaction(
	ctx context.Context,
	nodeID, collaboratorID, reaction string,
	mutation *models.Mutation,
) (*models.NodeReaction, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var existing *models.NodeReaction
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketReactions)
		key := reactionKey(nodeID, collaboratorID, reaction)
		var err error
		existing, err = getJSON[models.NodeReaction](bucket, key)
		if err != nil {
			return err
		}
		if existing == nil {
			return storage.ErrReactionNotFound
		}
		if err := bucket.Delete(key); err != nil {
			return fmt.Errorf("failed to delete reaction: %w", err)
		}
		return putMutation(tx, mutation)
	})
	if err != nil {
		return nil, err
	}
	return existing, nil
}

// ApplyServerReaction upserts or removes a reaction observed from the server
func (s *Storage) ApplyServerReaction(ctx context.Context, reaction *models.NodeReaction, deleted bool) (bool, error) {
	if s.db == nil {
		return false, storage.ErrStorageClosed
	}

	applied := false
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketReactions)
		key := reactionKey(reaction.NodeID, reaction.CollaboratorID, reaction.Reaction)
		existing, err := getJSON[models.NodeReaction](bucket, key)
		if err != nil {
			return err
		}
		if existing != nil && existing.Revision >= reaction.Revision {
			return nil
		}

		if deleted {
			if existing == nil {
				return nil
			}
			applied = true
			return bucket.Delete(key)
		}
		applied = true
		return putJSON(bucket, key, reaction)
	})
	if err != nil {
		return false, fmt.Errorf("failed to apply server reaction: %w", err)
	}
	return applied, nil
}
