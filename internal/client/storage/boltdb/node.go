package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"go.etcd.io/bbolt"

	"github.com/iudanet/gophsync/internal/client/storage"
	"github.com/iudanet/gophsync/internal/models"
)

// GetNode retrieves a node by ID
func (s *Storage) GetNode(ctx context.Context, id string) (*models.Node, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var node *models.Node
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		node, err = getJSON[models.Node](tx.Bucket(bucketNodes), []byte(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, storage.ErrNodeNotFound
	}
	return node, nil
}

// ListNodesByRoot returns all nodes of the given root
func (s *Storage) ListNodesByRoot(ctx context.Context, rootID string) ([]*models.Node, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var nodes []*models.Node
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketNodes).ForEach(func(k, v []byte) error {
			var node models.Node
			if err := json.Unmarshal(v, &node); err != nil {
				return fmt.Errorf("failed to unmarshal node %s: %w", k, err)
			}
			if node.RootID == rootID {
				nodes = append(nodes, &node)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes of root %s: %w", rootID, err)
	}
	return nodes, nil
}

// CreateNode stores a locally created node together with its mutation
func (s *Storage) CreateNode(ctx context.Context, node *models.Node, mutation *models.Mutation) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketNodes)
		if bucket.Get([]byte(node.ID)) != nil {
			return storage.ErrNodeExists
		}
		if err := putJSON(bucket, []byte(node.ID), node); err != nil {
			return err
		}
		return putMutation(tx, mutation)
	})
}

// UpdateNode applies update to the stored node inside one transaction
func (s *Storage) UpdateNode(ctx context.Context, id string, update func(node *models.Node) (*models.Mutation, error)) (*models.Node, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var node *models.Node
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketNodes)
		var err error
		node, err = getJSON[models.Node](bucket, []byte(id))
		if err != nil {
			return err
		}
		if node == nil {
			return storage.ErrNodeNotFound
		}

		mutation, err := update(node)
		if err != nil {
			return err
		}
		if err := putJSON(bucket, []byte(id), node); err != nil {
			return err
		}
		return putMutation(tx, mutation)
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// DeleteNode removes the node locally and keeps a pending-delete copy for revert
func (s *Storage) DeleteNode(ctx context.Context, id string, mutation *models.Mutation) (*models.Node, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var node *models.Node
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketNodes)
		var err error
		node, err = getJSON[models.Node](bucket, []byte(id))
		if err != nil {
			return err
		}
		if node == nil {
			return storage.ErrNodeNotFound
		}

		if err := putJSON(tx.Bucket(bucketPendingDeletes), []byte(id), node); err != nil {
			return err
		}
		if err := bucket.Delete([]byte(id)); err != nil {
			return fmt.Errorf("failed to delete node %s: %w", id, err)
		}
		return putMutation(tx, mutation)
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// ApplyServerNode upserts a node observed from the server
func (s *Storage) ApplyServerNode(ctx context.Context, node *models.Node) (*models.Node, bool, error) {
	if s.db == nil {
		return nil, false, storage.ErrStorageClosed
	}

	var previous *models.Node
	applied := false
	err := s.db.Update(func(tx *bbolt.Tx) error {
		// узел удален локально и ждет подтверждения: обновляем только копию для отката
		pending := tx.Bucket(bucketPendingDeletes)
		deleted, err := getJSON[models.Node](pending, []byte(node.ID))
		if err != nil {
			return err
		}
		if deleted != nil {
			if node.ServerRevision <= deleted.ServerRevision {
				return nil
			}
			stored := node.Clone()
			stored.ServerAttributes = slices.Clone(node.Attributes)
			return putJSON(pending, []byte(node.ID), stored)
		}

		bucket := tx.Bucket(bucketNodes)
		previous, err = getJSON[models.Node](bucket, []byte(node.ID))
		if err != nil {
			return err
		}
		if previous != nil && !node.IsNewerThan(previous) {
			return nil
		}

		stored := node.Clone()
		stored.ServerAttributes = slices.Clone(node.Attributes)
		if previous != nil {
			stored.LocalRevision = previous.LocalRevision
			stored.RootID = previous.RootID
		}
		applied = true
		return putJSON(bucket, []byte(node.ID), stored)
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to apply server node %s: %w", node.ID, err)
	}
	return previous, applied, nil
}

// ApplyTombstone purges the node and everything derived from it
func (s *Storage) ApplyTombstone(ctx context.Context, tombstone *models.NodeTombstone) (*models.Node, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var node *models.Node
	err := s.db.Update(func(tx *bbolt.Tx) error {
		var err error
		node, err = purgeNode(tx, tombstone.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply tombstone %s: %w", tombstone.ID, err)
	}
	return node, nil
}

// RemoveNode deletes a locally created node that the server never accepted
func (s *Storage) RemoveNode(ctx context.Context, id string) (*models.Node, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var node *models.Node
	err := s.db.Update(func(tx *bbolt.Tx) error {
		var err error
		node, err = purgeNode(tx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to remove node %s: %w", id, err)
	}
	if node == nil {
		return nil, storage.ErrNodeNotFound
	}
	return node, nil
}

// PurgeNodes removes nodes the server will never see, including their pending-delete copies
func (s *Storage) PurgeNodes(ctx context.Context, ids []string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		for _, id := range ids {
			if _, err := purgeNode(tx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to purge nodes: %w", err)
	}
	return nil
}

// RestoreNodeAttributes resets attributes to the last server-observed value
func (s *Storage) RestoreNodeAttributes(ctx context.Context, id string) (*models.Node, error) {
	return s.UpdateNode(ctx, id, func(node *models.Node) (*models.Mutation, error) {
		if node.ServerAttributes != nil {
			node.Attributes = slices.Clone(node.ServerAttributes)
		}
		node.LocalRevision++
		return nil, nil
	})
}

// RestoreDeletedNode puts back a node deleted locally
func (s *Storage) RestoreDeletedNode(ctx context.Context, id string) (*models.Node, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var node *models.Node
	err := s.db.Update(func(tx *bbolt.Tx) error {
		pending := tx.Bucket(bucketPendingDeletes)
		var err error
		node, err = getJSON[models.Node](pending, []byte(id))
		if err != nil {
			return err
		}
		if node == nil {
			return storage.ErrPendingDeleteNotFound
		}
		if err := putJSON(tx.Bucket(bucketNodes), []byte(id), node); err != nil {
			return err
		}
		return pending.Delete([]byte(id))
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// DeleteRootData removes all local data of the root
func (s *Storage) DeleteRootData(ctx context.Context, rootID string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		var ids []string
		for _, name := range [][]byte{bucketNodes, bucketPendingDeletes} {
			err := tx.Bucket(name).ForEach(func(k, v []byte) error {
				var node models.Node
				if err := json.Unmarshal(v, &node); err != nil {
					return fmt.Errorf("failed to unmarshal node %s: %w", k, err)
				}
				if node.RootID == rootID || node.ID == rootID {
					ids = append(ids, node.ID)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		for _, id := range ids {
			if _, err := purgeNode(tx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// purgeNode удаляет узел и все производные данные. Возвращает удаленный узел или nil.
func purgeNode(tx *bbolt.Tx, id string) (*models.Node, error) {
	key := []byte(id)

	node, err := getJSON[models.Node](tx.Bucket(bucketNodes), key)
	if err != nil {
		return nil, err
	}
	if node == nil {
		// узел мог быть удален локально до прихода tombstone
		node, err = getJSON[models.Node](tx.Bucket(bucketPendingDeletes), key)
		if err != nil {
			return nil, err
		}
	}

	for _, name := range [][]byte{bucketNodes, bucketPendingDeletes, bucketDocuments, bucketDocumentStates} {
		if err := tx.Bucket(name).Delete(key); err != nil {
			return nil, fmt.Errorf("failed to delete %s from %s: %w", id, name, err)
		}
	}
	for _, name := range [][]byte{bucketDocumentUpds, bucketReactions, bucketInteractions, bucketCounters} {
		if err := deletePrefix(tx.Bucket(name), prefixKey(id)); err != nil {
			return nil, err
		}
	}
	return node, nil
}
