package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/gophsync/internal/client/storage"
	"github.com/iudanet/gophsync/internal/models"
)

// GetNodeCounter returns 0 if the counter doesn't exist
func (s *Storage) GetNodeCounter(ctx context.Context, nodeID string, counterType models.CounterType) (int64, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	var count int64
	err := s.db.View(func(tx *bbolt.Tx) error {
		counter, err := getJSON[models.NodeCounter](tx.Bucket(bucketCounters), compositeKey(nodeID, string(counterType)))
		if err != nil {
			return err
		}
		if counter != nil {
			count = counter.Count
		}
		return nil
	})
	return count, err
}

// ListNodeCounters returns counters of a node
func (s *Storage) ListNodeCounters(ctx context.Context, nodeID string) ([]models.NodeCounter, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var counters []models.NodeCounter
	err := s.db.View(func(tx *bbolt.Tx) error {
		stored, err := listPrefix[models.NodeCounter](tx.Bucket(bucketCounters), prefixKey(nodeID))
		if err != nil {
			return err
		}
		for _, c := range stored {
			counters = append(counters, *c)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list counters of %s: %w", nodeID, err)
	}
	return counters, nil
}

// AddNodeCounter applies a relative delta clamped at zero
func (s *Storage) AddNodeCounter(
	ctx context.Context,
	nodeID string,
	counterType models.CounterType,
	delta int64,
) (models.NodeCounter, bool, error) {
	if s.db == nil {
		return models.NodeCounter{}, false, storage.ErrStorageClosed
	}

	result := models.NodeCounter{NodeID: nodeID, Type: counterType}
	changed := false
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCounters)
		key := compositeKey(nodeID, string(counterType))
		stored, err := getJSON[models.NodeCounter](bucket, key)
		if err != nil {
			return err
		}
		var before int64
		if stored != nil {
			before = stored.Count
		}

		result.Count = max(before+delta, 0)
		changed = result.Count != before
		if result.Count == 0 {
			return bucket.Delete(key)
		}
		return putJSON(bucket, key, result)
	})
	if err != nil {
		return models.NodeCounter{}, false, fmt.Errorf("failed to update counter %s of %s: %w", counterType, nodeID, err)
	}
	return result, changed, nil
}

// DeleteNodeCounters removes all counters owned by the node
func (s *Storage) DeleteNodeCounters(ctx context.Context, nodeID string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return deletePrefix(tx.Bucket(bucketCounters), prefixKey(nodeID))
	})
}
