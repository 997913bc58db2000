package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/gophsync/internal/client/storage"
	"github.com/iudanet/gophsync/internal/models"
)

// ListMutations returns up to limit oldest mutations.
// Ключи мутаций упорядочены по времени создания (UUIDv7).
func (s *Storage) ListMutations(ctx context.Context, limit int) ([]*models.Mutation, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var mutations []*models.Mutation
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketMutations).Cursor()
		for k, v := c.First(); k != nil && len(mutations) < limit; k, v = c.Next() {
			var mutation models.Mutation
			if err := json.Unmarshal(v, &mutation); err != nil {
				return fmt.Errorf("failed to unmarshal mutation %s: %w", k, err)
			}
			mutations = append(mutations, &mutation)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list mutations: %w", err)
	}
	return mutations, nil
}

// DeleteMutations removes mutations by id
func (s *Storage) DeleteMutations(ctx context.Context, ids []string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	if len(ids) == 0 {
		return nil
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMutations)
		for _, id := range ids {
			if err := bucket.Delete([]byte(id)); err != nil {
				return fmt.Errorf("failed to delete mutation %s: %w", id, err)
			}
		}
		return nil
	})
}

// IncrementMutationRetries increments retries of each existing mutation
func (s *Storage) IncrementMutationRetries(ctx context.Context, ids []string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	if len(ids) == 0 {
		return nil
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMutations)
		for _, id := range ids {
			mutation, err := getJSON[models.Mutation](bucket, []byte(id))
			if err != nil {
				return err
			}
			if mutation == nil {
				continue
			}
			mutation.Retries++
			if err := putJSON(bucket, []byte(id), mutation); err != nil {
				return err
			}
		}
		return nil
	})
}

// CountMutations returns the number of pending mutations
func (s *Storage) CountMutations(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	var count int
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(bucketMutations).Stats().KeyN
		return nil
	})
	return count, err
}
