package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/gophsync/internal/client/storage"
)

// GetCursor returns the stored cursor or empty string if none was persisted
func (s *Storage) GetCursor(ctx context.Context, key string) (string, error) {
	if s.db == nil {
		return "", storage.ErrStorageClosed
	}

	var value string
	err := s.db.View(func(tx *bbolt.Tx) error {
		value = string(tx.Bucket(bucketCursors).Get([]byte(key)))
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to get cursor %s: %w", key, err)
	}
	return value, nil
}

// SetCursor persists the cursor of the last applied item
func (s *Storage) SetCursor(ctx context.Context, key, value string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketCursors).Put([]byte(key), []byte(value)); err != nil {
			return fmt.Errorf("failed to save cursor %s: %w", key, err)
		}
		return nil
	})
}

// DeleteCursor removes the cursor
func (s *Storage) DeleteCursor(ctx context.Context, key string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCursors).Delete([]byte(key))
	})
}

// ListCursors returns all cursors
func (s *Storage) ListCursors(ctx context.Context) (map[string]string, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	cursors := make(map[string]string)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCursors).ForEach(func(k, v []byte) error {
			cursors[string(k)] = string(v)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list cursors: %w", err)
	}
	return cursors, nil
}
