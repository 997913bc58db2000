package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/gophsync/internal/client/storage"
	"github.com/iudanet/gophsync/internal/models"
)

// ApplyCollaboration upserts a collaboration observed from the server
func (s *Storage) ApplyCollaboration(ctx context.Context, collaboration *models.Collaboration) (*models.Collaboration, bool, error) {
	if s.db == nil {
		return nil, false, storage.ErrStorageClosed
	}

	var previous *models.Collaboration
	applied := false
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCollaborations)
		key := compositeKey(collaboration.NodeID, collaboration.CollaboratorID)
		var err error
		previous, err = getJSON[models.Collaboration](bucket, key)
		if err != nil {
			return err
		}
		if previous != nil && previous.Revision >= collaboration.Revision {
			return nil
		}
		applied = true
		return putJSON(bucket, key, collaboration)
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to apply collaboration: %w", err)
	}
	return previous, applied, nil
}

// ListActiveCollaborations returns non-deleted collaborations
func (s *Storage) ListActiveCollaborations(ctx context.Context) ([]*models.Collaboration, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var result []*models.Collaboration
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCollaborations).ForEach(func(k, v []byte) error {
			var collaboration models.Collaboration
			if err := json.Unmarshal(v, &collaboration); err != nil {
				return fmt.Errorf("failed to unmarshal collaboration %s: %w", k, err)
			}
			if collaboration.Active() {
				result = append(result, &collaboration)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list collaborations: %w", err)
	}
	return result, nil
}

// ApplyUser upserts a user observed from the server
func (s *Storage) ApplyUser(ctx context.Context, user *models.User) (bool, bool, error) {
	if s.db == nil {
		return false, false, storage.ErrStorageClosed
	}

	created, applied := false, false
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketUsers)
		existing, err := getJSON[models.User](bucket, []byte(user.ID))
		if err != nil {
			return err
		}
		if existing != nil && existing.Revision >= user.Revision {
			return nil
		}
		created = existing == nil
		applied = true
		return putJSON(bucket, []byte(user.ID), user)
	})
	if err != nil {
		return false, false, fmt.Errorf("failed to apply user %s: %w", user.ID, err)
	}
	return created, applied, nil
}

// GetUser retrieves a user
func (s *Storage) GetUser(ctx context.Context, id string) (*models.User, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var user *models.User
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		user, err = getJSON[models.User](tx.Bucket(bucketUsers), []byte(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}
