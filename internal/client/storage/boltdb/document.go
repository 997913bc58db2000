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

// GetDocument retrieves the materialised document
func (s *Storage) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var document *models.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		document, err = getJSON[models.Document](tx.Bucket(bucketDocuments), []byte(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, storage.ErrDocumentNotFound
	}
	return document, nil
}

// GetDocumentState retrieves the server-acknowledged CRDT state
func (s *Storage) GetDocumentState(ctx context.Context, id string) (*models.DocumentState, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var state *models.DocumentState
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		state, err = getJSON[models.DocumentState](tx.Bucket(bucketDocumentStates), []byte(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, storage.ErrDocumentNotFound
	}
	return state, nil
}

// ListDocumentUpdates returns pending local updates in creation order
func (s *Storage) ListDocumentUpdates(ctx context.Context, documentID string) ([]*models.DocumentUpdate, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var updates []*models.DocumentUpdate
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		updates, err = listPrefix[models.DocumentUpdate](tx.Bucket(bucketDocumentUpds), prefixKey(documentID))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list updates of document %s: %w", documentID, err)
	}
	return updates, nil
}

// SaveLocalDocumentUpdate stores a pending update with its mutation
func (s *Storage) SaveLocalDocumentUpdate(
	ctx context.Context,
	document *models.Document,
	update *models.DocumentUpdate,
	mutation *models.Mutation,
) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := putJSON(tx.Bucket(bucketDocumentUpds), compositeKey(update.DocumentID, update.ID), update); err != nil {
			return err
		}
		if err := putJSON(tx.Bucket(bucketDocuments), []byte(document.ID), document); err != nil {
			return err
		}
		return putMutation(tx, mutation)
	})
}

// ApplyServerDocumentUpdate stores the new server state and drops the matching pending update
func (s *Storage) ApplyServerDocumentUpdate(
	ctx context.Context,
	state *models.DocumentState,
	document *models.Document,
	updateID string,
) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := putJSON(tx.Bucket(bucketDocumentStates), []byte(state.ID), state); err != nil {
			return err
		}
		if err := putJSON(tx.Bucket(bucketDocuments), []byte(document.ID), document); err != nil {
			return err
		}
		if updateID == "" {
			return nil
		}
		return tx.Bucket(bucketDocumentUpds).Delete(compositeKey(state.ID, updateID))
	})
}

// DropDocumentUpdates removes pending local updates and their update_document mutations
func (s *Storage) DropDocumentUpdates(ctx context.Context, document *models.Document, updateIDs []string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		updates := tx.Bucket(bucketDocumentUpds)
		for _, id := range updateIDs {
			if err := updates.Delete(compositeKey(document.ID, id)); err != nil {
				return fmt.Errorf("failed to delete document update %s: %w", id, err)
			}
		}
		if err := deleteDocumentMutations(tx, updateIDs); err != nil {
			return err
		}
		return putJSON(tx.Bucket(bucketDocuments), []byte(document.ID), document)
	})
}

// deleteDocumentMutations удаляет update_document мутации, ссылающиеся на updateIDs
func deleteDocumentMutations(tx *bbolt.Tx, updateIDs []string) error {
	if len(updateIDs) == 0 {
		return nil
	}

	bucket := tx.Bucket(bucketMutations)
	var keys [][]byte
	err := bucket.ForEach(func(k, v []byte) error {
		var mutation models.Mutation
		if err := json.Unmarshal(v, &mutation); err != nil {
			return fmt.Errorf("failed to unmarshal mutation %s: %w", k, err)
		}
		if mutation.Type != models.MutationTypeUpdateDocument {
			return nil
		}
		var data models.UpdateDocumentMutationData
		if err := mutation.DecodeData(&data); err != nil {
			// нечитаемый payload не может ссылаться на обновление
			return nil
		}
		if slices.Contains(updateIDs, data.UpdateID) {
			keys = append(keys, slices.Clone(k))
		}
		return nil
	})
	if err != nil {
		return err
	}

	// удаление внутри ForEach запрещено bbolt
	for _, k := range keys {
		if err := bucket.Delete(k); err != nil {
			return fmt.Errorf("failed to delete mutation %s: %w", k, err)
		}
	}
	return nil
}
