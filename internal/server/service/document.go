package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/gophsync/internal/crdt"
	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/server/storage"
	"github.com/iudanet/gophsync/pkg/api"
)

const (
	// DocumentRetries число попыток сохранить дельту при конкурентной записи
	DocumentRetries = 10
	// CompactionInterval после стольких дельт с последнего снимка сохраняется новый
	CompactionInterval = 50
)

// UpdateDocumentFromMutation сливает входящую дельту с сохраненным состоянием
// документа и сохраняет ее, если ревизия документа не изменилась с момента
// чтения. При конфликте чтение и слияние повторяются.
func (s *Service) UpdateDocumentFromMutation(ctx context.Context, user *api.User, data models.UpdateDocumentMutationData) error {
	if data.UpdateID == "" || len(data.Data) == 0 {
		return fmt.Errorf("%w: update id and data are required", ErrInvalidMutation)
	}
	if err := s.requireWrite(ctx, user, data.RootID); err != nil {
		return err
	}

	node, err := s.store.GetNode(ctx, data.DocumentID)
	if err != nil {
		return err
	}
	if node.RootID != data.RootID {
		return fmt.Errorf("%w: %s belongs to another root", ErrInvalidMutation, node.ID)
	}
	schema, ok := crdt.SchemaFor(models.NodeType(node.Type))
	if !ok {
		return fmt.Errorf("%w: %s nodes have no document", ErrInvalidMutation, node.Type)
	}

	exists, err := s.store.DocumentUpdateExists(ctx, data.UpdateID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	for attempt := range DocumentRetries {
		snapshot, err := s.store.GetDocumentSnapshot(ctx, data.DocumentID)
		if err != nil {
			return err
		}

		doc, err := crdt.Merge(snapshot.State, snapshot.Updates, data.Data, schema)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidMutation, err)
		}
		content, err := doc.ContentJSON()
		if err != nil {
			return err
		}

		save := &storage.DocumentSave{
			Update: &api.DocumentUpdate{
				ID:         data.UpdateID,
				DocumentID: data.DocumentID,
				RootID:     data.RootID,
				CreatedBy:  user.ID,
				CreatedAt:  s.now().UTC(),
				Data:       data.Data,
			},
			Content:          content,
			ExpectedRevision: snapshot.Revision,
		}
		if len(snapshot.Updates)+1 >= CompactionInterval {
			save.State = doc.State()
		}

		err = s.store.SaveDocumentUpdate(ctx, user.WorkspaceID, save)
		if errors.Is(err, storage.ErrRevisionConflict) {
			s.logger.Debug("Document changed concurrently, retrying",
				"document_id", data.DocumentID, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return err
		}

		s.publish(user.WorkspaceID, api.SynchronizerDocumentUpdates, data.RootID)
		return nil
	}

	return fmt.Errorf("failed to update document %s after %d attempts: %w",
		data.DocumentID, DocumentRetries, storage.ErrRevisionConflict)
}
