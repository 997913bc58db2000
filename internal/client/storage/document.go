package storage

import (
	"context"

	"github.com/iudanet/gophsync/internal/models"
)

// DocumentStorage хранит CRDT документы: подтвержденный сервером state,
// локальные неподтвержденные обновления и материализованное содержимое
type DocumentStorage interface {
	// GetDocument returns ErrDocumentNotFound if document doesn't exist
	GetDocument(ctx context.Context, id string) (*models.Document, error)

	// GetDocumentState returns ErrDocumentNotFound if no server state was stored yet
	GetDocumentState(ctx context.Context, id string) (*models.DocumentState, error)

	// ListDocumentUpdates returns pending local updates in creation order
	ListDocumentUpdates(ctx context.Context, documentID string) ([]*models.DocumentUpdate, error)

	// SaveLocalDocumentUpdate stores a pending update, the rematerialised document
	// and the update_document mutation atomically
	SaveLocalDocumentUpdate(ctx context.Context, document *models.Document, update *models.DocumentUpdate, mutation *models.Mutation) error

	// ApplyServerDocumentUpdate stores the new server state and the rematerialised
	// document, dropping the pending local update with the same id if present
	ApplyServerDocumentUpdate(ctx context.Context, state *models.DocumentState, document *models.Document, updateID string) error

	// DropDocumentUpdates removes pending local updates together with their
	// update_document mutations and stores the rematerialised document atomically
	DropDocumentUpdates(ctx context.Context, document *models.Document, updateIDs []string) error
}
