// Package document ведет локальные CRDT документы страниц и сообщений.
//
// Документ хранится как подтвержденное сервером состояние плюс локальные
// неподтвержденные дельты; материализованное содержимое всегда равно
// состоянию с примененными поверх дельтами.
package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/iudanet/gophsync/internal/client/eventbus"
	"github.com/iudanet/gophsync/internal/client/events"
	"github.com/iudanet/gophsync/internal/client/keylock"
	"github.com/iudanet/gophsync/internal/client/mutation"
	"github.com/iudanet/gophsync/internal/client/storage"
	"github.com/iudanet/gophsync/internal/crdt"
	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/pkg/api"
)

// ErrNoDocument узел этого типа не имеет документа
var ErrNoDocument = errors.New("node type has no document")

// Store локальная реплика документов и узлов
type Store interface {
	storage.DocumentStorage
	GetNode(ctx context.Context, id string) (*models.Node, error)
}

// Config параметры сервиса
type Config struct {
	Now         func() time.Time
	WorkspaceID string
	UserID      string
}

// Service сервис документов одного workspace
type Service struct {
	store       Store
	bus         *eventbus.Bus
	logger      *slog.Logger
	locks       *keylock.Locker
	now         func() time.Time
	workspaceID string
	userID      string
}

var _ mutation.DocumentReverter = (*Service)(nil)

// NewService создает сервис документов
func NewService(cfg Config, store Store, bus *eventbus.Bus, logger *slog.Logger) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:       store,
		bus:         bus,
		logger:      logger.With("workspace_id", cfg.WorkspaceID),
		locks:       keylock.New(),
		now:         now,
		workspaceID: cfg.WorkspaceID,
		userID:      cfg.UserID,
	}
}

// GetDocument returns the materialised document.
func (s *Service) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	return s.store.GetDocument(ctx, id)
}

// Edit applies fn to the current content and stores the resulting CRDT delta
// as a pending update with an update_document mutation. When fn changes
// nothing, no update is stored. Content that fails the node type schema is
// rejected with crdt.ErrInvalidContent.
func (s *Service) Edit(ctx context.Context, documentID string, fn func(content map[string]any) error) (*models.Document, error) {
	unlock := s.locks.Lock(documentID)
	defer unlock()

	node, err := s.store.GetNode(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load node %s: %w", documentID, err)
	}
	schema, ok := crdt.SchemaFor(node.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoDocument, node.Type)
	}

	base, err := s.storedState(ctx, documentID)
	if err != nil {
		return nil, err
	}
	doc, err := s.load(ctx, documentID, base, "")
	if err != nil {
		return nil, err
	}

	previous, err := s.currentDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	content, err := doc.Content()
	if err != nil {
		return nil, err
	}
	if err := fn(content); err != nil {
		return nil, err
	}
	if err := schema.Validate(content); err != nil {
		return nil, err
	}

	delta, err := doc.Update(content)
	if err != nil {
		return nil, err
	}
	if delta == nil {
		return previous, nil
	}

	materialised, err := doc.ContentJSON()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	document := &models.Document{
		UpdatedAt:     now,
		ID:            documentID,
		RootID:        node.RootID,
		Content:       materialised,
		Revision:      previous.Revision,
		LocalRevision: previous.LocalRevision + 1,
	}
	update := &models.DocumentUpdate{
		CreatedAt:  now,
		ID:         models.GenerateID(models.IDTypeDocumentUpdate),
		DocumentID: documentID,
		RootID:     node.RootID,
		CreatedBy:  s.userID,
		Data:       delta,
	}
	m, err := models.NewMutation(models.MutationTypeUpdateDocument, models.UpdateDocumentMutationData{
		DocumentID: documentID,
		RootID:     node.RootID,
		UpdateID:   update.ID,
		Data:       delta,
	}, now)
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveLocalDocumentUpdate(ctx, document, update, m); err != nil {
		return nil, fmt.Errorf("failed to save document update: %w", err)
	}

	s.bus.Publish(events.DocumentUpdated{WorkspaceID: s.workspaceID, DocumentID: documentID, Content: materialised})
	s.bus.Publish(events.MutationCreated{WorkspaceID: s.workspaceID, MutationID: m.ID})
	return document, nil
}

// ApplyServerUpdate applies an item of the document_updates partition to the
// server state, drops the matching pending update and rematerialises the
// content. DocumentUpdated is published only when the content changed.
func (s *Service) ApplyServerUpdate(ctx context.Context, item api.DocumentUpdate) error {
	unlock := s.locks.Lock(item.DocumentID)
	defer unlock()

	state, err := s.store.GetDocumentState(ctx, item.DocumentID)
	if err != nil && !errors.Is(err, storage.ErrDocumentNotFound) {
		return err
	}
	var base []byte
	if state != nil {
		// повторная доставка уже примененной ревизии
		if item.Revision <= state.Revision {
			return nil
		}
		base = state.State
	}

	server, err := crdt.Load(base)
	if err != nil {
		return err
	}
	if err := server.ApplyUpdate(item.Data); err != nil {
		return err
	}
	newState := &models.DocumentState{ID: item.DocumentID, State: server.State(), Revision: item.Revision}

	doc, err := s.load(ctx, item.DocumentID, newState.State, item.ID)
	if err != nil {
		return err
	}
	previous, err := s.currentDocument(ctx, item.DocumentID)
	if err != nil {
		return err
	}

	materialised, err := doc.ContentJSON()
	if err != nil {
		return err
	}
	document := &models.Document{
		UpdatedAt:     s.now().UTC(),
		ID:            item.DocumentID,
		RootID:        item.RootID,
		Content:       materialised,
		Revision:      item.Revision,
		LocalRevision: previous.LocalRevision,
	}

	if err := s.store.ApplyServerDocumentUpdate(ctx, newState, document, item.ID); err != nil {
		return fmt.Errorf("failed to apply document update %s: %w", item.ID, err)
	}

	s.publishIfChanged(previous, document)
	return nil
}

// RevertDocumentUpdate drops a pending update the server kept rejecting and
// rematerialises the document without it. Every later local update of the
// document is an automerge change that depends on the rejected one, so those
// updates and their update_document mutations are dropped as well.
func (s *Service) RevertDocumentUpdate(ctx context.Context, data models.UpdateDocumentMutationData) error {
	unlock := s.locks.Lock(data.DocumentID)
	defer unlock()

	pending, err := s.store.ListDocumentUpdates(ctx, data.DocumentID)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(pending, func(u *models.DocumentUpdate) bool { return u.ID == data.UpdateID })
	if idx < 0 {
		// уже подтверждено сервером или отброшено вместе с более ранним
		return nil
	}

	base, err := s.storedState(ctx, data.DocumentID)
	if err != nil {
		return err
	}
	deltas := make([][]byte, 0, idx)
	for _, u := range pending[:idx] {
		deltas = append(deltas, u.Data)
	}
	doc, err := crdt.Merge(base, deltas, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to materialise document %s: %w", data.DocumentID, err)
	}
	previous, err := s.currentDocument(ctx, data.DocumentID)
	if err != nil {
		return err
	}

	materialised, err := doc.ContentJSON()
	if err != nil {
		return err
	}
	document := &models.Document{
		UpdatedAt:     s.now().UTC(),
		ID:            data.DocumentID,
		RootID:        data.RootID,
		Content:       materialised,
		Revision:      previous.Revision,
		LocalRevision: previous.LocalRevision + 1,
	}
	if previous.RootID != "" {
		document.RootID = previous.RootID
	}

	dropped := make([]string, 0, len(pending)-idx)
	for _, u := range pending[idx:] {
		dropped = append(dropped, u.ID)
	}
	if err := s.store.DropDocumentUpdates(ctx, document, dropped); err != nil {
		return fmt.Errorf("failed to drop document update %s: %w", data.UpdateID, err)
	}
	if len(dropped) > 1 {
		s.logger.Warn("Dropped dependent document updates",
			"document_id", data.DocumentID,
			"update_id", data.UpdateID,
			"count", len(dropped)-1)
	}

	s.publishIfChanged(previous, document)
	return nil
}

// storedState returns the server-acknowledged CRDT state, nil for a new document.
func (s *Service) storedState(ctx context.Context, documentID string) ([]byte, error) {
	state, err := s.store.GetDocumentState(ctx, documentID)
	if errors.Is(err, storage.ErrDocumentNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return state.State, nil
}

// load rebuilds the document from base and the pending updates, skipping the update with id skip.
func (s *Service) load(ctx context.Context, documentID string, base []byte, skip string) (*crdt.Document, error) {
	pending, err := s.store.ListDocumentUpdates(ctx, documentID)
	if err != nil {
		return nil, err
	}
	deltas := make([][]byte, 0, len(pending))
	for _, u := range pending {
		if u.ID == skip {
			continue
		}
		deltas = append(deltas, u.Data)
	}

	doc, err := crdt.Merge(base, deltas, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to materialise document %s: %w", documentID, err)
	}
	return doc, nil
}

// currentDocument returns the stored document or an empty one.
func (s *Service) currentDocument(ctx context.Context, id string) (*models.Document, error) {
	document, err := s.store.GetDocument(ctx, id)
	if errors.Is(err, storage.ErrDocumentNotFound) {
		return &models.Document{ID: id}, nil
	}
	if err != nil {
		return nil, err
	}
	return document, nil
}

func (s *Service) publishIfChanged(previous, current *models.Document) {
	// пустой документ материализуется как {}
	before := previous.Content
	if len(before) == 0 {
		before = []byte(`{}`)
	}
	if crdt.ContentEqual(before, current.Content) {
		return
	}
	s.bus.Publish(events.DocumentUpdated{
		WorkspaceID: s.workspaceID,
		DocumentID:  current.ID,
		Content:     current.Content,
	})
}
