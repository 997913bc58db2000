// Package workspace собирает движок синхронизации одного workspace:
// очередь мутаций, сервисы узлов, документов и счетчиков, синхронизаторы
// партиций users и collaborations и наборы синхронизаторов по каждому
// доступному root.
package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/iudanet/gophsync/internal/client/counter"
	"github.com/iudanet/gophsync/internal/client/document"
	"github.com/iudanet/gophsync/internal/client/eventbus"
	"github.com/iudanet/gophsync/internal/client/events"
	"github.com/iudanet/gophsync/internal/client/mutation"
	"github.com/iudanet/gophsync/internal/client/node"
	"github.com/iudanet/gophsync/internal/client/storage"
	"github.com/iudanet/gophsync/internal/client/synchronizer"
	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/pkg/api"
)

// Store локальная реплика workspace (boltdb.Storage)
type Store interface {
	storage.NodeStorage
	storage.DocumentStorage
	storage.ReactionStorage
	storage.InteractionStorage
	storage.CounterStorage
	storage.MutationStorage
	storage.CursorStorage
	storage.CollaborationStorage
	storage.UserStorage
}

// Config параметры workspace
type Config struct {
	AccountID   string
	WorkspaceID string
	UserID      string
	Server      string
	Queue       mutation.Config
}

// Service движок синхронизации workspace
type Service struct {
	store          Store
	transport      synchronizer.Transport
	bus            *eventbus.Bus
	logger         *slog.Logger
	nodes          *node.Service
	documents      *document.Service
	counters       *counter.Service
	queue          *mutation.Queue
	users          *synchronizer.Synchronizer[api.User]
	collaborations *synchronizer.Synchronizer[api.Collaboration]
	subscription   *eventbus.Subscription
	roots          map[string]*synchronizer.Set
	cfg            Config
	mu             sync.Mutex
}

// New собирает сервисы workspace; синхронизация начинается после Start
func New(cfg Config, store Store, transport synchronizer.Transport, client mutation.Client, bus *eventbus.Bus, logger *slog.Logger) *Service {
	logger = logger.With("workspace_id", cfg.WorkspaceID)

	s := &Service{
		store:     store,
		transport: transport,
		bus:       bus,
		logger:    logger,
		roots:     make(map[string]*synchronizer.Set),
		cfg:       cfg,
	}

	s.nodes = node.NewService(node.Config{WorkspaceID: cfg.WorkspaceID, UserID: cfg.UserID}, store, bus, logger)
	s.documents = document.NewService(document.Config{WorkspaceID: cfg.WorkspaceID, UserID: cfg.UserID}, store, bus, logger)
	s.counters = counter.NewService(counter.Config{WorkspaceID: cfg.WorkspaceID, UserID: cfg.UserID}, store, bus, logger)

	queueCfg := cfg.Queue
	queueCfg.WorkspaceID = cfg.WorkspaceID
	queueCfg.Server = cfg.Server
	s.queue = mutation.NewQueue(queueCfg, store, client, mutation.NewRegistry(s.nodes, s.documents), bus, logger)

	s.users = synchronizer.New[api.User](s.syncConfig(api.SynchronizerUsers, ""), transport, store, s.applyUser, bus, logger)
	s.collaborations = synchronizer.New[api.Collaboration](s.syncConfig(api.SynchronizerCollaborations, ""), transport, store, s.applyCollaboration, bus, logger)
	return s
}

// Nodes returns the node service of the workspace.
func (s *Service) Nodes() *node.Service { return s.nodes }

// Documents returns the document service of the workspace.
func (s *Service) Documents() *document.Service { return s.documents }

// Counters returns the counter service of the workspace.
func (s *Service) Counters() *counter.Service { return s.counters }

// Queue returns the mutation queue of the workspace.
func (s *Service) Queue() *mutation.Queue { return s.queue }

// Start starts counters and the mutation queue, the workspace partitions and a
// root synchronizer set for every active collaboration already stored locally.
func (s *Service) Start(ctx context.Context) error {
	s.counters.Start()
	s.queue.Start()
	s.subscription = s.bus.Subscribe(s.handle)

	if err := s.users.Init(ctx); err != nil {
		return fmt.Errorf("failed to start users synchronizer: %w", err)
	}
	if err := s.collaborations.Init(ctx); err != nil {
		return fmt.Errorf("failed to start collaborations synchronizer: %w", err)
	}

	collaborations, err := s.store.ListActiveCollaborations(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collaborations: %w", err)
	}
	for _, c := range collaborations {
		if c.CollaboratorID != s.cfg.UserID {
			continue
		}
		if err := s.openRoot(ctx, c.NodeID); err != nil {
			return err
		}
	}

	s.logger.Info("Workspace started", "roots", len(collaborations))
	return nil
}

// Stop stops every synchronizer, the queue and the counters. Cursors are kept.
func (s *Service) Stop(ctx context.Context) error {
	if s.subscription != nil {
		s.subscription.Unsubscribe()
	}

	s.mu.Lock()
	roots := s.roots
	s.roots = make(map[string]*synchronizer.Set)
	s.mu.Unlock()

	var errs []error
	for _, set := range roots {
		errs = append(errs, set.Destroy(ctx, false))
	}
	errs = append(errs,
		s.users.Destroy(ctx, false),
		s.collaborations.Destroy(ctx, false),
	)

	s.queue.Stop()
	s.counters.Stop()
	return errors.Join(errs...)
}

// Roots returns the ids of roots with running synchronizers.
func (s *Service) Roots() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	roots := make([]string, 0, len(s.roots))
	for id := range s.roots {
		roots = append(roots, id)
	}
	return roots
}

func (s *Service) handle(event events.Event) {
	e, ok := event.(events.SocketMessageReceived)
	if !ok || e.AccountID != s.cfg.AccountID {
		return
	}
	// сервер сообщает о новом участнике, подтягиваем партицию users
	if e.Message.Type == api.MessageTypeUserCreated && e.Message.WorkspaceID == s.cfg.WorkspaceID {
		s.users.Ping()
	}
}

func (s *Service) syncConfig(t api.SynchronizerType, rootID string) synchronizer.Config {
	return synchronizer.Config{
		Input: api.SynchronizerInput{
			Type:        t,
			WorkspaceID: s.cfg.WorkspaceID,
			RootID:      rootID,
		},
		AccountID: s.cfg.AccountID,
		UserID:    s.cfg.UserID,
	}
}

func (s *Service) applyUser(ctx context.Context, item api.User) error {
	user := &models.User{
		CreatedAt: item.CreatedAt,
		ID:        item.ID,
		Email:     item.Email,
		Name:      item.Name,
		Role:      item.Role,
		Revision:  item.Revision,
	}
	created, _, err := s.store.ApplyUser(ctx, user)
	if err != nil {
		return err
	}
	if created {
		s.bus.Publish(events.UserCreated{User: user, WorkspaceID: s.cfg.WorkspaceID})
	}
	return nil
}

func (s *Service) applyCollaboration(ctx context.Context, item api.Collaboration) error {
	collaboration := &models.Collaboration{
		CreatedAt:      item.CreatedAt,
		DeletedAt:      item.DeletedAt,
		NodeID:         item.NodeID,
		CollaboratorID: item.CollaboratorID,
		Role:           models.CollaboratorRole(item.Role),
		Revision:       item.Revision,
	}

	previous, applied, err := s.store.ApplyCollaboration(ctx, collaboration)
	if err != nil {
		return err
	}
	if !applied || collaboration.CollaboratorID != s.cfg.UserID {
		return nil
	}

	wasActive := previous != nil && previous.Active()
	switch {
	case collaboration.Active() && !wasActive:
		if err := s.openRoot(ctx, collaboration.NodeID); err != nil {
			return err
		}
		s.bus.Publish(events.CollaborationCreated{Collaboration: collaboration, WorkspaceID: s.cfg.WorkspaceID})
	case !collaboration.Active():
		if err := s.closeRoot(ctx, collaboration.NodeID); err != nil {
			return err
		}
		s.bus.Publish(events.CollaborationDeleted{Collaboration: collaboration, WorkspaceID: s.cfg.WorkspaceID})
	}
	return nil
}

// openRoot starts the five root partitions together; nothing is registered on failure.
func (s *Service) openRoot(ctx context.Context, rootID string) error {
	s.mu.Lock()
	_, exists := s.roots[rootID]
	s.mu.Unlock()
	if exists {
		return nil
	}

	set, err := synchronizer.StartSet(ctx, s.rootSynchronizers(rootID)...)
	if err != nil {
		return fmt.Errorf("failed to start synchronizers of root %s: %w", rootID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.roots[rootID]; exists {
		return set.Destroy(ctx, false)
	}
	s.roots[rootID] = set
	s.logger.Info("Root synchronizers started", "root_id", rootID)
	return nil
}

// closeRoot tears the root partitions down and removes the local data of the root.
func (s *Service) closeRoot(ctx context.Context, rootID string) error {
	s.mu.Lock()
	set, exists := s.roots[rootID]
	delete(s.roots, rootID)
	s.mu.Unlock()

	if exists {
		if err := set.Destroy(ctx, true); err != nil {
			return fmt.Errorf("failed to destroy synchronizers of root %s: %w", rootID, err)
		}
	} else {
		for _, t := range api.RootSynchronizerTypes {
			input := api.SynchronizerInput{Type: t, WorkspaceID: s.cfg.WorkspaceID, RootID: rootID}
			if err := s.store.DeleteCursor(ctx, input.Key()); err != nil {
				return err
			}
		}
	}
	if err := s.store.DeleteRootData(ctx, rootID); err != nil {
		return fmt.Errorf("failed to delete data of root %s: %w", rootID, err)
	}
	s.logger.Info("Root access revoked", "root_id", rootID)
	return nil
}

func (s *Service) rootSynchronizers(rootID string) []synchronizer.Instance {
	return []synchronizer.Instance{
		synchronizer.New[api.Node](s.syncConfig(api.SynchronizerNodeUpdates, rootID), s.transport, s.store,
			s.nodes.ApplyServerNode, s.bus, s.logger),
		synchronizer.New[api.NodeInteraction](s.syncConfig(api.SynchronizerNodeInteractions, rootID), s.transport, s.store,
			s.nodes.ApplyServerInteraction, s.bus, s.logger),
		synchronizer.New[api.NodeReaction](s.syncConfig(api.SynchronizerNodeReactions, rootID), s.transport, s.store,
			s.nodes.ApplyServerReaction, s.bus, s.logger),
		synchronizer.New[api.NodeTombstone](s.syncConfig(api.SynchronizerNodeTombstones, rootID), s.transport, s.store,
			s.nodes.ApplyServerTombstone, s.bus, s.logger),
		synchronizer.New[api.DocumentUpdate](s.syncConfig(api.SynchronizerDocumentUpdates, rootID), s.transport, s.store,
			s.documents.ApplyServerUpdate, s.bus, s.logger),
	}
}

// Status сводка локального состояния для команды status
type Status struct {
	Cursors          map[string]string `json:"cursors"`
	WorkspaceID      string            `json:"workspace_id"`
	Roots            []string          `json:"roots"`
	PendingMutations int               `json:"pending_mutations"`
}

// Status reports pending mutations, cursors and active roots.
func (s *Service) Status(ctx context.Context) (*Status, error) {
	return ReadStatus(ctx, s.cfg.WorkspaceID, s.store)
}

// StatusStore часть реплики, нужная для Status
type StatusStore interface {
	storage.MutationStorage
	storage.CursorStorage
	storage.CollaborationStorage
}

// ReadStatus reads the status directly from a store, without a running workspace.
func ReadStatus(ctx context.Context, workspaceID string, store StatusStore) (*Status, error) {
	pending, err := store.CountMutations(ctx)
	if err != nil {
		return nil, err
	}
	cursors, err := store.ListCursors(ctx)
	if err != nil {
		return nil, err
	}
	collaborations, err := store.ListActiveCollaborations(ctx)
	if err != nil {
		return nil, err
	}
	roots := make([]string, 0, len(collaborations))
	for _, c := range collaborations {
		roots = append(roots, c.NodeID)
	}
	return &Status{
		Cursors:          cursors,
		WorkspaceID:      workspaceID,
		Roots:            roots,
		PendingMutations: pending,
	}, nil
}

// String renders the status as indented JSON.
func (st *Status) String() string {
	data, _ := json.MarshalIndent(st, "", "  ")
	return string(data)
}
