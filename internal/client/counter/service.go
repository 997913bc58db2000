// Package counter выводит счетчики непрочитанного на каналах и чатах из
// событий узлов и взаимодействий.
//
// Счетчики меняются относительными дельтами и никогда не опускаются ниже
// нуля. Все изменения по одному сообщению сериализуются блокировкой по id
// сообщения.
package counter

import (
	"context"
	"errors"
	"log/slog"

	"github.com/iudanet/gophsync/internal/client/eventbus"
	"github.com/iudanet/gophsync/internal/client/events"
	"github.com/iudanet/gophsync/internal/client/keylock"
	"github.com/iudanet/gophsync/internal/client/storage"
	"github.com/iudanet/gophsync/internal/models"
)

// Store счетчики плюс чтение узлов и взаимодействий
type Store interface {
	storage.CounterStorage
	GetNode(ctx context.Context, id string) (*models.Node, error)
	GetNodeInteraction(ctx context.Context, nodeID, collaboratorID string) (*models.NodeInteraction, error)
}

// Config параметры сервиса
type Config struct {
	WorkspaceID string
	UserID      string
}

// Service поддерживает счетчики одного workspace
type Service struct {
	store        Store
	bus          *eventbus.Bus
	logger       *slog.Logger
	locks        *keylock.Locker
	subscription *eventbus.Subscription
	workspaceID  string
	userID       string
}

// NewService создает сервис; события обрабатываются после Start
func NewService(cfg Config, store Store, bus *eventbus.Bus, logger *slog.Logger) *Service {
	return &Service{
		store:       store,
		bus:         bus,
		logger:      logger.With("workspace_id", cfg.WorkspaceID),
		locks:       keylock.New(),
		workspaceID: cfg.WorkspaceID,
		userID:      cfg.UserID,
	}
}

// Start subscribes to node and interaction events of the workspace.
func (s *Service) Start() {
	s.subscription = s.bus.Subscribe(s.handle)
}

// Stop unsubscribes.
func (s *Service) Stop() {
	if s.subscription != nil {
		s.subscription.Unsubscribe()
	}
}

// Counters returns the counters of a container node.
func (s *Service) Counters(ctx context.Context, nodeID string) ([]models.NodeCounter, error) {
	return s.store.ListNodeCounters(ctx, nodeID)
}

func (s *Service) handle(event events.Event) {
	ctx := context.Background()
	var err error

	switch e := event.(type) {
	case events.NodeCreated:
		if e.WorkspaceID != s.workspaceID {
			return
		}
		err = s.NodeCreated(ctx, e.Node)
	case events.NodeDeleted:
		if e.WorkspaceID != s.workspaceID {
			return
		}
		err = s.NodeDeleted(ctx, e.Node)
	case events.NodeInteractionUpdated:
		if e.WorkspaceID != s.workspaceID {
			return
		}
		err = s.InteractionUpdated(ctx, e.Previous, e.Current)
	default:
		return
	}

	if err != nil {
		s.logger.Error("Failed to update counters", "event", event.Name(), "error", err)
	}
}

// NodeCreated counts a new message from another user on its parent, unless
// the local user has already seen it.
func (s *Service) NodeCreated(ctx context.Context, node *models.Node) error {
	if !s.counts(node) {
		return nil
	}

	unlock := s.locks.Lock(node.ID)
	defer unlock()

	interaction, err := s.store.GetNodeInteraction(ctx, node.ID, s.userID)
	if err != nil && !errors.Is(err, storage.ErrInteractionNotFound) {
		return err
	}
	if interaction != nil && interaction.LastSeenAt != nil {
		return nil
	}

	counterType, ok := s.classify(node)
	if !ok {
		return nil
	}
	return s.add(ctx, node.ParentID, counterType, 1)
}

// NodeDeleted decrements the parent's counter derived from the parent type
// and drops the counters owned by the deleted node. Mentions of the deleted
// message are not re-derived.
func (s *Service) NodeDeleted(ctx context.Context, node *models.Node) error {
	unlock := s.locks.Lock(node.ID)
	defer unlock()

	if err := s.store.DeleteNodeCounters(ctx, node.ID); err != nil {
		return err
	}

	if !s.counts(node) {
		return nil
	}
	counterType, ok := parentCounterType(node.ParentID)
	if !ok {
		return nil
	}
	return s.add(ctx, node.ParentID, counterType, -1)
}

// InteractionUpdated decrements the counter of a message the local user has
// just seen for the first time.
func (s *Service) InteractionUpdated(ctx context.Context, previous, current *models.NodeInteraction) error {
	if current == nil || current.CollaboratorID != s.userID || current.LastSeenAt == nil {
		return nil
	}
	if previous != nil && previous.LastSeenAt != nil {
		return nil
	}

	unlock := s.locks.Lock(current.NodeID)
	defer unlock()

	node, err := s.store.GetNode(ctx, current.NodeID)
	if errors.Is(err, storage.ErrNodeNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !s.counts(node) {
		return nil
	}

	counterType, ok := s.classify(node)
	if !ok {
		return nil
	}
	return s.add(ctx, node.ParentID, counterType, -1)
}

// counts reports whether the node can contribute to its parent's counters.
func (s *Service) counts(node *models.Node) bool {
	if node == nil || node.Type != models.NodeTypeMessage || node.ParentID == "" {
		return false
	}
	return node.CreatedBy != s.userID
}

// classify: упоминание важнее типа родителя
func (s *Service) classify(node *models.Node) (models.CounterType, bool) {
	if node.Mentions(s.userID) {
		return models.CounterUnreadMentions, true
	}
	return parentCounterType(node.ParentID)
}

func parentCounterType(parentID string) (models.CounterType, bool) {
	switch models.GetIDType(parentID) {
	case models.IDTypeChannel:
		return models.CounterUnreadMessages, true
	case models.IDTypeChat:
		return models.CounterUnreadImportantMessages, true
	default:
		return "", false
	}
}

func (s *Service) add(ctx context.Context, nodeID string, counterType models.CounterType, delta int64) error {
	counter, changed, err := s.store.AddNodeCounter(ctx, nodeID, counterType, delta)
	if err != nil {
		return err
	}
	if changed {
		s.bus.Publish(events.NodeCounterUpdated{WorkspaceID: s.workspaceID, Counter: counter})
	}
	return nil
}
