// Package node реализует локальные операции над узлами, реакциями и
// взаимодействиями, а также применение соответствующих партиций сервера.
package node

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/gophsync/internal/client/eventbus"
	"github.com/iudanet/gophsync/internal/client/events"
	"github.com/iudanet/gophsync/internal/client/storage"
	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/validation"
)

var (
	// ErrInvalidAttributes атрибуты узла не являются JSON объектом
	ErrInvalidAttributes = errors.New("invalid node attributes")

	// ErrInvalidParent родитель не задан или не может содержать узел
	ErrInvalidParent = errors.New("invalid parent node")
)

// Store локальная реплика, с которой работает сервис
type Store interface {
	storage.NodeStorage
	storage.ReactionStorage
	storage.InteractionStorage
}

// Config параметры сервиса
type Config struct {
	Now         func() time.Time
	WorkspaceID string
	UserID      string
}

// Service сервис узлов одного workspace
type Service struct {
	store       Store
	bus         *eventbus.Bus
	logger      *slog.Logger
	now         func() time.Time
	workspaceID string
	userID      string
}

// NewService создает сервис узлов
func NewService(cfg Config, store Store, bus *eventbus.Bus, logger *slog.Logger) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:       store,
		bus:         bus,
		logger:      logger.With("workspace_id", cfg.WorkspaceID),
		now:         now,
		workspaceID: cfg.WorkspaceID,
		userID:      cfg.UserID,
	}
}

// CreateNodeInput параметры нового узла
type CreateNodeInput struct {
	Type       models.NodeType
	ParentID   string
	Attributes json.RawMessage
	References []models.NodeReference
}

// CreateNode creates a node optimistically and queues create_node.
// Spaces and chats are roots of themselves; other nodes inherit the root of their parent.
func (s *Service) CreateNode(ctx context.Context, input CreateNodeInput) (*models.Node, error) {
	if err := validateAttributes(input.Attributes); err != nil {
		return nil, err
	}
	idType := input.Type.IDType()
	if idType == "" {
		return nil, fmt.Errorf("unknown node type: %s", input.Type)
	}

	now := s.now().UTC()
	node := &models.Node{
		ID:            models.GenerateID(idType),
		Type:          input.Type,
		CreatedAt:     now,
		CreatedBy:     s.userID,
		Attributes:    input.Attributes,
		References:    input.References,
		LocalRevision: 1,
	}

	if input.Type.IsRootType() {
		node.RootID = node.ID
	} else {
		if input.ParentID == "" {
			return nil, fmt.Errorf("%w: %s requires a parent", ErrInvalidParent, input.Type)
		}
		parent, err := s.store.GetNode(ctx, input.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load parent %s: %w", input.ParentID, err)
		}
		node.ParentID = parent.ID
		node.RootID = parent.RootID
	}

	mutation, err := models.NewMutation(models.MutationTypeCreateNode, models.CreateNodeMutationData{
		CreatedAt:  now,
		NodeID:     node.ID,
		Type:       node.Type,
		ParentID:   node.ParentID,
		RootID:     node.RootID,
		Attributes: node.Attributes,
		References: node.References,
	}, now)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateNode(ctx, node, mutation); err != nil {
		return nil, fmt.Errorf("failed to create node: %w", err)
	}

	s.logger.Debug("Node created", "node_id", node.ID, "type", node.Type)
	s.bus.Publish(events.NodeCreated{Node: node, WorkspaceID: s.workspaceID})
	s.bus.Publish(events.MutationCreated{WorkspaceID: s.workspaceID, MutationID: mutation.ID})
	return node, nil
}

// UpdateNode replaces attributes and references and queues update_node.
func (s *Service) UpdateNode(ctx context.Context, id string, attributes json.RawMessage, references []models.NodeReference) (*models.Node, error) {
	if err := validateAttributes(attributes); err != nil {
		return nil, err
	}

	var mutationID string
	node, err := s.store.UpdateNode(ctx, id, func(node *models.Node) (*models.Mutation, error) {
		now := s.now().UTC()
		node.Attributes = attributes
		node.References = references
		node.UpdatedAt = &now
		node.UpdatedBy = s.userID
		node.LocalRevision++

		mutation, err := models.NewMutation(models.MutationTypeUpdateNode, models.UpdateNodeMutationData{
			UpdatedAt:  now,
			NodeID:     node.ID,
			RootID:     node.RootID,
			Attributes: attributes,
			References: references,
		}, now)
		if err != nil {
			return nil, err
		}
		mutationID = mutation.ID
		return mutation, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update node %s: %w", id, err)
	}

	s.bus.Publish(events.NodeUpdated{Node: node, WorkspaceID: s.workspaceID})
	s.bus.Publish(events.MutationCreated{WorkspaceID: s.workspaceID, MutationID: mutationID})
	return node, nil
}

// DeleteNode removes the node locally and queues delete_node.
func (s *Service) DeleteNode(ctx context.Context, id string) error {
	node, err := s.store.GetNode(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load node %s: %w", id, err)
	}

	now := s.now().UTC()
	mutation, err := models.NewMutation(models.MutationTypeDeleteNode, models.DeleteNodeMutationData{
		DeletedAt: now,
		NodeID:    node.ID,
		RootID:    node.RootID,
	}, now)
	if err != nil {
		return err
	}

	deleted, err := s.store.DeleteNode(ctx, id, mutation)
	if err != nil {
		return fmt.Errorf("failed to delete node %s: %w", id, err)
	}

	s.bus.Publish(events.NodeDeleted{Node: deleted, WorkspaceID: s.workspaceID})
	s.bus.Publish(events.MutationCreated{WorkspaceID: s.workspaceID, MutationID: mutation.ID})
	return nil
}

// GetNode returns the local copy of a node.
func (s *Service) GetNode(ctx context.Context, id string) (*models.Node, error) {
	return s.store.GetNode(ctx, id)
}

// AddReaction adds the local user's reaction and queues create_node_reaction.
// Adding an existing reaction is a no-op.
func (s *Service) AddReaction(ctx context.Context, nodeID, reaction string) (*models.NodeReaction, error) {
	if err := validation.ValidateReaction(reaction); err != nil {
		return nil, err
	}

	existing, err := s.store.GetNodeReaction(ctx, nodeID, s.userID, reaction)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, storage.ErrReactionNotFound) {
		return nil, err
	}

	node, err := s.store.GetNode(ctx, nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load node %s: %w", nodeID, err)
	}

	now := s.now().UTC()
	result := &models.NodeReaction{
		CreatedAt:      now,
		NodeID:         node.ID,
		CollaboratorID: s.userID,
		Reaction:       reaction,
		RootID:         node.RootID,
	}
	mutation, err := models.NewMutation(models.MutationTypeCreateNodeReaction, models.NodeReactionMutationData{
		At:       now,
		NodeID:   node.ID,
		RootID:   node.RootID,
		Reaction: reaction,
	}, now)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateNodeReaction(ctx, result, mutation); err != nil {
		return nil, fmt.Errorf("failed to create reaction: %w", err)
	}

	s.bus.Publish(events.NodeReactionCreated{Reaction: result, WorkspaceID: s.workspaceID})
	s.bus.Publish(events.MutationCreated{WorkspaceID: s.workspaceID, MutationID: mutation.ID})
	return result, nil
}

// RemoveReaction removes the local user's reaction and queues delete_node_reaction.
func (s *Service) RemoveReaction(ctx context.Context, nodeID, reaction string) error {
	existing, err := s.store.GetNodeReaction(ctx, nodeID, s.userID, reaction)
	if err != nil {
		return fmt.Errorf("failed to load reaction: %w", err)
	}

	now := s.now().UTC()
	mutation, err := models.NewMutation(models.MutationTypeDeleteNodeReaction, models.NodeReactionMutationData{
		At:       now,
		NodeID:   nodeID,
		RootID:   existing.RootID,
		Reaction: reaction,
	}, now)
	if err != nil {
		return err
	}

	removed, err := s.store.DeleteNodeReaction(ctx, nodeID, s.userID, reaction, mutation)
	if err != nil {
		return fmt.Errorf("failed to delete reaction: %w", err)
	}

	s.bus.Publish(events.NodeReactionDeleted{Reaction: removed, WorkspaceID: s.workspaceID})
	s.bus.Publish(events.MutationCreated{WorkspaceID: s.workspaceID, MutationID: mutation.ID})
	return nil
}

// MarkSeen advances the local user's seen watermark and queues mark_node_seen.
func (s *Service) MarkSeen(ctx context.Context, nodeID string) (*models.NodeInteraction, error) {
	return s.mark(ctx, nodeID, models.MutationTypeMarkNodeSeen)
}

// MarkOpened advances the local user's opened watermark and queues mark_node_opened.
func (s *Service) MarkOpened(ctx context.Context, nodeID string) (*models.NodeInteraction, error) {
	return s.mark(ctx, nodeID, models.MutationTypeMarkNodeOpened)
}

func (s *Service) mark(ctx context.Context, nodeID string, mutationType models.MutationType) (*models.NodeInteraction, error) {
	node, err := s.store.GetNode(ctx, nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load node %s: %w", nodeID, err)
	}

	now := s.now().UTC()
	interaction := &models.NodeInteraction{
		NodeID:         node.ID,
		CollaboratorID: s.userID,
		RootID:         node.RootID,
	}
	if mutationType == models.MutationTypeMarkNodeSeen {
		interaction.MarkSeen(now)
	} else {
		interaction.MarkOpened(now)
	}

	mutation, err := models.NewMutation(mutationType, models.MarkNodeMutationData{
		At:             now,
		NodeID:         node.ID,
		RootID:         node.RootID,
		CollaboratorID: s.userID,
	}, now)
	if err != nil {
		return nil, err
	}

	previous, current, changed, err := s.store.MergeNodeInteraction(ctx, interaction, mutation)
	if err != nil {
		return nil, err
	}
	if !changed {
		return current, nil
	}

	s.bus.Publish(events.NodeInteractionUpdated{Previous: previous, Current: current, WorkspaceID: s.workspaceID})
	s.bus.Publish(events.MutationCreated{WorkspaceID: s.workspaceID, MutationID: mutation.ID})
	return current, nil
}

func validateAttributes(attributes json.RawMessage) error {
	if len(attributes) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidAttributes)
	}
	var obj map[string]any
	if err := json.Unmarshal(attributes, &obj); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAttributes, err)
	}
	if obj == nil {
		return fmt.Errorf("%w: null", ErrInvalidAttributes)
	}
	return nil
}
