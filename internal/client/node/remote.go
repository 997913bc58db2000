package node

import (
	"context"
	"fmt"

	"github.com/iudanet/gophsync/internal/client/events"
	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/pkg/api"
)

// ApplyServerNode applies an item of the nodes_updates partition.
func (s *Service) ApplyServerNode(ctx context.Context, item api.Node) error {
	node := NodeFromAPI(item)

	previous, applied, err := s.store.ApplyServerNode(ctx, node)
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	stored, err := s.store.GetNode(ctx, node.ID)
	if err != nil {
		return fmt.Errorf("failed to reload node %s: %w", node.ID, err)
	}
	if previous == nil {
		s.bus.Publish(events.NodeCreated{Node: stored, WorkspaceID: s.workspaceID})
	} else {
		s.bus.Publish(events.NodeUpdated{Node: stored, WorkspaceID: s.workspaceID})
	}
	return nil
}

// ApplyServerTombstone applies an item of the node_tombstones partition.
func (s *Service) ApplyServerTombstone(ctx context.Context, item api.NodeTombstone) error {
	removed, err := s.store.ApplyTombstone(ctx, &models.NodeTombstone{
		DeletedAt: item.DeletedAt,
		ID:        item.ID,
		RootID:    item.RootID,
		DeletedBy: item.DeletedBy,
		Revision:  item.Revision,
	})
	if err != nil {
		return err
	}
	if removed == nil {
		return nil
	}

	s.bus.Publish(events.NodeDeleted{Node: removed, WorkspaceID: s.workspaceID})
	return nil
}

// ApplyServerReaction applies an item of the node_reactions partition.
func (s *Service) ApplyServerReaction(ctx context.Context, item api.NodeReaction) error {
	reaction := &models.NodeReaction{
		CreatedAt:      item.CreatedAt,
		NodeID:         item.NodeID,
		CollaboratorID: item.CollaboratorID,
		Reaction:       item.Reaction,
		RootID:         item.RootID,
		Revision:       item.Revision,
	}
	deleted := item.DeletedAt != nil

	applied, err := s.store.ApplyServerReaction(ctx, reaction, deleted)
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	if deleted {
		s.bus.Publish(events.NodeReactionDeleted{Reaction: reaction, WorkspaceID: s.workspaceID})
	} else {
		s.bus.Publish(events.NodeReactionCreated{Reaction: reaction, WorkspaceID: s.workspaceID})
	}
	return nil
}

// ApplyServerInteraction applies an item of the node_interactions partition.
func (s *Service) ApplyServerInteraction(ctx context.Context, item api.NodeInteraction) error {
	previous, current, changed, err := s.store.MergeNodeInteraction(ctx, &models.NodeInteraction{
		FirstSeenAt:    item.FirstSeenAt,
		LastSeenAt:     item.LastSeenAt,
		FirstOpenedAt:  item.FirstOpenedAt,
		LastOpenedAt:   item.LastOpenedAt,
		NodeID:         item.NodeID,
		CollaboratorID: item.CollaboratorID,
		RootID:         item.RootID,
		Revision:       item.Revision,
	}, nil)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	s.bus.Publish(events.NodeInteractionUpdated{Previous: previous, Current: current, WorkspaceID: s.workspaceID})
	return nil
}

// NodeFromAPI converts a partition item into the local model.
func NodeFromAPI(item api.Node) *models.Node {
	node := &models.Node{
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
		ID:             item.ID,
		Type:           models.NodeType(item.Type),
		ParentID:       item.ParentID,
		RootID:         item.RootID,
		CreatedBy:      item.CreatedBy,
		UpdatedBy:      item.UpdatedBy,
		Attributes:     item.Attributes,
		ServerRevision: item.Revision,
	}
	for _, ref := range item.References {
		node.References = append(node.References, models.NodeReference{ReferenceID: ref.ReferenceID, Type: ref.Type})
	}
	return node
}
