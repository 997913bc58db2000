package node

import (
	"context"
	"errors"

	"github.com/iudanet/gophsync/internal/client/events"
	"github.com/iudanet/gophsync/internal/client/mutation"
	"github.com/iudanet/gophsync/internal/client/storage"
	"github.com/iudanet/gophsync/internal/models"
)

var _ mutation.NodeReverter = (*Service)(nil)

// RevertCreateNode removes a node the server never accepted.
func (s *Service) RevertCreateNode(ctx context.Context, data models.CreateNodeMutationData) error {
	node, err := s.store.RemoveNode(ctx, data.NodeID)
	if errors.Is(err, storage.ErrNodeNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	s.bus.Publish(events.NodeDeleted{Node: node, WorkspaceID: s.workspaceID})
	return nil
}

// RevertUpdateNode restores the last server-observed attributes.
func (s *Service) RevertUpdateNode(ctx context.Context, data models.UpdateNodeMutationData) error {
	node, err := s.store.RestoreNodeAttributes(ctx, data.NodeID)
	if errors.Is(err, storage.ErrNodeNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	s.bus.Publish(events.NodeUpdated{Node: node, WorkspaceID: s.workspaceID})
	return nil
}

// RevertDeleteNode puts the locally deleted node back.
func (s *Service) RevertDeleteNode(ctx context.Context, data models.DeleteNodeMutationData) error {
	node, err := s.store.RestoreDeletedNode(ctx, data.NodeID)
	if errors.Is(err, storage.ErrPendingDeleteNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	s.bus.Publish(events.NodeCreated{Node: node, WorkspaceID: s.workspaceID})
	return nil
}

// RevertCreateReaction removes the local user's reaction.
func (s *Service) RevertCreateReaction(ctx context.Context, data models.NodeReactionMutationData) error {
	reaction, err := s.store.DeleteNodeReaction(ctx, data.NodeID, s.userID, data.Reaction, nil)
	if errors.Is(err, storage.ErrReactionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	s.bus.Publish(events.NodeReactionDeleted{Reaction: reaction, WorkspaceID: s.workspaceID})
	return nil
}

// RevertDeleteReaction recreates the local user's reaction.
func (s *Service) RevertDeleteReaction(ctx context.Context, data models.NodeReactionMutationData) error {
	reaction := &models.NodeReaction{
		CreatedAt:      data.At,
		NodeID:         data.NodeID,
		CollaboratorID: s.userID,
		Reaction:       data.Reaction,
		RootID:         data.RootID,
	}
	if err := s.store.CreateNodeReaction(ctx, reaction, nil); err != nil {
		return err
	}
	s.bus.Publish(events.NodeReactionCreated{Reaction: reaction, WorkspaceID: s.workspaceID})
	return nil
}
