package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/server/storage"
	"github.com/iudanet/gophsync/pkg/api"
)

// ApplyMutations применяет пакет мутаций по порядку. Ошибка одной мутации
// не останавливает остальные: результат возвращается по каждой.
func (s *Service) ApplyMutations(ctx context.Context, user *api.User, mutations []api.Mutation) []api.MutationResult {
	results := make([]api.MutationResult, 0, len(mutations))
	for _, mutation := range mutations {
		status := api.MutationStatusSuccess
		if err := s.ApplyMutation(ctx, user, mutation); err != nil {
			s.logger.Warn("Mutation rejected",
				"mutation_id", mutation.ID,
				"type", mutation.Type,
				"user_id", user.ID,
				"error", err)
			status = api.MutationStatusError
		}
		results = append(results, api.MutationResult{ID: mutation.ID, Status: status})
	}
	return results
}

// ApplyMutation применяет одну мутацию от имени пользователя.
// Повторная доставка уже примененной мутации успешна и ничего не меняет.
func (s *Service) ApplyMutation(ctx context.Context, user *api.User, mutation api.Mutation) error {
	mutationType := models.MutationType(mutation.Type)

	switch mutationType {
	case models.MutationTypeCreateNode:
		var data models.CreateNodeMutationData
		if err := decode(mutation, &data); err != nil {
			return err
		}
		return s.createNode(ctx, user, data)

	case models.MutationTypeUpdateNode:
		var data models.UpdateNodeMutationData
		if err := decode(mutation, &data); err != nil {
			return err
		}
		return s.updateNode(ctx, user, data)

	case models.MutationTypeDeleteNode:
		var data models.DeleteNodeMutationData
		if err := decode(mutation, &data); err != nil {
			return err
		}
		return s.deleteNode(ctx, user, data)

	case models.MutationTypeCreateNodeReaction, models.MutationTypeDeleteNodeReaction:
		var data models.NodeReactionMutationData
		if err := decode(mutation, &data); err != nil {
			return err
		}
		return s.setReaction(ctx, user, data, mutationType == models.MutationTypeCreateNodeReaction)

	case models.MutationTypeMarkNodeSeen, models.MutationTypeMarkNodeOpened:
		var data models.MarkNodeMutationData
		if err := decode(mutation, &data); err != nil {
			return err
		}
		return s.markNode(ctx, user, data, mutationType == models.MutationTypeMarkNodeOpened)

	case models.MutationTypeUpdateDocument:
		var data models.UpdateDocumentMutationData
		if err := decode(mutation, &data); err != nil {
			return err
		}
		return s.UpdateDocumentFromMutation(ctx, user, data)

	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidMutation, mutation.Type)
	}
}

func decode(mutation api.Mutation, dst any) error {
	if err := json.Unmarshal(mutation.Data, dst); err != nil {
		return fmt.Errorf("%w: failed to decode %s data: %w", ErrInvalidMutation, mutation.Type, err)
	}
	return nil
}

func (s *Service) createNode(ctx context.Context, user *api.User, data models.CreateNodeMutationData) error {
	if data.NodeID == "" || data.RootID == "" {
		return fmt.Errorf("%w: node and root ids are required", ErrInvalidMutation)
	}
	if idType := data.Type.IDType(); idType == "" || models.GetIDType(data.NodeID) != idType {
		return fmt.Errorf("%w: id %s does not match node type %q", ErrInvalidMutation, data.NodeID, data.Type)
	}
	if !isObject(data.Attributes) {
		return fmt.Errorf("%w: attributes must be a JSON object", ErrInvalidMutation)
	}

	node := &api.Node{
		ID:         data.NodeID,
		Type:       string(data.Type),
		ParentID:   data.ParentID,
		RootID:     data.RootID,
		Attributes: data.Attributes,
		References: toAPIReferences(data.References),
		CreatedAt:  data.CreatedAt,
		CreatedBy:  user.ID,
	}

	var owner *api.Collaboration
	if data.NodeID == data.RootID {
		if !data.Type.IsRootType() || data.ParentID != "" {
			return fmt.Errorf("%w: %s cannot be a root", ErrInvalidMutation, data.Type)
		}
		owner = &api.Collaboration{
			NodeID:         data.NodeID,
			CollaboratorID: user.ID,
			Role:           string(models.RoleAdmin),
			CreatedAt:      s.now().UTC(),
		}
	} else {
		if err := s.requireWrite(ctx, user, data.RootID); err != nil {
			return err
		}
		parent, err := s.store.GetNode(ctx, data.ParentID)
		if err != nil {
			return fmt.Errorf("%w: parent %q: %w", ErrInvalidMutation, data.ParentID, err)
		}
		if parent.RootID != data.RootID {
			return fmt.Errorf("%w: parent %s belongs to another root", ErrInvalidMutation, parent.ID)
		}
	}

	created, err := s.store.CreateNode(ctx, user.WorkspaceID, node, owner)
	if err != nil {
		return err
	}
	if !created {
		return nil
	}

	s.publish(user.WorkspaceID, api.SynchronizerNodeUpdates, data.RootID)
	if owner != nil {
		s.publish(user.WorkspaceID, api.SynchronizerCollaborations, "")
	}
	return nil
}

func (s *Service) updateNode(ctx context.Context, user *api.User, data models.UpdateNodeMutationData) error {
	if !isObject(data.Attributes) {
		return fmt.Errorf("%w: attributes must be a JSON object", ErrInvalidMutation)
	}
	if err := s.requireWrite(ctx, user, data.RootID); err != nil {
		return err
	}
	existing, err := s.store.GetNode(ctx, data.NodeID)
	if err != nil {
		return err
	}
	if existing.RootID != data.RootID {
		return fmt.Errorf("%w: root of %s cannot change", ErrInvalidMutation, data.NodeID)
	}

	updatedAt := data.UpdatedAt
	node := &api.Node{
		ID:         data.NodeID,
		Attributes: data.Attributes,
		References: toAPIReferences(data.References),
		UpdatedAt:  &updatedAt,
		UpdatedBy:  user.ID,
	}
	if err := s.store.UpdateNode(ctx, user.WorkspaceID, node); err != nil {
		return err
	}

	s.publish(user.WorkspaceID, api.SynchronizerNodeUpdates, data.RootID)
	return nil
}

func (s *Service) deleteNode(ctx context.Context, user *api.User, data models.DeleteNodeMutationData) error {
	if err := s.requireWrite(ctx, user, data.RootID); err != nil {
		return err
	}
	existing, err := s.store.GetNode(ctx, data.NodeID)
	if err != nil {
		if errors.Is(err, storage.ErrNodeNotFound) {
			return nil
		}
		return err
	}
	if existing.RootID != data.RootID {
		return fmt.Errorf("%w: %s belongs to another root", ErrInvalidMutation, data.NodeID)
	}

	deleted, err := s.store.DeleteNode(ctx, user.WorkspaceID, &api.NodeTombstone{
		ID:        data.NodeID,
		DeletedAt: data.DeletedAt,
		DeletedBy: user.ID,
	})
	if err != nil {
		return err
	}
	if deleted {
		s.publish(user.WorkspaceID, api.SynchronizerNodeTombstones, data.RootID)
	}
	return nil
}

func (s *Service) setReaction(ctx context.Context, user *api.User, data models.NodeReactionMutationData, create bool) error {
	if data.Reaction == "" {
		return fmt.Errorf("%w: reaction is required", ErrInvalidMutation)
	}
	if err := s.requireNode(ctx, user, data.NodeID, data.RootID); err != nil {
		return err
	}

	reaction := &api.NodeReaction{
		NodeID:         data.NodeID,
		CollaboratorID: user.ID,
		Reaction:       data.Reaction,
		RootID:         data.RootID,
		CreatedAt:      data.At,
	}

	var changed bool
	var err error
	if create {
		changed, err = s.store.CreateReaction(ctx, user.WorkspaceID, reaction)
	} else {
		changed, err = s.store.DeleteReaction(ctx, user.WorkspaceID, reaction, data.At)
	}
	if err != nil {
		return err
	}
	if changed {
		s.publish(user.WorkspaceID, api.SynchronizerNodeReactions, data.RootID)
	}
	return nil
}

func (s *Service) markNode(ctx context.Context, user *api.User, data models.MarkNodeMutationData, opened bool) error {
	if data.CollaboratorID != "" && data.CollaboratorID != user.ID {
		return fmt.Errorf("%w: cannot mark node for %s", ErrForbidden, data.CollaboratorID)
	}
	if err := s.requireNode(ctx, user, data.NodeID, data.RootID); err != nil {
		return err
	}

	changed, err := s.store.UpdateInteraction(ctx, user.WorkspaceID, data.RootID, data.NodeID, user.ID,
		func(interaction *models.NodeInteraction) bool {
			if opened {
				return interaction.MarkOpened(data.At)
			}
			return interaction.MarkSeen(data.At)
		})
	if err != nil {
		return err
	}
	if changed {
		s.publish(user.WorkspaceID, api.SynchronizerNodeInteractions, data.RootID)
	}
	return nil
}

// requireNode проверяет доступ на чтение к root и что узел в нем существует
func (s *Service) requireNode(ctx context.Context, user *api.User, nodeID, rootID string) error {
	if _, err := s.collaboration(ctx, user, rootID); err != nil {
		return err
	}
	node, err := s.store.GetNode(ctx, nodeID)
	if err != nil {
		return err
	}
	if node.RootID != rootID {
		return fmt.Errorf("%w: %s belongs to another root", ErrInvalidMutation, nodeID)
	}
	return nil
}

func isObject(raw json.RawMessage) bool {
	var value map[string]any
	return json.Unmarshal(raw, &value) == nil && value != nil
}

func toAPIReferences(refs []models.NodeReference) []api.NodeReference {
	if len(refs) == 0 {
		return nil
	}
	result := make([]api.NodeReference, 0, len(refs))
	for _, ref := range refs {
		result = append(result, api.NodeReference{ReferenceID: ref.ReferenceID, Type: ref.Type})
	}
	return result
}
