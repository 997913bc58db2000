package mutation

import (
	"context"
	"fmt"

	"github.com/iudanet/gophsync/internal/models"
)

// NodeReverter откатывает оптимистичные изменения узлов и реакций
type NodeReverter interface {
	RevertCreateNode(ctx context.Context, data models.CreateNodeMutationData) error
	RevertUpdateNode(ctx context.Context, data models.UpdateNodeMutationData) error
	RevertDeleteNode(ctx context.Context, data models.DeleteNodeMutationData) error
	RevertCreateReaction(ctx context.Context, data models.NodeReactionMutationData) error
	RevertDeleteReaction(ctx context.Context, data models.NodeReactionMutationData) error
}

// DocumentReverter откатывает локальное обновление документа
type DocumentReverter interface {
	RevertDocumentUpdate(ctx context.Context, data models.UpdateDocumentMutationData) error
}

// Registry выбирает откат по типу мутации
type Registry struct {
	nodes     NodeReverter
	documents DocumentReverter
}

var _ Reverter = (*Registry)(nil)

// NewRegistry создает реестр откатов
func NewRegistry(nodes NodeReverter, documents DocumentReverter) *Registry {
	return &Registry{nodes: nodes, documents: documents}
}

// Revert undoes the local effect of a mutation the server kept rejecting.
func (r *Registry) Revert(ctx context.Context, m *models.Mutation) error {
	switch m.Type {
	case models.MutationTypeCreateNode:
		var data models.CreateNodeMutationData
		if err := m.DecodeData(&data); err != nil {
			return err
		}
		return r.nodes.RevertCreateNode(ctx, data)
	case models.MutationTypeUpdateNode:
		var data models.UpdateNodeMutationData
		if err := m.DecodeData(&data); err != nil {
			return err
		}
		return r.nodes.RevertUpdateNode(ctx, data)
	case models.MutationTypeDeleteNode:
		var data models.DeleteNodeMutationData
		if err := m.DecodeData(&data); err != nil {
			return err
		}
		return r.nodes.RevertDeleteNode(ctx, data)
	case models.MutationTypeCreateNodeReaction:
		var data models.NodeReactionMutationData
		if err := m.DecodeData(&data); err != nil {
			return err
		}
		return r.nodes.RevertCreateReaction(ctx, data)
	case models.MutationTypeDeleteNodeReaction:
		var data models.NodeReactionMutationData
		if err := m.DecodeData(&data); err != nil {
			return err
		}
		return r.nodes.RevertDeleteReaction(ctx, data)
	case models.MutationTypeUpdateDocument:
		var data models.UpdateDocumentMutationData
		if err := m.DecodeData(&data); err != nil {
			return err
		}
		return r.documents.RevertDocumentUpdate(ctx, data)
	case models.MutationTypeMarkNodeSeen, models.MutationTypeMarkNodeOpened:
		// отметки просмотра монотонны, откатывать нечего
		return nil
	default:
		return fmt.Errorf("no reverter for mutation type %q", m.Type)
	}
}
