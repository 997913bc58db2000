package mutation

import (
	"slices"

	"github.com/iudanet/gophsync/internal/models"
)

type reactionKey struct {
	nodeID   string
	reaction string
}

// Consolidate сокращает окно мутаций до эквивалентного набора.
// Окно просматривается от новых к старым; kept сохраняет порядок создания.
//
//   - delete_node отменяет более ранние мутации того же узла; если среди них
//     был create_node, сервер узла не видел и delete_node тоже отбрасывается
//   - delete_node_reaction взаимно уничтожается с более ранним create_node_reaction
//   - mark_node_seen / mark_node_opened схлопываются до самой новой на узел
//
// Мутации с нечитаемым payload не трогаются.
func Consolidate(mutations []*models.Mutation) (kept, dropped []*models.Mutation) {
	drop := make([]bool, len(mutations))

	deletes := make(map[string]int) // node id -> индекс delete_node
	reactionDeletes := make(map[reactionKey]int)
	seen := make(map[string]struct{})
	opened := make(map[string]struct{})

	for i := len(mutations) - 1; i >= 0; i-- {
		m := mutations[i]
		target, err := m.Target()
		if err != nil {
			continue
		}

		if deleteIdx, ok := deletes[target.NodeID]; ok {
			drop[i] = true
			if m.Type == models.MutationTypeCreateNode {
				drop[deleteIdx] = true
			}
			continue
		}

		switch m.Type {
		case models.MutationTypeDeleteNode:
			deletes[target.NodeID] = i
		case models.MutationTypeDeleteNodeReaction:
			reactionDeletes[reactionKey{nodeID: target.NodeID, reaction: target.Reaction}] = i
		case models.MutationTypeCreateNodeReaction:
			key := reactionKey{nodeID: target.NodeID, reaction: target.Reaction}
			if deleteIdx, ok := reactionDeletes[key]; ok {
				drop[i] = true
				drop[deleteIdx] = true
				delete(reactionDeletes, key)
			}
		case models.MutationTypeMarkNodeSeen:
			if _, ok := seen[target.NodeID]; ok {
				drop[i] = true
			}
			seen[target.NodeID] = struct{}{}
		case models.MutationTypeMarkNodeOpened:
			if _, ok := opened[target.NodeID]; ok {
				drop[i] = true
			}
			opened[target.NodeID] = struct{}{}
		}
	}

	for i, m := range mutations {
		if drop[i] {
			dropped = append(dropped, m)
		} else {
			kept = append(kept, m)
		}
	}
	return kept, dropped
}

// DiscardedNodes возвращает узлы, у которых Consolidate отбросил и create_node,
// и delete_node: сервер о них не узнает, локальные данные можно стереть.
func DiscardedNodes(dropped []*models.Mutation) []string {
	created := make(map[string]struct{})
	for _, m := range dropped {
		if m.Type != models.MutationTypeCreateNode {
			continue
		}
		if target, err := m.Target(); err == nil {
			created[target.NodeID] = struct{}{}
		}
	}

	var ids []string
	for _, m := range dropped {
		if m.Type != models.MutationTypeDeleteNode {
			continue
		}
		target, err := m.Target()
		if err != nil {
			continue
		}
		if _, ok := created[target.NodeID]; ok && !slices.Contains(ids, target.NodeID) {
			ids = append(ids, target.NodeID)
		}
	}
	return ids
}
