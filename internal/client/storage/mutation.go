package storage

import (
	"context"

	"github.com/iudanet/gophsync/internal/models"
)

// MutationStorage локальная очередь исходящих мутаций.
// Мутации создаются вместе с оптимистичной записью методами NodeStorage,
// DocumentStorage, ReactionStorage и InteractionStorage.
type MutationStorage interface {
	// ListMutations returns up to limit oldest mutations in creation order
	ListMutations(ctx context.Context, limit int) ([]*models.Mutation, error)

	// DeleteMutations removes mutations by id; unknown ids are ignored
	DeleteMutations(ctx context.Context, ids []string) error

	// IncrementMutationRetries increments the retry counter of each mutation
	IncrementMutationRetries(ctx context.Context, ids []string) error

	// CountMutations returns the number of pending mutations
	CountMutations(ctx context.Context) (int, error)
}
