package storage

import (
	"context"

	"github.com/iudanet/gophsync/internal/models"
)

// CounterStorage производные счетчики узлов
type CounterStorage interface {
	// GetNodeCounter returns 0 if the counter doesn't exist
	GetNodeCounter(ctx context.Context, nodeID string, counterType models.CounterType) (int64, error)

	// ListNodeCounters returns counters of a node
	ListNodeCounters(ctx context.Context, nodeID string) ([]models.NodeCounter, error)

	// AddNodeCounter applies a relative delta clamped at zero; a zero counter is removed.
	// changed is false when the clamped count stayed the same.
	AddNodeCounter(
		ctx context.Context,
		nodeID string,
		counterType models.CounterType,
		delta int64,
	) (counter models.NodeCounter, changed bool, err error)

	// DeleteNodeCounters removes all counters owned by the node
	DeleteNodeCounters(ctx context.Context, nodeID string) error
}
