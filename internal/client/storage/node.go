package storage

import (
	"context"

	"github.com/iudanet/gophsync/internal/models"
)

// NodeStorage локальная реплика узлов
type NodeStorage interface {
	// GetNode returns ErrNodeNotFound if node doesn't exist
	GetNode(ctx context.Context, id string) (*models.Node, error)

	// ListNodesByRoot returns all nodes of the given root
	ListNodesByRoot(ctx context.Context, rootID string) ([]*models.Node, error)

	// CreateNode stores a locally created node together with its mutation
	CreateNode(ctx context.Context, node *models.Node, mutation *models.Mutation) error

	// UpdateNode applies update to the stored node inside one transaction.
	// update returns the mutation to store alongside the change.
	UpdateNode(ctx context.Context, id string, update func(node *models.Node) (*models.Mutation, error)) (*models.Node, error)

	// DeleteNode removes the node locally, keeps a pending-delete copy for revert
	// and stores the mutation in the same transaction
	DeleteNode(ctx context.Context, id string, mutation *models.Mutation) (*models.Node, error)

	// ApplyServerNode upserts a node observed from the server.
	// Returns the previous local copy (nil if absent) and whether anything was written;
	// a node whose revision is not newer than the local one is skipped.
	ApplyServerNode(ctx context.Context, node *models.Node) (previous *models.Node, applied bool, err error)

	// ApplyTombstone purges the node and everything derived from it.
	// Returns the removed node, nil if nothing was stored locally.
	ApplyTombstone(ctx context.Context, tombstone *models.NodeTombstone) (*models.Node, error)

	// RemoveNode deletes a locally created node that the server never accepted
	RemoveNode(ctx context.Context, id string) (*models.Node, error)

	// PurgeNodes removes nodes created and deleted locally before the server saw them,
	// together with their pending-delete copies, documents and reactions
	PurgeNodes(ctx context.Context, ids []string) error

	// RestoreNodeAttributes resets attributes to the last server-observed value
	RestoreNodeAttributes(ctx context.Context, id string) (*models.Node, error)

	// RestoreDeletedNode puts back a node deleted locally; ErrPendingDeleteNotFound if none
	RestoreDeletedNode(ctx context.Context, id string) (*models.Node, error)

	// DeleteRootData removes every node, document, reaction, interaction and counter of the root
	DeleteRootData(ctx context.Context, rootID string) error
}
