package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/pkg/api"
)

// NodeStorage defines interface for node tree persistence.
// Every write assigns the next workspace revision to the affected row.
type NodeStorage interface {
	// GetNode retrieves node by ID
	// Returns ErrNodeNotFound if node doesn't exist
	GetNode(ctx context.Context, nodeID string) (*api.Node, error)

	// CreateNode inserts the node. When owner is not nil the collaboration is
	// created in the same transaction (creating a root grants access to its author).
	// Returns false if node already exists
	CreateNode(ctx context.Context, workspaceID string, node *api.Node, owner *api.Collaboration) (bool, error)

	// UpdateNode replaces attributes and references of an existing node
	// Returns ErrNodeNotFound if node doesn't exist
	UpdateNode(ctx context.Context, workspaceID string, node *api.Node) error

	// DeleteNode removes node with its document, reactions and interactions
	// and records the tombstone. Returns false if node doesn't exist
	DeleteNode(ctx context.Context, workspaceID string, tombstone *api.NodeTombstone) (bool, error)
}

// ReactionStorage defines interface for node reactions persistence
type ReactionStorage interface {
	// CreateReaction stores active reaction. Returns false if it is already active
	CreateReaction(ctx context.Context, workspaceID string, reaction *api.NodeReaction) (bool, error)

	// DeleteReaction marks reaction as deleted. Returns false if there is no active reaction
	DeleteReaction(ctx context.Context, workspaceID string, reaction *api.NodeReaction, deletedAt time.Time) (bool, error)
}

// InteractionStorage defines interface for node interactions persistence
type InteractionStorage interface {
	// UpdateInteraction loads interaction (or a fresh one) and passes it to fn
	// inside one transaction. The row is written with a new revision only when fn reports a change
	UpdateInteraction(ctx context.Context, workspaceID, rootID, nodeID, collaboratorID string,
		fn func(interaction *models.NodeInteraction) bool) (bool, error)
}

// DocumentSnapshot состояние документа, нужное для слияния входящей дельты
type DocumentSnapshot struct {
	State         []byte   // последний снимок compaction
	Updates       [][]byte // дельты после снимка в порядке ревизий
	Revision      int64    // ревизия документа, 0 если документа еще нет
	StateRevision int64
}

// DocumentSave результат слияния, который нужно сохранить атомарно
type DocumentSave struct {
	Update           *api.DocumentUpdate
	Content          json.RawMessage
	State            []byte // не nil, если нужно сохранить новый снимок
	ExpectedRevision int64
}

// DocumentStorage defines interface for CRDT documents persistence
type DocumentStorage interface {
	// GetDocumentSnapshot returns base state and updates after it
	GetDocumentSnapshot(ctx context.Context, documentID string) (*DocumentSnapshot, error)

	// DocumentUpdateExists reports whether update with the id was already stored
	DocumentUpdateExists(ctx context.Context, updateID string) (bool, error)

	// SaveDocumentUpdate appends the update and replaces document content.
	// Returns ErrRevisionConflict if document revision differs from ExpectedRevision
	SaveDocumentUpdate(ctx context.Context, workspaceID string, save *DocumentSave) error
}

// PartitionQuery запрос элементов партиции после курсора
type PartitionQuery struct {
	Type        api.SynchronizerType
	WorkspaceID string
	RootID      string
	UserID      string
	After       int64
	Limit       int
}

// PartitionStorage defines interface for cursor based reads of synchronizer partitions
type PartitionStorage interface {
	// ListPartition returns items with revision greater than After, ordered by revision
	ListPartition(ctx context.Context, query PartitionQuery) ([]api.SynchronizerItem, error)
}

// Storage все хранилища сервера синхронизации
type Storage interface {
	UserStorage
	CollaborationStorage
	NodeStorage
	ReactionStorage
	InteractionStorage
	DocumentStorage
	PartitionStorage
	Ping(ctx context.Context) error
}
