package api

import (
	"encoding/json"
	"time"
)

// User элемент партиции users
type User struct {
	CreatedAt   time.Time `json:"created_at"`
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id,omitempty"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	Revision    int64     `json:"revision"`
}

// Collaboration элемент партиции collaborations
type Collaboration struct {
	CreatedAt      time.Time  `json:"created_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	NodeID         string     `json:"node_id"`
	CollaboratorID string     `json:"collaborator_id"`
	Role           string     `json:"role"`
	Revision       int64      `json:"revision"`
}

// NodeReference ссылка узла на другую сущность
type NodeReference struct {
	ReferenceID string `json:"reference_id"`
	Type        string `json:"type"`
}

// Node элемент партиции nodes_updates: состояние узла на ревизии Revision
type Node struct {
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  *time.Time      `json:"updated_at,omitempty"`
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	ParentID   string          `json:"parent_id,omitempty"`
	RootID     string          `json:"root_id"`
	CreatedBy  string          `json:"created_by"`
	UpdatedBy  string          `json:"updated_by,omitempty"`
	Attributes json.RawMessage `json:"attributes"`
	References []NodeReference `json:"references,omitempty"`
	Revision   int64           `json:"revision"`
}

// NodeInteraction элемент партиции node_interactions
type NodeInteraction struct {
	FirstSeenAt    *time.Time `json:"first_seen_at,omitempty"`
	LastSeenAt     *time.Time `json:"last_seen_at,omitempty"`
	FirstOpenedAt  *time.Time `json:"first_opened_at,omitempty"`
	LastOpenedAt   *time.Time `json:"last_opened_at,omitempty"`
	NodeID         string     `json:"node_id"`
	CollaboratorID string     `json:"collaborator_id"`
	RootID         string     `json:"root_id"`
	Revision       int64      `json:"revision"`
}

// NodeReaction элемент партиции node_reactions. DeletedAt заполнен для снятых реакций.
type NodeReaction struct {
	CreatedAt      time.Time  `json:"created_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	NodeID         string     `json:"node_id"`
	CollaboratorID string     `json:"collaborator_id"`
	Reaction       string     `json:"reaction"`
	RootID         string     `json:"root_id"`
	Revision       int64      `json:"revision"`
}

// NodeTombstone элемент партиции node_tombstones
type NodeTombstone struct {
	DeletedAt time.Time `json:"deleted_at"`
	ID        string    `json:"id"`
	RootID    string    `json:"root_id"`
	DeletedBy string    `json:"deleted_by"`
	Revision  int64     `json:"revision"`
}

// DocumentUpdate элемент партиции document_updates
type DocumentUpdate struct {
	CreatedAt  time.Time `json:"created_at"`
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	RootID     string    `json:"root_id"`
	CreatedBy  string    `json:"created_by"`
	Data       []byte    `json:"data"`
	Revision   int64     `json:"revision"`
}
