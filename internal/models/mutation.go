package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// MutationType закрытое множество типов локальных мутаций
type MutationType string

const (
	MutationTypeCreateNode         MutationType = "create_node"
	MutationTypeUpdateNode         MutationType = "update_node"
	MutationTypeDeleteNode         MutationType = "delete_node"
	MutationTypeCreateNodeReaction MutationType = "create_node_reaction"
	MutationTypeDeleteNodeReaction MutationType = "delete_node_reaction"
	MutationTypeMarkNodeSeen       MutationType = "mark_node_seen"
	MutationTypeMarkNodeOpened     MutationType = "mark_node_opened"
	MutationTypeUpdateDocument     MutationType = "update_document"
)

// MutationTypes lists every known mutation type.
var MutationTypes = []MutationType{
	MutationTypeCreateNode,
	MutationTypeUpdateNode,
	MutationTypeDeleteNode,
	MutationTypeCreateNodeReaction,
	MutationTypeDeleteNodeReaction,
	MutationTypeMarkNodeSeen,
	MutationTypeMarkNodeOpened,
	MutationTypeUpdateDocument,
}

// Valid reports whether t belongs to the closed set of mutation types.
func (t MutationType) Valid() bool {
	switch t {
	case MutationTypeCreateNode, MutationTypeUpdateNode, MutationTypeDeleteNode,
		MutationTypeCreateNodeReaction, MutationTypeDeleteNodeReaction,
		MutationTypeMarkNodeSeen, MutationTypeMarkNodeOpened, MutationTypeUpdateDocument:
		return true
	default:
		return false
	}
}

// Mutation неизменяемая запись намерения, созданная локально вместе с оптимистичной записью.
// Живет в локальной очереди до подтверждения сервером.
type Mutation struct {
	CreatedAt time.Time       `json:"created_at"`
	ID        string          `json:"id"`
	Type      MutationType    `json:"type"`
	Data      json.RawMessage `json:"data"`
	Retries   int             `json:"retries"`
}

// NewMutation creates a mutation with a fresh time-ordered id and JSON encoded payload.
func NewMutation(mutationType MutationType, data any, createdAt time.Time) (*Mutation, error) {
	if !mutationType.Valid() {
		return nil, fmt.Errorf("unknown mutation type: %s", mutationType)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mutation data: %w", err)
	}
	return &Mutation{
		ID:        GenerateID(IDTypeMutation),
		Type:      mutationType,
		Data:      raw,
		CreatedAt: createdAt,
	}, nil
}

// MutationTarget общие поля payload, используемые при консолидации
type MutationTarget struct {
	NodeID     string `json:"node_id"`
	DocumentID string `json:"document_id"`
	Reaction   string `json:"reaction"`
}

// Target decodes the fields shared by all payloads. For document updates the
// document id doubles as the node id.
func (m *Mutation) Target() (MutationTarget, error) {
	var target MutationTarget
	if err := json.Unmarshal(m.Data, &target); err != nil {
		return MutationTarget{}, fmt.Errorf("failed to decode mutation %s target: %w", m.ID, err)
	}
	if target.NodeID == "" {
		target.NodeID = target.DocumentID
	}
	return target, nil
}

// DecodeData unmarshals the payload into dst.
func (m *Mutation) DecodeData(dst any) error {
	if err := json.Unmarshal(m.Data, dst); err != nil {
		return fmt.Errorf("failed to decode %s mutation data: %w", m.Type, err)
	}
	return nil
}

// CreateNodeMutationData payload мутации create_node
type CreateNodeMutationData struct {
	CreatedAt  time.Time       `json:"created_at"`
	NodeID     string          `json:"node_id"`
	Type       NodeType        `json:"type"`
	ParentID   string          `json:"parent_id,omitempty"`
	RootID     string          `json:"root_id"`
	Attributes json.RawMessage `json:"attributes"`
	References []NodeReference `json:"references,omitempty"`
}

// UpdateNodeMutationData payload мутации update_node
type UpdateNodeMutationData struct {
	UpdatedAt  time.Time       `json:"updated_at"`
	NodeID     string          `json:"node_id"`
	RootID     string          `json:"root_id"`
	Attributes json.RawMessage `json:"attributes"`
	References []NodeReference `json:"references,omitempty"`
}

// DeleteNodeMutationData payload мутации delete_node
type DeleteNodeMutationData struct {
	DeletedAt time.Time `json:"deleted_at"`
	NodeID    string    `json:"node_id"`
	RootID    string    `json:"root_id"`
}

// NodeReactionMutationData payload мутаций create_node_reaction и delete_node_reaction
type NodeReactionMutationData struct {
	At       time.Time `json:"at"`
	NodeID   string    `json:"node_id"`
	RootID   string    `json:"root_id"`
	Reaction string    `json:"reaction"`
}

// MarkNodeMutationData payload мутаций mark_node_seen и mark_node_opened
type MarkNodeMutationData struct {
	At             time.Time `json:"at"`
	NodeID         string    `json:"node_id"`
	RootID         string    `json:"root_id"`
	CollaboratorID string    `json:"collaborator_id"`
}

// UpdateDocumentMutationData payload мутации update_document
type UpdateDocumentMutationData struct {
	DocumentID string `json:"document_id"`
	RootID     string `json:"root_id"`
	UpdateID   string `json:"update_id"`
	Data       []byte `json:"data"` // CRDT delta (automerge incremental save)
}
