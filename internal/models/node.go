package models

import (
	"encoding/json"
	"slices"
	"time"
)

// NodeType тип узла дерева workspace
type NodeType string

const (
	NodeTypeSpace   NodeType = "space"
	NodeTypeChannel NodeType = "channel"
	NodeTypeChat    NodeType = "chat"
	NodeTypePage    NodeType = "page"
	NodeTypeMessage NodeType = "message"
)

// IsRootType reports whether nodes of this type can be collaboration roots.
func (t NodeType) IsRootType() bool {
	return t == NodeTypeSpace || t == NodeTypeChat
}

// HasDocument reports whether nodes of this type carry CRDT document content.
func (t NodeType) HasDocument() bool {
	return t == NodeTypePage || t == NodeTypeMessage
}

// IDType returns the id suffix used for nodes of this type.
func (t NodeType) IDType() IDType {
	switch t {
	case NodeTypeSpace:
		return IDTypeSpace
	case NodeTypeChannel:
		return IDTypeChannel
	case NodeTypeChat:
		return IDTypeChat
	case NodeTypePage:
		return IDTypePage
	case NodeTypeMessage:
		return IDTypeMessage
	default:
		return ""
	}
}

// ReferenceTypeMention тип ссылки-упоминания внутри узла
const ReferenceTypeMention = "mention"

// MentionEveryone специальный идентификатор упоминания всех участников
const MentionEveryone = "everyone"

// NodeReference ссылка из содержимого узла на другую сущность (например, упоминание пользователя)
type NodeReference struct {
	ReferenceID string `json:"reference_id"`
	Type        string `json:"type"`
}

// Node представляет версионируемый узел дерева workspace.
type Node struct {
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        *time.Time      `json:"updated_at,omitempty"`
	ID               string          `json:"id"`
	Type             NodeType        `json:"type"`
	ParentID         string          `json:"parent_id,omitempty"`
	RootID           string          `json:"root_id"`
	CreatedBy        string          `json:"created_by"`
	UpdatedBy        string          `json:"updated_by,omitempty"`
	Attributes       json.RawMessage `json:"attributes"`
	ServerAttributes json.RawMessage `json:"server_attributes,omitempty"` // последнее состояние, подтвержденное сервером
	References       []NodeReference `json:"references,omitempty"`
	LocalRevision    int64           `json:"local_revision"`  // растет при каждой локальной записи
	ServerRevision   int64           `json:"server_revision"` // последняя ревизия, полученная от сервера
}

// IsNewerThan compares server revisions: a node received from the server only
// replaces the local copy when its revision is strictly greater.
func (n *Node) IsNewerThan(other *Node) bool {
	return n.ServerRevision > other.ServerRevision
}

// Mentions reports whether the node references the given user directly or via the everyone sentinel.
func (n *Node) Mentions(userID string) bool {
	return slices.ContainsFunc(n.References, func(ref NodeReference) bool {
		if ref.Type != ReferenceTypeMention {
			return false
		}
		return ref.ReferenceID == userID || ref.ReferenceID == MentionEveryone
	})
}

// Clone создает глубокую копию узла
func (n *Node) Clone() *Node {
	clone := *n
	clone.Attributes = slices.Clone(n.Attributes)
	clone.ServerAttributes = slices.Clone(n.ServerAttributes)
	clone.References = slices.Clone(n.References)
	if n.UpdatedAt != nil {
		updatedAt := *n.UpdatedAt
		clone.UpdatedAt = &updatedAt
	}
	return &clone
}

// NodeTombstone фиксирует удаление узла на сервере
type NodeTombstone struct {
	DeletedAt time.Time `json:"deleted_at"`
	ID        string    `json:"id"`
	RootID    string    `json:"root_id"`
	DeletedBy string    `json:"deleted_by"`
	Revision  int64     `json:"revision"`
}
