package api

import "encoding/json"

// MessageType тип сообщения сокета
type MessageType string

const (
	MessageTypeSynchronizerInput  MessageType = "synchronizer_input"
	MessageTypeSynchronizerOutput MessageType = "synchronizer_output"
	MessageTypeAccountUpdated     MessageType = "account_updated"
	MessageTypeWorkspaceUpdated   MessageType = "workspace_updated"
	MessageTypeUserCreated        MessageType = "user_created"
)

// SynchronizerType партиция потока синхронизации
type SynchronizerType string

const (
	SynchronizerUsers            SynchronizerType = "users"
	SynchronizerCollaborations   SynchronizerType = "collaborations"
	SynchronizerNodeUpdates      SynchronizerType = "nodes_updates"
	SynchronizerNodeInteractions SynchronizerType = "node_interactions"
	SynchronizerNodeReactions    SynchronizerType = "node_reactions"
	SynchronizerNodeTombstones   SynchronizerType = "node_tombstones"
	SynchronizerDocumentUpdates  SynchronizerType = "document_updates"
)

// RootSynchronizerTypes partitions that exist per collaborated root.
var RootSynchronizerTypes = []SynchronizerType{
	SynchronizerNodeUpdates,
	SynchronizerNodeInteractions,
	SynchronizerNodeReactions,
	SynchronizerNodeTombstones,
	SynchronizerDocumentUpdates,
}

// IsRootScoped reports whether the partition is scoped to a collaborated root.
func (t SynchronizerType) IsRootScoped() bool {
	switch t {
	case SynchronizerNodeUpdates, SynchronizerNodeInteractions, SynchronizerNodeReactions,
		SynchronizerNodeTombstones, SynchronizerDocumentUpdates:
		return true
	default:
		return false
	}
}

// SynchronizerInput описание партиции, которую запрашивает клиент
type SynchronizerInput struct {
	Type        SynchronizerType `json:"type"`
	WorkspaceID string           `json:"workspace_id"`
	RootID      string           `json:"root_id,omitempty"`
}

// Key returns a stable textual form of the input, used for cursor keys.
func (in SynchronizerInput) Key() string {
	if in.RootID == "" {
		return string(in.Type)
	}
	return string(in.Type) + ":" + in.RootID
}

// SynchronizerItem один элемент потока с курсором сервера
type SynchronizerItem struct {
	Cursor string          `json:"cursor"`
	Data   json.RawMessage `json:"data"`
}

// Message конверт любого сообщения сокета.
// Для synchronizer_input заполнены ID, UserID, Input и Cursor;
// для synchronizer_output ID и Items; остальные типы несут Payload.
type Message struct {
	Input       *SynchronizerInput `json:"input,omitempty"`
	Type        MessageType        `json:"type"`
	ID          string             `json:"id,omitempty"`
	UserID      string             `json:"user_id,omitempty"`
	Cursor      string             `json:"cursor,omitempty"`
	AccountID   string             `json:"account_id,omitempty"`
	WorkspaceID string             `json:"workspace_id,omitempty"`
	Items       []SynchronizerItem `json:"items,omitempty"`
	Payload     json.RawMessage    `json:"payload,omitempty"`
}
