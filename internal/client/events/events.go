// Package events описывает типизированные доменные события, которые переносит шина.
package events

import (
	"encoding/json"

	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/pkg/api"
)

// Event закрытое множество событий шины
type Event interface {
	Name() string
	sealed()
}

type base struct{}

func (base) sealed() {}

// SocketOpened соединение аккаунта установлено
type SocketOpened struct {
	base
	AccountID string
}

func (SocketOpened) Name() string { return "socket_opened" }

// SocketClosed соединение аккаунта закрыто или не удалось
type SocketClosed struct {
	base
	AccountID string
}

func (SocketClosed) Name() string { return "socket_closed" }

// SocketMessageReceived входящее сообщение сокета
type SocketMessageReceived struct {
	base
	AccountID string
	Message   api.Message
}

func (SocketMessageReceived) Name() string { return "socket_message_received" }

// ServerAvailabilityChanged изменилась доступность сервера, наблюдаемая извне
type ServerAvailabilityChanged struct {
	base
	Server    string
	Available bool
}

func (ServerAvailabilityChanged) Name() string { return "server_availability_changed" }

// AccountUpdated out-of-band уведомление сервера
type AccountUpdated struct {
	base
	AccountID string
}

func (AccountUpdated) Name() string { return "account_updated" }

// WorkspaceUpdated out-of-band уведомление сервера
type WorkspaceUpdated struct {
	base
	WorkspaceID string
}

func (WorkspaceUpdated) Name() string { return "workspace_updated" }

// MutationCreated локальная мутация записана в очередь
type MutationCreated struct {
	base
	WorkspaceID string
	MutationID  string
}

func (MutationCreated) Name() string { return "mutation_created" }

// NodeCreated узел появился в локальной реплике
type NodeCreated struct {
	base
	Node        *models.Node
	WorkspaceID string
}

func (NodeCreated) Name() string { return "node_created" }

// NodeUpdated узел изменен в локальной реплике
type NodeUpdated struct {
	base
	Node        *models.Node
	WorkspaceID string
}

func (NodeUpdated) Name() string { return "node_updated" }

// NodeDeleted узел удален из локальной реплики
type NodeDeleted struct {
	base
	Node        *models.Node
	WorkspaceID string
}

func (NodeDeleted) Name() string { return "node_deleted" }

// NodeInteractionUpdated изменилось взаимодействие; Previous nil если записи не было
type NodeInteractionUpdated struct {
	base
	Previous    *models.NodeInteraction
	Current     *models.NodeInteraction
	WorkspaceID string
}

func (NodeInteractionUpdated) Name() string { return "node_interaction_updated" }

// NodeReactionCreated реакция добавлена
type NodeReactionCreated struct {
	base
	Reaction    *models.NodeReaction
	WorkspaceID string
}

func (NodeReactionCreated) Name() string { return "node_reaction_created" }

// NodeReactionDeleted реакция снята
type NodeReactionDeleted struct {
	base
	Reaction    *models.NodeReaction
	WorkspaceID string
}

func (NodeReactionDeleted) Name() string { return "node_reaction_deleted" }

// DocumentUpdated материализованное содержимое документа изменилось
type DocumentUpdated struct {
	base
	WorkspaceID string
	DocumentID  string
	Content     json.RawMessage
}

func (DocumentUpdated) Name() string { return "document_updated" }

// NodeCounterUpdated производный счетчик изменился
type NodeCounterUpdated struct {
	base
	WorkspaceID string
	Counter     models.NodeCounter
}

func (NodeCounterUpdated) Name() string { return "node_counter_updated" }

// CollaborationCreated пользователь получил доступ к корню
type CollaborationCreated struct {
	base
	Collaboration *models.Collaboration
	WorkspaceID   string
}

func (CollaborationCreated) Name() string { return "collaboration_created" }

// CollaborationDeleted доступ к корню отозван
type CollaborationDeleted struct {
	base
	Collaboration *models.Collaboration
	WorkspaceID   string
}

func (CollaborationDeleted) Name() string { return "collaboration_deleted" }

// UserCreated пользователь появился в workspace
type UserCreated struct {
	base
	User        *models.User
	WorkspaceID string
}

func (UserCreated) Name() string { return "user_created" }
