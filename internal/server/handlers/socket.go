package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/iudanet/gophsync/internal/server/realtime"
	"github.com/iudanet/gophsync/pkg/api"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 1 << 20
	sendBufferSize = 64
)

// PartitionReader отдает элементы партиций пользователю аккаунта
type PartitionReader interface {
	ResolveUser(ctx context.Context, accountID, workspaceID string) (*api.User, error)
	Items(ctx context.Context, user *api.User, input api.SynchronizerInput, cursor string) ([]api.SynchronizerItem, error)
}

// ChangeSubscriber подписка на изменения партиций workspace
type ChangeSubscriber interface {
	Subscribe(ctx context.Context, workspaceID string) (<-chan realtime.Change, func())
}

// SocketHandler обслуживает сокет аккаунта
type SocketHandler struct {
	logger   *slog.Logger
	service  PartitionReader
	changes  ChangeSubscriber
	upgrader websocket.Upgrader
}

// NewSocketHandler creates a new socket handler
func NewSocketHandler(logger *slog.Logger, service PartitionReader, changes ChangeSubscriber) *SocketHandler {
	return &SocketHandler{
		logger:  logger,
		service: service,
		changes: changes,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// Handle обрабатывает GET /v1/accounts/{accountId}/socket.
// Аккаунт в пути должен совпадать с аккаунтом токена.
func (h *SocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	accountID, ok := GetAccountID(r.Context())
	if !ok {
		writeError(w, h.logger, http.StatusUnauthorized, "")
		return
	}
	if r.PathValue("accountId") != accountID {
		h.logger.Warn("Socket account mismatch", "account_id", accountID, "path_account_id", r.PathValue("accountId"))
		writeError(w, h.logger, http.StatusForbidden, "token does not belong to the account")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		h.logger.Warn("Socket upgrade failed", "error", err)
		return
	}

	s := &socketSession{
		conn:       conn,
		service:    h.service,
		changes:    h.changes,
		logger:     h.logger.With("account_id", accountID),
		accountID:  accountID,
		send:       make(chan api.Message, sendBufferSize),
		pending:    make(map[string]pendingInput),
		users:      make(map[string]*api.User),
		subscribed: make(map[string]bool),
	}
	s.logger.Info("Socket opened")
	err = s.run(r.Context())
	s.logger.Info("Socket closed", "error", err)
}

// pendingInput запрос партиции без новых данных, ждет изменений workspace
type pendingInput struct {
	user   *api.User
	input  api.SynchronizerInput
	id     string
	cursor string
}

type socketSession struct {
	conn       *websocket.Conn
	service    PartitionReader
	changes    ChangeSubscriber
	logger     *slog.Logger
	group      *errgroup.Group
	send       chan api.Message
	pending    map[string]pendingInput
	users      map[string]*api.User
	subscribed map[string]bool
	accountID  string
	mu         sync.Mutex
}

func (s *socketSession) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	s.group = g
	g.Go(func() error {
		return s.writeLoop(ctx)
	})
	g.Go(func() error {
		defer cancel()
		return s.readLoop(ctx)
	})

	err := g.Wait()
	_ = s.conn.Close()
	return err
}

func (s *socketSession) readLoop(ctx context.Context) error {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg api.Message
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return err
			}
			return nil
		}

		switch msg.Type {
		case api.MessageTypeSynchronizerInput:
			s.handleInput(ctx, msg)
		default:
			s.logger.Debug("Unsupported socket message", "type", msg.Type)
		}
	}
}

func (s *socketSession) writeLoop(ctx context.Context) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			// закрытие соединения прерывает ReadJSON в readLoop
			_ = s.conn.Close()
			return nil
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(msg); err != nil {
				_ = s.conn.Close()
				return err
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = s.conn.Close()
				return err
			}
		}
	}
}

func (s *socketSession) handleInput(ctx context.Context, msg api.Message) {
	if msg.Input == nil || msg.ID == "" {
		s.logger.Warn("Malformed synchronizer input", "id", msg.ID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.user(ctx, msg.Input.WorkspaceID)
	if err != nil {
		s.logger.Warn("Failed to resolve socket user", "workspace_id", msg.Input.WorkspaceID, "error", err)
		return
	}
	if msg.UserID != "" && msg.UserID != user.ID {
		s.logger.Warn("Synchronizer input for foreign user", "user_id", msg.UserID, "workspace_id", user.WorkspaceID)
		return
	}

	s.subscribe(ctx, user.WorkspaceID)

	delete(s.pending, msg.ID)
	s.evaluate(ctx, pendingInput{user: user, input: *msg.Input, id: msg.ID, cursor: msg.Cursor})
}

// user caller holds s.mu
func (s *socketSession) user(ctx context.Context, workspaceID string) (*api.User, error) {
	if user, ok := s.users[workspaceID]; ok {
		return user, nil
	}
	user, err := s.service.ResolveUser(ctx, s.accountID, workspaceID)
	if err != nil {
		return nil, err
	}
	s.users[workspaceID] = user
	return user, nil
}

// subscribe caller holds s.mu
func (s *socketSession) subscribe(ctx context.Context, workspaceID string) {
	if s.subscribed[workspaceID] {
		return
	}
	s.subscribed[workspaceID] = true

	stream, unsubscribe := s.changes.Subscribe(ctx, workspaceID)
	s.group.Go(func() error {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return nil
			case change := <-stream:
				s.onChange(ctx, change)
			}
		}
	})
}

// evaluate отправляет новые элементы партиции или паркует запрос.
// caller holds s.mu
func (s *socketSession) evaluate(ctx context.Context, p pendingInput) {
	items, err := s.service.Items(ctx, p.user, p.input, p.cursor)
	if err != nil {
		s.logger.Warn("Failed to read partition",
			"partition", p.input.Key(),
			"workspace_id", p.user.WorkspaceID,
			"error", err)
		return
	}
	if len(items) == 0 {
		s.pending[p.id] = p
		return
	}

	s.enqueue(ctx, api.Message{Type: api.MessageTypeSynchronizerOutput, ID: p.id, Items: items})
}

// onChange перепроверяет все припаркованные запросы workspace.
// Пропущенное уведомление покрывается следующим, т.к. проверяются все запросы.
func (s *socketSession) onChange(ctx context.Context, change realtime.Change) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if change.Type == api.SynchronizerUsers {
		s.enqueue(ctx, api.Message{Type: api.MessageTypeUserCreated, WorkspaceID: change.WorkspaceID})
	}

	var ready []pendingInput
	for id, p := range s.pending {
		if p.user.WorkspaceID == change.WorkspaceID {
			ready = append(ready, p)
			delete(s.pending, id)
		}
	}
	for _, p := range ready {
		s.evaluate(ctx, p)
	}
}

func (s *socketSession) enqueue(ctx context.Context, msg api.Message) {
	select {
	case s.send <- msg:
	case <-ctx.Done():
	}
}
