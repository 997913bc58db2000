// Package synchronizer реализует курсорный поток одной партиции данных с сервера.
//
// Синхронизатор отправляет synchronizer_input с последним курсором, получает
// synchronizer_output с элементами после курсора, применяет их через Handler
// и сохраняет курсор последнего примененного элемента.
package synchronizer

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/iudanet/gophsync/internal/client/eventbus"
	"github.com/iudanet/gophsync/internal/client/events"
	"github.com/iudanet/gophsync/pkg/api"
)

//go:generate moq -out synchronizer_mock.go . Transport CursorStore

// DefaultCursor курсор партиции, по которой еще ничего не получено
const DefaultCursor = "0"

// Transport канал отправки сообщений сокета (connection.Connection)
type Transport interface {
	Send(msg api.Message) bool
	IsConnected() bool
}

// CursorStore хранилище курсоров (storage.CursorStorage)
type CursorStore interface {
	GetCursor(ctx context.Context, key string) (string, error)
	SetCursor(ctx context.Context, key, value string) error
	DeleteCursor(ctx context.Context, key string) error
}

// Handler применяет один элемент партиции к локальной реплике
type Handler[T any] func(ctx context.Context, item T) error

// Instance нетипизированный вид синхронизатора для управления наборами
type Instance interface {
	ID() string
	Input() api.SynchronizerInput
	Init(ctx context.Context) error
	Destroy(ctx context.Context, deleteCursor bool) error
}

type status int

const (
	statusIdle status = iota
	statusWaiting
	statusProcessing
)

func (s status) String() string {
	switch s {
	case statusWaiting:
		return "waiting"
	case statusProcessing:
		return "processing"
	default:
		return "idle"
	}
}

// Config параметры синхронизатора
type Config struct {
	Input     api.SynchronizerInput
	AccountID string
	UserID    string
}

// Synchronizer поток одной партиции с элементами типа T
type Synchronizer[T any] struct {
	ctx          context.Context
	transport    Transport
	cursors      CursorStore
	handler      Handler[T]
	bus          *eventbus.Bus
	logger       *slog.Logger
	subscription *eventbus.Subscription
	cancel       context.CancelFunc
	input        api.SynchronizerInput
	id           string
	accountID    string
	userID       string
	cursor       string
	wg           sync.WaitGroup
	mu           sync.Mutex
	status       status
	destroyed    bool
}

var _ Instance = (*Synchronizer[struct{}])(nil)

// ID returns the hex blake2b-256 digest of the user id and the partition input.
func ID(userID string, input api.SynchronizerInput) string {
	payload, _ := json.Marshal(struct {
		UserID string                `json:"user_id"`
		Input  api.SynchronizerInput `json:"input"`
	}{UserID: userID, Input: input})
	sum := blake2b.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// New создает синхронизатор; работа начинается после Init
func New[T any](cfg Config, transport Transport, cursors CursorStore, handler Handler[T], bus *eventbus.Bus, logger *slog.Logger) *Synchronizer[T] {
	id := ID(cfg.UserID, cfg.Input)
	return &Synchronizer[T]{
		transport: transport,
		cursors:   cursors,
		handler:   handler,
		bus:       bus,
		logger:    logger.With("synchronizer", cfg.Input.Key()),
		input:     cfg.Input,
		id:        id,
		accountID: cfg.AccountID,
		userID:    cfg.UserID,
		cursor:    DefaultCursor,
	}
}

func (s *Synchronizer[T]) ID() string { return s.id }

func (s *Synchronizer[T]) Input() api.SynchronizerInput { return s.input }

// Cursor returns the cursor of the last applied item.
func (s *Synchronizer[T]) Cursor() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Init loads the persisted cursor, subscribes to socket events and sends the first input.
func (s *Synchronizer[T]) Init(ctx context.Context) error {
	cursor, err := s.cursors.GetCursor(ctx, s.input.Key())
	if err != nil {
		return fmt.Errorf("failed to load cursor %s: %w", s.input.Key(), err)
	}
	if cursor == "" {
		cursor = DefaultCursor
	}

	s.mu.Lock()
	s.cursor = cursor
	// контекст применения живет до Destroy, а не до конца Init
	s.ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.mu.Unlock()

	s.subscription = s.bus.Subscribe(s.handleEvent)
	s.Ping()
	return nil
}

// Ping sends synchronizer_input if the socket is connected and no request is outstanding.
func (s *Synchronizer[T]) Ping() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed || s.status != statusIdle || !s.transport.IsConnected() {
		return
	}

	input := s.input
	msg := api.Message{
		Type:   api.MessageTypeSynchronizerInput,
		ID:     s.id,
		UserID: s.userID,
		Input:  &input,
		Cursor: s.cursor,
	}
	if !s.transport.Send(msg) {
		return
	}
	s.status = statusWaiting
}

func (s *Synchronizer[T]) handleEvent(event events.Event) {
	switch e := event.(type) {
	case events.SocketOpened:
		if e.AccountID != s.accountID {
			return
		}
		// запрос, отправленный в прошлое соединение, ответа не получит
		s.mu.Lock()
		if s.status == statusWaiting {
			s.status = statusIdle
		}
		s.mu.Unlock()
		s.Ping()
	case events.SocketClosed:
		if e.AccountID != s.accountID {
			return
		}
		s.mu.Lock()
		if s.status == statusWaiting {
			s.status = statusIdle
		}
		s.mu.Unlock()
	case events.SocketMessageReceived:
		if e.AccountID != s.accountID {
			return
		}
		msg := e.Message
		if msg.Type != api.MessageTypeSynchronizerOutput || msg.ID != s.id {
			return
		}
		s.mu.Lock()
		if s.destroyed || s.status == statusProcessing {
			s.mu.Unlock()
			return
		}
		s.status = statusProcessing
		ctx := s.ctx
		s.wg.Add(1)
		s.mu.Unlock()

		go func() {
			defer s.wg.Done()
			s.process(ctx, msg.Items)
		}()
	}
}

// process applies items in order and stops at the first failure.
func (s *Synchronizer[T]) process(ctx context.Context, items []api.SynchronizerItem) {
	applied := s.Cursor()

	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		if !cursorAfter(item.Cursor, applied) {
			continue
		}

		var value T
		if err := json.Unmarshal(item.Data, &value); err != nil {
			s.logger.Error("Failed to decode synchronizer item", "cursor", item.Cursor, "error", err)
			break
		}
		if err := s.handler(ctx, value); err != nil {
			s.logger.Error("Failed to apply synchronizer item", "cursor", item.Cursor, "error", err)
			break
		}
		applied = item.Cursor
	}

	if applied != s.Cursor() {
		if err := s.cursors.SetCursor(ctx, s.input.Key(), applied); err != nil {
			s.logger.Error("Failed to persist cursor", "cursor", applied, "error", err)
		} else {
			s.mu.Lock()
			s.cursor = applied
			s.mu.Unlock()
		}
	}

	s.mu.Lock()
	s.status = statusIdle
	s.mu.Unlock()
	s.Ping()
}

// Destroy unsubscribes, waits for an in-flight batch and optionally deletes the cursor.
func (s *Synchronizer[T]) Destroy(ctx context.Context, deleteCursor bool) error {
	s.subscription.Unsubscribe()

	s.mu.Lock()
	s.destroyed = true
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	if !deleteCursor {
		return nil
	}
	if err := s.cursors.DeleteCursor(ctx, s.input.Key()); err != nil {
		return fmt.Errorf("failed to delete cursor %s: %w", s.input.Key(), err)
	}
	return nil
}

// cursorAfter reports whether cursor is newer than applied. Non-numeric cursors are always applied.
func cursorAfter(cursor, applied string) bool {
	c, err := strconv.ParseInt(cursor, 10, 64)
	if err != nil {
		return true
	}
	a, err := strconv.ParseInt(applied, 10, 64)
	if err != nil {
		return true
	}
	return c > a
}
