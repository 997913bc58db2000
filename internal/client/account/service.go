// Package account владеет соединением аккаунта и его workspace.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	httpClient "github.com/iudanet/gophsync/internal/client/api"
	"github.com/iudanet/gophsync/internal/client/backoff"
	"github.com/iudanet/gophsync/internal/client/connection"
	"github.com/iudanet/gophsync/internal/client/eventbus"
	"github.com/iudanet/gophsync/internal/client/events"
	"github.com/iudanet/gophsync/internal/client/workspace"
	"github.com/iudanet/gophsync/pkg/api"
)

// ErrWorkspaceExists workspace уже запущен
var ErrWorkspaceExists = errors.New("workspace already started")

// Config параметры аккаунта
type Config struct {
	AccountID      string
	ServerURL      string
	SocketURL      string
	Token          string
	HealthInterval time.Duration
	BackoffBase    time.Duration
	BackoffMax     time.Duration
}

// Service аккаунт: одно соединение и HTTP клиент на все его workspace
type Service struct {
	conn         *connection.Connection
	client       *httpClient.Client
	bus          *eventbus.Bus
	logger       *slog.Logger
	subscription *eventbus.Subscription
	workspaces   map[string]*workspace.Service
	cfg          Config
	mu           sync.Mutex
}

// New создает аккаунт; соединение открывается в Start
func New(cfg Config, bus *eventbus.Bus, logger *slog.Logger) *Service {
	logger = logger.With("account_id", cfg.AccountID)

	var opts []backoff.Option
	if cfg.BackoffBase > 0 {
		opts = append(opts, backoff.WithBase(cfg.BackoffBase))
	}
	if cfg.BackoffMax > 0 {
		opts = append(opts, backoff.WithMax(cfg.BackoffMax))
	}

	conn := connection.New(connection.Config{
		Backoff:        backoff.New(opts...),
		AccountID:      cfg.AccountID,
		ServerURL:      cfg.ServerURL,
		SocketURL:      cfg.SocketURL,
		Token:          cfg.Token,
		HealthInterval: cfg.HealthInterval,
	}, bus, logger)

	return &Service{
		conn:       conn,
		client:     httpClient.NewClient(cfg.ServerURL, cfg.Token),
		bus:        bus,
		logger:     logger,
		workspaces: make(map[string]*workspace.Service),
		cfg:        cfg,
	}
}

// Connection returns the socket connection of the account.
func (s *Service) Connection() *connection.Connection {
	return s.conn
}

// Start subscribes to out-of-band pushes and opens the socket.
func (s *Service) Start() {
	s.subscription = s.bus.Subscribe(s.handle)
	s.conn.Start()
}

// AddWorkspace builds and starts the sync engine of a workspace on top of the
// account connection.
func (s *Service) AddWorkspace(ctx context.Context, cfg workspace.Config, store workspace.Store) (*workspace.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.workspaces[cfg.WorkspaceID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrWorkspaceExists, cfg.WorkspaceID)
	}

	cfg.AccountID = s.cfg.AccountID
	cfg.Server = s.cfg.ServerURL
	ws := workspace.New(cfg, store, s.conn, s.client, s.bus, s.logger)
	if err := ws.Start(ctx); err != nil {
		return nil, errors.Join(err, ws.Stop(ctx))
	}

	s.workspaces[cfg.WorkspaceID] = ws
	return ws, nil
}

// Workspace returns a started workspace.
func (s *Service) Workspace(id string) (*workspace.Service, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.workspaces[id]
	return ws, ok
}

// Stop stops every workspace and closes the socket.
func (s *Service) Stop(ctx context.Context) error {
	s.subscription.Unsubscribe()

	s.mu.Lock()
	workspaces := s.workspaces
	s.workspaces = make(map[string]*workspace.Service)
	s.mu.Unlock()

	var errs []error
	for id, ws := range workspaces {
		if err := ws.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("workspace %s: %w", id, err))
		}
	}
	s.conn.Close()
	return errors.Join(errs...)
}

func (s *Service) handle(event events.Event) {
	e, ok := event.(events.SocketMessageReceived)
	if !ok || e.AccountID != s.cfg.AccountID {
		return
	}

	switch e.Message.Type {
	case api.MessageTypeAccountUpdated:
		s.bus.Publish(events.AccountUpdated{AccountID: s.cfg.AccountID})
	case api.MessageTypeWorkspaceUpdated:
		s.bus.Publish(events.WorkspaceUpdated{WorkspaceID: e.Message.WorkspaceID})
	}
}
