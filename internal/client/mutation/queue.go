// Package mutation отправляет локальную очередь мутаций на сервер.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	httpClient "github.com/iudanet/gophsync/internal/client/api"
	"github.com/iudanet/gophsync/internal/client/eventbus"
	"github.com/iudanet/gophsync/internal/client/eventloop"
	"github.com/iudanet/gophsync/internal/client/events"
	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/pkg/api"
)

//go:generate moq -out mutation_mock.go . Store Client Reverter NodeReverter DocumentReverter

const (
	ReadSize        = 500
	BatchSize       = 50
	MaxRetries      = 10
	DefaultInterval = time.Minute
)

// Store локальная очередь (storage.MutationStorage)
type Store interface {
	ListMutations(ctx context.Context, limit int) ([]*models.Mutation, error)
	DeleteMutations(ctx context.Context, ids []string) error
	IncrementMutationRetries(ctx context.Context, ids []string) error
	PurgeNodes(ctx context.Context, ids []string) error
}

// Client HTTP API сервера (api.Client)
type Client interface {
	SyncMutations(ctx context.Context, workspaceID string, req api.SyncMutationsRequest) (*api.SyncMutationsResponse, error)
	Health(ctx context.Context) error
}

// Reverter откатывает мутацию, исчерпавшую попытки
type Reverter interface {
	Revert(ctx context.Context, m *models.Mutation) error
}

// Config параметры очереди; нулевые значения заменяются константами пакета
type Config struct {
	WorkspaceID string
	Server      string
	ReadSize    int
	BatchSize   int
	MaxRetries  int
	Interval    time.Duration
}

// Queue переносит мутации workspace на сервер
type Queue struct {
	store        Store
	client       Client
	reverter     Reverter
	bus          *eventbus.Bus
	logger       *slog.Logger
	loop         *eventloop.Loop
	subscription *eventbus.Subscription
	available    *bool
	workspaceID  string
	server       string
	readSize     int
	batchSize    int
	maxRetries   int
	mu           sync.Mutex
}

// NewQueue создает очередь; отправка начинается после Start
func NewQueue(cfg Config, store Store, client Client, reverter Reverter, bus *eventbus.Bus, logger *slog.Logger) *Queue {
	q := &Queue{
		store:       store,
		client:      client,
		reverter:    reverter,
		bus:         bus,
		logger:      logger.With("workspace_id", cfg.WorkspaceID),
		workspaceID: cfg.WorkspaceID,
		server:      cfg.Server,
		readSize:    cfg.ReadSize,
		batchSize:   cfg.BatchSize,
		maxRetries:  cfg.MaxRetries,
	}
	if q.readSize <= 0 {
		q.readSize = ReadSize
	}
	if q.batchSize <= 0 {
		q.batchSize = BatchSize
	}
	if q.maxRetries <= 0 {
		q.maxRetries = MaxRetries
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	q.loop = eventloop.New(interval, 0, q.run)
	return q
}

// Start subscribes to MutationCreated and starts the periodic drain.
func (q *Queue) Start() {
	q.subscription = q.bus.Subscribe(func(event events.Event) {
		e, ok := event.(events.MutationCreated)
		if !ok || e.WorkspaceID != q.workspaceID {
			return
		}
		q.loop.Trigger()
	})
	q.loop.Start()
}

// Stop unsubscribes and waits for an in-flight drain.
func (q *Queue) Stop() {
	q.subscription.Unsubscribe()
	q.loop.Stop()
}

// Trigger requests a drain as soon as possible.
func (q *Queue) Trigger() {
	q.loop.Trigger()
}

func (q *Queue) run(ctx context.Context) {
	if err := q.Sync(ctx); err != nil {
		q.logger.Warn("Mutation sync pass abandoned", "error", err)
	}
}

// Sync drains the queue window by window. It stops when the queue is empty,
// when a window made no progress, or on the first request error.
func (q *Queue) Sync(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		found, progressed, err := q.syncWindow(ctx)
		if err != nil {
			return err
		}
		if !found {
			q.checkHealth(ctx)
			return nil
		}
		if !progressed {
			return nil
		}
	}
}

func (q *Queue) syncWindow(ctx context.Context) (found, progressed bool, err error) {
	mutations, err := q.store.ListMutations(ctx, q.readSize)
	if err != nil {
		return false, false, fmt.Errorf("failed to list mutations: %w", err)
	}
	if len(mutations) == 0 {
		return false, false, nil
	}

	kept, dropped := Consolidate(mutations)
	if len(dropped) > 0 {
		// узел создан и удален локально: сервер его не увидит, локальный след стирается
		if discarded := DiscardedNodes(dropped); len(discarded) > 0 {
			if err := q.store.PurgeNodes(ctx, discarded); err != nil {
				return true, false, fmt.Errorf("failed to purge discarded nodes: %w", err)
			}
		}
		if err := q.store.DeleteMutations(ctx, mutationIDs(dropped)); err != nil {
			return true, false, fmt.Errorf("failed to delete consolidated mutations: %w", err)
		}
		q.logger.Debug("Consolidated mutations", "dropped", len(dropped))
		progressed = true
	}

	for start := 0; start < len(kept); start += q.batchSize {
		end := min(start+q.batchSize, len(kept))
		batchProgressed, err := q.sendBatch(ctx, kept[start:end])
		if batchProgressed {
			progressed = true
		}
		if err != nil {
			return true, progressed, err
		}
	}

	return true, progressed, nil
}

// sendBatch sends one batch and settles every mutation in it.
func (q *Queue) sendBatch(ctx context.Context, batch []*models.Mutation) (bool, error) {
	req := api.SyncMutationsRequest{Mutations: make([]api.Mutation, 0, len(batch))}
	for _, m := range batch {
		req.Mutations = append(req.Mutations, api.Mutation{
			ID:        m.ID,
			Type:      string(m.Type),
			Data:      m.Data,
			CreatedAt: m.CreatedAt,
		})
	}

	resp, err := q.client.SyncMutations(ctx, q.workspaceID, req)
	if err != nil {
		if errors.Is(err, httpClient.ErrUnavailable) {
			q.setAvailable(false)
		}
		return false, fmt.Errorf("failed to send mutations: %w", err)
	}
	q.setAvailable(true)

	statuses := make(map[string]api.MutationStatus, len(resp.Results))
	for _, r := range resp.Results {
		statuses[r.ID] = r.Status
	}

	var settled, failed []string
	for _, m := range batch {
		if statuses[m.ID] == api.MutationStatusSuccess {
			settled = append(settled, m.ID)
			continue
		}
		// отсутствующий результат считается ошибкой
		if m.Retries+1 >= q.maxRetries {
			if err := q.revert(ctx, m); err != nil {
				// мутация остается в очереди, откат повторится на следующем проходе
				q.logger.Error("Failed to revert mutation", "mutation_id", m.ID, "error", err)
				failed = append(failed, m.ID)
				continue
			}
			settled = append(settled, m.ID)
			continue
		}
		failed = append(failed, m.ID)
	}

	progressed := false
	if len(settled) > 0 {
		if err := q.store.DeleteMutations(ctx, settled); err != nil {
			return false, fmt.Errorf("failed to delete settled mutations: %w", err)
		}
		progressed = true
	}
	if len(failed) > 0 {
		if err := q.store.IncrementMutationRetries(ctx, failed); err != nil {
			return progressed, fmt.Errorf("failed to increment retries: %w", err)
		}
		q.logger.Warn("Server rejected mutations", "count", len(failed))
	}

	return progressed, nil
}

func (q *Queue) revert(ctx context.Context, m *models.Mutation) error {
	q.logger.Warn("Reverting mutation after retry limit",
		"mutation_id", m.ID,
		"type", m.Type,
		"retries", m.Retries+1,
	)
	return q.reverter.Revert(ctx, m)
}

// checkHealth asks a server previously seen as unavailable for /health when there is nothing to send.
func (q *Queue) checkHealth(ctx context.Context) {
	if q.available == nil || *q.available {
		return
	}
	if err := q.client.Health(ctx); err != nil {
		q.logger.Debug("Server still unavailable", "error", err)
		return
	}
	q.setAvailable(true)
}

func (q *Queue) setAvailable(available bool) {
	if q.available != nil && *q.available == available {
		return
	}
	changed := q.available != nil
	q.available = &available
	if !changed && available {
		return
	}
	q.bus.Publish(events.ServerAvailabilityChanged{Server: q.server, Available: available})
}

func mutationIDs(mutations []*models.Mutation) []string {
	ids := make([]string, len(mutations))
	for i, m := range mutations {
		ids[i] = m.ID
	}
	return ids
}
