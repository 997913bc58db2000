package synchronizer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/internal/client/eventbus"
	"github.com/iudanet/gophsync/internal/client/events"
	"github.com/iudanet/gophsync/pkg/api"
)

const testAccount = "acc1"

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testItem struct {
	ID string `json:"id"`
}

func newCursorStore(initial map[string]string) *CursorStoreMock {
	var mu sync.Mutex
	data := make(map[string]string)
	for k, v := range initial {
		data[k] = v
	}
	return &CursorStoreMock{
		GetCursorFunc: func(ctx context.Context, key string) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			return data[key], nil
		},
		SetCursorFunc: func(ctx context.Context, key string, value string) error {
			mu.Lock()
			defer mu.Unlock()
			data[key] = value
			return nil
		},
		DeleteCursorFunc: func(ctx context.Context, key string) error {
			mu.Lock()
			defer mu.Unlock()
			delete(data, key)
			return nil
		},
	}
}

func newTransport(connected *atomic.Bool) *TransportMock {
	return &TransportMock{
		IsConnectedFunc: func() bool { return connected.Load() },
		SendFunc:        func(msg api.Message) bool { return connected.Load() },
	}
}

type handlerRecorder struct {
	failOn string
	seen   []string
	mu     sync.Mutex
}

func (h *handlerRecorder) handle(ctx context.Context, item testItem) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, item.ID)
	if item.ID == h.failOn {
		return errors.New("apply failed")
	}
	return nil
}

func (h *handlerRecorder) snapshot() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.seen...)
}

func output(t *testing.T, id string, items ...string) events.SocketMessageReceived {
	t.Helper()
	msg := api.Message{Type: api.MessageTypeSynchronizerOutput, ID: id}
	for i, itemID := range items {
		data, err := json.Marshal(testItem{ID: itemID})
		require.NoError(t, err)
		msg.Items = append(msg.Items, api.SynchronizerItem{
			Cursor: string(rune('1' + i)),
			Data:   data,
		})
	}
	return events.SocketMessageReceived{AccountID: testAccount, Message: msg}
}

func lastSent(m *TransportMock) api.Message {
	calls := m.SendCalls()
	return calls[len(calls)-1].Msg
}

type fixture struct {
	bus       *eventbus.Bus
	transport *TransportMock
	cursors   *CursorStoreMock
	handler   *handlerRecorder
	sync      *Synchronizer[testItem]
	connected *atomic.Bool
}

func newFixture(t *testing.T, connected bool) *fixture {
	t.Helper()
	f := &fixture{
		bus:       eventbus.New(setupTestLogger()),
		connected: &atomic.Bool{},
		handler:   &handlerRecorder{},
	}
	f.connected.Store(connected)
	f.transport = newTransport(f.connected)
	f.cursors = newCursorStore(nil)
	cfg := Config{
		Input:     api.SynchronizerInput{Type: api.SynchronizerNodeUpdates, WorkspaceID: "ws1", RootID: "root1"},
		AccountID: testAccount,
		UserID:    "user1",
	}
	f.sync = New(cfg, f.transport, f.cursors, f.handler.handle, f.bus, setupTestLogger())
	t.Cleanup(func() {
		_ = f.sync.Destroy(context.Background(), false)
		f.bus.Close()
	})
	return f
}

func TestID_Stable(t *testing.T) {
	in := api.SynchronizerInput{Type: api.SynchronizerUsers, WorkspaceID: "ws1"}

	assert.Equal(t, ID("u1", in), ID("u1", in))
	assert.Len(t, ID("u1", in), 64)
	assert.NotEqual(t, ID("u1", in), ID("u2", in))
	assert.NotEqual(t, ID("u1", in), ID("u1", api.SynchronizerInput{Type: api.SynchronizerCollaborations, WorkspaceID: "ws1"}))
}

func TestSynchronizer_InitSendsDefaultCursor(t *testing.T) {
	f := newFixture(t, true)

	require.NoError(t, f.sync.Init(context.Background()))

	require.Len(t, f.transport.SendCalls(), 1)
	msg := lastSent(f.transport)
	assert.Equal(t, api.MessageTypeSynchronizerInput, msg.Type)
	assert.Equal(t, f.sync.ID(), msg.ID)
	assert.Equal(t, "user1", msg.UserID)
	assert.Equal(t, DefaultCursor, msg.Cursor)
	require.NotNil(t, msg.Input)
	assert.Equal(t, "root1", msg.Input.RootID)
}

func TestSynchronizer_InitUsesPersistedCursor(t *testing.T) {
	f := newFixture(t, true)
	f.cursors = newCursorStore(map[string]string{"nodes_updates:root1": "42"})
	f.sync.cursors = f.cursors

	require.NoError(t, f.sync.Init(context.Background()))

	assert.Equal(t, "42", lastSent(f.transport).Cursor)
}

func TestSynchronizer_InitLoadError(t *testing.T) {
	f := newFixture(t, true)
	f.cursors.GetCursorFunc = func(ctx context.Context, key string) (string, error) {
		return "", errors.New("db closed")
	}

	err := f.sync.Init(context.Background())
	require.Error(t, err)
	assert.Empty(t, f.transport.SendCalls())
}

func TestSynchronizer_PingOnlyWhenIdleAndConnected(t *testing.T) {
	f := newFixture(t, false)

	require.NoError(t, f.sync.Init(context.Background()))
	assert.Empty(t, f.transport.SendCalls(), "disconnected socket must not be written")

	f.connected.Store(true)
	f.sync.Ping()
	f.sync.Ping()
	assert.Len(t, f.transport.SendCalls(), 1, "second ping while waiting is a no-op")
}

func TestSynchronizer_AppliesBatchAndRearms(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.sync.Init(context.Background()))

	f.bus.Publish(output(t, f.sync.ID(), "a", "b", "c"))

	require.Eventually(t, func() bool { return len(f.transport.SendCalls()) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, f.handler.snapshot())
	assert.Equal(t, "3", f.sync.Cursor())
	assert.Equal(t, "3", lastSent(f.transport).Cursor)

	stored, err := f.cursors.GetCursor(context.Background(), "nodes_updates:root1")
	require.NoError(t, err)
	assert.Equal(t, "3", stored)
}

func TestSynchronizer_HandlerErrorKeepsPartialProgress(t *testing.T) {
	f := newFixture(t, true)
	f.handler.failOn = "b"
	require.NoError(t, f.sync.Init(context.Background()))

	f.bus.Publish(output(t, f.sync.ID(), "a", "b", "c"))

	require.Eventually(t, func() bool { return len(f.transport.SendCalls()) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, f.handler.snapshot())
	assert.Equal(t, "1", f.sync.Cursor())
	assert.Equal(t, "1", lastSent(f.transport).Cursor)
}

func TestSynchronizer_IgnoresUnknownID(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.sync.Init(context.Background()))

	f.bus.Publish(output(t, "someone-else", "a"))
	f.bus.Publish(events.SocketMessageReceived{
		AccountID: "other-account",
		Message:   output(t, f.sync.ID(), "b").Message,
	})

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, f.handler.snapshot())
	assert.Equal(t, DefaultCursor, f.sync.Cursor())
}

func TestSynchronizer_RedeliveryIsIdempotent(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.sync.Init(context.Background()))

	f.bus.Publish(output(t, f.sync.ID(), "a", "b"))
	require.Eventually(t, func() bool { return len(f.transport.SendCalls()) == 2 }, time.Second, time.Millisecond)

	f.bus.Publish(output(t, f.sync.ID(), "a", "b"))
	require.Eventually(t, func() bool { return len(f.transport.SendCalls()) == 3 }, time.Second, time.Millisecond)

	assert.Equal(t, []string{"a", "b"}, f.handler.snapshot())
	assert.Equal(t, "2", f.sync.Cursor())
	assert.Len(t, f.cursors.SetCursorCalls(), 1)
}

func TestSynchronizer_SocketOpenedRearms(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.sync.Init(context.Background()))
	require.Len(t, f.transport.SendCalls(), 1)

	// ответ на первый запрос потерян вместе с соединением
	f.bus.Publish(events.SocketClosed{AccountID: testAccount})
	f.bus.Publish(events.SocketOpened{AccountID: testAccount})

	require.Eventually(t, func() bool { return len(f.transport.SendCalls()) == 2 }, time.Second, time.Millisecond)
}

func TestSynchronizer_DestroyDeletesCursor(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.sync.Init(context.Background()))

	require.NoError(t, f.sync.Destroy(context.Background(), true))
	require.Len(t, f.cursors.DeleteCursorCalls(), 1)
	assert.Equal(t, "nodes_updates:root1", f.cursors.DeleteCursorCalls()[0].Key)

	// после Destroy выходы игнорируются
	f.bus.Publish(output(t, f.sync.ID(), "a"))
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, f.handler.snapshot())
}
