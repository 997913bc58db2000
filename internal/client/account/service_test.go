package account

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/internal/client/eventbus"
	"github.com/iudanet/gophsync/internal/client/events"
	"github.com/iudanet/gophsync/internal/client/mutation"
	"github.com/iudanet/gophsync/internal/client/storage/boltdb"
	"github.com/iudanet/gophsync/internal/client/workspace"
	"github.com/iudanet/gophsync/pkg/api"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recorder struct {
	events []events.Event
	mu     sync.Mutex
}

func (r *recorder) handle(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Name() == name {
			return true
		}
	}
	return false
}

type testServer struct {
	*httptest.Server
	received chan api.Message
	conns    chan *websocket.Conn
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		received: make(chan api.Message, 100),
		conns:    make(chan *websocket.Conn, 10),
	}
	upgrader := websocket.Upgrader{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /v1/workspaces/{workspaceId}/mutations", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.SyncMutationsResponse{})
	})
	mux.HandleFunc("GET /v1/accounts/{accountId}/socket", func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ts.conns <- ws
		for {
			var msg api.Message
			if err := ws.ReadJSON(&msg); err != nil {
				return
			}
			ts.received <- msg
		}
	})

	ts.Server = httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) waitInput(t *testing.T, partition api.SynchronizerType) api.Message {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case msg := <-ts.received:
			if msg.Type == api.MessageTypeSynchronizerInput && msg.Input != nil && msg.Input.Type == partition {
				return msg
			}
		case <-deadline:
			t.Fatalf("no synchronizer input for %s", partition)
		}
	}
}

func TestService_WorkspaceOverSharedConnection(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	bus := eventbus.New(setupTestLogger())
	t.Cleanup(bus.Close)
	rec := &recorder{}
	bus.Subscribe(rec.handle)

	service := New(Config{
		AccountID:      "acc1",
		ServerURL:      ts.URL,
		SocketURL:      "ws" + strings.TrimPrefix(ts.URL, "http"),
		Token:          "token-1",
		HealthInterval: time.Hour,
	}, bus, setupTestLogger())
	service.Start()

	store, err := boltdb.New(ctx, filepath.Join(t.TempDir(), "ws.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ws, err := service.AddWorkspace(ctx, workspace.Config{
		WorkspaceID: "ws1ws",
		UserID:      "user1us",
		Queue:       mutation.Config{Interval: time.Hour},
	}, store)
	require.NoError(t, err)
	t.Cleanup(func() { _ = service.Stop(ctx) })

	_, err = service.AddWorkspace(ctx, workspace.Config{WorkspaceID: "ws1ws"}, store)
	require.ErrorIs(t, err, ErrWorkspaceExists)

	got, ok := service.Workspace("ws1ws")
	require.True(t, ok)
	assert.Same(t, ws, got)

	users := ts.waitInput(t, api.SynchronizerUsers)
	assert.Equal(t, "user1us", users.UserID)
	assert.Equal(t, "ws1ws", users.Input.WorkspaceID)

	var conn *websocket.Conn
	select {
	case conn = <-ts.conns:
	case <-time.After(time.Second):
		t.Fatal("socket was not opened")
	}

	require.NoError(t, conn.WriteJSON(api.Message{Type: api.MessageTypeAccountUpdated, AccountID: "acc1"}))
	require.NoError(t, conn.WriteJSON(api.Message{Type: api.MessageTypeWorkspaceUpdated, WorkspaceID: "ws1ws"}))

	require.Eventually(t, func() bool {
		return rec.has("account_updated") && rec.has("workspace_updated")
	}, time.Second, time.Millisecond)
}
