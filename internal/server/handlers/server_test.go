package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/internal/server/realtime"
	"github.com/iudanet/gophsync/internal/server/service"
	"github.com/iudanet/gophsync/internal/server/storage/sqlite"
	"github.com/iudanet/gophsync/pkg/api"
)

const testWorkspace = "ws1ws"

type testServer struct {
	*httptest.Server
	service *service.Service
	owner   *api.User
}

// withTestAccount кладет в контекст аккаунт из "Bearer <account>"
func withTestAccount(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if ok && accountID != "" {
			r = r.WithContext(WithAccountID(r.Context(), accountID))
		}
		next(w, r)
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	dispatcher := realtime.NewDispatcher()
	svc := service.New(db, dispatcher, setupTestLogger())

	owner, err := svc.CreateUser(ctx, "acc1", testWorkspace, "owner@example.com", "Owner", "owner")
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", NewHealthHandler(setupTestLogger(), db, "test").Health)
	mux.HandleFunc("POST /v1/workspaces/{workspaceId}/mutations",
		withTestAccount(NewMutationsHandler(setupTestLogger(), svc).Handle))
	mux.HandleFunc("GET /v1/accounts/{accountId}/socket",
		withTestAccount(NewSocketHandler(setupTestLogger(), svc, dispatcher).Handle))

	ts := &testServer{Server: httptest.NewServer(mux), service: svc, owner: owner}
	t.Cleanup(ts.Close)
	return ts
}
