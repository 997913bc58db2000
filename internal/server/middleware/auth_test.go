package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/internal/server/handlers"
	"github.com/iudanet/gophsync/internal/server/jwt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuthMiddleware_Success(t *testing.T) {
	tokens := jwt.NewService(testSecret, 15*time.Minute)
	token, _, err := tokens.GenerateAccessToken("acc1")
	require.NoError(t, err)

	var accountID string
	handler := AuthMiddleware(setupTestLogger(), tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := handlers.GetAccountID(r.Context())
		require.True(t, ok, "account_id should be in context")
		accountID = id
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/accounts/acc1/socket", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "acc1", accountID)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	tokens := jwt.NewService(testSecret, 15*time.Minute)
	valid, _, err := tokens.GenerateAccessToken("acc1")
	require.NoError(t, err)

	expired, _, err := jwt.NewService(testSecret, -time.Minute).GenerateAccessToken("acc1")
	require.NoError(t, err)
	foreign, _, err := jwt.NewService("another-secret-another-secret-xx", time.Minute).GenerateAccessToken("acc1")
	require.NoError(t, err)

	tests := []struct {
		name         string
		header       string
		expectedBody string
	}{
		{name: "missing header", header: "", expectedBody: "missing token"},
		{name: "no bearer prefix", header: valid, expectedBody: "invalid token format"},
		{name: "basic scheme", header: "Basic " + valid, expectedBody: "invalid token format"},
		{name: "empty token", header: "Bearer ", expectedBody: "invalid token format"},
		{name: "garbage", header: "Bearer not-a-jwt", expectedBody: "invalid token"},
		{name: "expired", header: "Bearer " + expired, expectedBody: "invalid token"},
		{name: "wrong secret", header: "Bearer " + foreign, expectedBody: "invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := AuthMiddleware(setupTestLogger(), tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/v1/accounts/acc1/socket", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}

func TestAuthMiddleware_BearerCaseInsensitive(t *testing.T) {
	tokens := jwt.NewService(testSecret, time.Minute)
	token, _, err := tokens.GenerateAccessToken("acc1")
	require.NoError(t, err)

	handler := AuthMiddleware(setupTestLogger(), tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
