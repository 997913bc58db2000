package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/pkg/api"
)

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL, "token")

	assert.NotNil(t, client)
	assert.Equal(t, baseURL, client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}

// TestClient_SyncMutations проверяет успешную отправку мутаций
func TestClient_SyncMutations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/workspaces/ws1/mutations", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req api.SyncMutationsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Mutations, 2)

		resp := api.SyncMutationsResponse{}
		for _, m := range req.Mutations {
			resp.Results = append(resp.Results, api.MutationResult{ID: m.ID, Status: api.MutationStatusSuccess})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	resp, err := client.SyncMutations(context.Background(), "ws1", api.SyncMutationsRequest{
		Mutations: []api.Mutation{
			{ID: "m1", Type: "create_node", Data: json.RawMessage(`{}`)},
			{ID: "m2", Type: "update_node", Data: json.RawMessage(`{}`)},
		},
	})

	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "m1", resp.Results[0].ID)
	assert.Equal(t, api.MutationStatusSuccess, resp.Results[0].Status)
}

// TestClient_SyncMutations_Error проверяет классификацию ошибок
func TestClient_SyncMutations_Error(t *testing.T) {
	tests := []struct {
		responseBody    any
		name            string
		statusCode      int
		wantUnavailable bool
		wantMessage     string
	}{
		{
			name:         "unauthorized",
			statusCode:   http.StatusUnauthorized,
			responseBody: api.ErrorResponse{Error: "unauthorized", Message: "invalid token"},
			wantMessage:  "invalid token",
		},
		{
			name:            "internal error",
			statusCode:      http.StatusInternalServerError,
			responseBody:    api.ErrorResponse{Error: "internal"},
			wantUnavailable: true,
			wantMessage:     "internal",
		},
		{
			name:         "plain text body",
			statusCode:   http.StatusBadRequest,
			responseBody: "bad request",
			wantMessage:  "bad request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				if s, ok := tt.responseBody.(string); ok {
					_, _ = w.Write([]byte(s))
					return
				}
				_ = json.NewEncoder(w).Encode(tt.responseBody)
			}))
			defer server.Close()

			client := NewClient(server.URL, "")
			_, err := client.SyncMutations(context.Background(), "ws1", api.SyncMutationsRequest{})
			require.Error(t, err)

			assert.Equal(t, tt.wantUnavailable, errors.Is(err, ErrUnavailable))
			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.statusCode, statusErr.StatusCode)
			assert.Contains(t, statusErr.Message, tt.wantMessage)
		})
	}
}

// TestClient_Unreachable проверяет ошибку транспорта
func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url, "")
	err := client.Health(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	assert.NoError(t, NewClient(server.URL, "").Health(context.Background()))
}
