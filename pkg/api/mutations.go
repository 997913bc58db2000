package api

import (
	"encoding/json"
	"time"
)

// MutationStatus результат применения мутации сервером
type MutationStatus string

const (
	MutationStatusSuccess MutationStatus = "success"
	MutationStatusError   MutationStatus = "error"
)

// Mutation представляет локальную мутацию в запросе синхронизации
type Mutation struct {
	CreatedAt time.Time       `json:"created_at"`
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
}

// SyncMutationsRequest тело POST /v1/workspaces/{workspaceId}/mutations
type SyncMutationsRequest struct {
	Mutations []Mutation `json:"mutations"`
}

// MutationResult результат по одной мутации, сопоставляется по ID
type MutationResult struct {
	ID     string         `json:"id"`
	Status MutationStatus `json:"status"`
}

// SyncMutationsResponse ответ сервера: по одному результату на каждую мутацию
type SyncMutationsResponse struct {
	Results []MutationResult `json:"results"`
}
