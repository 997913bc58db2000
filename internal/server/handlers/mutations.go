package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/gophsync/internal/server/storage"
	"github.com/iudanet/gophsync/pkg/api"
)

const (
	maxMutationsBody     = 8 << 20
	maxMutationsPerBatch = 500
)

// MutationApplier применяет пачку мутаций пользователя
type MutationApplier interface {
	ResolveUser(ctx context.Context, accountID, workspaceID string) (*api.User, error)
	ApplyMutations(ctx context.Context, user *api.User, mutations []api.Mutation) []api.MutationResult
}

// MutationsHandler принимает мутации клиентов
type MutationsHandler struct {
	logger  *slog.Logger
	service MutationApplier
}

// NewMutationsHandler creates a new mutations handler
func NewMutationsHandler(logger *slog.Logger, service MutationApplier) *MutationsHandler {
	return &MutationsHandler{
		logger:  logger,
		service: service,
	}
}

// Handle обрабатывает POST /v1/workspaces/{workspaceId}/mutations.
// Ответ содержит по одному результату на каждую мутацию запроса.
func (h *MutationsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := GetAccountID(ctx)
	if !ok {
		h.logger.Error("Account ID not found in context")
		writeError(w, h.logger, http.StatusUnauthorized, "")
		return
	}

	workspaceID := r.PathValue("workspaceId")
	user, err := h.service.ResolveUser(ctx, accountID, workspaceID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.Warn("Account is not a member of workspace", "account_id", accountID, "workspace_id", workspaceID)
			writeError(w, h.logger, http.StatusForbidden, "account is not a member of the workspace")
			return
		}
		h.logger.Error("Failed to resolve user", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "")
		return
	}

	var req api.SyncMutationsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMutationsBody)).Decode(&req); err != nil {
		h.logger.Warn("Invalid mutations request", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Mutations) > maxMutationsPerBatch {
		writeError(w, h.logger, http.StatusRequestEntityTooLarge, "too many mutations in one request")
		return
	}

	results := h.service.ApplyMutations(ctx, user, req.Mutations)

	h.logger.Info("Mutations applied",
		"workspace_id", workspaceID,
		"user_id", user.ID,
		"count", len(results),
	)
	writeJSON(w, h.logger, http.StatusOK, api.SyncMutationsResponse{Results: results})
}
