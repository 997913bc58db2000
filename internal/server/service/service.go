// Package service применяет мутации клиентов и отдает партиции синхронизации.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/server/realtime"
	"github.com/iudanet/gophsync/internal/server/storage"
	"github.com/iudanet/gophsync/pkg/api"
)

var (
	// ErrForbidden у пользователя нет доступа к root
	ErrForbidden = errors.New("access denied")

	// ErrInvalidMutation мутация не прошла проверку и не будет применена
	ErrInvalidMutation = errors.New("invalid mutation")

	// ErrInvalidCursor курсор партиции не является числом
	ErrInvalidCursor = errors.New("invalid cursor")
)

// PageSize максимальное число элементов в одном synchronizer_output
const PageSize = 50

// Notifier получает уведомления об изменениях партиций
type Notifier interface {
	Publish(change realtime.Change)
}

// Service сервер синхронизации поверх хранилища
type Service struct {
	store    storage.Storage
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a new sync service
func New(store storage.Storage, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// ResolveUser returns the user the account owns in the workspace.
func (s *Service) ResolveUser(ctx context.Context, accountID, workspaceID string) (*api.User, error) {
	user, err := s.store.GetUserByAccount(ctx, workspaceID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return user, nil
}

// CreateUser adds a user of the account to the workspace.
func (s *Service) CreateUser(ctx context.Context, accountID, workspaceID, email, name, role string) (*api.User, error) {
	if strings.TrimSpace(accountID) == "" || strings.TrimSpace(workspaceID) == "" || strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("account, workspace and email are required")
	}

	user := &api.User{
		ID:          models.GenerateID(models.IDTypeUser),
		WorkspaceID: workspaceID,
		Email:       email,
		Name:        name,
		Role:        role,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, accountID, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User created", "workspace_id", workspaceID, "user_id", user.ID)
	s.publish(workspaceID, api.SynchronizerUsers, "")
	return user, nil
}

// SetCollaboration grants (active) or revokes the role of the collaborator on
// the root. Only admins of the root may change its collaborators.
func (s *Service) SetCollaboration(ctx context.Context, actor *api.User, rootID, collaboratorID string,
	role models.CollaboratorRole, active bool) error {
	if !role.IsValid() {
		return fmt.Errorf("unknown role %q", role)
	}
	current, err := s.collaboration(ctx, actor, rootID)
	if err != nil {
		return err
	}
	if models.CollaboratorRole(current.Role) != models.RoleAdmin {
		return fmt.Errorf("%w: %s is not an admin of %s", ErrForbidden, actor.ID, rootID)
	}
	if _, err := s.store.GetUser(ctx, actor.WorkspaceID, collaboratorID); err != nil {
		return fmt.Errorf("failed to get collaborator: %w", err)
	}

	now := s.now().UTC()
	collaboration := &api.Collaboration{
		NodeID:         rootID,
		CollaboratorID: collaboratorID,
		Role:           string(role),
		CreatedAt:      now,
	}
	if existing, err := s.store.GetCollaboration(ctx, rootID, collaboratorID); err == nil {
		collaboration.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, storage.ErrCollaborationNotFound) {
		return fmt.Errorf("failed to get collaboration: %w", err)
	}
	if !active {
		collaboration.DeletedAt = &now
	}

	if err := s.store.SaveCollaboration(ctx, actor.WorkspaceID, collaboration); err != nil {
		return fmt.Errorf("failed to save collaboration: %w", err)
	}
	s.publish(actor.WorkspaceID, api.SynchronizerCollaborations, "")
	return nil
}

// Items returns up to PageSize items of the partition after the cursor.
func (s *Service) Items(ctx context.Context, user *api.User, input api.SynchronizerInput, cursor string) ([]api.SynchronizerItem, error) {
	var after int64
	if cursor != "" {
		value, err := strconv.ParseInt(cursor, 10, 64)
		if err != nil || value < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCursor, cursor)
		}
		after = value
	}

	if input.Type.IsRootScoped() {
		if _, err := s.collaboration(ctx, user, input.RootID); err != nil {
			return nil, err
		}
	}

	return s.store.ListPartition(ctx, storage.PartitionQuery{
		Type:        input.Type,
		WorkspaceID: user.WorkspaceID,
		RootID:      input.RootID,
		UserID:      user.ID,
		After:       after,
		Limit:       PageSize,
	})
}

// collaboration возвращает активную коллаборацию пользователя на root
func (s *Service) collaboration(ctx context.Context, user *api.User, rootID string) (*api.Collaboration, error) {
	c, err := s.store.GetCollaboration(ctx, rootID, user.ID)
	if err != nil {
		if errors.Is(err, storage.ErrCollaborationNotFound) {
			return nil, fmt.Errorf("%w: %s has no access to %s", ErrForbidden, user.ID, rootID)
		}
		return nil, fmt.Errorf("failed to get collaboration: %w", err)
	}
	if c.DeletedAt != nil {
		return nil, fmt.Errorf("%w: access of %s to %s was revoked", ErrForbidden, user.ID, rootID)
	}
	return c, nil
}

func (s *Service) requireWrite(ctx context.Context, user *api.User, rootID string) error {
	c, err := s.collaboration(ctx, user, rootID)
	if err != nil {
		return err
	}
	if !models.CollaboratorRole(c.Role).CanWrite() {
		return fmt.Errorf("%w: role %s of %s is read only", ErrForbidden, c.Role, user.ID)
	}
	return nil
}

func (s *Service) publish(workspaceID string, partition api.SynchronizerType, rootID string) {
	s.notifier.Publish(realtime.Change{WorkspaceID: workspaceID, Type: partition, RootID: rootID})
}
