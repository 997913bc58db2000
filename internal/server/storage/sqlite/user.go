package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/gophsync/internal/server/storage"
	"github.com/iudanet/gophsync/pkg/api"
)

// CreateUser creates a new user bound to the account
func (s *Storage) CreateUser(ctx context.Context, accountID string, user *api.User) error {
	query := `
		INSERT INTO users (id, workspace_id, account_id, email, name, role, created_at, revision)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	return s.withTx(ctx, func(tx *sql.Tx) error {
		revision, err := nextRevision(ctx, tx, user.WorkspaceID)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, query,
			user.ID,
			user.WorkspaceID,
			accountID,
			user.Email,
			user.Name,
			user.Role,
			user.CreatedAt,
			revision,
		)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return storage.ErrUserAlreadyExists
			}
			return fmt.Errorf("failed to insert user: %w", err)
		}

		user.Revision = revision
		return nil
	})
}

// GetUser retrieves user by ID within the workspace
func (s *Storage) GetUser(ctx context.Context, workspaceID, userID string) (*api.User, error) {
	query := `
		SELECT id, workspace_id, email, name, role, created_at, revision
		FROM users
		WHERE workspace_id = ? AND id = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, workspaceID, userID))
}

// GetUserByAccount retrieves the user the account owns in the workspace
func (s *Storage) GetUserByAccount(ctx context.Context, workspaceID, accountID string) (*api.User, error) {
	query := `
		SELECT id, workspace_id, email, name, role, created_at, revision
		FROM users
		WHERE workspace_id = ? AND account_id = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, workspaceID, accountID))
}

func (s *Storage) scanUser(row *sql.Row) (*api.User, error) {
	user := &api.User{}
	err := row.Scan(
		&user.ID,
		&user.WorkspaceID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.CreatedAt,
		&user.Revision,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetCollaboration retrieves collaboration of the user on the root node
func (s *Storage) GetCollaboration(ctx context.Context, nodeID, collaboratorID string) (*api.Collaboration, error) {
	query := `
		SELECT node_id, collaborator_id, role, created_at, deleted_at, revision
		FROM collaborations
		WHERE node_id = ? AND collaborator_id = ?
	`

	c := &api.Collaboration{}
	var deletedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, nodeID, collaboratorID).Scan(
		&c.NodeID,
		&c.CollaboratorID,
		&c.Role,
		&c.CreatedAt,
		&deletedAt,
		&c.Revision,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrCollaborationNotFound
		}
		return nil, fmt.Errorf("failed to get collaboration: %w", err)
	}
	c.DeletedAt = nullTime(&deletedAt)
	return c, nil
}

// SaveCollaboration creates or replaces collaboration and assigns a new revision
func (s *Storage) SaveCollaboration(ctx context.Context, workspaceID string, collaboration *api.Collaboration) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return saveCollaboration(ctx, tx, workspaceID, collaboration)
	})
}

func saveCollaboration(ctx context.Context, tx *sql.Tx, workspaceID string, c *api.Collaboration) error {
	query := `
		INSERT INTO collaborations (node_id, collaborator_id, workspace_id, role, created_at, deleted_at, revision)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (node_id, collaborator_id) DO UPDATE SET
			role = excluded.role,
			deleted_at = excluded.deleted_at,
			revision = excluded.revision
	`

	revision, err := nextRevision(ctx, tx, workspaceID)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, query,
		c.NodeID,
		c.CollaboratorID,
		workspaceID,
		c.Role,
		c.CreatedAt,
		c.DeletedAt,
		revision,
	); err != nil {
		return fmt.Errorf("failed to save collaboration: %w", err)
	}

	c.Revision = revision
	return nil
}
