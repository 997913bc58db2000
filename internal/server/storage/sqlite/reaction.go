package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/gophsync/pkg/api"
)

// CreateReaction stores active reaction
func (s *Storage) CreateReaction(ctx context.Context, workspaceID string, reaction *api.NodeReaction) (bool, error) {
	created := false
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		active, exists, err := reactionState(ctx, tx, reaction)
		if err != nil {
			return err
		}
		if exists && active {
			return nil
		}

		revision, err := nextRevision(ctx, tx, workspaceID)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO node_reactions (node_id, collaborator_id, reaction, workspace_id, root_id, created_at, deleted_at, revision)
			VALUES (?, ?, ?, ?, ?, ?, NULL, ?)
			ON CONFLICT (node_id, collaborator_id, reaction) DO UPDATE SET
				created_at = excluded.created_at,
				deleted_at = NULL,
				revision = excluded.revision
		`,
			reaction.NodeID,
			reaction.CollaboratorID,
			reaction.Reaction,
			workspaceID,
			reaction.RootID,
			reaction.CreatedAt,
			revision,
		)
		if err != nil {
			return fmt.Errorf("failed to save reaction: %w", err)
		}

		reaction.Revision = revision
		reaction.DeletedAt = nil
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// DeleteReaction marks reaction as deleted
func (s *Storage) DeleteReaction(ctx context.Context, workspaceID string, reaction *api.NodeReaction, deletedAt time.Time) (bool, error) {
	deleted := false
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		active, exists, err := reactionState(ctx, tx, reaction)
		if err != nil {
			return err
		}
		if !exists || !active {
			return nil
		}

		revision, err := nextRevision(ctx, tx, workspaceID)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE node_reactions SET deleted_at = ?, revision = ?
			WHERE node_id = ? AND collaborator_id = ? AND reaction = ?
		`,
			deletedAt,
			revision,
			reaction.NodeID,
			reaction.CollaboratorID,
			reaction.Reaction,
		)
		if err != nil {
			return fmt.Errorf("failed to delete reaction: %w", err)
		}

		reaction.Revision = revision
		reaction.DeletedAt = &deletedAt
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func reactionState(ctx context.Context, tx *sql.Tx, reaction *api.NodeReaction) (active, exists bool, err error) {
	var deletedAt sql.NullTime
	err = tx.QueryRowContext(ctx, `
		SELECT deleted_at FROM node_reactions
		WHERE node_id = ? AND collaborator_id = ? AND reaction = ?
	`, reaction.NodeID, reaction.CollaboratorID, reaction.Reaction).Scan(&deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("failed to get reaction: %w", err)
	}
	return !deletedAt.Valid, true, nil
}
