package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iudanet/gophsync/internal/server/storage"
	"github.com/iudanet/gophsync/pkg/api"
)

const nodeColumns = `id, type, parent_id, root_id, attributes, refs, created_at, created_by, updated_at, updated_by, revision`

type rowScanner interface {
	Scan(dest ...any) error
}

// GetNode retrieves node by ID
func (s *Storage) GetNode(ctx context.Context, nodeID string) (*api.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes WHERE id = ?`

	node, err := scanNode(s.db.QueryRowContext(ctx, query, nodeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNodeNotFound
		}
		return nil, fmt.Errorf("failed to get node: %w", err)
	}
	return node, nil
}

// CreateNode inserts the node and optionally its owner collaboration
func (s *Storage) CreateNode(ctx context.Context, workspaceID string, node *api.Node, owner *api.Collaboration) (bool, error) {
	query := `
		INSERT INTO nodes (id, workspace_id, root_id, parent_id, type, attributes, refs, created_at, created_by, revision)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`

	refs, err := json.Marshal(references(node.References))
	if err != nil {
		return false, fmt.Errorf("failed to marshal references: %w", err)
	}

	created := false
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		revision, err := nextRevision(ctx, tx, workspaceID)
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, query,
			node.ID,
			workspaceID,
			node.RootID,
			node.ParentID,
			node.Type,
			string(node.Attributes),
			string(refs),
			node.CreatedAt,
			node.CreatedBy,
			revision,
		)
		if err != nil {
			return fmt.Errorf("failed to insert node: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if rows == 0 {
			return nil
		}

		created = true
		node.Revision = revision
		if owner != nil {
			return saveCollaboration(ctx, tx, workspaceID, owner)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// UpdateNode replaces attributes and references of an existing node
func (s *Storage) UpdateNode(ctx context.Context, workspaceID string, node *api.Node) error {
	query := `
		UPDATE nodes
		SET attributes = ?, refs = ?, updated_at = ?, updated_by = ?, revision = ?
		WHERE id = ?
	`

	refs, err := json.Marshal(references(node.References))
	if err != nil {
		return fmt.Errorf("failed to marshal references: %w", err)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		revision, err := nextRevision(ctx, tx, workspaceID)
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, query,
			string(node.Attributes),
			string(refs),
			node.UpdatedAt,
			node.UpdatedBy,
			revision,
			node.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update node: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if rows == 0 {
			return storage.ErrNodeNotFound
		}

		node.Revision = revision
		return nil
	})
}

// DeleteNode removes node with dependent rows and records the tombstone
func (s *Storage) DeleteNode(ctx context.Context, workspaceID string, tombstone *api.NodeTombstone) (bool, error) {
	cleanup := []string{
		`DELETE FROM node_reactions WHERE node_id = ?`,
		`DELETE FROM node_interactions WHERE node_id = ?`,
		`DELETE FROM document_updates WHERE document_id = ?`,
		`DELETE FROM document_states WHERE id = ?`,
		`DELETE FROM documents WHERE id = ?`,
	}

	deleted := false
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var rootID string
		err := tx.QueryRowContext(ctx, `SELECT root_id FROM nodes WHERE id = ?`, tombstone.ID).Scan(&rootID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("failed to get node: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, tombstone.ID); err != nil {
			return fmt.Errorf("failed to delete node: %w", err)
		}
		for _, query := range cleanup {
			if _, err := tx.ExecContext(ctx, query, tombstone.ID); err != nil {
				return fmt.Errorf("failed to delete node data: %w", err)
			}
		}

		revision, err := nextRevision(ctx, tx, workspaceID)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO node_tombstones (id, workspace_id, root_id, deleted_at, deleted_by, revision)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				deleted_at = excluded.deleted_at,
				deleted_by = excluded.deleted_by,
				revision = excluded.revision
		`,
			tombstone.ID,
			workspaceID,
			rootID,
			tombstone.DeletedAt,
			tombstone.DeletedBy,
			revision,
		)
		if err != nil {
			return fmt.Errorf("failed to insert tombstone: %w", err)
		}

		tombstone.RootID = rootID
		tombstone.Revision = revision
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func scanNode(row rowScanner) (*api.Node, error) {
	node := &api.Node{}
	var attributes, refs string
	var updatedAt sql.NullTime

	if err := row.Scan(
		&node.ID,
		&node.Type,
		&node.ParentID,
		&node.RootID,
		&attributes,
		&refs,
		&node.CreatedAt,
		&node.CreatedBy,
		&updatedAt,
		&node.UpdatedBy,
		&node.Revision,
	); err != nil {
		return nil, err
	}

	node.Attributes = json.RawMessage(attributes)
	node.UpdatedAt = nullTime(&updatedAt)
	if err := json.Unmarshal([]byte(refs), &node.References); err != nil {
		return nil, fmt.Errorf("failed to unmarshal references: %w", err)
	}
	if len(node.References) == 0 {
		node.References = nil
	}
	return node, nil
}

func references(refs []api.NodeReference) []api.NodeReference {
	if refs == nil {
		return []api.NodeReference{}
	}
	return refs
}
