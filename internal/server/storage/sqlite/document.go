package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/gophsync/internal/server/storage"
)

// GetDocumentSnapshot returns base state and updates after it
func (s *Storage) GetDocumentSnapshot(ctx context.Context, documentID string) (*storage.DocumentSnapshot, error) {
	snapshot := &storage.DocumentSnapshot{}

	err := s.db.QueryRowContext(ctx, `SELECT revision FROM documents WHERE id = ?`, documentID).Scan(&snapshot.Revision)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `SELECT state, revision FROM document_states WHERE id = ?`, documentID).
		Scan(&snapshot.State, &snapshot.StateRevision)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get document state: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT data FROM document_updates
		WHERE document_id = ? AND revision > ?
		ORDER BY revision
	`, documentID, snapshot.StateRevision)
	if err != nil {
		return nil, fmt.Errorf("failed to query document updates: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan document update: %w", err)
		}
		snapshot.Updates = append(snapshot.Updates, data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document updates: %w", err)
	}

	return snapshot, nil
}

// DocumentUpdateExists reports whether update with the id was already stored
func (s *Storage) DocumentUpdateExists(ctx context.Context, updateID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM document_updates WHERE id = ?)`, updateID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check document update: %w", err)
	}
	return exists, nil
}

// SaveDocumentUpdate appends the update and replaces document content
func (s *Storage) SaveDocumentUpdate(ctx context.Context, workspaceID string, save *storage.DocumentSave) error {
	update := save.Update

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var current int64
		err := tx.QueryRowContext(ctx, `SELECT revision FROM documents WHERE id = ?`, update.DocumentID).Scan(&current)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to get document: %w", err)
		}
		if current != save.ExpectedRevision {
			return fmt.Errorf("%w: document %s at %d, expected %d",
				storage.ErrRevisionConflict, update.DocumentID, current, save.ExpectedRevision)
		}

		revision, err := nextRevision(ctx, tx, workspaceID)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO document_updates (id, document_id, workspace_id, root_id, data, created_at, created_by, revision)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			update.ID,
			update.DocumentID,
			workspaceID,
			update.RootID,
			update.Data,
			update.CreatedAt,
			update.CreatedBy,
			revision,
		); err != nil {
			return fmt.Errorf("failed to insert document update: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO documents (id, workspace_id, root_id, content, created_at, updated_at, revision)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				content = excluded.content,
				updated_at = excluded.updated_at,
				revision = excluded.revision
		`,
			update.DocumentID,
			workspaceID,
			update.RootID,
			string(save.Content),
			update.CreatedAt,
			update.CreatedAt,
			revision,
		); err != nil {
			return fmt.Errorf("failed to save document: %w", err)
		}

		if save.State != nil {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO document_states (id, state, revision) VALUES (?, ?, ?)
				ON CONFLICT (id) DO UPDATE SET state = excluded.state, revision = excluded.revision
			`, update.DocumentID, save.State, revision); err != nil {
				return fmt.Errorf("failed to save document state: %w", err)
			}
		}

		update.Revision = revision
		return nil
	})
}
