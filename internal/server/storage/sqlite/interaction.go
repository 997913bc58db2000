package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/gophsync/internal/models"
)

// UpdateInteraction applies fn to the stored interaction in one transaction
func (s *Storage) UpdateInteraction(ctx context.Context, workspaceID, rootID, nodeID, collaboratorID string,
	fn func(interaction *models.NodeInteraction) bool) (bool, error) {
	changed := false
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		interaction := &models.NodeInteraction{
			NodeID:         nodeID,
			CollaboratorID: collaboratorID,
			RootID:         rootID,
		}

		var firstSeen, lastSeen, firstOpened, lastOpened sql.NullTime
		err := tx.QueryRowContext(ctx, `
			SELECT first_seen_at, last_seen_at, first_opened_at, last_opened_at, revision
			FROM node_interactions
			WHERE node_id = ? AND collaborator_id = ?
		`, nodeID, collaboratorID).Scan(&firstSeen, &lastSeen, &firstOpened, &lastOpened, &interaction.Revision)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to get interaction: %w", err)
		}
		interaction.FirstSeenAt = nullTime(&firstSeen)
		interaction.LastSeenAt = nullTime(&lastSeen)
		interaction.FirstOpenedAt = nullTime(&firstOpened)
		interaction.LastOpenedAt = nullTime(&lastOpened)

		if !fn(interaction) {
			return nil
		}

		revision, err := nextRevision(ctx, tx, workspaceID)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO node_interactions (node_id, collaborator_id, workspace_id, root_id,
				first_seen_at, last_seen_at, first_opened_at, last_opened_at, revision)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (node_id, collaborator_id) DO UPDATE SET
				first_seen_at = excluded.first_seen_at,
				last_seen_at = excluded.last_seen_at,
				first_opened_at = excluded.first_opened_at,
				last_opened_at = excluded.last_opened_at,
				revision = excluded.revision
		`,
			nodeID,
			collaboratorID,
			workspaceID,
			rootID,
			interaction.FirstSeenAt,
			interaction.LastSeenAt,
			interaction.FirstOpenedAt,
			interaction.LastOpenedAt,
			revision,
		)
		if err != nil {
			return fmt.Errorf("failed to save interaction: %w", err)
		}

		changed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}
