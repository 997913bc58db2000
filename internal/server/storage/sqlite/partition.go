package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/iudanet/gophsync/internal/server/storage"
	"github.com/iudanet/gophsync/pkg/api"
)

// scanItem читает строку партиции и возвращает элемент потока с его ревизией
type scanItem func(row rowScanner) (any, int64, error)

// ListPartition returns items with revision greater than After, ordered by revision
func (s *Storage) ListPartition(ctx context.Context, q storage.PartitionQuery) ([]api.SynchronizerItem, error) {
	switch q.Type {
	case api.SynchronizerUsers:
		return s.listItems(ctx, `
			SELECT id, workspace_id, email, name, role, created_at, revision
			FROM users WHERE workspace_id = ? AND revision > ?
			ORDER BY revision LIMIT ?
		`, scanUserItem, q.WorkspaceID, q.After, q.Limit)

	case api.SynchronizerCollaborations:
		return s.listItems(ctx, `
			SELECT node_id, collaborator_id, role, created_at, deleted_at, revision
			FROM collaborations WHERE workspace_id = ? AND collaborator_id = ? AND revision > ?
			ORDER BY revision LIMIT ?
		`, scanCollaborationItem, q.WorkspaceID, q.UserID, q.After, q.Limit)

	case api.SynchronizerNodeUpdates:
		return s.listItems(ctx, `
			SELECT `+nodeColumns+`
			FROM nodes WHERE root_id = ? AND revision > ?
			ORDER BY revision LIMIT ?
		`, scanNodeItem, q.RootID, q.After, q.Limit)

	case api.SynchronizerNodeReactions:
		return s.listItems(ctx, `
			SELECT node_id, collaborator_id, reaction, root_id, created_at, deleted_at, revision
			FROM node_reactions WHERE root_id = ? AND revision > ?
			ORDER BY revision LIMIT ?
		`, scanReactionItem, q.RootID, q.After, q.Limit)

	case api.SynchronizerNodeInteractions:
		return s.listItems(ctx, `
			SELECT node_id, collaborator_id, root_id, first_seen_at, last_seen_at, first_opened_at, last_opened_at, revision
			FROM node_interactions WHERE root_id = ? AND revision > ?
			ORDER BY revision LIMIT ?
		`, scanInteractionItem, q.RootID, q.After, q.Limit)

	case api.SynchronizerNodeTombstones:
		return s.listItems(ctx, `
			SELECT id, root_id, deleted_at, deleted_by, revision
			FROM node_tombstones WHERE root_id = ? AND revision > ?
			ORDER BY revision LIMIT ?
		`, scanTombstoneItem, q.RootID, q.After, q.Limit)

	case api.SynchronizerDocumentUpdates:
		return s.listItems(ctx, `
			SELECT id, document_id, root_id, data, created_at, created_by, revision
			FROM document_updates WHERE root_id = ? AND revision > ?
			ORDER BY revision LIMIT ?
		`, scanDocumentUpdateItem, q.RootID, q.After, q.Limit)

	default:
		return nil, fmt.Errorf("%w: %s", storage.ErrUnknownPartition, q.Type)
	}
}

func (s *Storage) listItems(ctx context.Context, query string, scan scanItem, args ...any) ([]api.SynchronizerItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query partition: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	items := make([]api.SynchronizerItem, 0)
	for rows.Next() {
		value, revision, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan partition row: %w", err)
		}
		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal partition item: %w", err)
		}
		items = append(items, api.SynchronizerItem{
			Cursor: strconv.FormatInt(revision, 10),
			Data:   data,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating partition rows: %w", err)
	}

	return items, nil
}

func scanUserItem(row rowScanner) (any, int64, error) {
	var u api.User
	err := row.Scan(&u.ID, &u.WorkspaceID, &u.Email, &u.Name, &u.Role, &u.CreatedAt, &u.Revision)
	return u, u.Revision, err
}

func scanCollaborationItem(row rowScanner) (any, int64, error) {
	var c api.Collaboration
	var deletedAt sql.NullTime
	err := row.Scan(&c.NodeID, &c.CollaboratorID, &c.Role, &c.CreatedAt, &deletedAt, &c.Revision)
	c.DeletedAt = nullTime(&deletedAt)
	return c, c.Revision, err
}

func scanNodeItem(row rowScanner) (any, int64, error) {
	node, err := scanNode(row)
	if err != nil {
		return nil, 0, err
	}
	return node, node.Revision, nil
}

func scanReactionItem(row rowScanner) (any, int64, error) {
	var r api.NodeReaction
	var deletedAt sql.NullTime
	err := row.Scan(&r.NodeID, &r.CollaboratorID, &r.Reaction, &r.RootID, &r.CreatedAt, &deletedAt, &r.Revision)
	r.DeletedAt = nullTime(&deletedAt)
	return r, r.Revision, err
}

func scanInteractionItem(row rowScanner) (any, int64, error) {
	var i api.NodeInteraction
	var firstSeen, lastSeen, firstOpened, lastOpened sql.NullTime
	err := row.Scan(&i.NodeID, &i.CollaboratorID, &i.RootID, &firstSeen, &lastSeen, &firstOpened, &lastOpened, &i.Revision)
	i.FirstSeenAt = nullTime(&firstSeen)
	i.LastSeenAt = nullTime(&lastSeen)
	i.FirstOpenedAt = nullTime(&firstOpened)
	i.LastOpenedAt = nullTime(&lastOpened)
	return i, i.Revision, err
}

func scanTombstoneItem(row rowScanner) (any, int64, error) {
	var t api.NodeTombstone
	err := row.Scan(&t.ID, &t.RootID, &t.DeletedAt, &t.DeletedBy, &t.Revision)
	return t, t.Revision, err
}

func scanDocumentUpdateItem(row rowScanner) (any, int64, error) {
	var u api.DocumentUpdate
	err := row.Scan(&u.ID, &u.DocumentID, &u.RootID, &u.Data, &u.CreatedAt, &u.CreatedBy, &u.Revision)
	return u, u.Revision, err
}
