package storage

import "context"

// CursorStorage хранит курсоры синхронизаторов по ключу партиции
type CursorStorage interface {
	// GetCursor returns the stored cursor or empty string if none was persisted
	GetCursor(ctx context.Context, key string) (string, error)

	// SetCursor persists the cursor of the last applied item
	SetCursor(ctx context.Context, key, value string) error

	// DeleteCursor removes the cursor when the partition is torn down
	DeleteCursor(ctx context.Context, key string) error

	// ListCursors returns all cursors keyed by partition key
	ListCursors(ctx context.Context) (map[string]string, error)
}
