package boltdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/gophsync/internal/client/storage"
	"github.com/iudanet/gophsync/internal/models"
)

const openTimeout = time.Second

var (
	// BoltDB bucket names
	bucketNodes          = []byte("nodes")
	bucketPendingDeletes = []byte("pending_deletes")
	bucketDocuments      = []byte("documents")
	bucketDocumentStates = []byte("document_states")
	bucketDocumentUpds   = []byte("document_updates")
	bucketMutations      = []byte("mutations")
	bucketCursors        = []byte("cursors")
	bucketCounters       = []byte("node_counters")
	bucketInteractions   = []byte("node_interactions")
	bucketReactions      = []byte("node_reactions")
	bucketCollaborations = []byte("collaborations")
	bucketUsers          = []byte("users")
)

var allBuckets = [][]byte{
	bucketNodes,
	bucketPendingDeletes,
	bucketDocuments,
	bucketDocumentStates,
	bucketDocumentUpds,
	bucketMutations,
	bucketCursors,
	bucketCounters,
	bucketInteractions,
	bucketReactions,
	bucketCollaborations,
	bucketUsers,
}

// keySeparator разделяет части составных ключей (узел/участник/...)
const keySeparator = "/"

// Storage represents BoltDB storage of one workspace replica
type Storage struct {
	db *bbolt.DB
}

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	// файл реплики держит один процесс, второй получает ошибку вместо ожидания
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	storage := &Storage{db: db}

	if err := storage.initBuckets(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return storage, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

func compositeKey(parts ...string) []byte {
	var buf bytes.Buffer
	for i, part := range parts {
		if i > 0 {
			buf.WriteString(keySeparator)
		}
		buf.WriteString(part)
	}
	return buf.Bytes()
}

func prefixKey(parts ...string) []byte {
	return append(compositeKey(parts...), keySeparator...)
}

// getJSON возвращает nil, nil если ключ отсутствует
func getJSON[T any](bucket *bbolt.Bucket, key []byte) (*T, error) {
	data := bucket.Get(key)
	if data == nil {
		return nil, nil
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return &value, nil
}

func putJSON(bucket *bbolt.Bucket, key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := bucket.Put(key, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// listPrefix упорядоченный скан по префиксу ключа
func listPrefix[T any](bucket *bbolt.Bucket, prefix []byte) ([]*T, error) {
	var result []*T
	c := bucket.Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		var value T
		if err := json.Unmarshal(v, &value); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", k, err)
		}
		result = append(result, &value)
	}
	return result, nil
}

func deletePrefix(bucket *bbolt.Bucket, prefix []byte) error {
	var keys [][]byte
	c := bucket.Cursor()
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		keys = append(keys, bytes.Clone(k))
	}
	for _, k := range keys {
		if err := bucket.Delete(k); err != nil {
			return fmt.Errorf("failed to delete %s: %w", k, err)
		}
	}
	return nil
}

// putMutation сохраняет мутацию в той же транзакции, что и оптимистичная запись
func putMutation(tx *bbolt.Tx, mutation *models.Mutation) error {
	if mutation == nil {
		return nil
	}
	return putJSON(tx.Bucket(bucketMutations), []byte(mutation.ID), mutation)
}

var (
	_ storage.CursorStorage        = (*Storage)(nil)
	_ storage.MutationStorage      = (*Storage)(nil)
	_ storage.NodeStorage          = (*Storage)(nil)
	_ storage.DocumentStorage      = (*Storage)(nil)
	_ storage.ReactionStorage      = (*Storage)(nil)
	_ storage.InteractionStorage   = (*Storage)(nil)
	_ storage.CounterStorage       = (*Storage)(nil)
	_ storage.CollaborationStorage = (*Storage)(nil)
	_ storage.UserStorage          = (*Storage)(nil)
)
