package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/internal/crdt"
	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/server/storage"
	"github.com/iudanet/gophsync/pkg/api"
)

func block(id, text string) map[string]any {
	return map[string]any{
		"id":       id,
		"type":     "paragraph",
		"parentId": "root",
		"index":    "a0",
		"content":  []any{map[string]any{"type": "text", "text": text}},
	}
}

func richText(blocks ...map[string]any) map[string]any {
	all := map[string]any{}
	for _, b := range blocks {
		all[b["id"].(string)] = b
	}
	return map[string]any{"type": crdt.RichTextType, "blocks": all}
}

func documentUpdate(t *testing.T, doc *crdt.Document, content map[string]any) models.UpdateDocumentMutationData {
	t.Helper()
	delta, err := doc.Update(content)
	require.NoError(t, err)
	require.NotEmpty(t, delta)
	return models.UpdateDocumentMutationData{
		DocumentID: "page1pg",
		RootID:     testRoot,
		UpdateID:   models.GenerateID(models.IDTypeDocumentUpdate),
		Data:       delta,
	}
}

// documentContent восстанавливает содержимое из снимка и дельт сервера
func documentContent(t *testing.T, store storage.Storage) map[string]any {
	t.Helper()
	snapshot, err := store.GetDocumentSnapshot(context.Background(), "page1pg")
	require.NoError(t, err)
	doc, err := crdt.Merge(snapshot.State, snapshot.Updates, nil, nil)
	require.NoError(t, err)
	content, err := doc.Content()
	require.NoError(t, err)
	return content
}

func blockIDs(content map[string]any) []string {
	blocks, _ := content["blocks"].(map[string]any)
	ids := make([]string, 0, len(blocks))
	for id := range blocks {
		ids = append(ids, id)
	}
	return ids
}

func (f *fixture) createPage(t *testing.T) {
	t.Helper()
	f.createRoot(t)
	require.Equal(t, []api.MutationStatus{api.MutationStatusSuccess},
		f.apply(t, f.owner, createNode(t, "page1pg", models.NodeTypePage, testRoot)))
}

func TestService_UpdateDocumentFromMutation(t *testing.T) {
	f := newFixture(t)
	f.createPage(t)
	ctx := context.Background()

	doc := crdt.New()
	first := documentUpdate(t, doc, richText(block("b1", "hello")))
	require.NoError(t, f.service.UpdateDocumentFromMutation(ctx, f.owner, first))

	// повторная доставка той же дельты ничего не добавляет
	require.NoError(t, f.service.UpdateDocumentFromMutation(ctx, f.owner, first))

	second := documentUpdate(t, doc, richText(block("b1", "hello"), block("b2", "world")))
	require.NoError(t, f.service.UpdateDocumentFromMutation(ctx, f.owner, second))

	items := f.items(t, f.owner, api.SynchronizerDocumentUpdates, testRoot)
	require.Len(t, items, 2)
	var stored api.DocumentUpdate
	require.NoError(t, json.Unmarshal(items[1].Data, &stored))
	assert.Equal(t, second.UpdateID, stored.ID)
	assert.Equal(t, second.Data, stored.Data)
	assert.Equal(t, f.owner.ID, stored.CreatedBy)

	assert.ElementsMatch(t, []string{"b1", "b2"}, blockIDs(documentContent(t, f.store)))
}

func TestService_UpdateDocumentRejects(t *testing.T) {
	f := newFixture(t)
	f.createPage(t)
	ctx := context.Background()

	invalid := documentUpdate(t, crdt.New(), map[string]any{"type": "spreadsheet"})
	err := f.service.UpdateDocumentFromMutation(ctx, f.owner, invalid)
	require.ErrorIs(t, err, ErrInvalidMutation)
	assert.ErrorIs(t, err, crdt.ErrInvalidContent)

	channel := documentUpdate(t, crdt.New(), richText(block("b1", "x")))
	channel.DocumentID = "chan1ch"
	err = f.service.UpdateDocumentFromMutation(ctx, f.owner, channel)
	assert.ErrorIs(t, err, ErrInvalidMutation)

	assert.Empty(t, f.items(t, f.owner, api.SynchronizerDocumentUpdates, testRoot))
}

// conflictingStore возвращает конфликт ревизии на первые conflicts сохранений
type conflictingStore struct {
	storage.Storage
	expected  []int64
	conflicts int
	mu        sync.Mutex
}

func (s *conflictingStore) SaveDocumentUpdate(ctx context.Context, workspaceID string, save *storage.DocumentSave) error {
	s.mu.Lock()
	s.expected = append(s.expected, save.ExpectedRevision)
	if s.conflicts > 0 {
		s.conflicts--
		s.mu.Unlock()
		return storage.ErrRevisionConflict
	}
	s.mu.Unlock()
	return s.Storage.SaveDocumentUpdate(ctx, workspaceID, save)
}

func TestService_UpdateDocumentRetriesOnConflict(t *testing.T) {
	conflicts := &conflictingStore{}
	f := newFixtureWithStore(t, func(s storage.Storage) storage.Storage {
		conflicts.Storage = s
		return conflicts
	})
	f.createPage(t)
	ctx := context.Background()

	doc := crdt.New()
	require.NoError(t, f.service.UpdateDocumentFromMutation(ctx, f.owner, documentUpdate(t, doc, richText(block("b1", "a")))))

	conflicts.conflicts = 2
	update := documentUpdate(t, doc, richText(block("b1", "a"), block("b2", "b")))
	require.NoError(t, f.service.UpdateDocumentFromMutation(ctx, f.owner, update))
	// первая запись на ревизии 0, затем три попытки второй, каждая от прочитанной ревизии документа
	require.Len(t, conflicts.expected, 4)
	assert.Equal(t, conflicts.expected[1], conflicts.expected[3])

	conflicts.conflicts = DocumentRetries
	last := documentUpdate(t, doc, richText(block("b1", "a"), block("b2", "b"), block("b3", "c")))
	err := f.service.UpdateDocumentFromMutation(ctx, f.owner, last)
	assert.ErrorIs(t, err, storage.ErrRevisionConflict)

	assert.ElementsMatch(t, []string{"b1", "b2"}, blockIDs(documentContent(t, f.store)))
}

func TestService_UpdateDocumentConcurrentWriters(t *testing.T) {
	f := newFixture(t)
	f.createPage(t)
	ctx := context.Background()

	base := crdt.New()
	require.NoError(t, f.service.UpdateDocumentFromMutation(ctx, f.owner, documentUpdate(t, base, richText(block("b0", "base")))))

	const writers = 5
	updates := make([]models.UpdateDocumentMutationData, 0, writers)
	want := []string{"b0"}
	for i := range writers {
		doc, err := crdt.Load(base.State())
		require.NoError(t, err)
		id := string(rune('a'+i)) + "1"
		updates = append(updates, documentUpdate(t, doc, richText(block("b0", "base"), block(id, id))))
		want = append(want, id)
	}

	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i, update := range updates {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = f.service.UpdateDocumentFromMutation(ctx, f.owner, update)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.ElementsMatch(t, want, blockIDs(documentContent(t, f.store)))
}

func TestService_UpdateDocumentCompaction(t *testing.T) {
	f := newFixture(t)
	f.createPage(t)
	ctx := context.Background()

	doc := crdt.New()
	blocks := []map[string]any{}
	for i := range CompactionInterval {
		blocks = append(blocks, block("b"+string(rune('A'+i%26))+string(rune('a'+i/26)), "text"))
		require.NoError(t, f.service.UpdateDocumentFromMutation(ctx, f.owner, documentUpdate(t, doc, richText(blocks...))))
	}

	snapshot, err := f.store.GetDocumentSnapshot(ctx, "page1pg")
	require.NoError(t, err)
	assert.NotEmpty(t, snapshot.State)
	assert.Equal(t, snapshot.Revision, snapshot.StateRevision)
	assert.Empty(t, snapshot.Updates)
	assert.Len(t, blockIDs(documentContent(t, f.store)), CompactionInterval)
}
