package crdt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/internal/models"
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
	return map[string]any{"type": RichTextType, "blocks": all}
}

// baseState возвращает состояние документа с одним блоком
func baseState(t *testing.T) []byte {
	t.Helper()
	doc := New()
	_, err := doc.Update(richText(block("b0", "base")))
	require.NoError(t, err)
	return doc.State()
}

func TestDocument_UpdateAndContent(t *testing.T) {
	doc := New()

	delta, err := doc.Update(richText(block("b1", "hello")))
	require.NoError(t, err)
	assert.NotEmpty(t, delta)

	content, err := doc.ContentJSON()
	require.NoError(t, err)
	expected, err := json.Marshal(richText(block("b1", "hello")))
	require.NoError(t, err)
	assert.True(t, ContentEqual(expected, content))

	// без изменений дельта пустая
	delta, err = doc.Update(richText(block("b1", "hello")))
	require.NoError(t, err)
	assert.Nil(t, delta)
}

func TestDocument_RoundTrip(t *testing.T) {
	source := New()
	first, err := source.Update(richText(block("b1", "one")))
	require.NoError(t, err)
	second, err := source.Update(richText(block("b1", "one"), block("b2", "two")))
	require.NoError(t, err)

	replica := New()
	require.NoError(t, replica.ApplyUpdate(first))
	require.NoError(t, replica.ApplyUpdate(second))
	// повторное применение идемпотентно
	require.NoError(t, replica.ApplyUpdate(second))

	want, err := source.ContentJSON()
	require.NoError(t, err)
	got, err := replica.ContentJSON()
	require.NoError(t, err)
	assert.True(t, ContentEqual(want, got))

	restored, err := Load(source.State())
	require.NoError(t, err)
	got, err = restored.ContentJSON()
	require.NoError(t, err)
	assert.True(t, ContentEqual(want, got))
}

func TestDocument_ConcurrentUpdatesCommute(t *testing.T) {
	state := baseState(t)

	alice, err := Load(state)
	require.NoError(t, err)
	aliceDelta, err := alice.Update(richText(block("b0", "base"), block("a1", "from alice")))
	require.NoError(t, err)

	bob, err := Load(state)
	require.NoError(t, err)
	bobDelta, err := bob.Update(richText(block("b0", "base"), block("b1", "from bob")))
	require.NoError(t, err)

	forward, err := Merge(state, [][]byte{aliceDelta}, bobDelta, nil)
	require.NoError(t, err)
	backward, err := Merge(state, [][]byte{bobDelta}, aliceDelta, nil)
	require.NoError(t, err)

	forwardJSON, err := forward.ContentJSON()
	require.NoError(t, err)
	backwardJSON, err := backward.ContentJSON()
	require.NoError(t, err)
	assert.True(t, ContentEqual(forwardJSON, backwardJSON))

	content, err := forward.Content()
	require.NoError(t, err)
	blocks := content["blocks"].(map[string]any)
	assert.Contains(t, blocks, "a1")
	assert.Contains(t, blocks, "b1")
	assert.Contains(t, blocks, "b0")
}

func TestMerge_RejectsInvalidContent(t *testing.T) {
	state := baseState(t)
	schema, ok := SchemaFor(models.NodeTypePage)
	require.True(t, ok)

	doc, err := Load(state)
	require.NoError(t, err)
	bad := richText(block("b0", "base"))
	bad["blocks"].(map[string]any)["x"] = map[string]any{"id": "y", "type": "paragraph", "parentId": "root"}
	delta, err := doc.Update(bad)
	require.NoError(t, err)

	_, err = Merge(state, nil, delta, schema)
	assert.ErrorIs(t, err, ErrInvalidContent)
}

func TestSchemaFor(t *testing.T) {
	_, ok := SchemaFor(models.NodeTypeChannel)
	assert.False(t, ok)

	schema, ok := SchemaFor(models.NodeTypeMessage)
	require.True(t, ok)

	tests := []struct {
		content map[string]any
		name    string
		wantErr bool
	}{
		{name: "empty", content: map[string]any{}},
		{name: "valid", content: richText(block("b1", "x"))},
		{name: "wrong type", content: map[string]any{"type": "markdown"}, wantErr: true},
		{name: "blocks not object", content: map[string]any{"type": RichTextType, "blocks": []any{}}, wantErr: true},
		{
			name: "block without parent",
			content: map[string]any{"type": RichTextType, "blocks": map[string]any{
				"b1": map[string]any{"id": "b1", "type": "paragraph"},
			}},
			wantErr: true,
		},
		{
			name: "leaf with numeric text",
			content: map[string]any{"type": RichTextType, "blocks": map[string]any{
				"b1": map[string]any{"id": "b1", "type": "paragraph", "parentId": "root",
					"content": []any{map[string]any{"type": "text", "text": 1.0}}},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := schema.Validate(tt.content)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidContent)
				return
			}
			assert.NoError(t, err)
		})
	}
}
