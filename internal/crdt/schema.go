package crdt

import (
	"fmt"

	"github.com/iudanet/gophsync/internal/models"
)

// Schema проверяет материализованное содержимое документа
type Schema interface {
	Validate(content map[string]any) error
}

// SchemaFunc адаптер функции к Schema
type SchemaFunc func(content map[string]any) error

// Validate calls f(content).
func (f SchemaFunc) Validate(content map[string]any) error {
	return f(content)
}

// RichTextType значение поля type у документов страниц и сообщений
const RichTextType = "rich_text"

// SchemaFor returns the content schema of the node type.
// Типы без документа схемы не имеют.
func SchemaFor(nodeType models.NodeType) (Schema, bool) {
	if !nodeType.HasDocument() {
		return nil, false
	}
	return SchemaFunc(validateRichText), true
}

// validateRichText: {"type":"rich_text","blocks":{<id>:{"id","type","parentId","index"?, "content"?}}}
func validateRichText(content map[string]any) error {
	if len(content) == 0 {
		// пустой документ допустим
		return nil
	}

	if t, _ := content["type"].(string); t != RichTextType {
		return fmt.Errorf("%w: type must be %q", ErrInvalidContent, RichTextType)
	}

	rawBlocks, ok := content["blocks"]
	if !ok {
		return nil
	}
	blocks, ok := rawBlocks.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: blocks must be an object", ErrInvalidContent)
	}

	for id, raw := range blocks {
		block, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: block %s must be an object", ErrInvalidContent, id)
		}
		if blockID, _ := block["id"].(string); blockID != id {
			return fmt.Errorf("%w: block %s has mismatched id", ErrInvalidContent, id)
		}
		if blockType, _ := block["type"].(string); blockType == "" {
			return fmt.Errorf("%w: block %s has no type", ErrInvalidContent, id)
		}
		if _, ok := block["parentId"].(string); !ok {
			return fmt.Errorf("%w: block %s has no parentId", ErrInvalidContent, id)
		}
		if index, exists := block["index"]; exists {
			if _, ok := index.(string); !ok {
				return fmt.Errorf("%w: block %s index must be a string", ErrInvalidContent, id)
			}
		}
		if err := validateLeaves(id, block["content"]); err != nil {
			return err
		}
	}
	return nil
}

func validateLeaves(blockID string, raw any) error {
	if raw == nil {
		return nil
	}
	leaves, ok := raw.([]any)
	if !ok {
		return fmt.Errorf("%w: block %s content must be a list", ErrInvalidContent, blockID)
	}
	for i, rawLeaf := range leaves {
		leaf, ok := rawLeaf.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: block %s leaf %d must be an object", ErrInvalidContent, blockID, i)
		}
		if leafType, _ := leaf["type"].(string); leafType == "" {
			return fmt.Errorf("%w: block %s leaf %d has no type", ErrInvalidContent, blockID, i)
		}
		if text, exists := leaf["text"]; exists {
			if _, ok := text.(string); !ok {
				return fmt.Errorf("%w: block %s leaf %d text must be a string", ErrInvalidContent, blockID, i)
			}
		}
	}
	return nil
}
