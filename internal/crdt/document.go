// Package crdt оборачивает automerge документ: все изменения содержимого
// выражаются как инкрементальные дельты, а не перезапись документа целиком.
package crdt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/automerge/automerge-go"
)

// ErrInvalidContent содержимое документа не прошло проверку схемы
var ErrInvalidContent = errors.New("invalid document content")

// Document представляет CRDT документ узла.
// Не потокобезопасен: вызывающий код сериализует доступ к одному документу.
type Document struct {
	doc *automerge.Doc
}

// New создает пустой документ
func New() *Document {
	return &Document{doc: automerge.New()}
}

// Load восстанавливает документ из сохраненного состояния.
// Пустое состояние означает новый документ.
func Load(state []byte) (*Document, error) {
	if len(state) == 0 {
		return New(), nil
	}
	doc, err := automerge.Load(state)
	if err != nil {
		return nil, fmt.Errorf("failed to load document state: %w", err)
	}
	return &Document{doc: doc}, nil
}

// ApplyUpdate применяет дельту. Повторное применение той же дельты ничего не меняет.
func (d *Document) ApplyUpdate(update []byte) error {
	if len(update) == 0 {
		return nil
	}
	if err := d.doc.LoadIncremental(update); err != nil {
		return fmt.Errorf("failed to apply document update: %w", err)
	}
	return nil
}

// Update приводит содержимое документа к content и возвращает дельту изменений.
// Изменяются только отличающиеся поля, поэтому параллельные правки разных
// полей сливаются без потерь. Возвращает nil, если изменений нет.
func (d *Document) Update(content map[string]any) ([]byte, error) {
	current, err := d.Content()
	if err != nil {
		return nil, err
	}

	// сбрасываем курсор инкрементального сохранения на текущие heads
	_ = d.doc.SaveIncremental()

	changed, err := d.patchMap(nil, current, content)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, nil
	}

	if _, err := d.doc.Commit("update"); err != nil {
		return nil, fmt.Errorf("failed to commit document: %w", err)
	}
	return d.doc.SaveIncremental(), nil
}

// Content возвращает материализованное содержимое документа
func (d *Document) Content() (map[string]any, error) {
	value, ok := d.doc.Root().Interface().(map[string]any)
	if !ok || value == nil {
		return map[string]any{}, nil
	}
	return value, nil
}

// ContentJSON возвращает содержимое в виде JSON
func (d *Document) ContentJSON() (json.RawMessage, error) {
	content, err := d.Content()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document content: %w", err)
	}
	return data, nil
}

// State возвращает полное состояние документа (снимок для compaction)
func (d *Document) State() []byte {
	return d.doc.Save()
}

func (d *Document) patchMap(path []any, current, next map[string]any) (bool, error) {
	changed := false

	for _, key := range slices.Sorted(maps.Keys(current)) {
		if _, ok := next[key]; ok {
			continue
		}
		if err := d.doc.Path(append(slices.Clone(path), key)...).Delete(); err != nil {
			return false, fmt.Errorf("failed to delete %v: %w", append(path, key), err)
		}
		changed = true
	}

	for _, key := range slices.Sorted(maps.Keys(next)) {
		keyPath := append(slices.Clone(path), key)
		nextValue := next[key]
		currentValue, exists := current[key]

		nextMap, nextIsMap := nextValue.(map[string]any)
		currentMap, currentIsMap := currentValue.(map[string]any)
		if exists && nextIsMap && currentIsMap {
			nested, err := d.patchMap(keyPath, currentMap, nextMap)
			if err != nil {
				return false, err
			}
			changed = changed || nested
			continue
		}

		if exists && jsonEqual(currentValue, nextValue) {
			continue
		}
		if err := d.doc.Path(keyPath...).Set(nextValue); err != nil {
			return false, fmt.Errorf("failed to set %v: %w", keyPath, err)
		}
		changed = true
	}

	return changed, nil
}

// ContentEqual сравнивает материализованное содержимое по значению
func ContentEqual(a, b json.RawMessage) bool {
	var left, right any
	if err := json.Unmarshal(a, &left); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &right); err != nil {
		return false
	}
	return jsonEqual(left, right)
}

func jsonEqual(a, b any) bool {
	left, err := json.Marshal(a)
	if err != nil {
		return false
	}
	right, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(left, right)
}
