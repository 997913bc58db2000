package crdt

import "fmt"

// Merge загружает базовое состояние, последовательно применяет сохраненные
// дельты и затем входящую. Результат проверяется схемой; при ошибке
// возвращается ErrInvalidContent и вызывающий код ничего не сохраняет.
func Merge(state []byte, updates [][]byte, incoming []byte, schema Schema) (*Document, error) {
	doc, err := Load(state)
	if err != nil {
		return nil, err
	}
	for i, update := range updates {
		if err := doc.ApplyUpdate(update); err != nil {
			return nil, fmt.Errorf("failed to replay update %d: %w", i, err)
		}
	}
	if err := doc.ApplyUpdate(incoming); err != nil {
		return nil, err
	}

	if schema != nil {
		content, err := doc.Content()
		if err != nil {
			return nil, err
		}
		if err := schema.Validate(content); err != nil {
			return nil, err
		}
	}
	return doc, nil
}
