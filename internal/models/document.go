package models

import (
	"encoding/json"
	"time"
)

// Document материализованное содержимое CRDT документа узла
type Document struct {
	UpdatedAt     time.Time       `json:"updated_at"`
	ID            string          `json:"id"` // совпадает с ID узла
	RootID        string          `json:"root_id"`
	Content       json.RawMessage `json:"content"`
	Revision      int64           `json:"revision"`       // последняя ревизия сервера, примененная к state
	LocalRevision int64           `json:"local_revision"` // растет с каждым локальным изменением
}

// DocumentState периодически материализуемый снимок CRDT (compaction)
type DocumentState struct {
	ID       string `json:"id"`
	State    []byte `json:"state"`
	Revision int64  `json:"revision"`
}

// DocumentUpdate append-only CRDT delta документа
type DocumentUpdate struct {
	CreatedAt  time.Time `json:"created_at"`
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	RootID     string    `json:"root_id,omitempty"`
	CreatedBy  string    `json:"created_by,omitempty"`
	Data       []byte    `json:"data"`
	Revision   int64     `json:"revision,omitempty"` // 0 для локальных неподтвержденных изменений
}
