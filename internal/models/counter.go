package models

// CounterType тип производного счетчика
type CounterType string

const (
	CounterUnreadMessages          CounterType = "unread_messages"
	CounterUnreadMentions          CounterType = "unread_mentions"
	CounterUnreadImportantMessages CounterType = "unread_important_messages"
)

// NodeCounter производный агрегат на контейнере (канал, чат). Никогда не бывает отрицательным.
type NodeCounter struct {
	NodeID string      `json:"node_id"`
	Type   CounterType `json:"type"`
	Count  int64       `json:"count"`
}
