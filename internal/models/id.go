package models

import (
	"strings"

	"github.com/google/uuid"
)

// IDType суффикс идентификатора, по которому определяется тип сущности.
// Идентификаторы упорядочены по времени (UUIDv7), поэтому ключи в bbolt
// сортируются в порядке создания.
type IDType string

const (
	IDTypeWorkspace      IDType = "ws"
	IDTypeUser           IDType = "us"
	IDTypeSpace          IDType = "sp"
	IDTypeChannel        IDType = "ch"
	IDTypeChat           IDType = "ct"
	IDTypePage           IDType = "pg"
	IDTypeMessage        IDType = "ms"
	IDTypeMutation       IDType = "mu"
	IDTypeDocumentUpdate IDType = "du"
)

const idTypeLength = 2

// GenerateID returns a new time-ordered identifier with the given type suffix.
func GenerateID(idType IDType) string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 падает только при ошибке crypto/rand, используем v4 как запасной вариант
		id = uuid.New()
	}
	return strings.ReplaceAll(id.String(), "-", "") + string(idType)
}

// GetIDType extracts the type suffix of an identifier.
// Returns empty string for identifiers that are too short.
func GetIDType(id string) IDType {
	if len(id) <= idTypeLength {
		return ""
	}
	return IDType(id[len(id)-idTypeLength:])
}
