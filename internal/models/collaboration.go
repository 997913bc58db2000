package models

import "time"

// CollaboratorRole роль участника на корневом узле
type CollaboratorRole string

const (
	RoleAdmin        CollaboratorRole = "admin"
	RoleEditor       CollaboratorRole = "editor"
	RoleCollaborator CollaboratorRole = "collaborator"
	RoleViewer       CollaboratorRole = "viewer"
)

// IsValid reports whether r is one of the known roles.
func (r CollaboratorRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleCollaborator, RoleViewer:
		return true
	default:
		return false
	}
}

// CanWrite reports whether the role may author mutations on the root.
func (r CollaboratorRole) CanWrite() bool {
	return r == RoleAdmin || r == RoleEditor || r == RoleCollaborator
}

// Collaboration дает пользователю роль на корневом узле.
// Наличие неудаленной записи определяет, существуют ли root-синхронизаторы.
type Collaboration struct {
	CreatedAt      time.Time        `json:"created_at"`
	DeletedAt      *time.Time       `json:"deleted_at,omitempty"`
	NodeID         string           `json:"node_id"`
	CollaboratorID string           `json:"collaborator_id"`
	Role           CollaboratorRole `json:"role"`
	Revision       int64            `json:"revision"`
}

// Active reports whether the collaboration still grants access.
func (c *Collaboration) Active() bool {
	return c.DeletedAt == nil
}

// User участник workspace
type User struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Revision  int64     `json:"revision"`
}
