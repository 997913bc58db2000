package models

import "time"

// NodeInteraction watermark (узел, участник). Поля только продвигаются вперед.
type NodeInteraction struct {
	FirstSeenAt    *time.Time `json:"first_seen_at,omitempty"`
	LastSeenAt     *time.Time `json:"last_seen_at,omitempty"`
	FirstOpenedAt  *time.Time `json:"first_opened_at,omitempty"`
	LastOpenedAt   *time.Time `json:"last_opened_at,omitempty"`
	NodeID         string     `json:"node_id"`
	CollaboratorID string     `json:"collaborator_id"`
	RootID         string     `json:"root_id"`
	Revision       int64      `json:"revision"`
}

// Clone returns a deep copy.
func (i *NodeInteraction) Clone() *NodeInteraction {
	if i == nil {
		return nil
	}
	c := *i
	c.FirstSeenAt = cloneTime(i.FirstSeenAt)
	c.LastSeenAt = cloneTime(i.LastSeenAt)
	c.FirstOpenedAt = cloneTime(i.FirstOpenedAt)
	c.LastOpenedAt = cloneTime(i.LastOpenedAt)
	return &c
}

// MarkSeen advances the seen watermarks. Returns true if anything changed.
func (i *NodeInteraction) MarkSeen(at time.Time) bool {
	first := earliest(&i.FirstSeenAt, at)
	last := latest(&i.LastSeenAt, at)
	return first || last
}

// MarkOpened advances the opened watermarks. Returns true if anything changed.
func (i *NodeInteraction) MarkOpened(at time.Time) bool {
	first := earliest(&i.FirstOpenedAt, at)
	last := latest(&i.LastOpenedAt, at)
	return first || last
}

// Merge folds other into i without ever moving a watermark backwards.
// Revision takes the larger value.
func (i *NodeInteraction) Merge(other *NodeInteraction) bool {
	if other == nil {
		return false
	}
	changed := false
	if other.FirstSeenAt != nil && earliest(&i.FirstSeenAt, *other.FirstSeenAt) {
		changed = true
	}
	if other.LastSeenAt != nil && latest(&i.LastSeenAt, *other.LastSeenAt) {
		changed = true
	}
	if other.FirstOpenedAt != nil && earliest(&i.FirstOpenedAt, *other.FirstOpenedAt) {
		changed = true
	}
	if other.LastOpenedAt != nil && latest(&i.LastOpenedAt, *other.LastOpenedAt) {
		changed = true
	}
	if other.Revision > i.Revision {
		i.Revision = other.Revision
		changed = true
	}
	return changed
}

func earliest(field **time.Time, at time.Time) bool {
	if *field == nil || at.Before(**field) {
		t := at
		*field = &t
		return true
	}
	return false
}

func latest(field **time.Time, at time.Time) bool {
	if *field == nil || at.After(**field) {
		t := at
		*field = &t
		return true
	}
	return false
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
