package models

import "time"

// NodeReaction реакция участника на узел
type NodeReaction struct {
	CreatedAt      time.Time `json:"created_at"`
	NodeID         string    `json:"node_id"`
	CollaboratorID string    `json:"collaborator_id"`
	Reaction       string    `json:"reaction"`
	RootID         string    `json:"root_id"`
	Revision       int64     `json:"revision"`
}

// Key identifies the reaction within a workspace.
func (r *NodeReaction) Key() string {
	return r.NodeID + "/" + r.CollaboratorID + "/" + r.Reaction
}
