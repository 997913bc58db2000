package storage

import "errors"

// Common client storage errors
var (
	// ErrNodeNotFound indicates that node was not found in the local replica
	ErrNodeNotFound = errors.New("node not found")

	// ErrDocumentNotFound indicates that document or its state was not found
	ErrDocumentNotFound = errors.New("document not found")

	// ErrDocumentUpdateNotFound indicates that pending document update was not found
	ErrDocumentUpdateNotFound = errors.New("document update not found")

	// ErrReactionNotFound indicates that reaction was not found
	ErrReactionNotFound = errors.New("reaction not found")

	// ErrInteractionNotFound indicates that interaction was not found
	ErrInteractionNotFound = errors.New("interaction not found")

	// ErrCollaborationNotFound indicates that collaboration was not found
	ErrCollaborationNotFound = errors.New("collaboration not found")

	// ErrUserNotFound indicates that user was not found
	ErrUserNotFound = errors.New("user not found")

	// ErrPendingDeleteNotFound indicates that no local delete is awaiting acknowledgement
	ErrPendingDeleteNotFound = errors.New("pending delete not found")

	// ErrNodeExists indicates an attempt to create a node with an existing id
	ErrNodeExists = errors.New("node already exists")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
