package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this email or account already exists in the workspace
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrNodeNotFound indicates that node was not found
	ErrNodeNotFound = errors.New("node not found")

	// ErrCollaborationNotFound indicates that user has no collaboration on the root
	ErrCollaborationNotFound = errors.New("collaboration not found")

	// ErrRevisionConflict документ изменился после чтения, операцию нужно повторить
	ErrRevisionConflict = errors.New("revision conflict")

	// ErrUnknownPartition indicates that partition type is not served
	ErrUnknownPartition = errors.New("unknown partition")
)
