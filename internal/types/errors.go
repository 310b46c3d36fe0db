package types

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrInvalidCategory = errors.New("invalid change category")
	ErrPayloadMismatch = errors.New("payload does not match change category")
	ErrNoChanges       = errors.New("changes must be a non-empty array")
	ErrAudit           = errors.New("failed to write audit record")
	ErrBusy            = errors.New("another deploy or undo is in progress")
)
