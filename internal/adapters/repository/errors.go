package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("time record not found")
	ErrDuplicateID   = errors.New("duplicate time record id")
	ErrInvalidRecord = errors.New("invalid time record")
)
