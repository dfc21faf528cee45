package services

import "errors"

// Callers map these with errors.Is; the wrapped message is safe to show
// to clients.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
	ErrUpstream   = errors.New("payment gateway failure")
)
