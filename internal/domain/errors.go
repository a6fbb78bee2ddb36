package domain

import "errors"

// Sentinel errors surfaced to the transport layer. Handlers map ErrNotFound
// to 404 and ErrInvalidInput to 400 via errors.Is.
var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)
