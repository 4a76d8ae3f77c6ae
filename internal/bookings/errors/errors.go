package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrAlreadyCancelled = errors.New("booking is already cancelled")
)
