package errors

import "errors"

var (
	ErrNotFound = errors.New("user not found")

	ErrEmailTaken = errors.New("email is already registered")
)
