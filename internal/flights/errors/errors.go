package errors

import "errors"

var (
	ErrNotFound = errors.New("flight not found")

	ErrInsufficientSeats = errors.New("not enough seats available")

	ErrNotBookable = errors.New("flight is not open for booking")
)
