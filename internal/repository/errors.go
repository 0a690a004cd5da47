package repository

import "errors"

var (
	// ErrClosed is returned when a store is used after Close.
	ErrClosed = errors.New("document store is closed")
)
