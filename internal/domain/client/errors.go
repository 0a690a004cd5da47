package client

import "errors"

var (
	// ErrNameRequired indicates an upsert payload with an empty name
	// after trimming. It is the only validation failure in the system.
	ErrNameRequired = errors.New("client name is required")
)
