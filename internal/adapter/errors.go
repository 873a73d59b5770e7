package adapter

import "errors"

var (
	// ErrRemote wraps any remote call failure: network errors, timeouts,
	// and non-2xx responses.
	ErrRemote = errors.New("remote store error")
	// ErrNotFound indicates the target row no longer exists remotely.
	ErrNotFound = errors.New("remote row not found")
)
