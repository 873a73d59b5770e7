package service

import "errors"

var (
	// ErrInapplicableAction marks a queued mutation whose target no longer
	// exists remotely. Benign: the entry is dropped, not retried.
	ErrInapplicableAction = errors.New("action target no longer exists")

	// ErrNoActiveList is returned by session mutations before a list has
	// been loaded.
	ErrNoActiveList = errors.New("no active list loaded")

	ErrAlreadySyncing = errors.New("sync already in progress")
	ErrOffline        = errors.New("client is offline")
)
