// SPDX-License-Identifier: Apache-2.0

// Package adapter provides transport-layer abstractions for communicating
// with the remote list store.
//
// The primary abstraction is [RemoteStore], which decouples the service layer
// from the underlying protocol. The package ships an HTTP/REST implementation
// ([NewHTTPRemoteStore]) speaking a PostgREST-style API.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling ([ErrRemote] for any remote failure, [ErrNotFound] for a
// missing row).
package adapter

import (
	"context"

	"github.com/easysholi/listsync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_store_mock.go -package=mock

// RemoteStore defines transport-agnostic communication with the remote list
// store. Implementations are responsible for serialisation, API-key header
// management, and mapping transport-level errors to the sentinel values
// defined in this package.
//
// Every call can fail with an error wrapping [ErrRemote] on network or
// validation failure; the synchronizer treats any such failure as retryable.
type RemoteStore interface {
	// FetchLists returns all shopping lists owned by profileID, newest
	// first. An empty slice (not an error) means the profile has no list
	// yet.
	FetchLists(ctx context.Context, profileID string) ([]models.List, error)

	// CreateList creates a new remote list for profileID with the given
	// initial items and returns the remote representation, including the
	// remote-issued list id.
	CreateList(ctx context.Context, profileID string, items []models.Item) (models.List, error)

	// UpdateList replaces the item collection of the list identified by
	// listID and returns the updated remote representation. Returns an
	// error wrapping [ErrNotFound] if the list does not exist remotely.
	UpdateList(ctx context.Context, listID string, items []models.Item) (models.List, error)

	// DeleteList removes the list identified by listID. Deleting a list
	// that is already absent is not an error.
	DeleteList(ctx context.Context, listID string) error

	// FetchProfiles returns all profiles, oldest first.
	FetchProfiles(ctx context.Context) ([]models.Profile, error)

	// CreateProfile creates a profile with the given display name and
	// returns the remote representation.
	CreateProfile(ctx context.Context, name string) (models.Profile, error)

	// FetchProfile returns the single profile identified by id. Returns an
	// error wrapping [ErrNotFound] when no such profile exists.
	FetchProfile(ctx context.Context, id string) (models.Profile, error)

	// Ping performs a cheap reachability check against the remote store.
	// Used by the connectivity prober.
	Ping(ctx context.Context) error
}
