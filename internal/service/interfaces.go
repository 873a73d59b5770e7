package service

import (
	"context"
	"time"

	"github.com/easysholi/listsync/models"
)

// ProfileService manages the shared profiles a shopping list belongs to.
// Reads are cached; the cache is dropped on every write.
type ProfileService interface {
	// List returns all known profiles, from cache when fresh enough.
	List(ctx context.Context) ([]models.Profile, error)

	// Get returns one profile by id, preferring the cache.
	Get(ctx context.Context, id string) (models.Profile, error)

	// Create registers a new profile remotely and invalidates the cache.
	Create(ctx context.Context, name string) (models.Profile, error)

	// Invalidate drops the cache so the next List hits the remote store.
	Invalidate()
}

// SyncJob periodically drains the mutation queue in the background.
type SyncJob interface {
	// Start launches the background drain loop with the given interval.
	// A second Start replaces the running loop.
	Start(ctx context.Context, interval time.Duration)

	// Stop halts the loop and waits for it to exit. Safe when idle.
	Stop()
}
