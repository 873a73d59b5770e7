package models

import (
	"time"

	"github.com/google/uuid"
)

// Item is a single entry in a shopping list.
//
// ID is generated on the client at creation time and is immutable afterwards.
// Within one list's item collection, IDs are unique. UpdatedAt must be
// refreshed on every field change; the merge engine relies on it to decide
// which side of a conflict wins.
type Item struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Quantity  int        `json:"quantity"`
	TagID     string     `json:"tag_id,omitempty"`
	Completed bool       `json:"completed"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// NewItem creates an Item with a fresh client-side id and both timestamps set
// to the current UTC time. Quantity values below one are clamped to one.
func NewItem(name string, quantity int, tagID string) Item {
	if quantity < 1 {
		quantity = 1
	}
	now := time.Now().UTC()
	return Item{
		ID:        uuid.NewString(),
		Name:      name,
		Quantity:  quantity,
		TagID:     tagID,
		CreatedAt: &now,
		UpdatedAt: &now,
	}
}

// ItemPatch is a partial update of an Item. Nil fields are left untouched
// when the patch is applied.
type ItemPatch struct {
	Name      *string    `json:"name,omitempty"`
	Quantity  *int       `json:"quantity,omitempty"`
	TagID     *string    `json:"tag_id,omitempty"`
	Completed *bool      `json:"completed,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
