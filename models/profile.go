package models

import "time"

// Profile is an owner of shopping lists on the remote store.
type Profile struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}
