package models

import (
	"strings"
	"time"
)

// localIDPrefix marks list identifiers whose remote counterpart is
// unconfirmed on this client.
const localIDPrefix = "offline_"

// List is a shopping list owned by a profile.
//
// ID is either a remote-issued identifier or a local sentinel of the form
// "offline_<profileID>" (see LocalListID). The sentinel means the remote id
// is currently unknown: either the list has never been created remotely, or
// it was rebuilt from a snapshot without reaching the remote store. Queued
// mutations carry the profile id, so the synchronizer resolves the sentinel
// against the profile's actual remote list (creating one when absent), and
// the session picks up the confirmed remote id on its next load.
type List struct {
	ID        string     `json:"id"`
	ProfileID string     `json:"profile_id"`
	Items     []Item     `json:"items"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// LocalListID builds the local-only sentinel id for profileID.
func LocalListID(profileID string) string {
	return localIDPrefix + profileID
}

// IsLocalID reports whether id is a local-only sentinel.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, localIDPrefix)
}

// ProfileFromLocalID extracts the profile id embedded in a local sentinel id.
// ok is false when id is not a local sentinel.
func ProfileFromLocalID(id string) (profileID string, ok bool) {
	if !IsLocalID(id) {
		return "", false
	}
	return strings.TrimPrefix(id, localIDPrefix), true
}
