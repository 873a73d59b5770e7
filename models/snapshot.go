package models

import "time"

// SnapshotRecord is the locally cached item collection of one list, keyed in
// the snapshot store by the owning profile id. Records are always
// overwritten whole; there is only one local writer.
type SnapshotRecord struct {
	Items        []Item    `json:"items"`
	LastModified time.Time `json:"last_modified"`
}
