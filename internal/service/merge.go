// SPDX-License-Identifier: Apache-2.0

// Package service holds the client-side sync machinery: the item merge
// engine, the queue-draining synchronizer, the connectivity monitor and the
// list session built on top of them.
package service

import (
	"strings"

	"github.com/easysholi/listsync/models"
)

// MergeItems reconciles a remote item collection with a locally diverged
// one. Remote items form the base and keep their order; local items are
// folded in one by one:
//
//   - same id on both sides: the side with the later updatedAt wins the
//     whole field set; a side missing its timestamp loses to one that has
//     it. On a tie, and when neither side carries a timestamp, the local
//     item is kept: a local item that is not strictly older may itself be
//     the output of an earlier merge, and keeping it makes re-merging an
//     already-merged collection a no-op.
//   - different id but same normalized name: the two entries describe the
//     same intent created independently, so quantities are summed and the
//     remote id is retained to avoid id churn. Field conflicts follow the
//     same recency rule.
//   - otherwise the local item is new and is appended as-is.
//
// The function is pure and deterministic: it reads only its inputs and each
// item's own updatedAt, never the wall clock.
func MergeItems(remote, local []models.Item) []models.Item {
	merged := append([]models.Item(nil), remote...)

	byID := make(map[string]int, len(merged))
	byName := make(map[string]int, len(merged))
	for i, item := range merged {
		byID[item.ID] = i
		byName[normalizeName(item.Name)] = i
	}

	for _, localItem := range local {
		if i, ok := byID[localItem.ID]; ok {
			merged[i] = resolveByRecency(merged[i], localItem)
			continue
		}

		if i, ok := byName[normalizeName(localItem.Name)]; ok {
			winner := resolveByRecency(merged[i], localItem)
			winner.ID = merged[i].ID
			winner.Quantity = quantityOrOne(merged[i]) + quantityOrOne(localItem)
			merged[i] = winner
			continue
		}

		byID[localItem.ID] = len(merged)
		byName[normalizeName(localItem.Name)] = len(merged)
		merged = append(merged, localItem)
	}

	return merged
}

// resolveByRecency picks the item whose updatedAt is later. A side without
// a timestamp loses to one that has it. Ties and the neither-timestamp case
// go to local, so an already-merged item is not reverted to the remote base
// when it comes back around.
func resolveByRecency(remote, local models.Item) models.Item {
	switch {
	case remote.UpdatedAt == nil && local.UpdatedAt == nil:
		return local
	case local.UpdatedAt == nil:
		return remote
	case remote.UpdatedAt == nil:
		return local
	case local.UpdatedAt.Before(*remote.UpdatedAt):
		return remote
	default:
		return local
	}
}

func quantityOrOne(item models.Item) int {
	if item.Quantity < 1 {
		return 1
	}
	return item.Quantity
}

// normalizeName lowercases, trims, and collapses internal whitespace runs,
// so "  Oat  Milk " and "oat milk" index the same item.
func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// ApplyItemPatch copies the patch's set fields onto the item and returns
// the result. The patch's updatedAt, when present, becomes the item's.
func ApplyItemPatch(item models.Item, patch models.ItemPatch) models.Item {
	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Quantity != nil {
		item.Quantity = *patch.Quantity
	}
	if patch.TagID != nil {
		item.TagID = *patch.TagID
	}
	if patch.Completed != nil {
		item.Completed = *patch.Completed
	}
	if patch.UpdatedAt != nil {
		item.UpdatedAt = patch.UpdatedAt
	}
	return item
}
