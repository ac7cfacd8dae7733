package handlers

import (
	"sort"

	"laundry/internal/models"
)

// The rules below keep the embedded address list holding exactly one default
// entry whenever the list is non-empty.

// resolveDefaultFlag decides whether a new address becomes the default. The
// first address is always the default regardless of what the caller asked for.
func resolveDefaultFlag(requested bool, existingCount int) bool {
	return requested || existingCount == 0
}

// unsetDefaults clears the default flag on every entry, in place.
func unsetDefaults(addresses []models.Address) {
	for i := range addresses {
		addresses[i].IsDefault = false
	}
}

// promoteDefaultAfterDelete re-establishes the invariant after a removal: when
// the deleted entry was the default and entries remain, the first one takes
// over.
func promoteDefaultAfterDelete(addresses []models.Address, deletedWasDefault bool) {
	if deletedWasDefault && len(addresses) > 0 {
		addresses[0].IsDefault = true
	}
}

// sortDefaultFirst orders entries default-first without disturbing the
// relative order of the rest.
func sortDefaultFirst(addresses []models.Address) []models.Address {
	sorted := make([]models.Address, len(addresses))
	copy(sorted, addresses)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].IsDefault && !sorted[j].IsDefault
	})
	return sorted
}

// findAddressIndex locates an entry by id, -1 when absent.
func findAddressIndex(addresses []models.Address, id string) int {
	for i, address := range addresses {
		if address.ID == id {
			return i
		}
	}
	return -1
}

// countDefaults reports how many entries carry the default flag.
func countDefaults(addresses []models.Address) int {
	count := 0
	for _, address := range addresses {
		if address.IsDefault {
			count++
		}
	}
	return count
}
