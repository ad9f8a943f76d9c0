package cache

const (
	// KeyPrefixItem is the prefix for a single item's cached view
	KeyPrefixItem = "pw:item:"
	// KeyPrefixOwnerItems is the prefix for an owner's active-items aggregate
	KeyPrefixOwnerItems = "pw:items:owner:"
	// KeyPrefixOwnerHistory is the prefix for an owner's history aggregate
	KeyPrefixOwnerHistory = "pw:history:owner:"
)

// ItemKey returns the cache key for a single item view
func ItemKey(itemID string) string {
	return KeyPrefixItem + itemID
}

// OwnerItemsKey returns the cache key for an owner's active-items aggregate
func OwnerItemsKey(ownerID string) string {
	return KeyPrefixOwnerItems + ownerID
}

// OwnerHistoryKey returns the cache key for an owner's history aggregate
func OwnerHistoryKey(ownerID string) string {
	return KeyPrefixOwnerHistory + ownerID
}

// ItemScopedKeys returns every key derived from one item's state.
// Any mutation of that item must invalidate all of them.
func ItemScopedKeys(itemID, ownerID string) []string {
	return []string{
		ItemKey(itemID),
		OwnerItemsKey(ownerID),
		OwnerHistoryKey(ownerID),
	}
}
