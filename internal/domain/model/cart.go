package model

import "sort"

// Cart is a multiset of product references owned by a single user.
type Cart struct {
	UserID int64
	Items  []string
}

// IsEmpty reports whether cart holds no items.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Snapshot returns sorted copy of cart items, suitable for hashing.
func (c Cart) Snapshot() []string {
	items := make([]string, len(c.Items))
	copy(items, c.Items)
	sort.Strings(items)
	return items
}
