package repository

import (
	"context"
)

// CartRepository persists per-user carts as multisets of product ids.
// Every method fails with ErrNotFound when the user does not exist.
type CartRepository interface {
	Items(ctx context.Context, userID int64) ([]string, error)
	Add(ctx context.Context, userID int64, productIDs ...string) ([]string, error)
	// Remove deletes the first occurrence of productID; absent ids are not an error.
	Remove(ctx context.Context, userID int64, productID string) ([]string, error)
	// RemoveEach deletes one occurrence per listed id, atomically.
	RemoveEach(ctx context.Context, userID int64, productIDs ...string) ([]string, error)
	Clear(ctx context.Context, userID int64) error
}
