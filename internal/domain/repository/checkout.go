package repository

import (
	"context"
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// CheckoutAttemptRepository stores the durable idempotency record of checkouts.
type CheckoutAttemptRepository interface {
	// Begin inserts a pending attempt. When the key already exists the stored
	// attempt is returned with created set to false.
	Begin(ctx context.Context, attempt model.CheckoutAttempt) (*model.CheckoutAttempt, bool, error)
	Get(ctx context.Context, key string) (*model.CheckoutAttempt, error)
	Update(ctx context.Context, attempt model.CheckoutAttempt) error
	// Discard deletes a still pending attempt.
	Discard(ctx context.Context, key string) error
	// ListStale returns attempts left in one of states since before, oldest first.
	ListStale(ctx context.Context, states []model.CheckoutState, before time.Time, limit int) ([]model.CheckoutAttempt, error)
}
