package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/pkg/cache"
)

// CartCache mirrors persisted carts keyed by user id.
type CartCache = cache.LRU[int64, []string]

// CartUseCase keeps the persisted cart and its cached copy in step.
//
// Every successful mutation writes the persisted result into the cache and
// every failed one evicts it, so the next read after a mutation observes the
// same multiset in both copies.
type CartUseCase struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	cache    *CartCache
	logger   *slog.Logger
}

// NewCartUseCase constructs CartUseCase.
func NewCartUseCase(carts repository.CartRepository, products repository.ProductRepository, cache *CartCache, logger *slog.Logger) *CartUseCase {
	return &CartUseCase{
		carts:    carts,
		products: products,
		cache:    cache,
		logger:   logger.With(slog.String("component", "cart")),
	}
}

// Get returns the cached cart, loading it from the store on a miss.
func (u *CartUseCase) Get(ctx context.Context, userID int64) (model.Cart, error) {
	if userID <= 0 {
		return model.Cart{}, domainErrors.ErrValidation
	}
	if items, ok := u.cache.Get(userID); ok {
		return newCart(userID, items), nil
	}
	return u.Sync(ctx, userID)
}

// Sync reloads the cart from the store and overwrites the cached copy.
func (u *CartUseCase) Sync(ctx context.Context, userID int64) (model.Cart, error) {
	if userID <= 0 {
		return model.Cart{}, domainErrors.ErrValidation
	}
	items, err := u.carts.Items(ctx, userID)
	if err != nil {
		return model.Cart{}, u.fail("load cart", userID, err)
	}
	return u.store(userID, items), nil
}

// Add appends productID; duplicates are kept.
func (u *CartUseCase) Add(ctx context.Context, userID int64, productID string) (model.Cart, error) {
	productID = strings.TrimSpace(productID)
	if userID <= 0 || productID == "" {
		return model.Cart{}, domainErrors.ErrValidation
	}
	items, err := u.carts.Add(ctx, userID, productID)
	if err != nil {
		return model.Cart{}, u.fail("add cart item", userID, err)
	}
	return u.store(userID, items), nil
}

// Remove drops the first occurrence of productID. Absent products are ignored.
func (u *CartUseCase) Remove(ctx context.Context, userID int64, productID string) (model.Cart, error) {
	productID = strings.TrimSpace(productID)
	if userID <= 0 || productID == "" {
		return model.Cart{}, domainErrors.ErrValidation
	}
	items, err := u.carts.Remove(ctx, userID, productID)
	if err != nil {
		return model.Cart{}, u.fail("remove cart item", userID, err)
	}
	return u.store(userID, items), nil
}

// Clear empties the cart. Clearing an empty cart succeeds.
func (u *CartUseCase) Clear(ctx context.Context, userID int64) (model.Cart, error) {
	if userID <= 0 {
		return model.Cart{}, domainErrors.ErrValidation
	}
	if err := u.carts.Clear(ctx, userID); err != nil {
		return model.Cart{}, u.fail("clear cart", userID, err)
	}
	return u.store(userID, nil), nil
}

// Consume removes one occurrence of each charged item. Items added after the
// cart was priced stay in the cart.
func (u *CartUseCase) Consume(ctx context.Context, userID int64, charged []string) (model.Cart, error) {
	if userID <= 0 {
		return model.Cart{}, domainErrors.ErrValidation
	}
	if len(charged) == 0 {
		return u.Sync(ctx, userID)
	}
	items, err := u.carts.RemoveEach(ctx, userID, charged...)
	if err != nil {
		return model.Cart{}, u.fail("consume cart", userID, err)
	}
	return u.store(userID, items), nil
}

// Merge appends guest cart items collected before login and returns the
// authoritative result. Products missing from the catalog are skipped.
func (u *CartUseCase) Merge(ctx context.Context, userID int64, guestItems []string) (model.Cart, error) {
	if userID <= 0 {
		return model.Cart{}, domainErrors.ErrValidation
	}

	ids := make([]string, 0, len(guestItems))
	for _, id := range guestItems {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return u.Sync(ctx, userID)
	}

	known, err := u.products.GetByIDs(ctx, ids)
	if err != nil {
		return model.Cart{}, u.fail("resolve guest cart", userID, err)
	}
	merged := ids[:0]
	for _, id := range ids {
		if _, ok := known[id]; ok {
			merged = append(merged, id)
		} else {
			u.logger.Info("skipping unknown guest cart item", slog.Int64("user_id", userID), slog.String("product_id", id))
		}
	}
	if len(merged) == 0 {
		return u.Sync(ctx, userID)
	}

	items, err := u.carts.Add(ctx, userID, merged...)
	if err != nil {
		return model.Cart{}, u.fail("merge cart", userID, err)
	}
	return u.store(userID, items), nil
}

func (u *CartUseCase) store(userID int64, items []string) model.Cart {
	cart := newCart(userID, items)
	u.cache.Set(userID, cart.Items)
	return newCart(userID, cart.Items)
}

func (u *CartUseCase) fail(op string, userID int64, err error) error {
	u.cache.Delete(userID)
	switch {
	case errors.Is(err, domainErrors.ErrValidation):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, domainErrors.ErrNotFound):
		u.logger.Warn(op+" for unknown user", slog.Int64("user_id", userID))
		return fmt.Errorf("%w: unknown user", domainErrors.ErrOperation)
	default:
		u.logger.Error(op+" failed", slog.Int64("user_id", userID), slog.Any("error", err))
		return domainErrors.ErrOperation
	}
}

func newCart(userID int64, items []string) model.Cart {
	copied := make([]string, len(items))
	copy(copied, items)
	return model.Cart{UserID: userID, Items: copied}
}
