package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password, name string) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
	VerifySession(token string) (model.Session, error)
}

// CatalogFacade exposes read-only product lookups.
type CatalogFacade interface {
	Product(ctx context.Context, id string) (*model.Product, error)
}

// CartFacade covers cart synchronization points and mutations. Every method
// returns the authoritative cart.
type CartFacade interface {
	Cart(ctx context.Context, userID int64) (model.Cart, error)
	AddToCart(ctx context.Context, userID int64, productID string) (model.Cart, error)
	RemoveFromCart(ctx context.Context, userID int64, productID string) (model.Cart, error)
	ClearCart(ctx context.Context, userID int64) (model.Cart, error)
	MergeCart(ctx context.Context, userID int64, productIDs []string) (model.Cart, error)
}

// CheckoutFacade drives the payment flow.
type CheckoutFacade interface {
	PrepareCheckout(ctx context.Context, session model.Session) (*model.CheckoutPreview, error)
	Checkout(ctx context.Context, session model.Session, nonce, idempotencyKey string) (*model.Order, error)
}

// OrderFacade provides buyer and admin order views.
type OrderFacade interface {
	BuyerOrders(ctx context.Context, session model.Session) ([]model.Order, error)
	AllOrders(ctx context.Context, session model.Session) ([]model.Order, error)
	SetOrderStatus(ctx context.Context, session model.Session, orderID uuid.UUID, status model.OrderStatus) (*model.Order, error)
}

// HealthChecker reports whether backing storage is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// StorefrontFacade aggregates the full set of operations used across handlers.
type StorefrontFacade interface {
	AuthFacade
	CatalogFacade
	CartFacade
	CheckoutFacade
	OrderFacade
	HealthChecker
}
