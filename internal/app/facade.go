package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/usecase"
)

// HealthChecker reports whether backing storage answers.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// StorefrontFacade is the single entry point the HTTP layer talks to.
type StorefrontFacade struct {
	auth     *usecase.AuthUseCase
	catalog  *usecase.CatalogUseCase
	carts    *usecase.CartUseCase
	checkout *usecase.CheckoutUseCase
	orders   *usecase.OrderStatusManager
	health   HealthChecker
}

func NewStorefrontFacade(
	auth *usecase.AuthUseCase,
	catalog *usecase.CatalogUseCase,
	carts *usecase.CartUseCase,
	checkout *usecase.CheckoutUseCase,
	orders *usecase.OrderStatusManager,
	health HealthChecker,
) *StorefrontFacade {
	return &StorefrontFacade{
		auth:     auth,
		catalog:  catalog,
		carts:    carts,
		checkout: checkout,
		orders:   orders,
		health:   health,
	}
}

func (f *StorefrontFacade) Register(ctx context.Context, login, password, name string) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password, name)
	return token, err
}

func (f *StorefrontFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *StorefrontFacade) VerifySession(token string) (model.Session, error) {
	return f.auth.VerifySession(token)
}

func (f *StorefrontFacade) Product(ctx context.Context, id string) (*model.Product, error) {
	return f.catalog.GetProduct(ctx, id)
}

// Cart is the page-load synchronization point: it always reads the store.
func (f *StorefrontFacade) Cart(ctx context.Context, userID int64) (model.Cart, error) {
	return f.carts.Sync(ctx, userID)
}

func (f *StorefrontFacade) AddToCart(ctx context.Context, userID int64, productID string) (model.Cart, error) {
	return f.carts.Add(ctx, userID, productID)
}

func (f *StorefrontFacade) RemoveFromCart(ctx context.Context, userID int64, productID string) (model.Cart, error) {
	return f.carts.Remove(ctx, userID, productID)
}

func (f *StorefrontFacade) ClearCart(ctx context.Context, userID int64) (model.Cart, error) {
	return f.carts.Clear(ctx, userID)
}

func (f *StorefrontFacade) MergeCart(ctx context.Context, userID int64, productIDs []string) (model.Cart, error) {
	return f.carts.Merge(ctx, userID, productIDs)
}

func (f *StorefrontFacade) PrepareCheckout(ctx context.Context, session model.Session) (*model.CheckoutPreview, error) {
	return f.checkout.Prepare(ctx, session)
}

func (f *StorefrontFacade) Checkout(ctx context.Context, session model.Session, nonce, idempotencyKey string) (*model.Order, error) {
	return f.checkout.Checkout(ctx, session, nonce, idempotencyKey)
}

func (f *StorefrontFacade) BuyerOrders(ctx context.Context, session model.Session) ([]model.Order, error) {
	return f.orders.BuyerOrders(ctx, session)
}

func (f *StorefrontFacade) AllOrders(ctx context.Context, session model.Session) ([]model.Order, error) {
	return f.orders.AllOrders(ctx, session)
}

func (f *StorefrontFacade) SetOrderStatus(ctx context.Context, session model.Session, orderID uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	return f.orders.SetStatus(ctx, session, orderID, status)
}

func (f *StorefrontFacade) HealthCheck(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}
