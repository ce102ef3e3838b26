package test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// AuthFacadeStub simulates authentication facade interactions.
type AuthFacadeStub struct {
	RegisterFn     func(context.Context, string, string, string) (string, error)
	AuthenticateFn func(context.Context, string, string) (string, error)
	VerifyFn       func(string) (model.Session, error)
	Session        model.Session
}

// Register returns token for successful registration scenarios.
func (s AuthFacadeStub) Register(ctx context.Context, login, password, name string) (string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, login, password, name)
	}
	return "token", nil
}

// Authenticate returns token for successful authentication scenarios.
func (s AuthFacadeStub) Authenticate(ctx context.Context, login, password string) (string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, login, password)
	}
	return "token", nil
}

// VerifySession returns the configured session, a buyer with id 1 by default.
func (s AuthFacadeStub) VerifySession(token string) (model.Session, error) {
	if s.VerifyFn != nil {
		return s.VerifyFn(token)
	}
	if s.Session.UserID != 0 {
		return s.Session, nil
	}
	return model.Session{UserID: 1, Role: model.RoleBuyer}, nil
}

// CatalogFacadeStub serves products for handler tests.
type CatalogFacadeStub struct {
	ProductFn func(context.Context, string) (*model.Product, error)
}

// Product returns a fixed product unless overridden.
func (s CatalogFacadeStub) Product(ctx context.Context, id string) (*model.Product, error) {
	if s.ProductFn != nil {
		return s.ProductFn(ctx, id)
	}
	return &model.Product{ID: id, Name: "Lamp", Price: decimal.RequireFromString("10.50")}, nil
}

// CartFacadeStub simulates cart operations.
type CartFacadeStub struct {
	CartFn   func(context.Context, int64) (model.Cart, error)
	AddFn    func(context.Context, int64, string) (model.Cart, error)
	RemoveFn func(context.Context, int64, string) (model.Cart, error)
	ClearFn  func(context.Context, int64) (model.Cart, error)
	MergeFn  func(context.Context, int64, []string) (model.Cart, error)
}

// Cart returns an empty cart by default.
func (s CartFacadeStub) Cart(ctx context.Context, userID int64) (model.Cart, error) {
	if s.CartFn != nil {
		return s.CartFn(ctx, userID)
	}
	return model.Cart{UserID: userID, Items: []string{}}, nil
}

// AddToCart returns a cart holding only the added product by default.
func (s CartFacadeStub) AddToCart(ctx context.Context, userID int64, productID string) (model.Cart, error) {
	if s.AddFn != nil {
		return s.AddFn(ctx, userID, productID)
	}
	return model.Cart{UserID: userID, Items: []string{productID}}, nil
}

// RemoveFromCart returns an empty cart by default.
func (s CartFacadeStub) RemoveFromCart(ctx context.Context, userID int64, productID string) (model.Cart, error) {
	if s.RemoveFn != nil {
		return s.RemoveFn(ctx, userID, productID)
	}
	return model.Cart{UserID: userID, Items: []string{}}, nil
}

// ClearCart returns an empty cart by default.
func (s CartFacadeStub) ClearCart(ctx context.Context, userID int64) (model.Cart, error) {
	if s.ClearFn != nil {
		return s.ClearFn(ctx, userID)
	}
	return model.Cart{UserID: userID, Items: []string{}}, nil
}

// MergeCart echoes the guest items by default.
func (s CartFacadeStub) MergeCart(ctx context.Context, userID int64, productIDs []string) (model.Cart, error) {
	if s.MergeFn != nil {
		return s.MergeFn(ctx, userID, productIDs)
	}
	return model.Cart{UserID: userID, Items: append([]string{}, productIDs...)}, nil
}

// CheckoutFacadeStub simulates the payment flow.
type CheckoutFacadeStub struct {
	PrepareFn  func(context.Context, model.Session) (*model.CheckoutPreview, error)
	CheckoutFn func(context.Context, model.Session, string, string) (*model.Order, error)
}

// PrepareCheckout returns a fixed client token by default.
func (s CheckoutFacadeStub) PrepareCheckout(ctx context.Context, session model.Session) (*model.CheckoutPreview, error) {
	if s.PrepareFn != nil {
		return s.PrepareFn(ctx, session)
	}
	return &model.CheckoutPreview{ClientToken: "client-token", Items: []model.OrderItem{}, Total: decimal.Zero}, nil
}

// Checkout returns a freshly created order by default.
func (s CheckoutFacadeStub) Checkout(ctx context.Context, session model.Session, nonce, key string) (*model.Order, error) {
	if s.CheckoutFn != nil {
		return s.CheckoutFn(ctx, session, nonce, key)
	}
	order := SampleOrder(session.UserID)
	return &order, nil
}

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	BuyerOrdersFn func(context.Context, model.Session) ([]model.Order, error)
	AllOrdersFn   func(context.Context, model.Session) ([]model.Order, error)
	SetStatusFn   func(context.Context, model.Session, uuid.UUID, model.OrderStatus) (*model.Order, error)
}

// BuyerOrders returns one order for the session user by default.
func (s OrderFacadeStub) BuyerOrders(ctx context.Context, session model.Session) ([]model.Order, error) {
	if s.BuyerOrdersFn != nil {
		return s.BuyerOrdersFn(ctx, session)
	}
	return []model.Order{SampleOrder(session.UserID)}, nil
}

// AllOrders returns one order by default.
func (s OrderFacadeStub) AllOrders(ctx context.Context, session model.Session) ([]model.Order, error) {
	if s.AllOrdersFn != nil {
		return s.AllOrdersFn(ctx, session)
	}
	return []model.Order{SampleOrder(1)}, nil
}

// SetOrderStatus returns the sample order moved to status by default.
func (s OrderFacadeStub) SetOrderStatus(ctx context.Context, session model.Session, orderID uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	if s.SetStatusFn != nil {
		return s.SetStatusFn(ctx, session, orderID, status)
	}
	order := SampleOrder(1)
	order.ID = orderID
	order.Status = status
	return &order, nil
}

// HealthCheckerStub reports configured health.
type HealthCheckerStub struct {
	Err error
}

// HealthCheck returns the configured error.
func (s HealthCheckerStub) HealthCheck(context.Context) error {
	return s.Err
}

// StorefrontFacadeStub aggregates facade dependencies for HTTP layer tests.
type StorefrontFacadeStub struct {
	AuthFacadeStub
	CatalogFacadeStub
	CartFacadeStub
	CheckoutFacadeStub
	OrderFacadeStub
	HealthCheckerStub
}

// SampleOrder builds a paid order holding a single lamp.
func SampleOrder(buyerID int64) model.Order {
	price := decimal.RequireFromString("10.50")
	created := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	return model.Order{
		ID:        uuid.MustParse("6f1c2a8e-0d5b-4b8e-9a57-3f5b1f7c9d21"),
		BuyerID:   buyerID,
		BuyerName: "Ada",
		Items:     []model.OrderItem{{ProductID: "p1", Name: "Lamp", Price: price}},
		Payment: model.PaymentOutcome{
			Success:           true,
			TransactionID:     "tx-1",
			TransactionStatus: "submitted_for_settlement",
			Amount:            price,
		},
		Status:    model.OrderStatusNotProcessed,
		CreatedAt: created,
		UpdatedAt: created,
	}
}
