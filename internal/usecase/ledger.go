package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/adapter/events"
	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// OrderLedger is the only writer of new orders.
type OrderLedger struct {
	orders    repository.OrderRepository
	publisher events.Publisher
	logger    *slog.Logger
}

// NewOrderLedger constructs OrderLedger.
func NewOrderLedger(orders repository.OrderRepository, publisher events.Publisher, logger *slog.Logger) *OrderLedger {
	return &OrderLedger{
		orders:    orders,
		publisher: publisher,
		logger:    logger.With(slog.String("component", "ledger")),
	}
}

// CreateOrder records an order for a successful payment with status Not Processed.
func (l *OrderLedger) CreateOrder(ctx context.Context, buyerID int64, items []model.OrderItem, payment model.PaymentOutcome, idempotencyKey string) (*model.Order, error) {
	if buyerID <= 0 || len(items) == 0 {
		return nil, domainErrors.ErrValidation
	}
	if !payment.Success {
		return nil, fmt.Errorf("%w: payment was not successful", domainErrors.ErrValidation)
	}

	order := &model.Order{
		ID:             uuid.New(),
		BuyerID:        buyerID,
		Items:          append([]model.OrderItem(nil), items...),
		Payment:        payment,
		Status:         model.OrderStatusNotProcessed,
		IdempotencyKey: idempotencyKey,
	}
	if err := l.orders.Create(ctx, order); err != nil {
		l.logger.Error("failed to create order",
			slog.Int64("buyer_id", buyerID),
			slog.String("transaction_id", payment.TransactionID),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("create order: %w", err)
	}

	l.logger.Info("order created", slog.String("order_id", order.ID.String()), slog.Int64("buyer_id", buyerID))
	publish(ctx, l.publisher, l.logger, events.OrderCreated(order))
	return order, nil
}

// ListOrdersForBuyer returns buyer orders in insertion order.
func (l *OrderLedger) ListOrdersForBuyer(ctx context.Context, buyerID int64) ([]model.Order, error) {
	if buyerID <= 0 {
		return nil, domainErrors.ErrValidation
	}
	orders, err := l.orders.ListByBuyer(ctx, buyerID)
	if err != nil {
		l.logger.Error("failed to list buyer orders", slog.Int64("buyer_id", buyerID), slog.Any("error", err))
		return nil, domainErrors.ErrOperation
	}
	return orders, nil
}

// ListAllOrders returns every order newest first.
func (l *OrderLedger) ListAllOrders(ctx context.Context) ([]model.Order, error) {
	orders, err := l.orders.ListAll(ctx)
	if err != nil {
		l.logger.Error("failed to list orders", slog.Any("error", err))
		return nil, domainErrors.ErrOperation
	}
	return orders, nil
}

// GetOrder returns order by id.
func (l *OrderLedger) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := l.orders.GetByID(ctx, id)
	if err != nil {
		return nil, l.readError("get order", err)
	}
	return order, nil
}

// FindByIdempotencyKey returns the order created by the checkout with key.
func (l *OrderLedger) FindByIdempotencyKey(ctx context.Context, key string) (*model.Order, error) {
	if strings.TrimSpace(key) == "" {
		return nil, domainErrors.ErrValidation
	}
	order, err := l.orders.GetByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, l.readError("find order by checkout key", err)
	}
	return order, nil
}

func (l *OrderLedger) readError(op string, err error) error {
	if errors.Is(err, domainErrors.ErrNotFound) {
		return domainErrors.ErrNotFound
	}
	l.logger.Error(op+" failed", slog.Any("error", err))
	return domainErrors.ErrOperation
}
