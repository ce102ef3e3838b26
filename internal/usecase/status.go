package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/adapter/events"
	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// StatusPolicy configures which transitions SetStatus accepts.
type StatusPolicy struct {
	// StrictTransitions limits updates to forward steps and cancellation
	// of unfinished orders. Any status is accepted otherwise.
	StrictTransitions bool
}

// OrderStatusManager owns status changes and the buyer/admin order views.
type OrderStatusManager struct {
	ledger    *OrderLedger
	orders    repository.OrderRepository
	publisher events.Publisher
	policy    StatusPolicy
	logger    *slog.Logger
}

// NewOrderStatusManager constructs OrderStatusManager.
func NewOrderStatusManager(ledger *OrderLedger, orders repository.OrderRepository, publisher events.Publisher, policy StatusPolicy, logger *slog.Logger) *OrderStatusManager {
	return &OrderStatusManager{
		ledger:    ledger,
		orders:    orders,
		publisher: publisher,
		policy:    policy,
		logger:    logger.With(slog.String("component", "order_status")),
	}
}

// SetStatus changes order status on behalf of an administrator.
func (m *OrderStatusManager) SetStatus(ctx context.Context, session model.Session, orderID uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	if !session.IsAdmin() {
		return nil, domainErrors.ErrAuthorization
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domainErrors.ErrValidation, status)
	}
	if orderID == uuid.Nil {
		return nil, fmt.Errorf("%w: order id is required", domainErrors.ErrValidation)
	}

	current, err := m.ledger.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if m.policy.StrictTransitions && !current.Status.CanAdvanceTo(status) {
		return nil, fmt.Errorf("%w: cannot move order from %q to %q", domainErrors.ErrValidation, current.Status, status)
	}

	updated, err := m.orders.UpdateStatus(ctx, orderID, status)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrNotFound
		}
		m.logger.Error("failed to update order status", slog.String("order_id", orderID.String()), slog.Any("error", err))
		return nil, domainErrors.ErrOperation
	}

	m.logger.Info("order status changed",
		slog.String("order_id", orderID.String()),
		slog.String("from", string(current.Status)),
		slog.String("to", string(status)),
		slog.Int64("admin_id", session.UserID),
	)
	publish(ctx, m.publisher, m.logger, events.OrderStatusChanged(updated, current.Status))
	return updated, nil
}

// BuyerOrders returns the caller's own orders.
func (m *OrderStatusManager) BuyerOrders(ctx context.Context, session model.Session) ([]model.Order, error) {
	if session.UserID <= 0 {
		return nil, domainErrors.ErrAuthentication
	}
	return m.ledger.ListOrdersForBuyer(ctx, session.UserID)
}

// AllOrders returns the administrator view, newest first.
func (m *OrderStatusManager) AllOrders(ctx context.Context, session model.Session) ([]model.Order, error) {
	if !session.IsAdmin() {
		return nil, domainErrors.ErrAuthorization
	}
	return m.ledger.ListAllOrders(ctx)
}
