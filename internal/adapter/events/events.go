package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// Type names an event published to the orders topic.
type Type string

const (
	TypeOrderCreated             Type = "order.created"
	TypeOrderStatusChanged       Type = "order.status_changed"
	TypePostPaymentInconsistency Type = "checkout.post_payment_inconsistency"
)

// Event is a single message. Key selects the partition.
type Event struct {
	Type       Type      `json:"type"`
	Key        string    `json:"-"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type orderItemPayload struct {
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

type orderPayload struct {
	OrderID        string             `json:"orderId"`
	BuyerID        int64              `json:"buyerId"`
	Status         model.OrderStatus  `json:"status"`
	Amount         decimal.Decimal    `json:"amount"`
	TransactionID  string             `json:"transactionId"`
	Items          []orderItemPayload `json:"items,omitempty"`
	PreviousStatus model.OrderStatus  `json:"previousStatus,omitempty"`
}

type inconsistencyPayload struct {
	BuyerID        int64           `json:"buyerId"`
	IdempotencyKey string          `json:"idempotencyKey"`
	TransactionID  string          `json:"transactionId"`
	Amount         decimal.Decimal `json:"amount"`
	Reason         string          `json:"reason"`
}

// OrderCreated describes a freshly recorded order.
func OrderCreated(order *model.Order) Event {
	items := make([]orderItemPayload, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, orderItemPayload{
			ProductID:   it.ProductID,
			Name:        it.Name,
			Description: it.Description,
			Price:       it.Price,
		})
	}
	return Event{
		Type:       TypeOrderCreated,
		Key:        order.ID.String(),
		OccurredAt: order.CreatedAt.UTC(),
		Payload: orderPayload{
			OrderID:       order.ID.String(),
			BuyerID:       order.BuyerID,
			Status:        order.Status,
			Amount:        order.Payment.Amount,
			TransactionID: order.Payment.TransactionID,
			Items:         items,
		},
	}
}

// OrderStatusChanged describes an administrator status update.
func OrderStatusChanged(order *model.Order, previous model.OrderStatus) Event {
	return Event{
		Type:       TypeOrderStatusChanged,
		Key:        order.ID.String(),
		OccurredAt: order.UpdatedAt.UTC(),
		Payload: orderPayload{
			OrderID:        order.ID.String(),
			BuyerID:        order.BuyerID,
			Status:         order.Status,
			Amount:         order.Payment.Amount,
			TransactionID:  order.Payment.TransactionID,
			PreviousStatus: previous,
		},
	}
}

// PostPaymentInconsistency is the alert raised when money was captured without an order.
func PostPaymentInconsistency(attempt model.CheckoutAttempt, cause error) Event {
	reason := ""
	if cause != nil {
		reason = cause.Error()
	}
	return Event{
		Type:       TypePostPaymentInconsistency,
		Key:        attempt.Key,
		OccurredAt: time.Now().UTC(),
		Payload: inconsistencyPayload{
			BuyerID:        attempt.BuyerID,
			IdempotencyKey: attempt.Key,
			TransactionID:  attempt.TransactionID,
			Amount:         attempt.Amount,
			Reason:         reason,
		},
	}
}
