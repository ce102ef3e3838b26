package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus describes administrator-driven fulfilment lifecycle.
type OrderStatus string

const (
	OrderStatusNotProcessed OrderStatus = "Not Processed"
	OrderStatusProcessing   OrderStatus = "Processing"
	OrderStatusShipped      OrderStatus = "Shipped"
	OrderStatusDelivered    OrderStatus = "Delivered"
	OrderStatusCancelled    OrderStatus = "Cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusNotProcessed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// Valid reports whether status is one of the enumerated values.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no forward progression exists from status.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanAdvanceTo reports whether next follows s in the forward-only lifecycle,
// where Cancelled is reachable from any non-terminal status.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	if !next.Valid() || s.Terminal() {
		return s == next
	}
	if next == OrderStatusCancelled || next == s {
		return true
	}
	return rank(next) == rank(s)+1
}

func rank(s OrderStatus) int {
	for i, known := range OrderStatuses {
		if s == known {
			return i
		}
	}
	return -1
}

// OrderItem is a product snapshot taken when the order was created.
type OrderItem struct {
	ProductID   string
	Name        string
	Description string
	Price       decimal.Decimal
}

// Order is an immutable purchase record; only Status changes after creation.
type Order struct {
	ID             uuid.UUID
	BuyerID        int64
	BuyerName      string
	Items          []OrderItem
	Payment        PaymentOutcome
	Status         OrderStatus
	IdempotencyKey string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SnapshotItems copies product fields that must survive product deletion.
func SnapshotItems(refs []string, products map[string]Product) []OrderItem {
	items := make([]OrderItem, 0, len(refs))
	for _, ref := range refs {
		p := products[ref]
		items = append(items, OrderItem{
			ProductID:   ref,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
		})
	}
	return items
}

// Total sums snapshot prices.
func Total(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price)
	}
	return total
}
