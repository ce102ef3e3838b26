package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*model.Order, error)
	ListByBuyer(ctx context.Context, buyerID int64) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error)
}
