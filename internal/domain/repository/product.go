package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// ProductRepository is the read-only catalog view.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*model.Product, error)
	// GetByIDs returns the products found; missing ids are simply absent from the map.
	GetByIDs(ctx context.Context, ids []string) (map[string]model.Product, error)
}
