package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// CatalogUseCase exposes read-only product lookups.
type CatalogUseCase struct {
	products repository.ProductRepository
	logger   *slog.Logger
}

func NewCatalogUseCase(products repository.ProductRepository, logger *slog.Logger) *CatalogUseCase {
	return &CatalogUseCase{products: products, logger: logger.With(slog.String("component", "catalog"))}
}

// GetProduct returns product by id without photo bytes.
func (u *CatalogUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domainErrors.ErrValidation
	}
	product, err := u.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrNotFound
		}
		u.logger.Error("failed to load product", slog.String("product_id", id), slog.Any("error", err))
		return nil, domainErrors.ErrOperation
	}
	return product, nil
}
