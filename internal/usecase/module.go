package usecase

import (
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/metrics"
	"github.com/polkiloo/storefront/internal/pkg/cache"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewAuthUseCase,
	NewCatalogUseCase,
	newCartCache,
	NewCartUseCase,
	NewOrderLedger,
	newStatusPolicy,
	NewOrderStatusManager,
	newCheckoutMetrics,
	NewCheckoutUseCase,
)

func newCartCache(cfg *config.Config) *CartCache {
	return cache.NewLRU[int64, []string](cfg.CartCacheSize, cfg.CartCacheTTL)
}

func newStatusPolicy(cfg *config.Config) StatusPolicy {
	return StatusPolicy{StrictTransitions: cfg.StrictTransitions}
}

func newCheckoutMetrics(m *metrics.Metrics) CheckoutMetrics {
	return m
}
