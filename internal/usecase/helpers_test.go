package usecase

import (
	"io"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/pkg/cache"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestCartCache() *CartCache {
	return cache.NewLRU[int64, []string](16, time.Minute)
}

var (
	lamp  = model.Product{ID: "p1", Name: "Lamp", Description: "Desk lamp", Price: decimal.RequireFromString("10.50")}
	chair = model.Product{ID: "p2", Name: "Chair", Description: "Office chair", Price: decimal.RequireFromString("4.25")}
)
