package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/polkiloo/storefront/internal/adapter/events"
)

const publishTimeout = 3 * time.Second

// publish delivers event on a detached context. Failures are only logged.
func publish(ctx context.Context, publisher events.Publisher, logger *slog.Logger, event events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("failed to publish event",
			slog.String("type", string(event.Type)),
			slog.String("key", event.Key),
			slog.Any("error", err),
		)
	}
}
