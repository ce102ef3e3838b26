package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/metrics"
	"github.com/polkiloo/storefront/internal/server/http/handlers"
	"github.com/polkiloo/storefront/internal/usecase"
	"github.com/polkiloo/storefront/internal/worker"
)

const readHeaderTimeout = 5 * time.Second

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewStorefrontFacade,
		func(f *StorefrontFacade) handlers.StorefrontFacade { return f },
		newHTTPServer,
		newAttemptSweeper,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:              p.Config.RunAddress,
		Handler:           withCORS(p.Router, p.Config.AllowedOrigins),
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// withCORS lets the browser storefront call the API with its session cookie.
func withCORS(next http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		return next
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Encoding", handlers.IdempotencyKeyHeader},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	})(next)
}

type workerParams struct {
	fx.In

	Attempts repository.CheckoutAttemptRepository
	Checkout *usecase.CheckoutUseCase
	Metrics  *metrics.Metrics
	Config   *config.Config
	Logger   *slog.Logger
}

func newAttemptSweeper(p workerParams) *worker.AttemptSweeper {
	return worker.NewAttemptSweeper(p.Attempts, p.Checkout, p.Metrics, worker.SweeperOptions{
		Interval:   p.Config.SweepInterval,
		StaleAfter: p.Config.StaleAfter,
		BatchSize:  p.Config.SweepBatchSize,
		Workers:    p.Config.SweepWorkers,
	}, p.Logger)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Worker     *worker.AttemptSweeper
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting storefront",
				slog.String("addr", p.Server.Addr),
				slog.String("gateway_mode", p.Config.Gateway.Mode),
				slog.Bool("events", p.Config.EventsEnabled()),
			)
			if p.Config.SweepEnabled {
				p.Worker.Start(ctx)
			}
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Worker.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("storefront stopped")
			return nil
		},
	})
}
