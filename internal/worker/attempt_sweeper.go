package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// AttemptSource lists checkout attempts that stopped changing.
type AttemptSource interface {
	ListStale(ctx context.Context, states []model.CheckoutState, before time.Time, limit int) ([]model.CheckoutAttempt, error)
}

// AttemptResolver settles a single abandoned attempt.
type AttemptResolver interface {
	ResolveAbandoned(ctx context.Context, attempt model.CheckoutAttempt) (model.CheckoutState, error)
}

// SweepMetrics counts settled attempts.
type SweepMetrics interface {
	AttemptSwept(state string)
}

// abandonedStates are the states a checkout leaves on its own once it finishes.
var abandonedStates = []model.CheckoutState{model.CheckoutStatePending, model.CheckoutStateCharged}

// AttemptSweeper periodically settles checkout attempts left pending or charged
// by a process that stopped mid-checkout.
type AttemptSweeper struct {
	source     AttemptSource
	resolver   AttemptResolver
	metrics    SweepMetrics
	interval   time.Duration
	staleAfter time.Duration
	batchSize  int
	workers    int
	logger     *slog.Logger
	now        func() time.Time

	jobs     chan model.CheckoutAttempt
	inFlight map[string]struct{}
	flightMu sync.Mutex
	wg       sync.WaitGroup
	cancel   context.CancelFunc
	mu       sync.Mutex
}

// SweeperOptions tunes AttemptSweeper.
type SweeperOptions struct {
	Interval   time.Duration
	StaleAfter time.Duration
	BatchSize  int
	Workers    int
}

// NewAttemptSweeper constructs the sweeper worker pool.
func NewAttemptSweeper(source AttemptSource, resolver AttemptResolver, metrics SweepMetrics, opts SweeperOptions, logger *slog.Logger) *AttemptSweeper {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	return &AttemptSweeper{
		source:     source,
		resolver:   resolver,
		metrics:    metrics,
		interval:   opts.Interval,
		staleAfter: opts.StaleAfter,
		batchSize:  opts.BatchSize,
		workers:    opts.Workers,
		logger:     logger,
		now:        time.Now,
		jobs:       make(chan model.CheckoutAttempt, opts.BatchSize*opts.Workers),
		inFlight:   make(map[string]struct{}),
	}
}

// Start launches background sweeping.
func (s *AttemptSweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(runCtx)
	}

	s.wg.Add(1)
	go s.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (s *AttemptSweeper) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *AttemptSweeper) dispatch(ctx context.Context) {
	defer s.wg.Done()
	defer close(s.jobs)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fetchAndDispatch(ctx)
		}
	}
}

func (s *AttemptSweeper) fetchAndDispatch(ctx context.Context) {
	cutoff := s.now().Add(-s.staleAfter)
	attempts, err := s.source.ListStale(ctx, abandonedStates, cutoff, s.batchSize)
	if err != nil {
		s.logger.Error("list stale checkout attempts failed", slog.String("error", err.Error()))
		return
	}
	for _, attempt := range attempts {
		if !s.claim(attempt.Key) {
			continue
		}
		select {
		case <-ctx.Done():
			s.release(attempt.Key)
			return
		case s.jobs <- attempt:
		}
	}
}

func (s *AttemptSweeper) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case attempt, ok := <-s.jobs:
			if !ok {
				return
			}
			s.handleAttempt(ctx, attempt)
		}
	}
}

func (s *AttemptSweeper) handleAttempt(ctx context.Context, attempt model.CheckoutAttempt) {
	defer s.release(attempt.Key)

	state, err := s.resolver.ResolveAbandoned(ctx, attempt)
	switch {
	case errors.Is(err, domainErrors.ErrCheckoutInProgress):
		s.logger.Debug("checkout attempt busy, retrying next sweep", slog.String("idempotency_key", attempt.Key))
		return
	case err != nil:
		s.logger.Error("resolve abandoned checkout attempt failed",
			slog.String("idempotency_key", attempt.Key),
			slog.String("error", err.Error()),
		)
		return
	}
	if state == attempt.State {
		return
	}
	s.logger.Info("abandoned checkout attempt settled",
		slog.String("idempotency_key", attempt.Key),
		slog.String("from", string(attempt.State)),
		slog.String("to", string(state)),
	)
	if s.metrics != nil {
		s.metrics.AttemptSwept(string(state))
	}
}

// claim keeps an attempt from being queued twice while a worker still holds it.
func (s *AttemptSweeper) claim(key string) bool {
	s.flightMu.Lock()
	defer s.flightMu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		return false
	}
	s.inFlight[key] = struct{}{}
	return true
}

func (s *AttemptSweeper) release(key string) {
	s.flightMu.Lock()
	delete(s.inFlight, key)
	s.flightMu.Unlock()
}
