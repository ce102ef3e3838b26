package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	testhelpers "github.com/polkiloo/storefront/internal/test"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for sweeper")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestNewAttemptSweeperDefaults(t *testing.T) {
	sweeper := NewAttemptSweeper(&testhelpers.AttemptSourceStub{}, &testhelpers.AttemptResolverStub{}, nil, SweeperOptions{}, discardLogger())
	if sweeper.batchSize != 1 {
		t.Fatalf("expected batch size default to 1, got %d", sweeper.batchSize)
	}
	if sweeper.workers != 1 {
		t.Fatalf("expected workers default to 1, got %d", sweeper.workers)
	}
	if sweeper.interval != time.Minute {
		t.Fatalf("expected interval default to 1m, got %v", sweeper.interval)
	}
}

func TestAttemptSweeperSettlesStaleAttempts(t *testing.T) {
	source := &testhelpers.AttemptSourceStub{Batches: [][]model.CheckoutAttempt{{
		{Key: "a", BuyerID: 1, State: model.CheckoutStatePending},
		{Key: "b", BuyerID: 2, State: model.CheckoutStateCharged},
	}}}
	resolver := &testhelpers.AttemptResolverStub{
		ResolveFn: func(_ context.Context, attempt model.CheckoutAttempt) (model.CheckoutState, error) {
			if attempt.State == model.CheckoutStateCharged {
				return model.CheckoutStateInconsistent, nil
			}
			return model.CheckoutStateUnknown, nil
		},
	}
	metrics := &testhelpers.SweepMetricsStub{}
	sweeper := NewAttemptSweeper(source, resolver, metrics, SweeperOptions{
		Interval:   5 * time.Millisecond,
		StaleAfter: 10 * time.Minute,
		BatchSize:  10,
		Workers:    2,
	}, discardLogger())
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	sweeper.now = func() time.Time { return now }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweeper.Start(ctx)
	waitFor(t, func() bool { return resolver.ResolvedCount() == 2 })
	sweeper.Stop()

	if metrics.Count(string(model.CheckoutStateUnknown)) != 1 || metrics.Count(string(model.CheckoutStateInconsistent)) != 1 {
		t.Fatalf("unexpected swept counters: %v", metrics.States)
	}

	call, ok := source.LastCall()
	if !ok {
		t.Fatal("expected stale attempts query")
	}
	if !call.Before.Equal(now.Add(-10 * time.Minute)) {
		t.Fatalf("unexpected cutoff: %v", call.Before)
	}
	if call.Limit != 10 {
		t.Fatalf("expected limit 10, got %d", call.Limit)
	}
	if !slices.Equal(call.States, []model.CheckoutState{model.CheckoutStatePending, model.CheckoutStateCharged}) {
		t.Fatalf("unexpected states: %v", call.States)
	}
}

func TestAttemptSweeperSkipsBusyAndFailedAttempts(t *testing.T) {
	source := &testhelpers.AttemptSourceStub{Batches: [][]model.CheckoutAttempt{{
		{Key: "busy", State: model.CheckoutStatePending},
		{Key: "broken", State: model.CheckoutStateCharged},
		{Key: "settled", State: model.CheckoutStateCharged},
	}}}
	resolver := &testhelpers.AttemptResolverStub{
		ResolveFn: func(_ context.Context, attempt model.CheckoutAttempt) (model.CheckoutState, error) {
			switch attempt.Key {
			case "busy":
				return attempt.State, domainErrors.ErrCheckoutInProgress
			case "broken":
				return attempt.State, errors.New("db down")
			}
			return attempt.State, nil
		},
	}
	metrics := &testhelpers.SweepMetricsStub{}
	sweeper := NewAttemptSweeper(source, resolver, metrics, SweeperOptions{Interval: 5 * time.Millisecond, BatchSize: 3}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweeper.Start(ctx)
	waitFor(t, func() bool { return resolver.ResolvedCount() == 3 })
	sweeper.Stop()

	if len(metrics.States) != 0 {
		t.Fatalf("expected no settled attempts, got %v", metrics.States)
	}
	if len(sweeper.inFlight) != 0 {
		t.Fatalf("expected all claims released, got %v", sweeper.inFlight)
	}
}

func TestAttemptSweeperSurvivesListErrors(t *testing.T) {
	calls := make(chan struct{}, 8)
	source := &testhelpers.AttemptSourceStub{
		ListFn: func(context.Context, []model.CheckoutState, time.Time, int) ([]model.CheckoutAttempt, error) {
			select {
			case calls <- struct{}{}:
			default:
			}
			return nil, errors.New("db down")
		},
	}
	resolver := &testhelpers.AttemptResolverStub{}
	sweeper := NewAttemptSweeper(source, resolver, nil, SweeperOptions{Interval: 5 * time.Millisecond}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweeper.Start(ctx)
	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(time.Second):
			t.Fatal("expected repeated sweeps after list failure")
		}
	}
	sweeper.Stop()

	if resolver.ResolvedCount() != 0 {
		t.Fatalf("expected nothing resolved, got %d", resolver.ResolvedCount())
	}
}

func TestAttemptSweeperClaim(t *testing.T) {
	sweeper := NewAttemptSweeper(&testhelpers.AttemptSourceStub{}, &testhelpers.AttemptResolverStub{}, nil, SweeperOptions{}, discardLogger())

	if !sweeper.claim("k") {
		t.Fatal("expected first claim to succeed")
	}
	if sweeper.claim("k") {
		t.Fatal("expected second claim to be refused while in flight")
	}
	sweeper.release("k")
	if !sweeper.claim("k") {
		t.Fatal("expected claim after release")
	}
}

func TestAttemptSweeperStopWithoutStart(t *testing.T) {
	sweeper := NewAttemptSweeper(&testhelpers.AttemptSourceStub{}, &testhelpers.AttemptResolverStub{}, nil, SweeperOptions{}, discardLogger())
	done := make(chan struct{})
	go func() {
		sweeper.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected stop to return")
	}
}
