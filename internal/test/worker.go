package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// ListStaleCall captures arguments of a stale attempt query.
type ListStaleCall struct {
	States []model.CheckoutState
	Before time.Time
	Limit  int
}

// AttemptSourceStub returns configured batches of stale attempts, one per call.
type AttemptSourceStub struct {
	Batches [][]model.CheckoutAttempt
	ListFn  func(context.Context, []model.CheckoutState, time.Time, int) ([]model.CheckoutAttempt, error)
	Calls   []ListStaleCall
	mu      sync.Mutex
	count   int32
}

// ListStale records the query and returns the next configured batch.
func (s *AttemptSourceStub) ListStale(ctx context.Context, states []model.CheckoutState, before time.Time, limit int) ([]model.CheckoutAttempt, error) {
	s.mu.Lock()
	s.Calls = append(s.Calls, ListStaleCall{States: states, Before: before, Limit: limit})
	s.mu.Unlock()

	if s.ListFn != nil {
		return s.ListFn(ctx, states, before, limit)
	}
	call := atomic.AddInt32(&s.count, 1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	return nil, nil
}

// LastCall returns the most recent query, if any.
func (s *AttemptSourceStub) LastCall() (ListStaleCall, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Calls) == 0 {
		return ListStaleCall{}, false
	}
	return s.Calls[len(s.Calls)-1], true
}

// AttemptResolverStub records resolved attempts.
type AttemptResolverStub struct {
	ResolveFn func(context.Context, model.CheckoutAttempt) (model.CheckoutState, error)
	Resolved  []model.CheckoutAttempt
	mu        sync.Mutex
}

// ResolveAbandoned records the attempt and returns ResolveFn's result or unknown.
func (s *AttemptResolverStub) ResolveAbandoned(ctx context.Context, attempt model.CheckoutAttempt) (model.CheckoutState, error) {
	s.mu.Lock()
	s.Resolved = append(s.Resolved, attempt)
	s.mu.Unlock()
	if s.ResolveFn != nil {
		return s.ResolveFn(ctx, attempt)
	}
	return model.CheckoutStateUnknown, nil
}

// ResolvedCount returns number of attempts handed to the resolver.
func (s *AttemptResolverStub) ResolvedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Resolved)
}

// SweepMetricsStub counts settled attempts per state.
type SweepMetricsStub struct {
	mu     sync.Mutex
	States map[string]int
}

// AttemptSwept increments state counter.
func (s *SweepMetricsStub) AttemptSwept(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.States == nil {
		s.States = make(map[string]int)
	}
	s.States[state]++
}

// Count returns counter for state.
func (s *SweepMetricsStub) Count(state string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.States[state]
}
