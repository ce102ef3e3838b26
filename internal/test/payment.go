package test

import (
	"context"
	"sync"

	"github.com/polkiloo/storefront/internal/adapter/events"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// GatewayStub records charges and answers with configured results.
type GatewayStub struct {
	mu sync.Mutex

	TokenFn  func(context.Context) (string, error)
	ChargeFn func(context.Context, model.ChargeRequest) (model.ChargeResult, error)
	Charges  []model.ChargeRequest
}

// ClientToken returns "client-token" unless overridden.
func (s *GatewayStub) ClientToken(ctx context.Context) (string, error) {
	if s.TokenFn != nil {
		return s.TokenFn(ctx)
	}
	return "client-token", nil
}

// Charge records request and succeeds unless overridden.
func (s *GatewayStub) Charge(ctx context.Context, req model.ChargeRequest) (model.ChargeResult, error) {
	s.mu.Lock()
	s.Charges = append(s.Charges, req)
	s.mu.Unlock()
	if s.ChargeFn != nil {
		return s.ChargeFn(ctx, req)
	}
	return model.ChargeResult{Success: true, TransactionID: "tx-1", Status: "submitted_for_settlement"}, nil
}

// ChargeCount returns number of submitted charges.
func (s *GatewayStub) ChargeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Charges)
}

// PublisherStub collects published events.
type PublisherStub struct {
	mu     sync.Mutex
	Events []events.Event
	Err    error
	Closed bool
}

func (s *PublisherStub) Publish(_ context.Context, event events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Events = append(s.Events, event)
	return nil
}

func (s *PublisherStub) Close() error {
	s.Closed = true
	return nil
}

// Types lists published event types in order.
func (s *PublisherStub) Types() []events.Type {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]events.Type, 0, len(s.Events))
	for _, e := range s.Events {
		types = append(types, e.Type)
	}
	return types
}

// CheckoutMetricsStub counts reported outcomes.
type CheckoutMetricsStub struct {
	mu              sync.Mutex
	Outcomes        map[string]int
	Inconsistencies int
}

func (s *CheckoutMetricsStub) CheckoutOutcome(outcome string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Outcomes == nil {
		s.Outcomes = map[string]int{}
	}
	s.Outcomes[outcome]++
}

func (s *CheckoutMetricsStub) PostPaymentInconsistency() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Inconsistencies++
}

// Count returns how many times outcome was reported.
func (s *CheckoutMetricsStub) Count(outcome string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Outcomes[outcome]
}
