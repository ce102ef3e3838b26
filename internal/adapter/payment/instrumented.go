package payment

import (
	"context"
	"errors"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// Observer receives gateway call latencies.
type Observer interface {
	ObserveGateway(operation, outcome string, elapsed time.Duration)
}

// Instrumented decorates a Gateway with latency observation.
type Instrumented struct {
	next     Gateway
	observer Observer
	now      func() time.Time
}

func NewInstrumented(next Gateway, observer Observer) *Instrumented {
	return &Instrumented{next: next, observer: observer, now: time.Now}
}

func (i *Instrumented) ClientToken(ctx context.Context) (string, error) {
	start := i.now()
	token, err := i.next.ClientToken(ctx)
	i.observer.ObserveGateway("client_token", outcome(err, true), i.now().Sub(start))
	return token, err
}

func (i *Instrumented) Charge(ctx context.Context, req model.ChargeRequest) (model.ChargeResult, error) {
	start := i.now()
	result, err := i.next.Charge(ctx, req)
	i.observer.ObserveGateway("charge", outcome(err, result.Success), i.now().Sub(start))
	return result, err
}

func outcome(err error, success bool) string {
	switch {
	case errors.Is(err, domainErrors.ErrGatewayAuth):
		return "auth_error"
	case errors.Is(err, domainErrors.ErrChargeOutcomeUnknown):
		return "unknown"
	case err != nil:
		return "error"
	case !success:
		return "declined"
	default:
		return "success"
	}
}
