package payment

import (
	"context"
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// Gateway isolates interaction with the card payment processor.
//
// Charge returns a nil error with Success=false when the processor declined
// the payment. Errors are reserved for misconfiguration (ErrGatewayAuth) and
// for calls whose outcome is unknown (ErrChargeOutcomeUnknown).
type Gateway interface {
	ClientToken(ctx context.Context) (string, error)
	Charge(ctx context.Context, req model.ChargeRequest) (model.ChargeResult, error)
}

// Credentials identify the merchant at the processor.
type Credentials struct {
	MerchantID string
	PublicKey  string
	PrivateKey string
}

func (c Credentials) complete() bool {
	return c.MerchantID != "" && c.PublicKey != "" && c.PrivateKey != ""
}

// Config is injected into gateway constructors.
type Config struct {
	URL         string
	Credentials Credentials
	Timeout     time.Duration
}
