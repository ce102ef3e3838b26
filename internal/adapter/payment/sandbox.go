package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// Test nonces understood by the sandbox.
const (
	NonceValid    = "fake-valid-nonce"
	NonceDeclined = "fake-processor-declined-visa-nonce"
)

// Sandbox is an in-process gateway for development and tests.
type Sandbox struct {
	credentials Credentials
}

func NewSandbox(credentials Credentials) *Sandbox {
	return &Sandbox{credentials: credentials}
}

func (s *Sandbox) ClientToken(ctx context.Context) (string, error) {
	if !s.credentials.complete() {
		return "", domainErrors.ErrGatewayAuth
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "sandbox_" + strings.ReplaceAll(uuid.NewString(), "-", ""), nil
}

func (s *Sandbox) Charge(ctx context.Context, req model.ChargeRequest) (model.ChargeResult, error) {
	if !s.credentials.complete() {
		return model.ChargeResult{}, domainErrors.ErrGatewayAuth
	}
	if err := ctx.Err(); err != nil {
		return model.ChargeResult{}, fmt.Errorf("%w: %v", domainErrors.ErrChargeOutcomeUnknown, err)
	}

	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	switch req.Nonce {
	case NonceValid:
		return model.ChargeResult{Success: true, TransactionID: id, Status: "submitted_for_settlement"}, nil
	case NonceDeclined:
		return model.ChargeResult{Success: false, TransactionID: id, Status: "processor_declined", Message: "Do Not Honor"}, nil
	default:
		return model.ChargeResult{Success: false, Status: "gateway_rejected", Message: "Unknown or expired payment_method_nonce."}, nil
	}
}
