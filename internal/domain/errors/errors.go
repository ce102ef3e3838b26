package errors

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrValidation     = errors.New("validation error")
	ErrAuthentication = errors.New("authentication required")
	ErrAuthorization  = errors.New("insufficient role")
	ErrOperation      = errors.New("something went wrong")

	ErrGatewayAuth          = errors.New("payment gateway authentication failed")
	ErrChargeDeclined       = errors.New("charge declined")
	ErrChargeOutcomeUnknown = errors.New("charge outcome unknown")
	ErrCheckoutInProgress   = errors.New("checkout already in progress")

	ErrPostPaymentInconsistency = errors.New("payment captured but order was not recorded")
)

// PostPaymentInconsistencyError describes a successful charge whose order could not be persisted.
// It requires manual reconciliation and must never be retried automatically.
type PostPaymentInconsistencyError struct {
	IdempotencyKey string
	TransactionID  string
	Err            error
}

func (e *PostPaymentInconsistencyError) Error() string {
	return fmt.Sprintf("%s (transaction %s): %v", ErrPostPaymentInconsistency, e.TransactionID, e.Err)
}

func (e *PostPaymentInconsistencyError) Unwrap() error {
	return e.Err
}

func (e *PostPaymentInconsistencyError) Is(target error) bool {
	return target == ErrPostPaymentInconsistency
}
