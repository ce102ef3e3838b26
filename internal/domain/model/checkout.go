package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutState tracks a checkout attempt keyed by its idempotency token.
type CheckoutState string

const (
	CheckoutStatePending      CheckoutState = "pending"
	CheckoutStateCharged      CheckoutState = "charged"
	CheckoutStateCompleted    CheckoutState = "completed"
	CheckoutStateDeclined     CheckoutState = "declined"
	CheckoutStateUnknown      CheckoutState = "unknown"
	CheckoutStateInconsistent CheckoutState = "inconsistent"
)

// CheckoutAttempt is the durable guard against charging the same checkout twice.
type CheckoutAttempt struct {
	Key           string
	BuyerID       int64
	Amount        decimal.Decimal
	State         CheckoutState
	TransactionID string
	OrderID       *uuid.UUID
	Failure       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CheckoutPreview is what the payment page needs before card collection.
type CheckoutPreview struct {
	ClientToken string
	Items       []OrderItem
	Total       decimal.Decimal
}
