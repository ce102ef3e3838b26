package model

import "github.com/shopspring/decimal"

// ChargeRequest is submitted to the payment gateway.
type ChargeRequest struct {
	Nonce          string
	Amount         decimal.Decimal
	IdempotencyKey string
}

// ChargeResult is the deterministic outcome of a charge the gateway answered.
type ChargeResult struct {
	Success       bool
	TransactionID string
	Status        string
	Message       string
}

// PaymentOutcome is embedded into an order at creation time.
type PaymentOutcome struct {
	Success           bool
	TransactionID     string
	TransactionStatus string
	Amount            decimal.Decimal
}

// NewPaymentOutcome builds order payment data from a gateway result.
func NewPaymentOutcome(result ChargeResult, amount decimal.Decimal) PaymentOutcome {
	return PaymentOutcome{
		Success:           result.Success,
		TransactionID:     result.TransactionID,
		TransactionStatus: result.Status,
		Amount:            amount,
	}
}
