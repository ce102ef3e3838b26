package dto

// ClientTokenResponse carries the gateway token and the priced cart shown on the payment page.
type ClientTokenResponse struct {
	Status
	ClientToken string          `json:"clientToken"`
	Items       []OrderItemBody `json:"items"`
	Total       string          `json:"total"`
}

// PaymentRequest carries the single-use nonce produced by the gateway client library.
type PaymentRequest struct {
	Nonce string `json:"nonce" validate:"required,max=4096"`
}

// HealthResponse reports readiness.
type HealthResponse struct {
	Status
	Database string `json:"database"`
}
