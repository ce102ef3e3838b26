package dto

import "time"

// OrderItemBody is a product snapshot stored with an order.
type OrderItemBody struct {
	ProductID   string `json:"productId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

// PaymentBody is the payment outcome recorded on an order.
type PaymentBody struct {
	Success           bool   `json:"success"`
	TransactionID     string `json:"transactionId"`
	TransactionStatus string `json:"transactionStatus"`
	Amount            string `json:"amount"`
}

// OrderBody is the order view shared by buyer and admin endpoints.
type OrderBody struct {
	ID        string          `json:"id"`
	BuyerID   int64           `json:"buyerId"`
	BuyerName string          `json:"buyerName"`
	Items     []OrderItemBody `json:"items"`
	Payment   PaymentBody     `json:"payment"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// OrderResponse wraps a single order.
type OrderResponse struct {
	Status
	Order OrderBody `json:"order"`
}

// OrdersResponse wraps an order list.
type OrdersResponse struct {
	Status
	Orders []OrderBody `json:"orders"`
}

// StatusUpdateRequest is the admin payload for moving an order along its lifecycle.
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof='Not Processed' Processing Shipped Delivered Cancelled"`
}
