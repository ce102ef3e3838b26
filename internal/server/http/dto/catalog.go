package dto

// ProductBody is the public product view.
type ProductBody struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	HasPhoto    bool   `json:"hasPhoto"`
}

// ProductResponse wraps a single product.
type ProductResponse struct {
	Status
	Product ProductBody `json:"product"`
}
