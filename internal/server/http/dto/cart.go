package dto

// CartItemRequest adds a single product reference to the cart.
type CartItemRequest struct {
	ProductID string `json:"productId" validate:"required,max=64"`
}

// CartMergeRequest carries the browser-side cart collected before login.
type CartMergeRequest struct {
	ProductIDs []string `json:"productIds" validate:"max=500,dive,required,max=64"`
}

// CartBody is the authoritative cart the browser overwrites its copy with.
type CartBody struct {
	Items []string `json:"items"`
	Count int      `json:"count"`
}

// CartResponse wraps the authoritative cart.
type CartResponse struct {
	Status
	Cart CartBody `json:"cart"`
}
