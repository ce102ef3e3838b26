package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// CartHandler exposes the server-side cart. Every response carries the
// authoritative cart so the browser copy can overwrite itself.
type CartHandler struct {
	facade CartFacade
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(facade CartFacade) *CartHandler {
	return &CartHandler{facade: facade}
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(c *gin.Context) {
	cart, err := h.facade.Cart(c.Request.Context(), CurrentSession(c).UserID)
	h.respond(c, cart, err, "")
}

// Add handles POST /api/cart/items.
func (h *CartHandler) Add(c *gin.Context) {
	var req dto.CartItemRequest
	if !bind(c, &req) {
		return
	}
	cart, err := h.facade.AddToCart(c.Request.Context(), CurrentSession(c).UserID, req.ProductID)
	h.respond(c, cart, err, "item added")
}

// Remove handles DELETE /api/cart/items/:productId.
func (h *CartHandler) Remove(c *gin.Context) {
	cart, err := h.facade.RemoveFromCart(c.Request.Context(), CurrentSession(c).UserID, c.Param("productId"))
	h.respond(c, cart, err, "item removed")
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(c *gin.Context) {
	cart, err := h.facade.ClearCart(c.Request.Context(), CurrentSession(c).UserID)
	h.respond(c, cart, err, "cart cleared")
}

// Merge handles POST /api/cart/merge.
func (h *CartHandler) Merge(c *gin.Context) {
	var req dto.CartMergeRequest
	if !bind(c, &req) {
		return
	}
	cart, err := h.facade.MergeCart(c.Request.Context(), CurrentSession(c).UserID, req.ProductIDs)
	h.respond(c, cart, err, "cart merged")
}

func (h *CartHandler) respond(c *gin.Context, cart model.Cart, err error, message string) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CartResponse{Status: dto.OK(message), Cart: toCartBody(cart)})
}

func toCartBody(cart model.Cart) dto.CartBody {
	items := make([]string, len(cart.Items))
	copy(items, cart.Items)
	return dto.CartBody{Items: items, Count: len(items)}
}
