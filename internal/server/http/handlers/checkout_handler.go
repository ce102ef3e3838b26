package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// IdempotencyKeyHeader lets a client pin retries of one checkout to a single charge.
const IdempotencyKeyHeader = "Idempotency-Key"

// CheckoutHandler exposes the payment endpoints.
type CheckoutHandler struct {
	facade CheckoutFacade
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(facade CheckoutFacade) *CheckoutHandler {
	return &CheckoutHandler{facade: facade}
}

// Token handles GET /api/checkout/token.
func (h *CheckoutHandler) Token(c *gin.Context) {
	preview, err := h.facade.PrepareCheckout(c.Request.Context(), CurrentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ClientTokenResponse{
		Status:      dto.OK(""),
		ClientToken: preview.ClientToken,
		Items:       toOrderItemBodies(preview.Items),
		Total:       preview.Total.StringFixed(2),
	})
}

// Pay handles POST /api/checkout/payment.
func (h *CheckoutHandler) Pay(c *gin.Context) {
	var req dto.PaymentRequest
	if !bind(c, &req) {
		return
	}
	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	if len(key) > 255 {
		c.JSON(http.StatusBadRequest, dto.Fail("idempotency key is too long"))
		return
	}

	order, err := h.facade.Checkout(c.Request.Context(), CurrentSession(c), req.Nonce, key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OrderResponse{Status: dto.OK("order placed"), Order: toOrderBody(*order)})
}
