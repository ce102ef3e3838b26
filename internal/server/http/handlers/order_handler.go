package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.facade.BuyerOrders(c.Request.Context(), CurrentSession(c))
	h.respondList(c, orders, err)
}

// ListAll handles GET /api/admin/orders.
func (h *OrderHandler) ListAll(c *gin.Context) {
	orders, err := h.facade.AllOrders(c.Request.Context(), CurrentSession(c))
	h.respondList(c, orders, err)
}

// UpdateStatus handles PUT /api/admin/orders/:id/status.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("invalid order id"))
		return
	}
	var req dto.StatusUpdateRequest
	if !bind(c, &req) {
		return
	}

	order, err := h.facade.SetOrderStatus(c.Request.Context(), CurrentSession(c), orderID, model.OrderStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OrderResponse{Status: dto.OK("status updated"), Order: toOrderBody(*order)})
}

func (h *OrderHandler) respondList(c *gin.Context, orders []model.Order, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	response := make([]dto.OrderBody, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderBody(o))
	}
	c.JSON(http.StatusOK, dto.OrdersResponse{Status: dto.OK(""), Orders: response})
}

func toOrderBody(order model.Order) dto.OrderBody {
	return dto.OrderBody{
		ID:        order.ID.String(),
		BuyerID:   order.BuyerID,
		BuyerName: order.BuyerName,
		Items:     toOrderItemBodies(order.Items),
		Payment: dto.PaymentBody{
			Success:           order.Payment.Success,
			TransactionID:     order.Payment.TransactionID,
			TransactionStatus: order.Payment.TransactionStatus,
			Amount:            order.Payment.Amount.StringFixed(2),
		},
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
}

func toOrderItemBodies(items []model.OrderItem) []dto.OrderItemBody {
	bodies := make([]dto.OrderItemBody, 0, len(items))
	for _, it := range items {
		bodies = append(bodies, dto.OrderItemBody{
			ProductID:   it.ProductID,
			Name:        it.Name,
			Description: it.Description,
			Price:       it.Price.StringFixed(2),
		})
	}
	return bodies
}
