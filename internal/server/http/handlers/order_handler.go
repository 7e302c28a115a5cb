package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/digimarket/internal/domain/model"
	"github.com/polkiloo/digimarket/internal/server/http/dto"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Place handles POST /api/orders.
func (h *OrderHandler) Place(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	lines := make([]model.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, model.LineItem{OfferID: item.OfferID, Quantity: item.Quantity})
	}

	order, err := h.facade.PlaceOrder(c.Request.Context(), CurrentActor(c), lines)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(order))
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.facade.Orders(c.Request.Context(), CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		response = append(response, toOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	order, err := h.facade.Order(c.Request.Context(), CurrentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// Transition returns handler applying cancel, ship or deliver to the order in the path.
func (h *OrderHandler) Transition(action model.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		order, err := h.facade.ChangeOrderStatus(c.Request.Context(), CurrentActor(c), action, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(order))
	}
}
