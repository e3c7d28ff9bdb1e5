package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-ordering-api/middleware"
	"food-ordering-api/models"
	"food-ordering-api/statemachine"
)

// GetRestaurantOrders returns all orders for the restaurant owner
func (h *Handler) GetRestaurantOrders(c *gin.Context) {
	r, ok := ownRestaurant(c)
	if !ok {
		return
	}
	orders, summary, err := h.Orders.ListForRestaurant(r.ID, c.Query("status"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"restaurant":   r.Title,
		"orderSummary": summary,
		"count":        len(orders),
		"orders":       orders,
	})
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status"`
	Note   string             `json:"note"`
}

// UpdateOrderStatus handles restaurant's state transitions
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	r, ok := ownRestaurant(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.Orders.UpdateStatus(r, middleware.GetUserID(c), orderID, req.Status, req.Note)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":         "Order status updated",
		"order":           order,
		"validNextStates": statemachine.ValidTransitionsFrom(order.Status),
	})
}
