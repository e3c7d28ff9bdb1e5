package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"food-ordering-api/middleware"
	"food-ordering-api/services"
)

const IdempotencyKeyHeader = "Idempotency-Key"

// PlaceOrder creates a new order (customer only). The Idempotency-Key header, when
// present, takes precedence over the body field.
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req services.PlaceOrderIn
	if !bindJSON(c, &req) {
		return
	}
	if key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader)); key != "" {
		req.IdempotencyKey = key
	}

	res, err := h.Orders.Place(middleware.GetUser(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header(IdempotencyKeyHeader, res.IdempotencyKey)

	status, msg := http.StatusCreated, "Order placed successfully"
	if res.Replayed {
		status, msg = http.StatusOK, "Order already placed with this idempotency key"
	}
	c.JSON(status, gin.H{
		"message":        msg,
		"order":          res.Order,
		"idempotencyKey": res.IdempotencyKey,
		"cartPruned":     res.CartPruned,
	})
}

// GetMyOrders returns all orders for the logged-in customer
func (h *Handler) GetMyOrders(c *gin.Context) {
	orders, err := h.Orders.ListForCustomer(middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetOrderDetail returns a single order's full detail with history
func (h *Handler) GetOrderDetail(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := h.Orders.GetForCustomer(middleware.GetUserID(c), orderID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// CancelOrder cancels an order (customer can cancel pending or preparing)
func (h *Handler) CancelOrder(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := h.Orders.Cancel(middleware.GetUserID(c), orderID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully", "order": order})
}
