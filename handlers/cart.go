package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-ordering-api/middleware"
	"food-ordering-api/models"
	"food-ordering-api/services"
)

// customerCart returns the cart resolved by middleware, creating it on first use.
func (h *Handler) customerCart(c *gin.Context) (*models.Cart, bool) {
	if cart := middleware.GetCart(c); cart != nil {
		return cart, true
	}
	cart, err := h.Cart.GetOrCreate(middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return cart, true
}

func (h *Handler) respondCart(c *gin.Context, status int, msg string, cart *models.Cart) {
	view, err := h.Cart.Get(cart)
	if err != nil {
		h.fail(c, err)
		return
	}
	body := gin.H{"cart": view}
	if msg != "" {
		body["message"] = msg
	}
	c.JSON(status, body)
}

// GetCart returns the caller's cart with food item and restaurant details.
func (h *Handler) GetCart(c *gin.Context) {
	cart, ok := h.customerCart(c)
	if !ok {
		return
	}
	h.respondCart(c, http.StatusOK, "", cart)
}

// AddToCart adds a food item, merging with an existing line for the same item.
func (h *Handler) AddToCart(c *gin.Context) {
	var req services.AddToCartIn
	if !bindJSON(c, &req) {
		return
	}
	cart, ok := h.customerCart(c)
	if !ok {
		return
	}
	if _, err := h.Cart.AddItem(cart, req); err != nil {
		h.fail(c, err)
		return
	}
	h.respondCart(c, http.StatusOK, "Item added to cart", cart)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	itemID, ok := idParam(c, "cartItemId")
	if !ok {
		return
	}
	var req updateQuantityRequest
	if !bindJSON(c, &req) {
		return
	}
	cart, ok := h.customerCart(c)
	if !ok {
		return
	}
	if _, err := h.Cart.UpdateQuantity(cart, itemID, req.Quantity); err != nil {
		h.fail(c, err)
		return
	}
	h.respondCart(c, http.StatusOK, "Cart item updated", cart)
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	itemID, ok := idParam(c, "cartItemId")
	if !ok {
		return
	}
	cart, ok := h.customerCart(c)
	if !ok {
		return
	}
	if err := h.Cart.RemoveItem(cart, itemID); err != nil {
		h.fail(c, err)
		return
	}
	h.respondCart(c, http.StatusOK, "Item removed from cart", cart)
}

func (h *Handler) ClearCart(c *gin.Context) {
	cart, ok := h.customerCart(c)
	if !ok {
		return
	}
	if err := h.Cart.Clear(cart); err != nil {
		h.fail(c, err)
		return
	}
	h.respondCart(c, http.StatusOK, "Cart cleared", cart)
}
