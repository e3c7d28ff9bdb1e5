package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-ordering-api/middleware"
	"food-ordering-api/models"
	"food-ordering-api/services"
)

// ownRestaurant returns the caller's restaurant or answers 404.
func ownRestaurant(c *gin.Context) (*models.Restaurant, bool) {
	r := middleware.GetRestaurant(c)
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "No restaurant found for your account; create one first"})
		return nil, false
	}
	return r, true
}

// ── Restaurant Management ────────────────────────────────────────────────────

// CreateRestaurant lets a restaurant-role user create their restaurant
func (h *Handler) CreateRestaurant(c *gin.Context) {
	var req services.RestaurantIn
	if !bindJSON(c, &req) {
		return
	}
	restaurant, err := h.Catalog.CreateRestaurant(middleware.GetUserID(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Restaurant created", "restaurant": restaurant})
}

// GetMyRestaurant fetches the restaurant owned by the logged-in user
func (h *Handler) GetMyRestaurant(c *gin.Context) {
	r, ok := ownRestaurant(c)
	if !ok {
		return
	}
	restaurant, items, err := h.Catalog.Menu(r.ID, "", "")
	if err != nil {
		h.fail(c, err)
		return
	}
	restaurant.FoodItems = items
	c.JSON(http.StatusOK, gin.H{"restaurant": restaurant})
}

// UpdateRestaurant updates restaurant details
func (h *Handler) UpdateRestaurant(c *gin.Context) {
	r, ok := ownRestaurant(c)
	if !ok {
		return
	}
	var req services.RestaurantUpdate
	if !bindJSON(c, &req) {
		return
	}
	restaurant, err := h.Catalog.UpdateRestaurant(r, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Restaurant updated", "restaurant": restaurant})
}

// ── Menu Management ─────────────────────────────────────────────────────────

// AddFoodItem adds a new item to the restaurant's menu
func (h *Handler) AddFoodItem(c *gin.Context) {
	r, ok := ownRestaurant(c)
	if !ok {
		return
	}
	var req services.FoodItemIn
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.Catalog.CreateFoodItem(r, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Food item added", "foodItem": item})
}

// UpdateFoodItem updates a food item (only by the owner)
func (h *Handler) UpdateFoodItem(c *gin.Context) {
	r, ok := ownRestaurant(c)
	if !ok {
		return
	}
	itemID, ok := idParam(c, "itemId")
	if !ok {
		return
	}
	var req services.FoodItemUpdate
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.Catalog.UpdateFoodItem(r, itemID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Food item updated", "foodItem": item})
}

// DeleteFoodItem removes a food item
func (h *Handler) DeleteFoodItem(c *gin.Context) {
	r, ok := ownRestaurant(c)
	if !ok {
		return
	}
	itemID, ok := idParam(c, "itemId")
	if !ok {
		return
	}
	if err := h.Catalog.DeleteFoodItem(r, itemID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Food item deleted"})
}

// GetMyRatings lists ratings the caller's restaurant has received.
func (h *Handler) GetMyRatings(c *gin.Context) {
	r, ok := ownRestaurant(c)
	if !ok {
		return
	}
	ratings, err := h.Feedback.ListForRestaurant(r.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"averageRating": r.AverageRating,
		"count":         len(ratings),
		"ratings":       ratings,
	})
}
