package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-ordering-api/models"
	"food-ordering-api/services"
	"food-ordering-api/statemachine"
)

// ListRestaurants returns restaurants matching the optional category, search and
// location filters (public)
func (h *Handler) ListRestaurants(c *gin.Context) {
	restaurants, err := h.Catalog.ListRestaurants(services.RestaurantFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Location: c.Query("location"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(restaurants), "restaurants": restaurants})
}

// GetRestaurant returns a single restaurant
func (h *Handler) GetRestaurant(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	restaurant, err := h.Catalog.GetRestaurant(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"restaurant": restaurant})
}

// GetMenu returns the menu for a specific restaurant (public)
func (h *Handler) GetMenu(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	restaurant, items, err := h.Catalog.Menu(id, c.Query("category"), c.Query("search"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"restaurant": restaurant,
		"count":      len(items),
		"menu":       items,
	})
}

// GetRestaurantRatings lists the ratings a restaurant has received.
func (h *Handler) GetRestaurantRatings(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if _, err := h.Catalog.GetRestaurant(id); err != nil {
		h.fail(c, err)
		return
	}
	ratings, err := h.Feedback.ListForRestaurant(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(ratings), "ratings": ratings})
}

func (h *Handler) ListFoodItems(c *gin.Context) {
	restaurantID, ok := uintQuery(c, "restaurantId")
	if !ok {
		return
	}
	items, err := h.Catalog.ListFoodItems(services.MenuFilter{
		RestaurantID:  restaurantID,
		Category:      c.Query("category"),
		Search:        c.Query("search"),
		AvailableOnly: c.Query("available") == "true",
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "foodItems": items})
}

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.Catalog.Categories()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) ListPromoted(c *gin.Context) {
	restaurants, err := h.Catalog.PromotedRestaurants()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(restaurants), "restaurants": restaurants})
}

// GetStateMachineInfo returns the full state machine for informational purposes
func GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"stateMachine":   statemachine.GetAllTransitions(),
		"terminalStates": []models.OrderStatus{models.StatusDelivered, models.StatusCancelled},
		"description":    "Food Ordering Order Lifecycle State Machine",
	})
}
