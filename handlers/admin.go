package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-ordering-api/middleware"
	"food-ordering-api/services"
)

// ── Orders ──────────────────────────────────────────────────────────────────

// AdminGetAllOrders returns all orders with a status summary and delivered revenue
func (h *Handler) AdminGetAllOrders(c *gin.Context) {
	restaurantID, ok := uintQuery(c, "restaurantId")
	if !ok {
		return
	}
	userID, ok := uintQuery(c, "userId")
	if !ok {
		return
	}
	list, err := h.Orders.ListAll(services.AdminOrderFilter{
		Status:       c.Query("status"),
		RestaurantID: restaurantID,
		UserID:       userID,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orderSummary": list.Summary,
		"totalRevenue": list.Revenue,
		"count":        list.Count,
		"orders":       list.Orders,
	})
}

// ── Users ───────────────────────────────────────────────────────────────────

// AdminGetAllUsers returns users filtered by role and approval status
func (h *Handler) AdminGetAllUsers(c *gin.Context) {
	users, err := h.Admin.ListUsers(c.Query("role"), c.Query("approvalStatus"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(users), "users": users})
}

type approvalRequest struct {
	ApprovalStatus string `json:"approvalStatus"`
}

func (h *Handler) AdminSetApproval(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req approvalRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.Admin.SetApproval(userID, req.ApprovalStatus)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Approval status updated", "user": user})
}

func (h *Handler) AdminDeleteUser(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Admin.DeleteUser(middleware.GetUserID(c), userID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// ── Restaurants ─────────────────────────────────────────────────────────────

// AdminGetAllRestaurants returns all restaurants with their owners
func (h *Handler) AdminGetAllRestaurants(c *gin.Context) {
	restaurants, err := h.Admin.ListRestaurants()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(restaurants), "restaurants": restaurants})
}

// AdminDeleteRestaurant removes a restaurant with its menu, orders and ratings.
func (h *Handler) AdminDeleteRestaurant(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Admin.DeleteRestaurant(id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Restaurant deleted"})
}

type promotedRequest struct {
	RestaurantIDs []uint `json:"restaurantIds"`
}

func (h *Handler) AdminSetPromoted(c *gin.Context) {
	var req promotedRequest
	if !bindJSON(c, &req) {
		return
	}
	ids, err := h.Admin.SetPromoted(req.RestaurantIDs)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Promoted restaurants updated", "restaurantIds": ids})
}

// ── Categories ──────────────────────────────────────────────────────────────

type categoryRequest struct {
	Name string `json:"name"`
}

func (h *Handler) AdminGetCategories(c *gin.Context) {
	categories, err := h.Admin.Categories()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) AdminAddCategory(c *gin.Context) {
	var req categoryRequest
	if !bindJSON(c, &req) {
		return
	}
	categories, err := h.Admin.AddCategory(req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Category added", "categories": categories})
}

func (h *Handler) AdminRenameCategory(c *gin.Context) {
	var req categoryRequest
	if !bindJSON(c, &req) {
		return
	}
	categories, err := h.Admin.RenameCategory(c.Param("name"), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category renamed", "categories": categories})
}

func (h *Handler) AdminDeleteCategory(c *gin.Context) {
	categories, err := h.Admin.DeleteCategory(c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted", "categories": categories})
}

// ── Feedback ────────────────────────────────────────────────────────────────

func (h *Handler) AdminGetRatings(c *gin.Context) {
	ratings, err := h.Feedback.ListAllRatings()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(ratings), "ratings": ratings})
}

// AdminDeleteRating removes a rating and recomputes the affected averages.
func (h *Handler) AdminDeleteRating(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Feedback.DeleteRating(id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rating deleted"})
}

func (h *Handler) AdminGetUserFeedback(c *gin.Context) {
	list, err := h.Feedback.ListUserFeedback(c.Query("status"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(list), "feedback": list})
}

func (h *Handler) AdminGetRestaurantFeedback(c *gin.Context) {
	list, err := h.Feedback.ListRestaurantFeedback(c.Query("status"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(list), "feedback": list})
}

type feedbackStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) AdminSetUserFeedbackStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req feedbackStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	fb, err := h.Feedback.SetUserFeedbackStatus(id, req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Feedback status updated", "feedback": fb})
}

func (h *Handler) AdminSetRestaurantFeedbackStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req feedbackStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	fb, err := h.Feedback.SetRestaurantFeedbackStatus(id, req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Feedback status updated", "feedback": fb})
}

// AdminBroadcast sends a message to an audience or to one user or restaurant.
func (h *Handler) AdminBroadcast(c *gin.Context) {
	var req services.BroadcastIn
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.Feedback.Broadcast(middleware.GetUserID(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Message sent", "feedback": msg})
}

func (h *Handler) AdminGetSent(c *gin.Context) {
	list, err := h.Feedback.ListSent()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(list), "messages": list})
}

// ── Dashboard & reports ─────────────────────────────────────────────────────

func (h *Handler) AdminDashboard(c *gin.Context) {
	counts, err := h.Admin.DashboardCounts()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"counts": counts})
}

func (h *Handler) AdminMetrics(c *gin.Context) {
	m, err := h.Reports.Metrics()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"metrics": m})
}

// AdminOrderTrend reports orders and revenue per day over the last ?days.
func (h *Handler) AdminOrderTrend(c *gin.Context) {
	days, ok := intQuery(c, "days")
	if !ok {
		return
	}
	points, err := h.Reports.OrderTrend(days)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": len(points), "trend": points})
}

func (h *Handler) AdminTopRestaurants(c *gin.Context) {
	limit, ok := intQuery(c, "limit")
	if !ok {
		return
	}
	top, err := h.Reports.TopRestaurants(limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"restaurants": top})
}

func (h *Handler) AdminCategoryPopularity(c *gin.Context) {
	list, err := h.Reports.CategoryPopularity()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": list})
}

func (h *Handler) AdminRatingDistribution(c *gin.Context) {
	dist, err := h.Reports.RatingDistribution()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"distribution": dist})
}
