package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-ordering-api/middleware"
	"food-ordering-api/services"
)

// SubmitRating stores a customer's rating for a restaurant, an order or a food item.
func (h *Handler) SubmitRating(c *gin.Context) {
	var req services.RatingIn
	if !bindJSON(c, &req) {
		return
	}
	fb, err := h.Feedback.SubmitRating(middleware.GetUserID(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Thanks for your feedback", "feedback": fb})
}

func (h *Handler) GetMyRatingsGiven(c *gin.Context) {
	ratings, err := h.Feedback.ListByUser(middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(ratings), "ratings": ratings})
}

// SendFeedbackToAdmin lets customers and restaurant owners write to the admin.
func (h *Handler) SendFeedbackToAdmin(c *gin.Context) {
	var req services.MessageIn
	if !bindJSON(c, &req) {
		return
	}
	fb, err := h.Feedback.SendToAdmin(middleware.GetUser(c), middleware.GetRestaurant(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Feedback sent", "feedback": fb})
}

// GetInbox returns admin messages addressed to the caller or their audience.
func (h *Handler) GetInbox(c *gin.Context) {
	messages, err := h.Feedback.Inbox(middleware.GetUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(messages), "messages": messages})
}
