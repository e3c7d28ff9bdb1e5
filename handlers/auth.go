package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-ordering-api/middleware"
	"food-ordering-api/models"
	"food-ordering-api/services"
)

func (h *Handler) issueToken(c *gin.Context, user *models.User) (string, bool) {
	token, err := middleware.GenerateToken(user, h.JWTSecret, h.JWTTTL)
	if err != nil {
		h.fail(c, err)
		return "", false
	}
	return token, true
}

// Register creates a new user account
func (h *Handler) Register(c *gin.Context) {
	var req services.RegisterIn
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.Auth.Register(req)
	if err != nil {
		h.fail(c, err)
		return
	}
	token, ok := h.issueToken(c, user)
	if !ok {
		return
	}

	msg := "Account created successfully"
	if user.ApprovalStatus != models.ApprovalAccepted {
		msg = "Account created; an admin must approve it before you can sign in"
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg, "token": token, "user": user})
}

// Login authenticates a user and returns a JWT
func (h *Handler) Login(c *gin.Context) {
	var req services.LoginIn
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.Auth.Login(req)
	if err != nil {
		h.fail(c, err)
		return
	}
	token, ok := h.issueToken(c, user)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "token": token, "user": user})
}

// GetProfile returns the authenticated user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.Auth.Profile(middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req services.ProfileIn
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.Auth.UpdateProfile(middleware.GetUserID(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": user})
}
