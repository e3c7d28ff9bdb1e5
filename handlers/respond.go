package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"food-ordering-api/services"
)

var kindStatus = map[services.Kind]int{
	services.KindValidation:   http.StatusBadRequest,
	services.KindConflict:     http.StatusBadRequest,
	services.KindUnauthorized: http.StatusUnauthorized,
	services.KindForbidden:    http.StatusForbidden,
	services.KindNotFound:     http.StatusNotFound,
}

// fail writes err as {"message": ...}. Errors without a known kind are logged and
// hidden behind a generic 500.
func (h *Handler) fail(c *gin.Context, err error) {
	var se *services.Error
	if errors.As(err, &se) {
		if status, ok := kindStatus[se.Kind]; ok {
			c.JSON(status, gin.H{"message": se.Message})
			return
		}
	}
	h.Log.WithFields(logrus.Fields{
		"method":    c.Request.Method,
		"path":      c.FullPath(),
		"requestId": c.GetString("requestID"),
	}).WithError(err).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": msg})
}

// bindJSON decodes the body; a malformed body answers 400 and returns false.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// idParam parses a positive numeric path parameter.
func idParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(v), true
}

// uintQuery parses an optional numeric query parameter; absent means zero.
func uintQuery(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(v), true
}

func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return v, true
}
