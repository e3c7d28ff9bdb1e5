package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"food-ordering-api/models"
)

const (
	ctxRestaurant = "restaurant"
	ctxCart       = "cart"
)

// LoadRestaurant attaches the restaurant owned by a restaurant-role caller, or nil
// when the owner has not created one yet.
func LoadRestaurant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) != models.RoleRestaurant {
			c.Next()
			return
		}
		var r models.Restaurant
		err := db.Where("owner_id = ?", GetUserID(c)).First(&r).Error
		switch {
		case err == nil:
			c.Set(ctxRestaurant, &r)
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.Set(ctxRestaurant, (*models.Restaurant)(nil))
		default:
			logrus.WithError(err).Error("profile: failed to load restaurant")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		c.Next()
	}
}

// LoadCart attaches the cart of a customer-role caller, or nil before first use.
func LoadCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) != models.RoleCustomer {
			c.Next()
			return
		}
		var cart models.Cart
		err := db.Where("user_id = ?", GetUserID(c)).First(&cart).Error
		switch {
		case err == nil:
			c.Set(ctxCart, &cart)
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.Set(ctxCart, (*models.Cart)(nil))
		default:
			logrus.WithError(err).Error("profile: failed to load cart")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		c.Next()
	}
}

// GetRestaurant returns the caller's restaurant or nil.
func GetRestaurant(c *gin.Context) *models.Restaurant {
	val, _ := c.Get(ctxRestaurant)
	r, _ := val.(*models.Restaurant)
	return r
}

// GetCart returns the caller's cart or nil.
func GetCart(c *gin.Context) *models.Cart {
	val, _ := c.Get(ctxCart)
	cart, _ := val.(*models.Cart)
	return cart
}
