package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"food-ordering-api/models"
)

const (
	ctxUser   = "user"
	ctxUserID = "userID"
	ctxRole   = "role"
)

type Claims struct {
	UserID uint            `json:"userId"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for a given user
func GenerateToken(user *models.User, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// AuthRequired validates the bearer token, loads the caller and puts user, userID
// and role into the context. Accounts that are not accepted are refused.
func AuthRequired(db *gorm.DB, secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization header required (Bearer <token>)"})
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		var user models.User
		if err := db.Omit("password_hash").First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User no longer exists"})
				return
			}
			logrus.WithError(err).Error("auth: failed to load user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		if user.ApprovalStatus != models.ApprovalAccepted {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "Account is " + string(user.ApprovalStatus) + "; wait for admin approval",
			})
			return
		}

		c.Set(ctxUser, &user)
		c.Set(ctxUserID, user.ID)
		c.Set(ctxRole, user.Role)
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerRole := GetRole(c)
		for _, r := range roles {
			if callerRole == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"message": "Access denied for role '" + string(callerRole) + "'. Required role(s): " + rolesString(roles),
		})
	}
}

func rolesString(roles []models.UserRole) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}

// GetUserID extracts caller user ID from context
func GetUserID(c *gin.Context) uint {
	return c.GetUint(ctxUserID)
}

// GetRole extracts caller role from context
func GetRole(c *gin.Context) models.UserRole {
	val, _ := c.Get(ctxRole)
	role, _ := val.(models.UserRole)
	return role
}

// GetUser returns the authenticated caller. The password hash is never loaded.
func GetUser(c *gin.Context) *models.User {
	val, _ := c.Get(ctxUser)
	user, _ := val.(*models.User)
	return user
}
