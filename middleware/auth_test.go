package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"food-ordering-api/middleware"
	"food-ordering-api/models"
	"food-ordering-api/testutil"
)

var secret = []byte("test-secret")

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(db *gorm.DB) *gin.Engine {
	r := gin.New()
	api := r.Group("/api", middleware.AuthRequired(db, secret), middleware.LoadRestaurant(db), middleware.LoadCart(db))
	api.GET("/me", func(c *gin.Context) {
		body := gin.H{
			"userId":        middleware.GetUserID(c),
			"role":          middleware.GetRole(c),
			"hasRestaurant": middleware.GetRestaurant(c) != nil,
			"hasCart":       middleware.GetCart(c) != nil,
		}
		if u := middleware.GetUser(c); u != nil {
			body["passwordHash"] = u.PasswordHash
		}
		c.JSON(http.StatusOK, body)
	})
	api.GET("/admin-only", middleware.RoleRequired(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func get(t *testing.T, r http.Handler, path, token string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w.Code, body
}

func token(t *testing.T, u *models.User, ttl time.Duration) string {
	t.Helper()
	tok, err := middleware.GenerateToken(u, secret, ttl)
	require.NoError(t, err)
	return tok
}

func TestAuthRequiredResolvesUser(t *testing.T) {
	db := testutil.NewDB(t)
	u := testutil.CreateUser(t, db, models.RoleCustomer, "c@example.com")
	r := newEngine(db)

	code, body := get(t, r, "/api/me", token(t, u, time.Hour))
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, u.ID, body["userId"])
	assert.Equal(t, "customer", body["role"])
	assert.Equal(t, "", body["passwordHash"], "hash is never loaded")
	assert.Equal(t, false, body["hasCart"])
	assert.Equal(t, false, body["hasRestaurant"])
}

func TestAuthRequiredRejects(t *testing.T) {
	db := testutil.NewDB(t)
	r := newEngine(db)
	u := testutil.CreateUser(t, db, models.RoleCustomer, "c@example.com")

	t.Run("missing header", func(t *testing.T) {
		code, body := get(t, r, "/api/me", "")
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.NotEmpty(t, body["message"])
	})

	t.Run("bad signature", func(t *testing.T) {
		tok, err := middleware.GenerateToken(u, []byte("other"), time.Hour)
		require.NoError(t, err)
		code, _ := get(t, r, "/api/me", tok)
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("expired", func(t *testing.T) {
		code, _ := get(t, r, "/api/me", token(t, u, -time.Minute))
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("deleted user", func(t *testing.T) {
		gone := testutil.CreateUser(t, db, models.RoleCustomer, "gone@example.com")
		tok := token(t, gone, time.Hour)
		require.NoError(t, db.Delete(gone).Error)
		code, _ := get(t, r, "/api/me", tok)
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("pending account", func(t *testing.T) {
		owner := testutil.CreateUser(t, db, models.RoleRestaurant, "owner@example.com")
		require.NoError(t, db.Model(owner).Update("approval_status", models.ApprovalPending).Error)
		code, body := get(t, r, "/api/me", token(t, owner, time.Hour))
		assert.Equal(t, http.StatusForbidden, code)
		assert.Contains(t, body["message"], "pending")
	})
}

func TestRoleRequiredNamesRoles(t *testing.T) {
	db := testutil.NewDB(t)
	r := newEngine(db)
	u := testutil.CreateUser(t, db, models.RoleCustomer, "c@example.com")
	admin := testutil.CreateUser(t, db, models.RoleAdmin, "admin@example.com")

	code, body := get(t, r, "/api/admin-only", token(t, u, time.Hour))
	assert.Equal(t, http.StatusForbidden, code)
	assert.Contains(t, body["message"], "'customer'")
	assert.Contains(t, body["message"], "admin")

	code, _ = get(t, r, "/api/admin-only", token(t, admin, time.Hour))
	assert.Equal(t, http.StatusNoContent, code)
}

func TestProfileResolvers(t *testing.T) {
	db := testutil.NewDB(t)
	r := newEngine(db)
	rest := testutil.CreateRestaurant(t, db, "Deli")
	var owner models.User
	require.NoError(t, db.First(&owner, rest.OwnerID).Error)
	customer := testutil.CreateUser(t, db, models.RoleCustomer, "c@example.com")
	require.NoError(t, db.Create(&models.Cart{UserID: customer.ID}).Error)

	_, body := get(t, r, "/api/me", token(t, &owner, time.Hour))
	assert.Equal(t, true, body["hasRestaurant"])
	assert.Equal(t, false, body["hasCart"])

	_, body = get(t, r, "/api/me", token(t, customer, time.Hour))
	assert.Equal(t, true, body["hasCart"])
	assert.Equal(t, false, body["hasRestaurant"])
}

func TestRequestLoggerEchoesID(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	r := gin.New()
	r.Use(middleware.RequestLogger(log))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(middleware.RequestIDHeader))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "abc-123", hook.LastEntry().Data["requestId"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Len(t, w.Header().Get(middleware.RequestIDHeader), 36, "a uuid is generated")
}
