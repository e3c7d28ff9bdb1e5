package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"food-ordering-api/config"
	"food-ordering-api/handlers"
	"food-ordering-api/middleware"
	"food-ordering-api/models"
)

const (
	serviceName = "Food Ordering API"
	version     = "1.0.0"
)

// NewRouter builds the engine with the shared middleware, the health check and all
// API routes.
func NewRouter(cfg *config.Config, db *gorm.DB, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.CORS(cfg.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": serviceName,
			"version": version,
		})
	})
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the " + serviceName,
			"docs":    "/api/state-machine",
			"health":  "/health",
			"roles":   []models.UserRole{models.RoleCustomer, models.RoleRestaurant, models.RoleAdmin},
		})
	})

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"message": "Method not allowed"})
	})

	h := handlers.New(db, log, cfg.JWTSecret, cfg.JWTTTL)
	SetupRoutes(r, h, db, cfg.JWTSecret)
	return r
}

func SetupRoutes(r *gin.Engine, h *handlers.Handler, db *gorm.DB, secret []byte) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		// Auth
		public.POST("/register", h.Register)
		public.POST("/login", h.Login)
		public.POST("/auth/register", h.Register)
		public.POST("/auth/login", h.Login)

		// Catalog (no auth needed)
		public.GET("/restaurants", h.ListRestaurants)
		public.GET("/promoted", h.ListPromoted)
		public.GET("/restaurants/:id", h.GetRestaurant)
		public.GET("/restaurants/:id/menu", h.GetMenu)
		public.GET("/restaurants/:id/ratings", h.GetRestaurantRatings)
		public.GET("/food-items", h.ListFoodItems)
		public.GET("/categories", h.ListCategories)

		// State machine info
		public.GET("/state-machine", handlers.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired(db, secret), middleware.LoadRestaurant(db))
	{
		auth.GET("/profile", h.GetProfile)
		auth.PUT("/profile", h.UpdateProfile)
		auth.GET("/inbox", h.GetInbox)
		auth.POST("/feedback/admin",
			middleware.RoleRequired(models.RoleCustomer, models.RoleRestaurant),
			h.SendFeedbackToAdmin)
		auth.POST("/feedbacks/admin/send", middleware.RoleRequired(models.RoleAdmin), h.AdminBroadcast)
	}

	// ── Customer routes ────────────────────────────────────────────
	customer := r.Group("/api/customer")
	customer.Use(middleware.AuthRequired(db, secret), middleware.RoleRequired(models.RoleCustomer), middleware.LoadCart(db))
	{
		customer.GET("/cart", h.GetCart)
		customer.POST("/cart/add", h.AddToCart)
		customer.POST("/cart", h.AddToCart)
		customer.DELETE("/cart/clear", h.ClearCart)
		customer.DELETE("/cart", h.ClearCart)
		customer.PUT("/cart/:cartItemId", h.UpdateCartItem)
		customer.DELETE("/cart/:cartItemId", h.RemoveCartItem)

		customer.POST("/orders", h.PlaceOrder)
		customer.GET("/orders", h.GetMyOrders)
		customer.GET("/orders/:id", h.GetOrderDetail)
		customer.PUT("/orders/:id/cancel", h.CancelOrder)

		customer.POST("/feedback", h.SubmitRating)
		customer.POST("/ratings", h.SubmitRating)
		customer.GET("/ratings", h.GetMyRatingsGiven)
	}

	// ── Restaurant owner routes ────────────────────────────────────
	restaurant := r.Group("/api/restaurant")
	restaurant.Use(middleware.AuthRequired(db, secret), middleware.RoleRequired(models.RoleRestaurant), middleware.LoadRestaurant(db))
	{
		restaurant.POST("", h.CreateRestaurant)
		restaurant.GET("", h.GetMyRestaurant)
		restaurant.PUT("", h.UpdateRestaurant)

		restaurant.POST("/food-items", h.AddFoodItem)
		restaurant.PUT("/food-items/:itemId", h.UpdateFoodItem)
		restaurant.DELETE("/food-items/:itemId", h.DeleteFoodItem)

		restaurant.GET("/orders", h.GetRestaurantOrders)
		restaurant.PUT("/orders/:id/status", h.UpdateOrderStatus)

		restaurant.GET("/ratings", h.GetMyRatings)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired(db, secret), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/dashboard", h.AdminDashboard)

		admin.GET("/users", h.AdminGetAllUsers)
		admin.PATCH("/users/:id/approval", h.AdminSetApproval)
		admin.DELETE("/users/:id", h.AdminDeleteUser)

		admin.GET("/restaurants", h.AdminGetAllRestaurants)
		admin.DELETE("/restaurants/:id", h.AdminDeleteRestaurant)
		admin.PUT("/promoted", h.AdminSetPromoted)

		admin.GET("/categories", h.AdminGetCategories)
		admin.POST("/categories", h.AdminAddCategory)
		admin.PUT("/categories/:name", h.AdminRenameCategory)
		admin.DELETE("/categories/:name", h.AdminDeleteCategory)

		admin.GET("/orders", h.AdminGetAllOrders)

		admin.GET("/ratings", h.AdminGetRatings)
		admin.DELETE("/ratings/:id", h.AdminDeleteRating)
		admin.GET("/feedback/users", h.AdminGetUserFeedback)
		admin.PATCH("/feedback/users/:id", h.AdminSetUserFeedbackStatus)
		admin.GET("/feedback/restaurants", h.AdminGetRestaurantFeedback)
		admin.PATCH("/feedback/restaurants/:id", h.AdminSetRestaurantFeedbackStatus)
		admin.POST("/messages", h.AdminBroadcast)
		admin.GET("/messages", h.AdminGetSent)

		admin.GET("/reports/metrics", h.AdminMetrics)
		admin.GET("/reports/order-trend", h.AdminOrderTrend)
		admin.GET("/reports/top-restaurants", h.AdminTopRestaurants)
		admin.GET("/reports/category-popularity", h.AdminCategoryPopularity)
		admin.GET("/reports/rating-distribution", h.AdminRatingDistribution)
	}
}
