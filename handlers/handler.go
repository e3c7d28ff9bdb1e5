package handlers

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"food-ordering-api/services"
)

// Handler carries the services behind the HTTP endpoints.
type Handler struct {
	Auth     *services.AuthService
	Catalog  *services.CatalogService
	Cart     *services.CartService
	Orders   *services.OrderService
	Feedback *services.FeedbackService
	Admin    *services.AdminService
	Reports  *services.ReportService
	Log      logrus.FieldLogger

	JWTSecret []byte
	JWTTTL    time.Duration
}

func New(db *gorm.DB, log logrus.FieldLogger, secret []byte, ttl time.Duration) *Handler {
	cart := services.NewCartService(db, log)
	return &Handler{
		Auth:      services.NewAuthService(db, log),
		Catalog:   services.NewCatalogService(db, log),
		Cart:      cart,
		Orders:    services.NewOrderService(db, cart, log),
		Feedback:  services.NewFeedbackService(db, log),
		Admin:     services.NewAdminService(db, log),
		Reports:   services.NewReportService(db, log),
		Log:       log,
		JWTSecret: secret,
		JWTTTL:    ttl,
	}
}
