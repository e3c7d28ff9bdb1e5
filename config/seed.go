package config

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"food-ordering-api/models"
)

// SeedAdmin creates the first admin account from ADMIN_EMAIL / ADMIN_PASSWORD.
// It is a no-op when the variables are missing or the email is already taken.
func SeedAdmin(db *gorm.DB, cfg *Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		logrus.Info("skip seeding admin: ADMIN_EMAIL/ADMIN_PASSWORD not set")
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", cfg.AdminEmail).First(&existing).Error
	if err == nil {
		logrus.WithField("email", cfg.AdminEmail).Info("admin already exists")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := models.User{
		Name:           cfg.AdminName,
		Email:          cfg.AdminEmail,
		PasswordHash:   string(hash),
		Role:           models.RoleAdmin,
		ApprovalStatus: models.ApprovalAccepted,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	logrus.WithField("email", admin.Email).Info("admin account seeded")
	return nil
}
