// Package testutil provides an in-memory database and fixtures for tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"food-ordering-api/config"
	"food-ordering-api/models"
)

// NewDB opens a fresh migrated in-memory sqlite database that lives for the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), config.GormConfig())
	require.NoError(t, err)

	// every pooled connection would otherwise get its own empty in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

// Password is the plaintext password of every fixture user.
const Password = "secret123"

var passwordHash = func() string {
	h, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}()

// CreateUser inserts an accepted user with the given role.
func CreateUser(t *testing.T, db *gorm.DB, role models.UserRole, email string) *models.User {
	t.Helper()
	u := &models.User{
		Name:           "User " + email,
		Email:          email,
		PasswordHash:   passwordHash,
		Role:           role,
		ApprovalStatus: models.ApprovalAccepted,
		Address:        "1 Main Street",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateRestaurant inserts a restaurant owned by a new restaurant-role user.
func CreateRestaurant(t *testing.T, db *gorm.DB, title string) *models.Restaurant {
	t.Helper()
	owner := CreateUser(t, db, models.RoleRestaurant, fmt.Sprintf("owner-%s@example.com", title))
	r := &models.Restaurant{OwnerID: owner.ID, Title: title, Address: title + " Road"}
	require.NoError(t, db.Create(r).Error)
	return r
}

// CreateFoodItem inserts an available food item.
func CreateFoodItem(t *testing.T, db *gorm.DB, restaurantID uint, name string, price, discount float64) *models.FoodItem {
	t.Helper()
	f := &models.FoodItem{
		RestaurantID: restaurantID,
		Name:         name,
		Price:        price,
		Discount:     discount,
		Category:     "Mains",
		IsAvailable:  true,
	}
	require.NoError(t, db.Create(f).Error)
	return f
}

var orderSeq atomic.Int64

// CreateOrder inserts an order with a single line in the given status.
func CreateOrder(t *testing.T, db *gorm.DB, userID uint, food *models.FoodItem, status models.OrderStatus) *models.Order {
	t.Helper()
	o := &models.Order{
		UserID:          userID,
		RestaurantID:    food.RestaurantID,
		Status:          status,
		PaymentMethod:   models.PaymentCash,
		DeliveryAddress: "1 Main Street",
		IdempotencyKey:  fmt.Sprintf("fixture-%d", orderSeq.Add(1)),
		Items: []models.OrderItem{
			{FoodItemID: food.ID, Name: food.Name, Quantity: 1, Price: food.Price, Discount: food.Discount},
		},
	}
	require.NoError(t, db.Create(o).Error)
	return o
}
