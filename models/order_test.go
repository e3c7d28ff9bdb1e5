package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"food-ordering-api/models"
	"food-ordering-api/testutil"
)

func TestSumItems(t *testing.T) {
	items := []models.OrderItem{
		{Price: 0.1, Quantity: 3},
		{Price: 2.35, Quantity: 2},
	}
	assert.Equal(t, 5.0, models.SumItems(items))
	assert.Zero(t, models.SumItems(nil))
}

func TestOrderTotalIsRecomputedOnSave(t *testing.T) {
	db := testutil.NewDB(t)
	customer := testutil.CreateUser(t, db, models.RoleCustomer, "c@example.com")
	r := testutil.CreateRestaurant(t, db, "Deli")
	f := testutil.CreateFoodItem(t, db, r.ID, "Bagel", 4, 0)

	order := &models.Order{
		UserID:          customer.ID,
		RestaurantID:    r.ID,
		TotalAmount:     0.01, // forged
		DeliveryAddress: "x",
		IdempotencyKey:  "k1",
		Items: []models.OrderItem{
			{FoodItemID: f.ID, Name: "Bagel", Quantity: 3, Price: 4},
			{FoodItemID: f.ID, Name: "Bagel", Quantity: 1, Price: 2.5},
		},
	}
	require.NoError(t, db.Create(order).Error)

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, 14.5, stored.TotalAmount)
	assert.False(t, stored.OrderDate.IsZero())
	assert.Equal(t, models.StatusPending, stored.Status)

	// a full save with edited items recomputes again
	require.NoError(t, db.Preload("Items").First(&stored, order.ID).Error)
	stored.Items[0].Quantity = 1
	stored.TotalAmount = 999
	require.NoError(t, db.Session(&gorm.Session{FullSaveAssociations: true}).Save(&stored).Error)
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, 6.5, stored.TotalAmount)

	// a status-only update leaves the total alone
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", models.StatusPreparing).Error)
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, 6.5, stored.TotalAmount)
}
