package models

import (
	"time"

	"gorm.io/datatypes"
)

// GlobalConfigKey addresses the single AdminConfig row.
const GlobalConfigKey = "global"

// AdminConfig holds process-wide settings curated by the admin.
type AdminConfig struct {
	ID                    uint                        `json:"-" gorm:"primaryKey"`
	Key                   string                      `json:"-" gorm:"uniqueIndex;not null"`
	Categories            datatypes.JSONSlice[string] `json:"categories"`
	PromotedRestaurantIDs datatypes.JSONSlice[uint]   `json:"promotedRestaurantIds"`
	CreatedAt             time.Time                   `json:"createdAt"`
	UpdatedAt             time.Time                   `json:"updatedAt"`
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Restaurant{},
		&FoodItem{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&OrderStatusHistory{},
		&FeedbackCustomer{},
		&FeedbackUserToAdmin{},
		&FeedbackRestaurant{},
		&FeedbackAdmin{},
		&AdminConfig{},
	}
}
