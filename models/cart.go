package models

import "time"

// Cart holds a customer's pending selections. One per user, created lazily.
type Cart struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    uint       `json:"userId" gorm:"uniqueIndex;not null"`
	Items     []CartItem `json:"items" gorm:"foreignKey:CartID"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartItem is one line in a cart. Lines of the same cart may belong to different restaurants.
type CartItem struct {
	ID                    uint        `json:"id" gorm:"primaryKey"`
	CartID                uint        `json:"cartId" gorm:"not null;index"`
	FoodItemID            uint        `json:"foodItemId" gorm:"not null"`
	FoodItem              *FoodItem   `json:"foodItem,omitempty" gorm:"foreignKey:FoodItemID"`
	RestaurantID          uint        `json:"restaurantId" gorm:"not null;index"`
	Restaurant            *Restaurant `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	Quantity              int         `json:"quantity" gorm:"not null"`
	PriceAtTimeOfAddition float64     `json:"priceAtTimeOfAddition" gorm:"not null"`
	AddedAt               time.Time   `json:"addedAt"`
}
