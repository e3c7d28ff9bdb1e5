package models

import "time"

type Restaurant struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	OwnerID       uint       `json:"ownerId" gorm:"uniqueIndex;not null"`
	Owner         *User      `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Title         string     `json:"title" gorm:"not null"`
	Description   string     `json:"description"`
	Address       string     `json:"address"`
	Image         string     `json:"image"`
	AverageRating *float64   `json:"averageRating"` // nil until the first rating arrives
	FoodItems     []FoodItem `json:"foodItems,omitempty" gorm:"foreignKey:RestaurantID"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type FoodItem struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	RestaurantID uint        `json:"restaurantId" gorm:"not null;index"`
	Restaurant   *Restaurant `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	Name         string      `json:"name" gorm:"not null"`
	Description  string      `json:"description"`
	Price        float64     `json:"price" gorm:"not null"`
	Discount     float64     `json:"discount" gorm:"not null;default:0"` // percentage, 0-100
	Category     string      `json:"category" gorm:"index"`
	Image        string      `json:"image"`
	IsAvailable  bool        `json:"isAvailable" gorm:"default:true"`
	Rating       *float64    `json:"rating"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}
