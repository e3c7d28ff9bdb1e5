package models

import "time"

// FeedbackCustomer is a customer's rating of a restaurant, optionally tied to an order
// and a food item. A (user, order) or (user, food item) pair can only be rated once.
type FeedbackCustomer struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	UserID     uint        `json:"userId" gorm:"not null;index;uniqueIndex:idx_fbc_user_order;uniqueIndex:idx_fbc_user_food"`
	User       *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ReceiverID uint        `json:"receiverId" gorm:"not null;index"`
	Receiver   *Restaurant `json:"receiver,omitempty" gorm:"foreignKey:ReceiverID"`
	OrderID    *uint       `json:"orderId" gorm:"uniqueIndex:idx_fbc_user_order"`
	FoodItemID *uint       `json:"foodItemId" gorm:"index;uniqueIndex:idx_fbc_user_food"`
	Rating     int         `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Message    string      `json:"message" gorm:"type:text"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// FeedbackStatus is the admin-side handling state of a message.
type FeedbackStatus string

const (
	FeedbackNew      FeedbackStatus = "new"
	FeedbackPending  FeedbackStatus = "pending"
	FeedbackResolved FeedbackStatus = "resolved"
)

func (s FeedbackStatus) Valid() bool {
	return s == FeedbackNew || s == FeedbackPending || s == FeedbackResolved
}

// FeedbackUserToAdmin is a customer's message to the admin.
type FeedbackUserToAdmin struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"userId" gorm:"not null;index"`
	User      *User          `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Subject   string         `json:"subject"`
	Message   string         `json:"message" gorm:"type:text;not null"`
	Status    FeedbackStatus `json:"status" gorm:"not null;index;default:'new'"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// FeedbackRestaurant is a restaurant owner's message to the admin.
type FeedbackRestaurant struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	UserID       uint           `json:"userId" gorm:"not null;index"`
	RestaurantID *uint          `json:"restaurantId" gorm:"index"`
	Restaurant   *Restaurant    `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	Subject      string         `json:"subject"`
	Message      string         `json:"message" gorm:"type:text;not null"`
	Status       FeedbackStatus `json:"status" gorm:"not null;index;default:'new'"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// ReceiverRole is the audience of an admin-authored message.
type ReceiverRole string

const (
	ReceiverAllUsers           ReceiverRole = "allUsers"
	ReceiverAllRestaurants     ReceiverRole = "allRestaurants"
	ReceiverSpecificUser       ReceiverRole = "specificUser"
	ReceiverSpecificRestaurant ReceiverRole = "specificRestaurant"
)

func (r ReceiverRole) Valid() bool {
	switch r {
	case ReceiverAllUsers, ReceiverAllRestaurants, ReceiverSpecificUser, ReceiverSpecificRestaurant:
		return true
	}
	return false
}

// FeedbackAdmin is a message authored by the admin. Specific variants always address a
// User; a restaurant target is stored as its owner's user id.
type FeedbackAdmin struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	AdminID        uint           `json:"adminId" gorm:"not null;index"`
	ReceiverRole   ReceiverRole   `json:"receiverRole" gorm:"not null;index"`
	ReceiverUserID *uint          `json:"receiverUserId" gorm:"index"`
	Subject        string         `json:"subject"`
	Message        string         `json:"message" gorm:"type:text;not null"`
	Status         FeedbackStatus `json:"status" gorm:"not null;default:'new'"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}
