package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus represents all possible states of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentOnline PaymentMethod = "online"
)

type Order struct {
	ID              uint                 `json:"id" gorm:"primaryKey"`
	UserID          uint                 `json:"userId" gorm:"not null;index;uniqueIndex:idx_order_user_key"`
	User            *User                `json:"user,omitempty" gorm:"foreignKey:UserID"`
	RestaurantID    uint                 `json:"restaurantId" gorm:"not null;index"`
	Restaurant      *Restaurant          `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	Items           []OrderItem          `json:"items" gorm:"foreignKey:OrderID"`
	TotalAmount     float64              `json:"totalAmount" gorm:"not null"`
	Status          OrderStatus          `json:"status" gorm:"not null;index;default:'pending'"`
	PaymentMethod   PaymentMethod        `json:"paymentMethod" gorm:"not null;default:'cash'"`
	DeliveryAddress string               `json:"deliveryAddress" gorm:"not null"`
	OrderDate       time.Time            `json:"orderDate" gorm:"index"`
	IdempotencyKey  string               `json:"idempotencyKey" gorm:"not null;uniqueIndex:idx_order_user_key"`
	StatusHistory   []OrderStatusHistory `json:"statusHistory,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

// OrderItem is a snapshot of one ordered line. Price is the unit price charged.
type OrderItem struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	OrderID    uint      `json:"orderId" gorm:"not null;index"`
	FoodItemID uint      `json:"foodItemId" gorm:"not null;index"`
	FoodItem   *FoodItem `json:"foodItem,omitempty" gorm:"foreignKey:FoodItemID"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity" gorm:"not null"`
	Price      float64   `json:"price" gorm:"not null"`
	Discount   float64   `json:"discount"`
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"orderId" gorm:"not null;index"`
	FromStatus OrderStatus `json:"fromStatus"`
	ToStatus   OrderStatus `json:"toStatus" gorm:"not null"`
	ChangedBy  uint        `json:"changedBy"`
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// SumItems returns Σ price × quantity rounded to cents.
func SumItems(items []OrderItem) float64 {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total.Round(2).InexactFloat64()
}

// BeforeSave recomputes the total whenever the items are part of the write.
// A client-supplied total is never kept.
func (o *Order) BeforeSave(tx *gorm.DB) error {
	if len(o.Items) > 0 {
		o.TotalAmount = SumItems(o.Items)
	}
	return nil
}

// BeforeCreate stamps the order date when the caller left it empty.
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now()
	}
	return nil
}
