package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleCustomer   UserRole = "customer"
	RoleRestaurant UserRole = "restaurant"
	RoleAdmin      UserRole = "admin"
)

func (r UserRole) Valid() bool {
	return r == RoleCustomer || r == RoleRestaurant || r == RoleAdmin
}

// ApprovalStatus gates whether an account may authenticate.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalAccepted ApprovalStatus = "accepted"
	ApprovalRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) Valid() bool {
	return s == ApprovalPending || s == ApprovalAccepted || s == ApprovalRejected
}

// InitialApproval returns the approval state a freshly registered account starts in.
// Customers are accepted straight away; everyone else waits for an admin.
func InitialApproval(role UserRole) ApprovalStatus {
	if role == RoleCustomer {
		return ApprovalAccepted
	}
	return ApprovalPending
}

type User struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Name           string         `json:"name" gorm:"not null"`
	Email          string         `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash   string         `json:"-" gorm:"not null"`
	Role           UserRole       `json:"userType" gorm:"not null;index;default:'customer'"`
	ApprovalStatus ApprovalStatus `json:"approvalStatus" gorm:"not null;index;default:'pending'"`
	Address        string         `json:"address"`
	Phone          string         `json:"phone"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}
