package services

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"food-ordering-api/models"
)

type AuthService struct {
	DB  *gorm.DB
	Log logrus.FieldLogger
	// HashCost is the bcrypt cost for new passwords.
	HashCost int
}

func NewAuthService(db *gorm.DB, log logrus.FieldLogger) *AuthService {
	return &AuthService{DB: db, Log: log, HashCost: bcrypt.DefaultCost}
}

type RegisterIn struct {
	Name     string          `json:"name" validate:"required,max=100"`
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=6"`
	UserType models.UserRole `json:"userType" validate:"required"`
	Address  string          `json:"address"`
	Phone    string          `json:"phone"`
}

type LoginIn struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register creates an account. Customers are accepted immediately, restaurant owners
// and admins wait for approval.
func (s *AuthService) Register(in RegisterIn) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if !in.UserType.Valid() {
		return nil, ValidationError("userType must be one of [customer restaurant admin]")
	}

	var n int64
	if err := s.DB.Model(&models.User{}).Where("email = ?", in.Email).Count(&n).Error; err != nil {
		return nil, wrapInternal(err, "failed to check email")
	}
	if n > 0 {
		return nil, ConflictError("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.HashCost)
	if err != nil {
		return nil, wrapInternal(err, "failed to hash password")
	}
	user := &models.User{
		Name:           in.Name,
		Email:          in.Email,
		PasswordHash:   string(hash),
		Role:           in.UserType,
		ApprovalStatus: models.InitialApproval(in.UserType),
		Address:        strings.TrimSpace(in.Address),
		Phone:          strings.TrimSpace(in.Phone),
	}
	if err := s.DB.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ConflictError("email already registered")
		}
		return nil, wrapInternal(err, "failed to create user")
	}
	s.Log.WithFields(logrus.Fields{"userId": user.ID, "role": user.Role, "approval": user.ApprovalStatus}).
		Info("user registered")
	return user, nil
}

// Login checks credentials. Wrong email and wrong password are indistinguishable.
func (s *AuthService) Login(in LoginIn) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.DB.Where("email = ?", in.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ValidationError("invalid email or password")
		}
		return nil, wrapInternal(err, "failed to load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ValidationError("invalid email or password")
	}
	if user.ApprovalStatus != models.ApprovalAccepted {
		return nil, ForbiddenError("account is %s; wait for admin approval", user.ApprovalStatus)
	}
	return &user, nil
}

func (s *AuthService) Profile(userID uint) (*models.User, error) {
	var user models.User
	if err := s.DB.Omit("password_hash").First(&user, userID).Error; err != nil {
		return nil, lookup(err, "user")
	}
	return &user, nil
}

type ProfileIn struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=100"`
	Address *string `json:"address" validate:"omitempty,max=300"`
	Phone   *string `json:"phone" validate:"omitempty,max=30"`
}

// UpdateProfile changes the fields that were supplied.
func (s *AuthService) UpdateProfile(userID uint, in ProfileIn) (*models.User, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ValidationError("name cannot be empty")
		}
		updates["name"] = name
	}
	if in.Address != nil {
		updates["address"] = strings.TrimSpace(*in.Address)
	}
	if in.Phone != nil {
		updates["phone"] = strings.TrimSpace(*in.Phone)
	}
	if len(updates) > 0 {
		res := s.DB.Model(&models.User{}).Where("id = ?", userID).Updates(updates)
		if res.Error != nil {
			return nil, wrapInternal(res.Error, "failed to update profile")
		}
		if res.RowsAffected == 0 {
			return nil, NotFoundError("user not found")
		}
	}
	return s.Profile(userID)
}
