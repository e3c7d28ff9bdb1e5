package services

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"food-ordering-api/models"
)

// loadAdminConfig reads the global settings row, creating it on first use.
func loadAdminConfig(db *gorm.DB) (*models.AdminConfig, error) {
	var cfg models.AdminConfig
	err := db.Where(models.AdminConfig{Key: models.GlobalConfigKey}).FirstOrCreate(&cfg).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = db.Where(models.AdminConfig{Key: models.GlobalConfigKey}).First(&cfg).Error
	}
	if err != nil {
		return nil, wrapInternal(err, "failed to load admin settings")
	}
	return &cfg, nil
}

type AdminService struct {
	DB  *gorm.DB
	Log logrus.FieldLogger
}

func NewAdminService(db *gorm.DB, log logrus.FieldLogger) *AdminService {
	return &AdminService{DB: db, Log: log}
}

// ListUsers returns all users, optionally filtered by role and approval status.
func (s *AdminService) ListUsers(role, approval string) ([]models.User, error) {
	q := s.DB.Omit("password_hash")
	if role != "" {
		if !models.UserRole(role).Valid() {
			return nil, ValidationError("role must be one of [customer restaurant admin]")
		}
		q = q.Where("role = ?", role)
	}
	if approval != "" {
		if !models.ApprovalStatus(approval).Valid() {
			return nil, ValidationError("approvalStatus must be one of [pending accepted rejected]")
		}
		q = q.Where("approval_status = ?", approval)
	}
	var users []models.User
	if err := q.Order("created_at desc, id desc").Find(&users).Error; err != nil {
		return nil, wrapInternal(err, "failed to list users")
	}
	return users, nil
}

func (s *AdminService) SetApproval(userID uint, status string) (*models.User, error) {
	st := models.ApprovalStatus(status)
	if !st.Valid() {
		return nil, ValidationError("approvalStatus must be one of [pending accepted rejected]")
	}
	var user models.User
	if err := s.DB.Omit("password_hash").First(&user, userID).Error; err != nil {
		return nil, lookup(err, "user")
	}
	if err := s.DB.Model(&user).Update("approval_status", st).Error; err != nil {
		return nil, wrapInternal(err, "failed to update approval status")
	}
	user.ApprovalStatus = st
	s.Log.WithFields(logrus.Fields{"userId": user.ID, "approval": st}).Info("approval status changed")
	return &user, nil
}

// DeleteUser removes a user and everything that belongs to them in one transaction.
// An admin cannot delete their own account.
func (s *AdminService) DeleteUser(adminID, userID uint) error {
	if adminID == userID {
		return ValidationError("you cannot delete your own account")
	}
	var user models.User
	if err := s.DB.Omit("password_hash").First(&user, userID).Error; err != nil {
		return lookup(err, "user")
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var restaurant models.Restaurant
		err := tx.Where("owner_id = ?", user.ID).First(&restaurant).Error
		switch {
		case err == nil:
			if err := deleteRestaurantTx(tx, &restaurant); err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		var cartIDs []uint
		if err := tx.Model(&models.Cart{}).Where("user_id = ?", user.ID).Pluck("id", &cartIDs).Error; err != nil {
			return err
		}
		if len(cartIDs) > 0 {
			if err := tx.Where("cart_id IN ?", cartIDs).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", cartIDs).Delete(&models.Cart{}).Error; err != nil {
				return err
			}
		}

		var orderIDs []uint
		if err := tx.Model(&models.Order{}).Where("user_id = ?", user.ID).Pluck("id", &orderIDs).Error; err != nil {
			return err
		}
		if err := deleteOrdersTx(tx, orderIDs); err != nil {
			return err
		}

		var ratings []models.FeedbackCustomer
		if err := tx.Where("user_id = ?", user.ID).Find(&ratings).Error; err != nil {
			return err
		}
		if len(ratings) > 0 {
			if err := tx.Where("user_id = ?", user.ID).Delete(&models.FeedbackCustomer{}).Error; err != nil {
				return err
			}
			for _, fb := range ratings {
				if err := recomputeRatings(tx, s.Log, fb.ReceiverID, fb.FoodItemID); err != nil {
					return err
				}
			}
		}

		for _, m := range []any{&models.FeedbackUserToAdmin{}, &models.FeedbackRestaurant{}} {
			if err := tx.Where("user_id = ?", user.ID).Delete(m).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("receiver_user_id = ?", user.ID).Delete(&models.FeedbackAdmin{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		var se *Error
		if errors.As(err, &se) {
			return err
		}
		return wrapInternal(err, "failed to delete user")
	}
	s.Log.WithFields(logrus.Fields{"userId": user.ID, "role": user.Role}).Info("user deleted")
	return nil
}

// ListRestaurants returns every restaurant with its owner.
func (s *AdminService) ListRestaurants() ([]models.Restaurant, error) {
	var out []models.Restaurant
	err := s.DB.Preload("Owner", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "email", "approval_status")
	}).Order("created_at desc, id desc").Find(&out).Error
	if err != nil {
		return nil, wrapInternal(err, "failed to list restaurants")
	}
	return out, nil
}

// DeleteRestaurant removes a restaurant with its food items, orders and received
// ratings, and drops it from the promoted list.
func (s *AdminService) DeleteRestaurant(id uint) error {
	var r models.Restaurant
	if err := s.DB.First(&r, id).Error; err != nil {
		return lookup(err, "restaurant")
	}
	if err := s.DB.Transaction(func(tx *gorm.DB) error { return deleteRestaurantTx(tx, &r) }); err != nil {
		return wrapInternal(err, "failed to delete restaurant")
	}
	s.Log.WithField("restaurantId", r.ID).Info("restaurant deleted")
	return nil
}

func deleteRestaurantTx(tx *gorm.DB, r *models.Restaurant) error {
	var orderIDs []uint
	if err := tx.Model(&models.Order{}).Where("restaurant_id = ?", r.ID).Pluck("id", &orderIDs).Error; err != nil {
		return err
	}
	if err := deleteOrdersTx(tx, orderIDs); err != nil {
		return err
	}
	if err := tx.Where("receiver_id = ?", r.ID).Delete(&models.FeedbackCustomer{}).Error; err != nil {
		return err
	}
	if err := tx.Where("restaurant_id = ?", r.ID).Delete(&models.FoodItem{}).Error; err != nil {
		return err
	}
	// owner messages to the admin outlive the restaurant
	if err := tx.Model(&models.FeedbackRestaurant{}).Where("restaurant_id = ?", r.ID).
		Update("restaurant_id", nil).Error; err != nil {
		return err
	}

	cfg, err := loadAdminConfig(tx)
	if err != nil {
		return err
	}
	kept := make(datatypes.JSONSlice[uint], 0, len(cfg.PromotedRestaurantIDs))
	for _, pid := range cfg.PromotedRestaurantIDs {
		if pid != r.ID {
			kept = append(kept, pid)
		}
	}
	if len(kept) != len(cfg.PromotedRestaurantIDs) {
		cfg.PromotedRestaurantIDs = kept
		if err := tx.Save(cfg).Error; err != nil {
			return err
		}
	}
	return tx.Delete(r).Error
}

func deleteOrdersTx(tx *gorm.DB, orderIDs []uint) error {
	if len(orderIDs) == 0 {
		return nil
	}
	if err := tx.Where("order_id IN ?", orderIDs).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	if err := tx.Where("order_id IN ?", orderIDs).Delete(&models.OrderStatusHistory{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", orderIDs).Delete(&models.Order{}).Error
}

func (s *AdminService) Categories() ([]string, error) {
	cfg, err := loadAdminConfig(s.DB)
	if err != nil {
		return nil, err
	}
	if cfg.Categories == nil {
		return []string{}, nil
	}
	return cfg.Categories, nil
}

func indexOf(list []string, name string) int {
	for i, c := range list {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

func (s *AdminService) AddCategory(name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ValidationError("category name is required")
	}
	cfg, err := loadAdminConfig(s.DB)
	if err != nil {
		return nil, err
	}
	if indexOf(cfg.Categories, name) >= 0 {
		return nil, ConflictError("category %q already exists", name)
	}
	cfg.Categories = append(cfg.Categories, name)
	if err := s.DB.Save(cfg).Error; err != nil {
		return nil, wrapInternal(err, "failed to save categories")
	}
	return cfg.Categories, nil
}

// RenameCategory renames a category and every food item filed under it.
func (s *AdminService) RenameCategory(oldName, newName string) ([]string, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, ValidationError("new category name is required")
	}
	cfg, err := loadAdminConfig(s.DB)
	if err != nil {
		return nil, err
	}
	i := indexOf(cfg.Categories, oldName)
	if i < 0 {
		return nil, NotFoundError("category %q not found", oldName)
	}
	if j := indexOf(cfg.Categories, newName); j >= 0 && j != i {
		return nil, ConflictError("category %q already exists", newName)
	}
	prev := cfg.Categories[i]
	cfg.Categories[i] = newName

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(cfg).Error; err != nil {
			return err
		}
		return tx.Model(&models.FoodItem{}).Where("category = ?", prev).Update("category", newName).Error
	})
	if err != nil {
		return nil, wrapInternal(err, "failed to rename category")
	}
	return cfg.Categories, nil
}

// DeleteCategory removes a category from the list. Food items keep their label.
func (s *AdminService) DeleteCategory(name string) ([]string, error) {
	cfg, err := loadAdminConfig(s.DB)
	if err != nil {
		return nil, err
	}
	i := indexOf(cfg.Categories, name)
	if i < 0 {
		return nil, NotFoundError("category %q not found", name)
	}
	cfg.Categories = append(cfg.Categories[:i:i], cfg.Categories[i+1:]...)
	if err := s.DB.Save(cfg).Error; err != nil {
		return nil, wrapInternal(err, "failed to save categories")
	}
	return cfg.Categories, nil
}

// SetPromoted replaces the promoted list. Every id must be an existing restaurant.
func (s *AdminService) SetPromoted(ids []uint) ([]uint, error) {
	seen := make(map[uint]bool, len(ids))
	uniq := make(datatypes.JSONSlice[uint], 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			uniq = append(uniq, id)
		}
	}
	if len(uniq) > 0 {
		var found []uint
		if err := s.DB.Model(&models.Restaurant{}).Where("id IN ?", []uint(uniq)).Pluck("id", &found).Error; err != nil {
			return nil, wrapInternal(err, "failed to check restaurants")
		}
		ok := make(map[uint]bool, len(found))
		for _, id := range found {
			ok[id] = true
		}
		for _, id := range uniq {
			if !ok[id] {
				return nil, ValidationError("restaurant %d does not exist", id)
			}
		}
	}
	cfg, err := loadAdminConfig(s.DB)
	if err != nil {
		return nil, err
	}
	cfg.PromotedRestaurantIDs = uniq
	if err := s.DB.Save(cfg).Error; err != nil {
		return nil, wrapInternal(err, "failed to save promoted restaurants")
	}
	return uniq, nil
}

type DashboardCounts struct {
	Users            int64 `json:"users"`
	Customers        int64 `json:"customers"`
	RestaurantOwners int64 `json:"restaurantOwners"`
	PendingApprovals int64 `json:"pendingApprovals"`
	Restaurants      int64 `json:"restaurants"`
	FoodItems        int64 `json:"foodItems"`
	Orders           int64 `json:"orders"`
	PendingOrders    int64 `json:"pendingOrders"`
}

func (s *AdminService) DashboardCounts() (*DashboardCounts, error) {
	var c DashboardCounts
	counts := []struct {
		dst   *int64
		model any
		where []any
	}{
		{&c.Users, &models.User{}, nil},
		{&c.Customers, &models.User{}, []any{"role = ?", models.RoleCustomer}},
		{&c.RestaurantOwners, &models.User{}, []any{"role = ?", models.RoleRestaurant}},
		{&c.PendingApprovals, &models.User{}, []any{"approval_status = ?", models.ApprovalPending}},
		{&c.Restaurants, &models.Restaurant{}, nil},
		{&c.FoodItems, &models.FoodItem{}, nil},
		{&c.Orders, &models.Order{}, nil},
		{&c.PendingOrders, &models.Order{}, []any{"status = ?", models.StatusPending}},
	}
	for _, q := range counts {
		db := s.DB.Model(q.model)
		if q.where != nil {
			db = db.Where(q.where[0], q.where[1:]...)
		}
		if err := db.Count(q.dst).Error; err != nil {
			return nil, wrapInternal(err, "failed to count records")
		}
	}
	return &c, nil
}
