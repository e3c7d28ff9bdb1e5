package services

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"food-ordering-api/models"
)

type FeedbackService struct {
	DB  *gorm.DB
	Log logrus.FieldLogger
}

func NewFeedbackService(db *gorm.DB, log logrus.FieldLogger) *FeedbackService {
	return &FeedbackService{DB: db, Log: log}
}

type RatingIn struct {
	RestaurantID uint   `json:"restaurantId" validate:"required"`
	OrderID      *uint  `json:"orderId"`
	FoodItemID   *uint  `json:"foodItemId"`
	Rating       int    `json:"rating" validate:"required,min=1,max=5"`
	Message      string `json:"message" validate:"max=2000"`
}

// SubmitRating stores a customer's rating and recomputes the affected averages.
func (s *FeedbackService) SubmitRating(userID uint, in RatingIn) (*models.FeedbackCustomer, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	var restaurant models.Restaurant
	if err := s.DB.First(&restaurant, in.RestaurantID).Error; err != nil {
		return nil, lookup(err, "restaurant")
	}

	if in.OrderID != nil {
		var order models.Order
		if err := s.DB.First(&order, *in.OrderID).Error; err != nil {
			return nil, lookup(err, "order")
		}
		if order.UserID != userID {
			return nil, ForbiddenError("this order does not belong to you")
		}
		if order.Status != models.StatusDelivered {
			return nil, ValidationError("only delivered orders can be rated; order is %s", order.Status)
		}
		if order.RestaurantID != restaurant.ID {
			return nil, ValidationError("order %d was not placed at restaurant %d", order.ID, restaurant.ID)
		}
		taken, err := s.exists("user_id = ? AND order_id = ?", userID, order.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ConflictError("you have already rated this order")
		}
	}

	if in.FoodItemID != nil {
		var food models.FoodItem
		if err := s.DB.First(&food, *in.FoodItemID).Error; err != nil {
			return nil, lookup(err, "food item")
		}
		if food.RestaurantID != restaurant.ID {
			return nil, ValidationError("food item %q does not belong to restaurant %d", food.Name, restaurant.ID)
		}
		taken, err := s.exists("user_id = ? AND food_item_id = ?", userID, food.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ConflictError("you have already rated this food item")
		}
	}

	fb := &models.FeedbackCustomer{
		UserID:     userID,
		ReceiverID: restaurant.ID,
		OrderID:    in.OrderID,
		FoodItemID: in.FoodItemID,
		Rating:     in.Rating,
		Message:    strings.TrimSpace(in.Message),
	}
	if err := s.DB.Create(fb).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ConflictError("duplicate rating")
		}
		return nil, wrapInternal(err, "failed to save rating")
	}

	if err := s.Recompute(restaurant.ID, fb.FoodItemID); err != nil {
		return nil, err
	}
	return fb, nil
}

func (s *FeedbackService) exists(query string, args ...any) (bool, error) {
	var n int64
	if err := s.DB.Model(&models.FeedbackCustomer{}).Where(query, args...).Count(&n).Error; err != nil {
		return false, wrapInternal(err, "failed to check existing ratings")
	}
	return n > 0, nil
}

type ratingAggregate struct {
	Count int64
	Avg   *float64
}

// Recompute rescans every rating of the restaurant (and of the food item when set)
// and stores the mean, or NULL when no rating remains.
func (s *FeedbackService) Recompute(restaurantID uint, foodItemID *uint) error {
	return recomputeRatings(s.DB, s.Log, restaurantID, foodItemID)
}

func recomputeRatings(db *gorm.DB, log logrus.FieldLogger, restaurantID uint, foodItemID *uint) error {
	avg, err := meanRating(db, "receiver_id = ?", restaurantID)
	if err != nil {
		return err
	}
	if err := db.Model(&models.Restaurant{}).Where("id = ?", restaurantID).
		Update("average_rating", avg).Error; err != nil {
		return wrapInternal(err, "failed to update restaurant rating")
	}
	log.WithFields(logrus.Fields{"restaurantId": restaurantID, "average": avg}).Debug("restaurant rating recomputed")

	if foodItemID == nil {
		return nil
	}
	favg, err := meanRating(db, "food_item_id = ?", *foodItemID)
	if err != nil {
		return err
	}
	if err := db.Model(&models.FoodItem{}).Where("id = ?", *foodItemID).
		Update("rating", favg).Error; err != nil {
		return wrapInternal(err, "failed to update food item rating")
	}
	return nil
}

func meanRating(db *gorm.DB, query string, arg any) (*float64, error) {
	var agg ratingAggregate
	err := db.Model(&models.FeedbackCustomer{}).
		Select("COUNT(*) AS count, AVG(rating) AS avg").
		Where(query, arg).Scan(&agg).Error
	if err != nil {
		return nil, wrapInternal(err, "failed to aggregate ratings")
	}
	if agg.Count == 0 {
		return nil, nil
	}
	return agg.Avg, nil
}

// ListByUser returns the customer's own ratings, newest first.
func (s *FeedbackService) ListByUser(userID uint) ([]models.FeedbackCustomer, error) {
	var out []models.FeedbackCustomer
	err := s.DB.Preload("Receiver", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "owner_id", "title", "image", "average_rating")
	}).Where("user_id = ?", userID).Order("created_at desc, id desc").Find(&out).Error
	if err != nil {
		return nil, wrapInternal(err, "failed to list ratings")
	}
	return out, nil
}

// ListForRestaurant returns the ratings a restaurant received, newest first.
func (s *FeedbackService) ListForRestaurant(restaurantID uint) ([]models.FeedbackCustomer, error) {
	var out []models.FeedbackCustomer
	err := s.DB.Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name")
	}).Where("receiver_id = ?", restaurantID).Order("created_at desc, id desc").Find(&out).Error
	if err != nil {
		return nil, wrapInternal(err, "failed to list ratings")
	}
	return out, nil
}

// ListAllRatings returns every customer rating for the admin.
func (s *FeedbackService) ListAllRatings() ([]models.FeedbackCustomer, error) {
	var out []models.FeedbackCustomer
	err := s.DB.Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "email")
	}).Preload("Receiver", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "owner_id", "title")
	}).Order("created_at desc, id desc").Find(&out).Error
	if err != nil {
		return nil, wrapInternal(err, "failed to list ratings")
	}
	return out, nil
}

// DeleteRating removes a rating and recomputes the averages it contributed to.
func (s *FeedbackService) DeleteRating(id uint) error {
	var fb models.FeedbackCustomer
	if err := s.DB.First(&fb, id).Error; err != nil {
		return lookup(err, "rating")
	}
	if err := s.DB.Delete(&fb).Error; err != nil {
		return wrapInternal(err, "failed to delete rating")
	}
	return s.Recompute(fb.ReceiverID, fb.FoodItemID)
}

type MessageIn struct {
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// SendToAdmin stores a message from a customer or restaurant owner. Restaurant owners'
// messages reference their restaurant when they have one.
func (s *FeedbackService) SendToAdmin(user *models.User, restaurant *models.Restaurant, in MessageIn) (any, error) {
	in.Message = strings.TrimSpace(in.Message)
	in.Subject = strings.TrimSpace(in.Subject)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	switch user.Role {
	case models.RoleCustomer:
		fb := &models.FeedbackUserToAdmin{UserID: user.ID, Subject: in.Subject, Message: in.Message, Status: models.FeedbackNew}
		if err := s.DB.Create(fb).Error; err != nil {
			return nil, wrapInternal(err, "failed to send feedback")
		}
		return fb, nil
	case models.RoleRestaurant:
		fb := &models.FeedbackRestaurant{UserID: user.ID, Subject: in.Subject, Message: in.Message, Status: models.FeedbackNew}
		if restaurant != nil {
			fb.RestaurantID = &restaurant.ID
		}
		if err := s.DB.Create(fb).Error; err != nil {
			return nil, wrapInternal(err, "failed to send feedback")
		}
		return fb, nil
	default:
		return nil, ForbiddenError("role %s cannot send feedback to the admin", user.Role)
	}
}

func parseFeedbackStatus(status string) (models.FeedbackStatus, error) {
	st := models.FeedbackStatus(status)
	if !st.Valid() {
		return "", ValidationError("status must be one of [new pending resolved]")
	}
	return st, nil
}

// ListUserFeedback returns customer messages to the admin, optionally filtered by status.
func (s *FeedbackService) ListUserFeedback(status string) ([]models.FeedbackUserToAdmin, error) {
	q := s.DB.Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email") })
	if status != "" {
		st, err := parseFeedbackStatus(status)
		if err != nil {
			return nil, err
		}
		q = q.Where("status = ?", st)
	}
	var out []models.FeedbackUserToAdmin
	if err := q.Order("created_at desc, id desc").Find(&out).Error; err != nil {
		return nil, wrapInternal(err, "failed to list feedback")
	}
	return out, nil
}

// ListRestaurantFeedback returns restaurant owners' messages to the admin.
func (s *FeedbackService) ListRestaurantFeedback(status string) ([]models.FeedbackRestaurant, error) {
	q := s.DB.Preload("Restaurant", func(db *gorm.DB) *gorm.DB { return db.Select("id", "owner_id", "title") })
	if status != "" {
		st, err := parseFeedbackStatus(status)
		if err != nil {
			return nil, err
		}
		q = q.Where("status = ?", st)
	}
	var out []models.FeedbackRestaurant
	if err := q.Order("created_at desc, id desc").Find(&out).Error; err != nil {
		return nil, wrapInternal(err, "failed to list feedback")
	}
	return out, nil
}

// nextFeedbackStatus allows only forward moves.
var nextFeedbackStatus = map[models.FeedbackStatus][]models.FeedbackStatus{
	models.FeedbackNew:     {models.FeedbackPending, models.FeedbackResolved},
	models.FeedbackPending: {models.FeedbackResolved},
}

func canAdvance(from, to models.FeedbackStatus) bool {
	for _, n := range nextFeedbackStatus[from] {
		if n == to {
			return true
		}
	}
	return false
}

// SetUserFeedbackStatus advances a customer message.
func (s *FeedbackService) SetUserFeedbackStatus(id uint, status string) (*models.FeedbackUserToAdmin, error) {
	var fb models.FeedbackUserToAdmin
	if err := s.setStatus(&fb, id, status, "feedback"); err != nil {
		return nil, err
	}
	return &fb, nil
}

// SetRestaurantFeedbackStatus advances a restaurant owner's message.
func (s *FeedbackService) SetRestaurantFeedbackStatus(id uint, status string) (*models.FeedbackRestaurant, error) {
	var fb models.FeedbackRestaurant
	if err := s.setStatus(&fb, id, status, "feedback"); err != nil {
		return nil, err
	}
	return &fb, nil
}

func currentStatus(v any) models.FeedbackStatus {
	switch fb := v.(type) {
	case *models.FeedbackUserToAdmin:
		return fb.Status
	case *models.FeedbackRestaurant:
		return fb.Status
	}
	return ""
}

func (s *FeedbackService) setStatus(dst any, id uint, status, entity string) error {
	to, err := parseFeedbackStatus(status)
	if err != nil {
		return err
	}
	if err := s.DB.First(dst, id).Error; err != nil {
		return lookup(err, entity)
	}
	from := currentStatus(dst)
	if !canAdvance(from, to) {
		return ValidationError("cannot move feedback from %s to %s", from, to)
	}
	res := s.DB.Model(dst).Where("status = ?", from).Update("status", to)
	if res.Error != nil {
		return wrapInternal(res.Error, "failed to update feedback status")
	}
	if res.RowsAffected == 0 {
		return ConflictError("feedback %d is no longer %s", id, from)
	}
	if err := s.DB.First(dst, id).Error; err != nil {
		return wrapInternal(err, "failed to reload feedback")
	}
	return nil
}

type BroadcastIn struct {
	ReceiverRole models.ReceiverRole `json:"receiverRole" validate:"required"`
	ReceiverID   *uint               `json:"receiverId"`
	Subject      string              `json:"subject" validate:"max=200"`
	Message      string              `json:"message" validate:"required,max=5000"`
}

// Broadcast stores an admin message. A specific restaurant target is resolved to its
// owner so every admin message addresses a user.
func (s *FeedbackService) Broadcast(adminID uint, in BroadcastIn) (*models.FeedbackAdmin, error) {
	in.Message = strings.TrimSpace(in.Message)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if !in.ReceiverRole.Valid() {
		return nil, ValidationError("receiverRole must be one of [allUsers allRestaurants specificUser specificRestaurant]")
	}

	fb := &models.FeedbackAdmin{
		AdminID:      adminID,
		ReceiverRole: in.ReceiverRole,
		Subject:      strings.TrimSpace(in.Subject),
		Message:      in.Message,
		Status:       models.FeedbackNew,
	}
	switch in.ReceiverRole {
	case models.ReceiverSpecificUser:
		if in.ReceiverID == nil {
			return nil, ValidationError("receiverId is required for %s", in.ReceiverRole)
		}
		var u models.User
		if err := s.DB.Select("id").First(&u, *in.ReceiverID).Error; err != nil {
			return nil, lookup(err, "user")
		}
		fb.ReceiverUserID = &u.ID
	case models.ReceiverSpecificRestaurant:
		if in.ReceiverID == nil {
			return nil, ValidationError("receiverId is required for %s", in.ReceiverRole)
		}
		var r models.Restaurant
		if err := s.DB.Select("id", "owner_id").First(&r, *in.ReceiverID).Error; err != nil {
			return nil, lookup(err, "restaurant")
		}
		fb.ReceiverUserID = &r.OwnerID
	}

	if err := s.DB.Create(fb).Error; err != nil {
		return nil, wrapInternal(err, "failed to send message")
	}
	return fb, nil
}

// Inbox returns admin messages addressed to the user directly or to the user's audience.
func (s *FeedbackService) Inbox(user *models.User) ([]models.FeedbackAdmin, error) {
	cond, args := "receiver_user_id = ?", []any{user.ID}
	switch user.Role {
	case models.RoleCustomer:
		cond, args = cond+" OR receiver_role = ?", append(args, models.ReceiverAllUsers)
	case models.RoleRestaurant:
		cond, args = cond+" OR receiver_role = ?", append(args, models.ReceiverAllRestaurants)
	}
	var out []models.FeedbackAdmin
	if err := s.DB.Where(cond, args...).Order("created_at desc, id desc").Find(&out).Error; err != nil {
		return nil, wrapInternal(err, "failed to load inbox")
	}
	return out, nil
}

// ListSent returns every admin-authored message.
func (s *FeedbackService) ListSent() ([]models.FeedbackAdmin, error) {
	var out []models.FeedbackAdmin
	if err := s.DB.Order("created_at desc, id desc").Find(&out).Error; err != nil {
		return nil, wrapInternal(err, "failed to list messages")
	}
	return out, nil
}
