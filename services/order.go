package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"food-ordering-api/models"
	"food-ordering-api/statemachine"
)

// AddressNotProvided is stored when neither the request nor the profile has an address.
const AddressNotProvided = "Address not provided"

type OrderService struct {
	DB   *gorm.DB
	Cart *CartService
	Log  logrus.FieldLogger
}

func NewOrderService(db *gorm.DB, cart *CartService, log logrus.FieldLogger) *OrderService {
	return &OrderService{DB: db, Cart: cart, Log: log}
}

type PlaceOrderItem struct {
	FoodItemID uint    `json:"foodItemId" validate:"required"`
	Quantity   int     `json:"quantity" validate:"required,min=1"`
	Price      float64 `json:"price" validate:"gte=0"`
}

type PlaceOrderIn struct {
	RestaurantID    uint                 `json:"restaurantId" validate:"required"`
	Items           []PlaceOrderItem     `json:"items" validate:"required,min=1,dive"`
	PaymentMethod   models.PaymentMethod `json:"paymentMethod" validate:"omitempty,oneof=cash card online"`
	DeliveryAddress string               `json:"deliveryAddress"`
	IdempotencyKey  string               `json:"idempotencyKey" validate:"omitempty,max=128"`
}

type PlaceOrderResult struct {
	Order          *models.Order `json:"order"`
	IdempotencyKey string        `json:"idempotencyKey"`
	CartPruned     bool          `json:"cartPruned"`
	// Replayed is set when the key had already produced an order.
	Replayed bool `json:"replayed"`
}

// Place creates an order for one restaurant and then prunes that restaurant's lines
// from the customer's cart. A key that already produced an order returns that order
// and runs the prune again, so a client can retry after a failed prune.
func (s *OrderService) Place(user *models.User, in PlaceOrderIn) (*PlaceOrderResult, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" {
		key = uuid.NewString()
	}

	existing, err := s.findByKey(user.ID, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.finish(user.ID, existing, key, true)
	}

	var restaurant models.Restaurant
	if err := s.DB.First(&restaurant, in.RestaurantID).Error; err != nil {
		return nil, lookup(err, "restaurant")
	}

	items := make([]models.OrderItem, 0, len(in.Items))
	for _, req := range in.Items {
		var food models.FoodItem
		if err := s.DB.First(&food, req.FoodItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ValidationError("food item %d not found", req.FoodItemID)
			}
			return nil, wrapInternal(err, "failed to load food item")
		}
		if food.RestaurantID != restaurant.ID {
			return nil, ValidationError("food item %q does not belong to restaurant %d", food.Name, restaurant.ID)
		}

		expected := DiscountedPrice(food.Price, food.Discount)
		price := req.Price
		if price == 0 {
			price = expected
		} else if !samePrice(price, expected) {
			s.Log.WithFields(logrus.Fields{
				"userId":          user.ID,
				"restaurantId":    restaurant.ID,
				"foodItemId":      food.ID,
				"submitted":       price,
				"expected":        expected,
				"catalogPrice":    food.Price,
				"catalogDiscount": food.Discount,
			}).Warn("order item price does not match catalog price")
		}

		items = append(items, models.OrderItem{
			FoodItemID: food.ID,
			Name:       food.Name,
			Quantity:   req.Quantity,
			Price:      price,
			Discount:   food.Discount,
		})
	}

	address := strings.TrimSpace(in.DeliveryAddress)
	if address == "" {
		address = strings.TrimSpace(user.Address)
	}
	if address == "" {
		address = AddressNotProvided
	}
	payment := in.PaymentMethod
	if payment == "" {
		payment = models.PaymentCash
	}

	order := &models.Order{
		UserID:          user.ID,
		RestaurantID:    restaurant.ID,
		Items:           items,
		Status:          models.StatusPending,
		PaymentMethod:   payment,
		DeliveryAddress: address,
		OrderDate:       time.Now(),
		IdempotencyKey:  key,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.StatusPending,
			ChangedBy: user.ID,
			Note:      "Order placed by customer",
		}).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// a concurrent request with the same key won
		existing, ferr := s.findByKey(user.ID, key)
		if ferr != nil {
			return nil, ferr
		}
		if existing != nil {
			return s.finish(user.ID, existing, key, true)
		}
	}
	if err != nil {
		return nil, wrapInternal(err, "failed to place order")
	}

	s.Log.WithFields(logrus.Fields{"orderId": order.ID, "userId": user.ID, "total": order.TotalAmount}).
		Info("order placed")
	return s.finish(user.ID, order, key, false)
}

func (s *OrderService) findByKey(userID uint, key string) (*models.Order, error) {
	var order models.Order
	err := s.DB.Where("user_id = ? AND idempotency_key = ?", userID, key).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapInternal(err, "failed to look up order")
	}
	return &order, nil
}

// finish runs the cart prune and reloads the order for the response.
func (s *OrderService) finish(userID uint, order *models.Order, key string, replayed bool) (*PlaceOrderResult, error) {
	res := &PlaceOrderResult{IdempotencyKey: key, Replayed: replayed, CartPruned: true}

	removed, err := s.Cart.PruneRestaurant(userID, order.RestaurantID)
	if err != nil {
		res.CartPruned = false
		s.Log.WithError(err).WithFields(logrus.Fields{"orderId": order.ID, "idempotencyKey": key}).
			Error("order saved but cart prune failed; retry with the same idempotency key")
	} else if removed > 0 {
		s.Log.WithFields(logrus.Fields{"orderId": order.ID, "removed": removed}).Debug("cart pruned")
	}

	loaded, err := s.load(order.ID, false)
	if err != nil {
		return nil, err
	}
	res.Order = loaded
	return res, nil
}

func (s *OrderService) load(id uint, withHistory bool) (*models.Order, error) {
	var order models.Order
	q := s.withDisplay(s.DB)
	if withHistory {
		q = q.Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc, id asc") })
	}
	if err := q.First(&order, id).Error; err != nil {
		return nil, lookup(err, "order")
	}
	return &order, nil
}

func (s *OrderService) withDisplay(db *gorm.DB) *gorm.DB {
	return db.Preload("Items.FoodItem").Preload("Restaurant", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "owner_id", "title", "address", "image", "average_rating")
	})
}

// ListForCustomer returns the customer's orders, newest first.
func (s *OrderService) ListForCustomer(userID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := s.withDisplay(s.DB).Where("user_id = ?", userID).
		Order("order_date desc, id desc").Find(&orders).Error; err != nil {
		return nil, wrapInternal(err, "failed to list orders")
	}
	return orders, nil
}

// GetForCustomer returns one of the customer's orders with its status history.
func (s *OrderService) GetForCustomer(userID, orderID uint) (*models.Order, error) {
	order, err := s.load(orderID, true)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ForbiddenError("this order does not belong to you")
	}
	return order, nil
}

// Cancel moves the customer's own order to cancelled while it is pending or preparing.
func (s *OrderService) Cancel(userID, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.DB.First(&order, orderID).Error; err != nil {
		return nil, lookup(err, "order")
	}
	if order.UserID != userID {
		return nil, ForbiddenError("this order does not belong to you")
	}
	if err := statemachine.CanTransition(order.Status, models.StatusCancelled, statemachine.ActorCustomer); err != nil {
		return nil, ConflictError("cannot cancel an order that is %s", order.Status)
	}
	if err := s.transition(&order, models.StatusCancelled, userID, "Order cancelled by customer"); err != nil {
		return nil, err
	}
	return s.load(order.ID, true)
}

// UpdateStatus applies a restaurant-side transition to one of the restaurant's orders.
func (s *OrderService) UpdateStatus(restaurant *models.Restaurant, actorID, orderID uint, to models.OrderStatus, note string) (*models.Order, error) {
	if !to.Valid() {
		return nil, ValidationError("status must be one of [pending preparing delivered cancelled]")
	}
	var order models.Order
	if err := s.DB.First(&order, orderID).Error; err != nil {
		return nil, lookup(err, "order")
	}
	if order.RestaurantID != restaurant.ID {
		return nil, ForbiddenError("this order does not belong to your restaurant")
	}
	if err := statemachine.CanTransition(order.Status, to, statemachine.ActorRestaurant); err != nil {
		return nil, ValidationError("%s", err.Error())
	}
	if note == "" {
		note = fmt.Sprintf("Status changed to %s by restaurant", to)
	}
	if err := s.transition(&order, to, actorID, note); err != nil {
		return nil, err
	}
	return s.load(order.ID, true)
}

// transition performs a guarded status update: the row only changes if it is still in
// the status the caller saw, so two racing transitions cannot both succeed.
func (s *OrderService) transition(order *models.Order, to models.OrderStatus, actorID uint, note string) error {
	from := order.Status
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, from).
			Update("status", to)
		if res.Error != nil {
			return wrapInternal(res.Error, "failed to update order status")
		}
		if res.RowsAffected == 0 {
			return ConflictError("order %d is no longer %s", order.ID, from)
		}
		if err := tx.Create(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: from,
			ToStatus:   to,
			ChangedBy:  actorID,
			Note:       note,
		}).Error; err != nil {
			return wrapInternal(err, "failed to record status history")
		}
		return nil
	})
	if err != nil {
		return err
	}
	order.Status = to
	s.Log.WithFields(logrus.Fields{"orderId": order.ID, "from": from, "to": to, "by": actorID}).Info("order status changed")
	return nil
}

// OrderSummary counts orders per status.
type OrderSummary map[models.OrderStatus]int64

func newOrderSummary() OrderSummary {
	return OrderSummary{
		models.StatusPending:   0,
		models.StatusPreparing: 0,
		models.StatusDelivered: 0,
		models.StatusCancelled: 0,
	}
}

// ListForRestaurant returns the restaurant's incoming orders, optionally filtered by
// status, together with a per-status count over all of its orders.
func (s *OrderService) ListForRestaurant(restaurantID uint, status string) ([]models.Order, OrderSummary, error) {
	q := s.withDisplay(s.DB).Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "email", "phone", "address")
	}).Where("restaurant_id = ?", restaurantID)
	if status != "" {
		if !models.OrderStatus(status).Valid() {
			return nil, nil, ValidationError("unknown order status %q", status)
		}
		q = q.Where("status = ?", status)
	}
	var orders []models.Order
	if err := q.Order("order_date desc, id desc").Find(&orders).Error; err != nil {
		return nil, nil, wrapInternal(err, "failed to list orders")
	}
	summary, err := s.summarize(s.DB.Model(&models.Order{}).Where("restaurant_id = ?", restaurantID))
	if err != nil {
		return nil, nil, err
	}
	return orders, summary, nil
}

type AdminOrderFilter struct {
	Status       string
	RestaurantID uint
	UserID       uint
}

type AdminOrderList struct {
	Orders  []models.Order `json:"orders"`
	Count   int            `json:"count"`
	Summary OrderSummary   `json:"summary"`
	Revenue float64        `json:"revenue"`
}

// ListAll returns every order matching the filter with a status summary and the
// revenue of delivered orders in the result.
func (s *OrderService) ListAll(f AdminOrderFilter) (*AdminOrderList, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if f.RestaurantID != 0 {
			db = db.Where("restaurant_id = ?", f.RestaurantID)
		}
		if f.UserID != 0 {
			db = db.Where("user_id = ?", f.UserID)
		}
		return db
	}
	if f.Status != "" && !models.OrderStatus(f.Status).Valid() {
		return nil, ValidationError("unknown order status %q", f.Status)
	}

	q := s.withDisplay(s.DB).Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "email")
	}).Scopes(scope)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var orders []models.Order
	if err := q.Order("order_date desc, id desc").Find(&orders).Error; err != nil {
		return nil, wrapInternal(err, "failed to list orders")
	}

	summary, err := s.summarize(s.DB.Model(&models.Order{}).Scopes(scope))
	if err != nil {
		return nil, err
	}
	revenue := decimal.Zero
	for _, o := range orders {
		if o.Status == models.StatusDelivered {
			revenue = revenue.Add(decimal.NewFromFloat(o.TotalAmount))
		}
	}
	return &AdminOrderList{
		Orders:  orders,
		Count:   len(orders),
		Summary: summary,
		Revenue: revenue.Round(2).InexactFloat64(),
	}, nil
}

func (s *OrderService) summarize(q *gorm.DB) (OrderSummary, error) {
	var rows []struct {
		Status models.OrderStatus
		Count  int64
	}
	if err := q.Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, wrapInternal(err, "failed to summarize orders")
	}
	summary := newOrderSummary()
	for _, r := range rows {
		summary[r.Status] = r.Count
	}
	return summary, nil
}
