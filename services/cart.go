package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"food-ordering-api/models"
)

type CartService struct {
	DB  *gorm.DB
	Log logrus.FieldLogger
}

func NewCartService(db *gorm.DB, log logrus.FieldLogger) *CartService {
	return &CartService{DB: db, Log: log}
}

type AddToCartIn struct {
	FoodItemID   uint    `json:"foodItemId" validate:"required"`
	RestaurantID uint    `json:"restaurantId" validate:"required"`
	Quantity     int     `json:"quantity" validate:"required,min=1"`
	Price        float64 `json:"price" validate:"gte=0"`
}

// GetOrCreate returns the user's cart, creating an empty one on first access.
func (s *CartService) GetOrCreate(userID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := s.DB.Where(models.Cart{UserID: userID}).FirstOrCreate(&cart).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, wrapInternal(err, "failed to load cart")
		}
		// lost a create race with a parallel request
		if err := s.DB.Where("user_id = ?", userID).First(&cart).Error; err != nil {
			return nil, wrapInternal(err, "failed to load cart")
		}
	}
	return &cart, nil
}

// AddItem merges the food item into an existing line for the same (food item,
// restaurant) pair or appends a new line capturing the price.
func (s *CartService) AddItem(cart *models.Cart, in AddToCartIn) (*models.CartItem, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	var food models.FoodItem
	if err := s.DB.First(&food, in.FoodItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ValidationError("food item %d not found", in.FoodItemID)
		}
		return nil, wrapInternal(err, "failed to load food item")
	}
	if food.RestaurantID != in.RestaurantID {
		return nil, ValidationError("food item %d does not belong to restaurant %d", in.FoodItemID, in.RestaurantID)
	}

	price := in.Price
	if price == 0 {
		price = DiscountedPrice(food.Price, food.Discount)
	}

	var line models.CartItem
	err := s.DB.Where("cart_id = ? AND food_item_id = ? AND restaurant_id = ?", cart.ID, in.FoodItemID, in.RestaurantID).
		First(&line).Error
	switch {
	case err == nil:
		line.Quantity += in.Quantity
		line.AddedAt = time.Now()
		if err := s.DB.Model(&line).Updates(map[string]any{"quantity": line.Quantity, "added_at": line.AddedAt}).Error; err != nil {
			return nil, wrapInternal(err, "failed to update cart item")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		line = models.CartItem{
			CartID:                cart.ID,
			FoodItemID:            in.FoodItemID,
			RestaurantID:          in.RestaurantID,
			Quantity:              in.Quantity,
			PriceAtTimeOfAddition: price,
			AddedAt:               time.Now(),
		}
		if err := s.DB.Create(&line).Error; err != nil {
			return nil, wrapInternal(err, "failed to add cart item")
		}
	default:
		return nil, wrapInternal(err, "failed to load cart item")
	}
	return &line, nil
}

func (s *CartService) UpdateQuantity(cart *models.Cart, itemID uint, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, ValidationError("quantity must be at least 1")
	}
	line, err := s.findLine(cart, itemID)
	if err != nil {
		return nil, err
	}
	line.Quantity = quantity
	if err := s.DB.Model(line).Update("quantity", quantity).Error; err != nil {
		return nil, wrapInternal(err, "failed to update cart item")
	}
	return line, nil
}

func (s *CartService) RemoveItem(cart *models.Cart, itemID uint) error {
	line, err := s.findLine(cart, itemID)
	if err != nil {
		return err
	}
	if err := s.DB.Delete(line).Error; err != nil {
		return wrapInternal(err, "failed to remove cart item")
	}
	return nil
}

// Clear removes every line. Clearing an empty cart succeeds.
func (s *CartService) Clear(cart *models.Cart) error {
	if err := s.DB.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return wrapInternal(err, "failed to clear cart")
	}
	return nil
}

// PruneRestaurant drops every line of the user's cart that belongs to restaurantID.
func (s *CartService) PruneRestaurant(userID, restaurantID uint) (int64, error) {
	res := s.DB.
		Where("restaurant_id = ? AND cart_id IN (?)", restaurantID,
			s.DB.Model(&models.Cart{}).Select("id").Where("user_id = ?", userID)).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return 0, wrapInternal(res.Error, "failed to prune cart")
	}
	return res.RowsAffected, nil
}

// CartView is a cart with its lines enriched for display.
type CartView struct {
	*models.Cart
	TotalItems  int     `json:"totalItems"`
	TotalAmount float64 `json:"totalAmount"`
}

// Get loads the cart with food item and restaurant details. Lines whose food item or
// restaurant no longer exists are logged and still returned.
func (s *CartService) Get(cart *models.Cart) (*CartView, error) {
	var items []models.CartItem
	err := s.DB.Preload("FoodItem").Preload("Restaurant", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "owner_id", "title", "address", "image", "average_rating")
	}).Where("cart_id = ?", cart.ID).Order("added_at asc").Find(&items).Error
	if err != nil {
		return nil, wrapInternal(err, "failed to load cart items")
	}

	total := decimal.Zero
	count := 0
	for _, it := range items {
		if it.FoodItem == nil {
			s.Log.WithFields(logrus.Fields{"cartItemId": it.ID, "foodItemId": it.FoodItemID}).
				Warn("cart item references a missing food item")
		}
		if it.Restaurant == nil {
			s.Log.WithFields(logrus.Fields{"cartItemId": it.ID, "restaurantId": it.RestaurantID}).
				Warn("cart item references a missing restaurant")
		}
		count += it.Quantity
		total = total.Add(decimal.NewFromFloat(it.PriceAtTimeOfAddition).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	cart.Items = items
	return &CartView{Cart: cart, TotalItems: count, TotalAmount: total.Round(2).InexactFloat64()}, nil
}

func (s *CartService) findLine(cart *models.Cart, itemID uint) (*models.CartItem, error) {
	var line models.CartItem
	err := s.DB.Where("id = ? AND cart_id = ?", itemID, cart.ID).First(&line).Error
	if err != nil {
		return nil, lookup(err, "cart item")
	}
	return &line, nil
}
