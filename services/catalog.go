package services

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"food-ordering-api/models"
)

type CatalogService struct {
	DB  *gorm.DB
	Log logrus.FieldLogger
}

func NewCatalogService(db *gorm.DB, log logrus.FieldLogger) *CatalogService {
	return &CatalogService{DB: db, Log: log}
}

type RestaurantFilter struct {
	Category string
	Search   string
	Location string
}

func likePattern(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}

// ListRestaurants filters by category (restaurants serving at least one item in it),
// by a title/description substring and by an address substring.
func (s *CatalogService) ListRestaurants(f RestaurantFilter) ([]models.Restaurant, error) {
	q := s.DB.Model(&models.Restaurant{})
	if c := strings.TrimSpace(f.Category); c != "" {
		q = q.Where("id IN (?)", s.DB.Model(&models.FoodItem{}).Select("restaurant_id").Where("category = ?", c))
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		q = q.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, p, p)
	}
	if f.Location != "" {
		q = q.Where(`LOWER(address) LIKE ? ESCAPE '\'`, likePattern(f.Location))
	}
	var out []models.Restaurant
	if err := q.Order("title asc, id asc").Find(&out).Error; err != nil {
		return nil, wrapInternal(err, "failed to list restaurants")
	}
	return out, nil
}

func (s *CatalogService) GetRestaurant(id uint) (*models.Restaurant, error) {
	var r models.Restaurant
	err := s.DB.Preload("Owner", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "email", "phone")
	}).First(&r, id).Error
	if err != nil {
		return nil, lookup(err, "restaurant")
	}
	return &r, nil
}

type MenuFilter struct {
	RestaurantID   uint
	Category       string
	Search         string
	AvailableOnly  bool
	WithRestaurant bool
}

func (s *CatalogService) foodItems(f MenuFilter) ([]models.FoodItem, error) {
	q := s.DB.Model(&models.FoodItem{})
	if f.RestaurantID != 0 {
		q = q.Where("restaurant_id = ?", f.RestaurantID)
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		q = q.Where("category = ?", c)
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, p, p)
	}
	if f.AvailableOnly {
		q = q.Where("is_available = ?", true)
	}
	if f.WithRestaurant {
		q = q.Preload("Restaurant", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "owner_id", "title", "address", "image", "average_rating")
		})
	}
	var out []models.FoodItem
	if err := q.Order("category asc, name asc, id asc").Find(&out).Error; err != nil {
		return nil, wrapInternal(err, "failed to list food items")
	}
	return out, nil
}

// Menu returns a restaurant's food items.
func (s *CatalogService) Menu(restaurantID uint, category, search string) (*models.Restaurant, []models.FoodItem, error) {
	var r models.Restaurant
	if err := s.DB.First(&r, restaurantID).Error; err != nil {
		return nil, nil, lookup(err, "restaurant")
	}
	items, err := s.foodItems(MenuFilter{RestaurantID: r.ID, Category: category, Search: search})
	if err != nil {
		return nil, nil, err
	}
	return &r, items, nil
}

// ListFoodItems searches food items across restaurants.
func (s *CatalogService) ListFoodItems(f MenuFilter) ([]models.FoodItem, error) {
	f.WithRestaurant = true
	return s.foodItems(f)
}

func (s *CatalogService) Categories() ([]string, error) {
	cfg, err := loadAdminConfig(s.DB)
	if err != nil {
		return nil, err
	}
	out := []string(cfg.Categories)
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// PromotedRestaurants returns the promoted restaurants in the admin's order. Ids of
// restaurants deleted since are skipped.
func (s *CatalogService) PromotedRestaurants() ([]models.Restaurant, error) {
	cfg, err := loadAdminConfig(s.DB)
	if err != nil {
		return nil, err
	}
	out := []models.Restaurant{}
	if len(cfg.PromotedRestaurantIDs) == 0 {
		return out, nil
	}
	var found []models.Restaurant
	if err := s.DB.Where("id IN ?", []uint(cfg.PromotedRestaurantIDs)).Find(&found).Error; err != nil {
		return nil, wrapInternal(err, "failed to load promoted restaurants")
	}
	byID := make(map[uint]models.Restaurant, len(found))
	for _, r := range found {
		byID[r.ID] = r
	}
	for _, id := range cfg.PromotedRestaurantIDs {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

type RestaurantIn struct {
	Title       string `json:"title" validate:"required,max=150"`
	Description string `json:"description" validate:"max=2000"`
	Address     string `json:"address" validate:"max=300"`
	Image       string `json:"image" validate:"max=500"`
}

// CreateRestaurant registers the owner's single restaurant.
func (s *CatalogService) CreateRestaurant(ownerID uint, in RestaurantIn) (*models.Restaurant, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	var n int64
	if err := s.DB.Model(&models.Restaurant{}).Where("owner_id = ?", ownerID).Count(&n).Error; err != nil {
		return nil, wrapInternal(err, "failed to check restaurant")
	}
	if n > 0 {
		return nil, ConflictError("you already have a restaurant")
	}
	r := &models.Restaurant{
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Address:     strings.TrimSpace(in.Address),
		Image:       strings.TrimSpace(in.Image),
	}
	if err := s.DB.Create(r).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ConflictError("you already have a restaurant")
		}
		return nil, wrapInternal(err, "failed to create restaurant")
	}
	s.Log.WithFields(logrus.Fields{"restaurantId": r.ID, "ownerId": ownerID}).Info("restaurant created")
	return r, nil
}

type RestaurantUpdate struct {
	Title       *string `json:"title" validate:"omitempty,max=150"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Address     *string `json:"address" validate:"omitempty,max=300"`
	Image       *string `json:"image" validate:"omitempty,max=500"`
}

func (s *CatalogService) UpdateRestaurant(r *models.Restaurant, in RestaurantUpdate) (*models.Restaurant, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			return nil, ValidationError("title cannot be empty")
		}
		updates["title"] = t
	}
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Address != nil {
		updates["address"] = strings.TrimSpace(*in.Address)
	}
	if in.Image != nil {
		updates["image"] = strings.TrimSpace(*in.Image)
	}
	if len(updates) > 0 {
		if err := s.DB.Model(r).Updates(updates).Error; err != nil {
			return nil, wrapInternal(err, "failed to update restaurant")
		}
	}
	return s.GetRestaurant(r.ID)
}

type FoodItemIn struct {
	Name        string  `json:"name" validate:"required,max=150"`
	Description string  `json:"description" validate:"max=2000"`
	Price       float64 `json:"price" validate:"gt=0"`
	Discount    float64 `json:"discount" validate:"gte=0,lte=100"`
	Category    string  `json:"category" validate:"max=100"`
	Image       string  `json:"image" validate:"max=500"`
	IsAvailable *bool   `json:"isAvailable"`
}

// checkCategory accepts any category while the admin has not configured a list.
func (s *CatalogService) checkCategory(category string) error {
	if category == "" {
		return nil
	}
	cats, err := s.Categories()
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		return nil
	}
	for _, c := range cats {
		if c == category {
			return nil
		}
	}
	return ValidationError("category must be one of [%s]", strings.Join(cats, ", "))
}

func (s *CatalogService) CreateFoodItem(r *models.Restaurant, in FoodItemIn) (*models.FoodItem, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := s.checkCategory(in.Category); err != nil {
		return nil, err
	}
	available := true
	if in.IsAvailable != nil {
		available = *in.IsAvailable
	}
	item := &models.FoodItem{
		RestaurantID: r.ID,
		Name:         in.Name,
		Description:  strings.TrimSpace(in.Description),
		Price:        in.Price,
		Discount:     in.Discount,
		Category:     in.Category,
		Image:        strings.TrimSpace(in.Image),
		IsAvailable:  available,
	}
	// the column default would otherwise replace a false zero value
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		if !available {
			return tx.Model(item).Update("is_available", false).Error
		}
		return nil
	})
	if err != nil {
		return nil, wrapInternal(err, "failed to create food item")
	}
	return item, nil
}

type FoodItemUpdate struct {
	Name        *string  `json:"name" validate:"omitempty,max=150"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Discount    *float64 `json:"discount" validate:"omitempty,gte=0,lte=100"`
	Category    *string  `json:"category" validate:"omitempty,max=100"`
	Image       *string  `json:"image" validate:"omitempty,max=500"`
	IsAvailable *bool    `json:"isAvailable"`
}

func (s *CatalogService) ownedFoodItem(r *models.Restaurant, id uint) (*models.FoodItem, error) {
	var item models.FoodItem
	if err := s.DB.First(&item, id).Error; err != nil {
		return nil, lookup(err, "food item")
	}
	if item.RestaurantID != r.ID {
		return nil, ForbiddenError("this food item does not belong to your restaurant")
	}
	return &item, nil
}

func (s *CatalogService) UpdateFoodItem(r *models.Restaurant, id uint, in FoodItemUpdate) (*models.FoodItem, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	item, err := s.ownedFoodItem(r, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.Name != nil {
		n := strings.TrimSpace(*in.Name)
		if n == "" {
			return nil, ValidationError("name cannot be empty")
		}
		updates["name"] = n
	}
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		updates["price"] = *in.Price
	}
	if in.Discount != nil {
		updates["discount"] = *in.Discount
	}
	if in.Category != nil {
		c := strings.TrimSpace(*in.Category)
		if err := s.checkCategory(c); err != nil {
			return nil, err
		}
		updates["category"] = c
	}
	if in.Image != nil {
		updates["image"] = strings.TrimSpace(*in.Image)
	}
	if in.IsAvailable != nil {
		updates["is_available"] = *in.IsAvailable
	}
	if len(updates) > 0 {
		if err := s.DB.Model(item).Updates(updates).Error; err != nil {
			return nil, wrapInternal(err, "failed to update food item")
		}
	}
	if err := s.DB.First(item, item.ID).Error; err != nil {
		return nil, wrapInternal(err, "failed to reload food item")
	}
	return item, nil
}

// DeleteFoodItem removes the item. Cart lines pointing at it stay and are reported
// as dangling when the cart is read.
func (s *CatalogService) DeleteFoodItem(r *models.Restaurant, id uint) error {
	item, err := s.ownedFoodItem(r, id)
	if err != nil {
		return err
	}
	if err := s.DB.Delete(item).Error; err != nil {
		return wrapInternal(err, "failed to delete food item")
	}
	return nil
}
