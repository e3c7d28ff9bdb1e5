package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"food-ordering-api/models"
)

const (
	DefaultTrendDays = 7
	MaxTrendDays     = 90
	DefaultTopLimit  = 5
	MaxTopLimit      = 50
)

// ReportService computes admin analytics on demand.
type ReportService struct {
	DB  *gorm.DB
	Log logrus.FieldLogger
	Now func() time.Time
}

func NewReportService(db *gorm.DB, log logrus.FieldLogger) *ReportService {
	return &ReportService{DB: db, Log: log, Now: time.Now}
}

type Metrics struct {
	OrdersByStatus    OrderSummary `json:"ordersByStatus"`
	TotalOrders       int64        `json:"totalOrders"`
	DeliveredRevenue  float64      `json:"deliveredRevenue"`
	AverageOrderValue float64      `json:"averageOrderValue"`
	RatingsCount      int64        `json:"ratingsCount"`
	AverageRating     *float64     `json:"averageRating"`
}

func (s *ReportService) Metrics() (*Metrics, error) {
	var rows []struct {
		Status models.OrderStatus
		Count  int64
		Total  float64
	}
	err := s.DB.Model(&models.Order{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS total").
		Group("status").Scan(&rows).Error
	if err != nil {
		return nil, wrapInternal(err, "failed to aggregate orders")
	}

	m := &Metrics{OrdersByStatus: newOrderSummary()}
	revenue := decimal.Zero
	var delivered int64
	for _, r := range rows {
		m.OrdersByStatus[r.Status] = r.Count
		m.TotalOrders += r.Count
		if r.Status == models.StatusDelivered {
			revenue = decimal.NewFromFloat(r.Total)
			delivered = r.Count
		}
	}
	m.DeliveredRevenue = revenue.Round(2).InexactFloat64()
	if delivered > 0 {
		m.AverageOrderValue = revenue.Div(decimal.NewFromInt(delivered)).Round(2).InexactFloat64()
	}

	var agg ratingAggregate
	if err := s.DB.Model(&models.FeedbackCustomer{}).
		Select("COUNT(*) AS count, AVG(rating) AS avg").Scan(&agg).Error; err != nil {
		return nil, wrapInternal(err, "failed to aggregate ratings")
	}
	m.RatingsCount = agg.Count
	if agg.Count > 0 && agg.Avg != nil {
		avg := decimal.NewFromFloat(*agg.Avg).Round(2).InexactFloat64()
		m.AverageRating = &avg
	}
	return m, nil
}

type TrendPoint struct {
	Date    string  `json:"date"`
	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// OrderTrend returns one point per day for the last days days, today included.
// Days without orders are present with zero values. Cancelled orders count as
// orders but not as revenue.
func (s *ReportService) OrderTrend(days int) ([]TrendPoint, error) {
	if days <= 0 {
		days = DefaultTrendDays
	}
	if days > MaxTrendDays {
		days = MaxTrendDays
	}
	now := s.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(days - 1))

	// a day of slack for drivers that compare timestamps as text; the exact window
	// is applied by the bucket lookup below
	var orders []models.Order
	if err := s.DB.Select("id", "order_date", "total_amount", "status").
		Where("order_date >= ?", start.AddDate(0, 0, -1)).Find(&orders).Error; err != nil {
		return nil, wrapInternal(err, "failed to load orders")
	}

	points := make([]TrendPoint, days)
	revenue := make([]decimal.Decimal, days)
	index := make(map[string]int, days)
	for i := range points {
		d := start.AddDate(0, 0, i).Format(time.DateOnly)
		points[i].Date = d
		revenue[i] = decimal.Zero
		index[d] = i
	}
	for _, o := range orders {
		i, ok := index[o.OrderDate.UTC().Format(time.DateOnly)]
		if !ok {
			continue
		}
		points[i].Orders++
		if o.Status != models.StatusCancelled {
			revenue[i] = revenue[i].Add(decimal.NewFromFloat(o.TotalAmount))
		}
	}
	for i := range points {
		points[i].Revenue = revenue[i].Round(2).InexactFloat64()
	}
	return points, nil
}

type TopRestaurant struct {
	RestaurantID uint    `json:"restaurantId"`
	Title        string  `json:"title"`
	Orders       int64   `json:"orders" gorm:"column:order_count"`
	Revenue      float64 `json:"revenue"`
}

// TopRestaurants ranks restaurants by non-cancelled order count, then revenue.
func (s *ReportService) TopRestaurants(limit int) ([]TopRestaurant, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	if limit > MaxTopLimit {
		limit = MaxTopLimit
	}
	out := []TopRestaurant{}
	err := s.DB.Model(&models.Order{}).
		Select("orders.restaurant_id AS restaurant_id, restaurants.title AS title, COUNT(orders.id) AS order_count, COALESCE(SUM(orders.total_amount), 0) AS revenue").
		Joins("JOIN restaurants ON restaurants.id = orders.restaurant_id").
		Where("orders.status <> ?", models.StatusCancelled).
		Group("orders.restaurant_id, restaurants.title").
		Order("order_count DESC, revenue DESC, orders.restaurant_id ASC").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, wrapInternal(err, "failed to rank restaurants")
	}
	for i := range out {
		out[i].Revenue = decimal.NewFromFloat(out[i].Revenue).Round(2).InexactFloat64()
	}
	return out, nil
}

type CategoryCount struct {
	Category string `json:"category"`
	Quantity int64  `json:"quantity"`
}

// UncategorizedLabel names food items without a category in reports.
const UncategorizedLabel = "Uncategorized"

// CategoryPopularity sums ordered quantities per food-item category over
// non-cancelled orders.
func (s *ReportService) CategoryPopularity() ([]CategoryCount, error) {
	var rows []CategoryCount
	err := s.DB.Model(&models.OrderItem{}).
		Select("food_items.category AS category, SUM(order_items.quantity) AS quantity").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN food_items ON food_items.id = order_items.food_item_id").
		Where("orders.status <> ?", models.StatusCancelled).
		Group("food_items.category").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapInternal(err, "failed to aggregate categories")
	}

	merged := map[string]int64{}
	for _, r := range rows {
		c := r.Category
		if c == "" {
			c = UncategorizedLabel
		}
		merged[c] += r.Quantity
	}
	out := make([]CategoryCount, 0, len(merged))
	for c, q := range merged {
		out = append(out, CategoryCount{Category: c, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

// RatingDistribution counts ratings per star value. All five keys are present.
func (s *ReportService) RatingDistribution() (map[int]int64, error) {
	var rows []struct {
		Rating int
		Count  int64
	}
	if err := s.DB.Model(&models.FeedbackCustomer{}).
		Select("rating, COUNT(*) AS count").Group("rating").Scan(&rows).Error; err != nil {
		return nil, wrapInternal(err, "failed to aggregate ratings")
	}
	dist := map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, r := range rows {
		if _, ok := dist[r.Rating]; ok {
			dist[r.Rating] = r.Count
		}
	}
	return dist, nil
}
