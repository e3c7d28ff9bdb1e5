package services

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-ordering-api/models"
	"food-ordering-api/testutil"
)

func newOrderService(fx *fixture, log logrus.FieldLogger) (*OrderService, *CartService) {
	cart := NewCartService(fx.db, log)
	return NewOrderService(fx.db, cart, log), cart
}

func TestPlaceOrderPrunesOnlyThatRestaurant(t *testing.T) {
	fx := newFixture(t)
	log, _ := newLogger()
	orders, carts := newOrderService(fx, log)

	cart, err := carts.GetOrCreate(fx.customer.ID)
	require.NoError(t, err)
	_, err = carts.AddItem(cart, AddToCartIn{FoodItemID: fx.f1.ID, RestaurantID: fx.r1.ID, Quantity: 2, Price: 10})
	require.NoError(t, err)
	_, err = carts.AddItem(cart, AddToCartIn{FoodItemID: fx.f2.ID, RestaurantID: fx.r2.ID, Quantity: 1, Price: 6})
	require.NoError(t, err)

	res, err := orders.Place(fx.customer, PlaceOrderIn{
		RestaurantID: fx.r1.ID,
		Items:        []PlaceOrderItem{{FoodItemID: fx.f1.ID, Quantity: 2, Price: 10}},
	})
	require.NoError(t, err)
	assert.True(t, res.CartPruned)
	assert.False(t, res.Replayed)
	assert.NotEmpty(t, res.IdempotencyKey)
	assert.Equal(t, models.StatusPending, res.Order.Status)
	assert.Equal(t, 20.0, res.Order.TotalAmount)
	assert.Equal(t, models.PaymentCash, res.Order.PaymentMethod)
	require.NotNil(t, res.Order.Restaurant)
	assert.Equal(t, "Pasta", res.Order.Restaurant.Title)

	var lines []models.CartItem
	require.NoError(t, fx.db.Where("cart_id = ?", cart.ID).Find(&lines).Error)
	require.Len(t, lines, 1)
	assert.Equal(t, fx.r2.ID, lines[0].RestaurantID)

	var history []models.OrderStatusHistory
	require.NoError(t, fx.db.Where("order_id = ?", res.Order.ID).Find(&history).Error)
	require.Len(t, history, 1)
	assert.Equal(t, models.StatusPending, history[0].ToStatus)
}

func TestPlaceOrderPriceMismatchIsOnlyAWarning(t *testing.T) {
	fx := newFixture(t)
	log, hook := newLogger()
	orders, _ := newOrderService(fx, log)

	// catalog price of f2 is 8 with 25% off, so 6 is expected
	res, err := orders.Place(fx.customer, PlaceOrderIn{
		RestaurantID: fx.r2.ID,
		Items:        []PlaceOrderItem{{FoodItemID: fx.f2.ID, Quantity: 3, Price: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, 15.0, res.Order.TotalAmount)
	require.Len(t, res.Order.Items, 1)
	assert.Equal(t, 5.0, res.Order.Items[0].Price)
	assert.Equal(t, 25.0, res.Order.Items[0].Discount)

	warns := warnings(hook)
	require.Len(t, warns, 1)
	assert.Equal(t, "order item price does not match catalog price", warns[0].Message)
	assert.Equal(t, 6.0, warns[0].Data["expected"])
	assert.Equal(t, 5.0, warns[0].Data["submitted"])
}

func TestPlaceOrderMatchingPriceDoesNotWarn(t *testing.T) {
	fx := newFixture(t)
	log, hook := newLogger()
	orders, _ := newOrderService(fx, log)

	res, err := orders.Place(fx.customer, PlaceOrderIn{
		RestaurantID: fx.r2.ID,
		Items:        []PlaceOrderItem{{FoodItemID: fx.f2.ID, Quantity: 1, Price: 6}},
	})
	require.NoError(t, err)
	assert.Equal(t, 6.0, res.Order.TotalAmount)
	assert.Empty(t, warnings(hook))
}

func TestPlaceOrderRejectsInvalidItems(t *testing.T) {
	fx := newFixture(t)
	log, _ := newLogger()
	orders, _ := newOrderService(fx, log)

	_, err := orders.Place(fx.customer, PlaceOrderIn{
		RestaurantID: fx.r1.ID,
		Items:        []PlaceOrderItem{{FoodItemID: fx.f2.ID, Quantity: 1}},
	})
	assertKind(t, err, KindValidation)
	assert.Contains(t, err.Error(), `"Maki"`)

	_, err = orders.Place(fx.customer, PlaceOrderIn{
		RestaurantID: fx.r1.ID,
		Items:        []PlaceOrderItem{{FoodItemID: 4242, Quantity: 1}},
	})
	assertKind(t, err, KindValidation)
	assert.Contains(t, err.Error(), "4242")

	_, err = orders.Place(fx.customer, PlaceOrderIn{RestaurantID: fx.r1.ID})
	assertKind(t, err, KindValidation)
	assert.Contains(t, err.Error(), "items is required")

	_, err = orders.Place(fx.customer, PlaceOrderIn{
		RestaurantID: 777,
		Items:        []PlaceOrderItem{{FoodItemID: fx.f1.ID, Quantity: 1}},
	})
	assertKind(t, err, KindNotFound)

	var n int64
	fx.db.Model(&models.Order{}).Count(&n)
	assert.Zero(t, n)
}

func TestPlaceOrderDeliveryAddressFallback(t *testing.T) {
	fx := newFixture(t)
	log, _ := newLogger()
	orders, _ := newOrderService(fx, log)
	item := []PlaceOrderItem{{FoodItemID: fx.f1.ID, Quantity: 1}}

	res, err := orders.Place(fx.customer, PlaceOrderIn{RestaurantID: fx.r1.ID, Items: item, DeliveryAddress: " 9 Elm Road "})
	require.NoError(t, err)
	assert.Equal(t, "9 Elm Road", res.Order.DeliveryAddress)

	res, err = orders.Place(fx.customer, PlaceOrderIn{RestaurantID: fx.r1.ID, Items: item})
	require.NoError(t, err)
	assert.Equal(t, fx.customer.Address, res.Order.DeliveryAddress)

	homeless := testutil.CreateUser(t, fx.db, models.RoleCustomer, "nomad@example.com")
	homeless.Address = ""
	res, err = orders.Place(homeless, PlaceOrderIn{RestaurantID: fx.r1.ID, Items: item})
	require.NoError(t, err)
	assert.Equal(t, AddressNotProvided, res.Order.DeliveryAddress)
}

func TestPlaceOrderReplaysIdempotencyKey(t *testing.T) {
	fx := newFixture(t)
	log, _ := newLogger()
	orders, carts := newOrderService(fx, log)
	cart, err := carts.GetOrCreate(fx.customer.ID)
	require.NoError(t, err)

	in := PlaceOrderIn{
		RestaurantID:   fx.r1.ID,
		Items:          []PlaceOrderItem{{FoodItemID: fx.f1.ID, Quantity: 1, Price: 10}},
		IdempotencyKey: "checkout-1",
	}
	first, err := orders.Place(fx.customer, in)
	require.NoError(t, err)
	assert.Equal(t, "checkout-1", first.IdempotencyKey)

	// a line that survived a failed prune is removed by the retry
	_, err = carts.AddItem(cart, AddToCartIn{FoodItemID: fx.f1.ID, RestaurantID: fx.r1.ID, Quantity: 1, Price: 10})
	require.NoError(t, err)

	in.Items[0].Quantity = 9
	second, err := orders.Place(fx.customer, in)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.True(t, second.CartPruned)
	assert.Equal(t, first.Order.ID, second.Order.ID)
	assert.Equal(t, 10.0, second.Order.TotalAmount)

	var n int64
	fx.db.Model(&models.Order{}).Count(&n)
	assert.EqualValues(t, 1, n)
	fx.db.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&n)
	assert.Zero(t, n)

	// the same key from another customer is a different order
	other := testutil.CreateUser(t, fx.db, models.RoleCustomer, "bob@example.com")
	third, err := orders.Place(other, in)
	require.NoError(t, err)
	assert.False(t, third.Replayed)
	assert.NotEqual(t, first.Order.ID, third.Order.ID)
}

func TestCancelOnlyWhilePendingOrPreparing(t *testing.T) {
	tests := []struct {
		status models.OrderStatus
		ok     bool
	}{
		{models.StatusPending, true},
		{models.StatusPreparing, true},
		{models.StatusDelivered, false},
		{models.StatusCancelled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			fx := newFixture(t)
			log, _ := newLogger()
			orders, _ := newOrderService(fx, log)
			o := testutil.CreateOrder(t, fx.db, fx.customer.ID, fx.f1, tt.status)

			got, err := orders.Cancel(fx.customer.ID, o.ID)
			if !tt.ok {
				assertKind(t, err, KindConflict)
				assert.Contains(t, err.Error(), string(tt.status))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.StatusCancelled, got.Status)
			require.NotEmpty(t, got.StatusHistory)
			last := got.StatusHistory[len(got.StatusHistory)-1]
			assert.Equal(t, tt.status, last.FromStatus)
			assert.Equal(t, models.StatusCancelled, last.ToStatus)
		})
	}
}

func TestCancelSomeoneElsesOrder(t *testing.T) {
	fx := newFixture(t)
	log, _ := newLogger()
	orders, _ := newOrderService(fx, log)
	o := testutil.CreateOrder(t, fx.db, fx.customer.ID, fx.f1, models.StatusPending)
	mallory := testutil.CreateUser(t, fx.db, models.RoleCustomer, "mallory@example.com")

	_, err := orders.Cancel(mallory.ID, o.ID)
	assertKind(t, err, KindForbidden)

	_, err = orders.Cancel(fx.customer.ID, 9999)
	assertKind(t, err, KindNotFound)
}

func TestRestaurantStatusUpdateFollowsTransitionTable(t *testing.T) {
	fx := newFixture(t)
	log, _ := newLogger()
	orders, _ := newOrderService(fx, log)
	o := testutil.CreateOrder(t, fx.db, fx.customer.ID, fx.f1, models.StatusPending)

	got, err := orders.UpdateStatus(fx.r1, fx.r1.OwnerID, o.ID, models.StatusPreparing, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, got.Status)

	got, err = orders.UpdateStatus(fx.r1, fx.r1.OwnerID, o.ID, models.StatusDelivered, "on its way")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, got.Status)
	assert.Equal(t, 10.0, got.TotalAmount, "status updates keep the total")
	require.Len(t, got.StatusHistory, 2)
	assert.Equal(t, "on its way", got.StatusHistory[1].Note)

	_, err = orders.UpdateStatus(fx.r1, fx.r1.OwnerID, o.ID, models.StatusPending, "")
	assertKind(t, err, KindValidation)
	assert.Contains(t, err.Error(), "terminal")

	_, err = orders.UpdateStatus(fx.r1, fx.r1.OwnerID, o.ID, models.OrderStatus("shipped"), "")
	assertKind(t, err, KindValidation)

	_, err = orders.UpdateStatus(fx.r2, fx.r2.OwnerID, o.ID, models.StatusCancelled, "")
	assertKind(t, err, KindForbidden)
}

func TestTransitionRejectsStaleStatus(t *testing.T) {
	fx := newFixture(t)
	log, _ := newLogger()
	orders, _ := newOrderService(fx, log)
	o := testutil.CreateOrder(t, fx.db, fx.customer.ID, fx.f1, models.StatusPending)
	stale := *o

	require.NoError(t, orders.transition(o, models.StatusPreparing, fx.r1.OwnerID, "accepted"))
	err := orders.transition(&stale, models.StatusCancelled, fx.customer.ID, "too late")
	assertKind(t, err, KindConflict)

	var reloaded models.Order
	require.NoError(t, fx.db.First(&reloaded, o.ID).Error)
	assert.Equal(t, models.StatusPreparing, reloaded.Status)
}

func TestListOrders(t *testing.T) {
	fx := newFixture(t)
	log, _ := newLogger()
	orders, _ := newOrderService(fx, log)
	older := testutil.CreateOrder(t, fx.db, fx.customer.ID, fx.f1, models.StatusDelivered)
	newer := testutil.CreateOrder(t, fx.db, fx.customer.ID, fx.f1, models.StatusPending)
	testutil.CreateOrder(t, fx.db, fx.customer.ID, fx.f2, models.StatusCancelled)

	mine, err := orders.ListForCustomer(fx.customer.ID)
	require.NoError(t, err)
	require.Len(t, mine, 3)
	assert.Equal(t, newer.ID, mine[1].ID)
	assert.Equal(t, older.ID, mine[2].ID)

	incoming, summary, err := orders.ListForRestaurant(fx.r1.ID, "pending")
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, newer.ID, incoming[0].ID)
	assert.EqualValues(t, 1, summary[models.StatusPending])
	assert.EqualValues(t, 1, summary[models.StatusDelivered])
	assert.EqualValues(t, 0, summary[models.StatusCancelled])

	_, _, err = orders.ListForRestaurant(fx.r1.ID, "lost")
	assertKind(t, err, KindValidation)

	all, err := orders.ListAll(AdminOrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Count)
	assert.Equal(t, 10.0, all.Revenue)
	assert.EqualValues(t, 1, all.Summary[models.StatusCancelled])

	filtered, err := orders.ListAll(AdminOrderFilter{RestaurantID: fx.r2.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, filtered.Count)
	assert.Zero(t, filtered.Revenue)
}
