package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-ordering-api/models"
	"food-ordering-api/testutil"
)

func restaurantRating(t *testing.T, fx *fixture, id uint) *float64 {
	t.Helper()
	var r models.Restaurant
	require.NoError(t, fx.db.First(&r, id).Error)
	return r.AverageRating
}

func TestRestaurantAverageIsMeanOfAllRatings(t *testing.T) {
	fx := newFixture(t)
	log, _ := newLogger()
	svc := NewFeedbackService(fx.db, log)

	assert.Nil(t, restaurantRating(t, fx, fx.r1.ID), "no ratings yet")

	var ids []uint
	for i, rating := range []int{3, 4, 5} {
		u := testutil.CreateUser(t, fx.db, models.RoleCustomer, "rater"+string(rune('a'+i))+"@example.com")
		fb, err := svc.SubmitRating(u.ID, RatingIn{RestaurantID: fx.r1.ID, Rating: rating, Message: "ok"})
		require.NoError(t, err)
		ids = append(ids, fb.ID)

		if i == 0 {
			avg := restaurantRating(t, fx, fx.r1.ID)
			require.NotNil(t, avg)
			assert.InDelta(t, 3.0, *avg, 1e-9)
		}
	}
	avg := restaurantRating(t, fx, fx.r1.ID)
	require.NotNil(t, avg)
	assert.InDelta(t, 4.0, *avg, 1e-9)

	require.NoError(t, svc.DeleteRating(ids[2]))
	avg = restaurantRating(t, fx, fx.r1.ID)
	require.NotNil(t, avg)
	assert.InDelta(t, 3.5, *avg, 1e-9)

	require.NoError(t, svc.DeleteRating(ids[0]))
	require.NoError(t, svc.DeleteRating(ids[1]))
	assert.Nil(t, restaurantRating(t, fx, fx.r1.ID), "back to no ratings")

	assert.Nil(t, restaurantRating(t, fx, fx.r2.ID), "other restaurant untouched")
	assertKind(t, svc.DeleteRating(ids[0]), KindNotFound)
}

func TestRatingPerOrderIsUnique(t *testing.T) {
	fx := newFixture(t)
	log, _ := newLogger()
	svc := NewFeedbackService(fx.db, log)
	o1 := testutil.CreateOrder(t, fx.db, fx.customer.ID, fx.f1, models.StatusDelivered)
	o2 := testutil.CreateOrder(t, fx.db, fx.customer.ID, fx.f1, models.StatusDelivered)

	_, err := svc.SubmitRating(fx.customer.ID, RatingIn{RestaurantID: fx.r1.ID, OrderID: &o1.ID, Rating: 5})
	require.NoError(t, err)

	_, err = svc.SubmitRating(fx.customer.ID, RatingIn{RestaurantID: fx.r1.ID, OrderID: &o1.ID, Rating: 1})
	assertKind(t, err, KindConflict)

	_, err = svc.SubmitRating(fx.customer.ID, RatingIn{RestaurantID: fx.r1.ID, OrderID: &o2.ID, Rating: 4})
	require.NoError(t, err)

	avg := restaurantRating(t, fx, fx.r1.ID)
	require.NotNil(t, avg)
	assert.InDelta(t, 4.5, *avg, 1e-9)
}

func TestRatingOrderChecks(t *testing.T) {
	fx := newFixture(t)
	log, _ := newLogger()
	svc := NewFeedbackService(fx.db, log)
	pending := testutil.CreateOrder(t, fx.db, fx.customer.ID, fx.f1, models.StatusPending)
	delivered := testutil.CreateOrder(t, fx.db, fx.customer.ID, fx.f1, models.StatusDelivered)
	stranger := testutil.CreateUser(t, fx.db, models.RoleCustomer, "stranger@example.com")

	_, err := svc.SubmitRating(fx.customer.ID, RatingIn{RestaurantID: fx.r1.ID, OrderID: &pending.ID, Rating: 4})
	assertKind(t, err, KindValidation)

	_, err = svc.SubmitRating(stranger.ID, RatingIn{RestaurantID: fx.r1.ID, OrderID: &delivered.ID, Rating: 4})
	assertKind(t, err, KindForbidden)

	_, err = svc.SubmitRating(fx.customer.ID, RatingIn{RestaurantID: fx.r2.ID, OrderID: &delivered.ID, Rating: 4})
	assertKind(t, err, KindValidation)

	_, err = svc.SubmitRating(fx.customer.ID, RatingIn{RestaurantID: fx.r1.ID, Rating: 6})
	assertKind(t, err, KindValidation)
	assert.Contains(t, err.Error(), "rating must be at most 5")

	_, err = svc.SubmitRating(fx.customer.ID, RatingIn{RestaurantID: 404, Rating: 3})
	assertKind(t, err, KindNotFound)
}

func TestFoodItemRating(t *testing.T) {
	fx := newFixture(t)
	log, _ := newLogger()
	svc := NewFeedbackService(fx.db, log)
	bob := testutil.CreateUser(t, fx.db, models.RoleCustomer, "bob@example.com")

	_, err := svc.SubmitRating(fx.customer.ID, RatingIn{RestaurantID: fx.r1.ID, FoodItemID: &fx.f1.ID, Rating: 2})
	require.NoError(t, err)
	_, err = svc.SubmitRating(bob.ID, RatingIn{RestaurantID: fx.r1.ID, FoodItemID: &fx.f1.ID, Rating: 5})
	require.NoError(t, err)

	_, err = svc.SubmitRating(fx.customer.ID, RatingIn{RestaurantID: fx.r1.ID, FoodItemID: &fx.f1.ID, Rating: 3})
	assertKind(t, err, KindConflict)

	_, err = svc.SubmitRating(fx.customer.ID, RatingIn{RestaurantID: fx.r1.ID, FoodItemID: &fx.f2.ID, Rating: 3})
	assertKind(t, err, KindValidation)

	var food models.FoodItem
	require.NoError(t, fx.db.First(&food, fx.f1.ID).Error)
	require.NotNil(t, food.Rating)
	assert.InDelta(t, 3.5, *food.Rating, 1e-9)

	mine, err := svc.ListByUser(fx.customer.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Receiver)
	assert.Equal(t, "Pasta", mine[0].Receiver.Title)

	received, err := svc.ListForRestaurant(fx.r1.ID)
	require.NoError(t, err)
	assert.Len(t, received, 2)
}

func TestSendToAdmin(t *testing.T) {
	fx := newFixture(t)
	log, _ := newLogger()
	svc := NewFeedbackService(fx.db, log)
	var owner models.User
	require.NoError(t, fx.db.First(&owner, fx.r1.OwnerID).Error)
	admin := testutil.CreateUser(t, fx.db, models.RoleAdmin, "root@example.com")

	got, err := svc.SendToAdmin(fx.customer, nil, MessageIn{Subject: "Late", Message: " cold food "})
	require.NoError(t, err)
	fromCustomer, ok := got.(*models.FeedbackUserToAdmin)
	require.True(t, ok)
	assert.Equal(t, models.FeedbackNew, fromCustomer.Status)
	assert.Equal(t, "cold food", fromCustomer.Message)

	got, err = svc.SendToAdmin(&owner, fx.r1, MessageIn{Message: "need help"})
	require.NoError(t, err)
	fromOwner, ok := got.(*models.FeedbackRestaurant)
	require.True(t, ok)
	require.NotNil(t, fromOwner.RestaurantID)
	assert.Equal(t, fx.r1.ID, *fromOwner.RestaurantID)

	_, err = svc.SendToAdmin(admin, nil, MessageIn{Message: "hi me"})
	assertKind(t, err, KindForbidden)

	_, err = svc.SendToAdmin(fx.customer, nil, MessageIn{Message: "   "})
	assertKind(t, err, KindValidation)
}

func TestFeedbackStatusOnlyMovesForward(t *testing.T) {
	fx := newFixture(t)
	log, _ := newLogger()
	svc := NewFeedbackService(fx.db, log)
	got, err := svc.SendToAdmin(fx.customer, nil, MessageIn{Message: "where is my order"})
	require.NoError(t, err)
	id := got.(*models.FeedbackUserToAdmin).ID

	fb, err := svc.SetUserFeedbackStatus(id, "pending")
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackPending, fb.Status)

	_, err = svc.SetUserFeedbackStatus(id, "new")
	assertKind(t, err, KindValidation)

	fb, err = svc.SetUserFeedbackStatus(id, "resolved")
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackResolved, fb.Status)

	_, err = svc.SetUserFeedbackStatus(id, "pending")
	assertKind(t, err, KindValidation)
	_, err = svc.SetUserFeedbackStatus(id, "archived")
	assertKind(t, err, KindValidation)
	_, err = svc.SetRestaurantFeedbackStatus(id, "resolved")
	assertKind(t, err, KindNotFound)

	resolved, err := svc.ListUserFeedback("resolved")
	require.NoError(t, err)
	assert.Len(t, resolved, 1)
	fresh, err := svc.ListUserFeedback("new")
	require.NoError(t, err)
	assert.Empty(t, fresh)
}

func TestBroadcastAndInbox(t *testing.T) {
	fx := newFixture(t)
	log, _ := newLogger()
	svc := NewFeedbackService(fx.db, log)
	admin := testutil.CreateUser(t, fx.db, models.RoleAdmin, "root@example.com")
	var owner1, owner2 models.User
	require.NoError(t, fx.db.First(&owner1, fx.r1.OwnerID).Error)
	require.NoError(t, fx.db.First(&owner2, fx.r2.OwnerID).Error)

	direct, err := svc.Broadcast(admin.ID, BroadcastIn{
		ReceiverRole: models.ReceiverSpecificRestaurant,
		ReceiverID:   &fx.r1.ID,
		Message:      "please update your menu",
	})
	require.NoError(t, err)
	require.NotNil(t, direct.ReceiverUserID)
	assert.Equal(t, fx.r1.OwnerID, *direct.ReceiverUserID, "restaurant target is stored as its owner")

	_, err = svc.Broadcast(admin.ID, BroadcastIn{ReceiverRole: models.ReceiverAllRestaurants, Message: "maintenance tonight"})
	require.NoError(t, err)
	_, err = svc.Broadcast(admin.ID, BroadcastIn{ReceiverRole: models.ReceiverAllUsers, Message: "new restaurants"})
	require.NoError(t, err)
	_, err = svc.Broadcast(admin.ID, BroadcastIn{ReceiverRole: models.ReceiverSpecificUser, ReceiverID: &fx.customer.ID, Message: "thanks"})
	require.NoError(t, err)

	_, err = svc.Broadcast(admin.ID, BroadcastIn{ReceiverRole: models.ReceiverSpecificUser, Message: "nobody"})
	assertKind(t, err, KindValidation)
	_, err = svc.Broadcast(admin.ID, BroadcastIn{ReceiverRole: models.ReceiverSpecificUser, ReceiverID: ptr(uint(999)), Message: "ghost"})
	assertKind(t, err, KindNotFound)
	_, err = svc.Broadcast(admin.ID, BroadcastIn{ReceiverRole: "everyone", Message: "x"})
	assertKind(t, err, KindValidation)

	inbox, err := svc.Inbox(&owner1)
	require.NoError(t, err)
	assert.Len(t, inbox, 2)

	inbox, err = svc.Inbox(&owner2)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, models.ReceiverAllRestaurants, inbox[0].ReceiverRole)

	inbox, err = svc.Inbox(fx.customer)
	require.NoError(t, err)
	assert.Len(t, inbox, 2)

	sent, err := svc.ListSent()
	require.NoError(t, err)
	assert.Len(t, sent, 4)
}
