package services

import (
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"food-ordering-api/models"
	"food-ordering-api/testutil"
)

func newLogger() (*logrus.Logger, *logtest.Hook) {
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}

func ptr[T any](v T) *T { return &v }

func assertKind(t *testing.T, err error, k Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, k.String(), KindOf(err).String(), "error: %v", err)
}

func warnings(hook *logtest.Hook) []*logrus.Entry {
	var out []*logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			out = append(out, e)
		}
	}
	return out
}

// fixture is a small world shared by most service tests: one customer and two
// restaurants with one dish each.
type fixture struct {
	db       *gorm.DB
	customer *models.User
	r1, r2   *models.Restaurant
	f1, f2   *models.FoodItem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	fx := &fixture{db: db}
	fx.customer = testutil.CreateUser(t, db, models.RoleCustomer, "alice@example.com")
	fx.r1 = testutil.CreateRestaurant(t, db, "Pasta")
	fx.r2 = testutil.CreateRestaurant(t, db, "Sushi")
	fx.f1 = testutil.CreateFoodItem(t, db, fx.r1.ID, "Lasagne", 10, 0)
	fx.f2 = testutil.CreateFoodItem(t, db, fx.r2.ID, "Maki", 8, 25)
	return fx
}
