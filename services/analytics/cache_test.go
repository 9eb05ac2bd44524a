package analytics

import (
	"context"
	"testing"
	"time"

	"marketplace/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewCache(rdb, time.Minute), mr
}

func TestCacheMiss(t *testing.T) {
	cache, _ := newTestCache(t)

	report, err := cache.Get(context.Background(), RangeWeek)
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestCacheRoundTripKeepsShape(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	empty := models.DegradedReport("")
	empty.Error = ""
	require.NoError(t, cache.Set(ctx, RangeMonth, &empty))
	assert.Equal(t, time.Minute, mr.TTL(cacheKey(RangeMonth)))

	raw, err := mr.Get(cacheKey(RangeMonth))
	require.NoError(t, err)
	assert.Contains(t, raw, `"topProductsByCategory":{}`)
	assert.Contains(t, raw, `"recentOrders":[]`)

	got, err := cache.Get(ctx, RangeMonth)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.NotNil(t, got.TopProductsByCategory)
	assert.Empty(t, got.TopProductsByCategory)
	assert.NotNil(t, got.MostClickedProducts)
	assert.NotNil(t, got.RecentOrders)

	id := primitive.NewObjectID()
	full := models.AnalyticsReport{
		Revenue: 1500,
		Orders:  2,
		TopProductsByCategory: map[string][]models.CategoryProduct{
			"Shoes": {{Name: "Sneaker", Category: "Shoes", Sales: 3, Revenue: 1500}},
		},
		MonthlyStats:        []models.MonthlyStat{{Month: "janv.", Sales: 1500, Orders: 2}},
		MostClickedProducts: []models.ClickedProduct{},
		RecentOrders:        []models.RecentOrder{{ID: id, OrderNumber: "CMD-1", CreatedAt: testNow}},
	}
	require.NoError(t, cache.Set(ctx, RangeYear, &full))

	got, err = cache.Get(ctx, RangeYear)
	require.NoError(t, err)
	require.Len(t, got.RecentOrders, 1)
	assert.Equal(t, id, got.RecentOrders[0].ID)
	assert.True(t, testNow.Equal(got.RecentOrders[0].CreatedAt))
	assert.Equal(t, full.TopProductsByCategory, got.TopProductsByCategory)
	assert.Equal(t, full.MonthlyStats, got.MonthlyStats)
	assert.Equal(t, 1500.0, got.Revenue)
}

func TestCachedServesStoredReport(t *testing.T) {
	cache, _ := newTestCache(t)
	src := &memSource{orders: []models.Order{
		order(models.StatusPaid, 1000, testNow.Add(-time.Hour), "a@x.com"),
	}}
	svc := NewService(src, WithClock(func() time.Time { return testNow }), WithLocation(time.UTC), WithCache(cache))
	ctx := context.Background()

	first, err := svc.Cached(ctx, RangeMonth)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Orders)
	reads := src.orderReads
	require.NotZero(t, reads)

	src.orders = append(src.orders, order(models.StatusPaid, 500, testNow.Add(-time.Hour), "b@x.com"))
	second, err := svc.Cached(ctx, RangeMonth)
	require.NoError(t, err)
	assert.Equal(t, reads, src.orderReads)
	assert.Equal(t, 1, second.Orders)
	assert.Equal(t, first.Revenue, second.Revenue)
}

func TestCachedRecomputesOnUnreadableEntry(t *testing.T) {
	cache, mr := newTestCache(t)
	src := &memSource{orders: []models.Order{
		order(models.StatusPaid, 1000, testNow.Add(-time.Hour), "a@x.com"),
	}}
	svc := NewService(src, WithClock(func() time.Time { return testNow }), WithLocation(time.UTC), WithCache(cache))
	require.NoError(t, mr.Set(cacheKey(RangeMonth), "not json"))

	report, err := svc.Cached(context.Background(), RangeMonth)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Orders)
	assert.NotZero(t, src.orderReads)

	stored, err := cache.Get(context.Background(), RangeMonth)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 1, stored.Orders)
}

func TestWarmFillsEveryRange(t *testing.T) {
	cache, mr := newTestCache(t)
	svc := NewService(&memSource{}, WithClock(func() time.Time { return testNow }), WithLocation(time.UTC), WithCache(cache))

	svc.Warm(context.Background())

	for _, r := range Ranges {
		assert.True(t, mr.Exists(cacheKey(r)), r)
		report, err := cache.Get(context.Background(), r)
		require.NoError(t, err)
		require.NotNil(t, report, r)
		assert.Len(t, report.MonthlyStats, 12)
	}
}

func TestWarmWithoutCacheIsNoop(t *testing.T) {
	src := &memSource{}
	newTestService(src).Warm(context.Background())
	assert.Zero(t, src.orderReads)
}
