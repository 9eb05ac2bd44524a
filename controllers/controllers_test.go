package controllers

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"marketplace/models"
	"marketplace/services/analytics"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSource struct {
	err    error
	orders []models.Order
}

func (s *stubSource) FindOrders(context.Context, analytics.OrderFilter) ([]models.Order, error) {
	return s.orders, s.err
}

func (s *stubSource) CountProducts(context.Context, *time.Time, *time.Time) (int64, error) {
	return 0, s.err
}

func (s *stubSource) MostClickedProducts(context.Context, int64) ([]models.Product, error) {
	return nil, s.err
}

func (s *stubSource) FindProducts(context.Context, []primitive.ObjectID) ([]models.Product, error) {
	return nil, s.err
}

func (s *stubSource) CategoryNames(context.Context, []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	return map[primitive.ObjectID]string{}, s.err
}

func serveAnalytics(t *testing.T, src analytics.Source, query string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	r := gin.New()
	r.GET("/api/analytics", GetAnalytics(analytics.NewService(src), time.Second))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analytics"+query, nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestGetAnalyticsEmptyStore(t *testing.T) {
	w, body := serveAnalytics(t, &stubSource{}, "?range=week")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, body["revenue"])
	assert.Equal(t, map[string]interface{}{}, body["topProductsByCategory"])
	assert.Equal(t, []interface{}{}, body["mostClickedProducts"])
	assert.Len(t, body["monthlyStats"], 12)
	assert.NotContains(t, body, "error")
}

func TestGetAnalyticsDegraded(t *testing.T) {
	w, body := serveAnalytics(t, &stubSource{err: errors.New("server selection timeout")}, "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "failed to compute analytics", body["error"])
	assert.Equal(t, "server selection timeout", body["details"])
	for _, key := range []string{"revenue", "orders", "deliveredOrders", "products", "customers",
		"revenueChange", "ordersChange", "deliveredChange", "customersChange", "productsChange"} {
		assert.Equal(t, 0.0, body[key], key)
	}
	assert.Equal(t, map[string]interface{}{}, body["topProductsByCategory"])
	assert.Equal(t, []interface{}{}, body["monthlyStats"])
	assert.Equal(t, []interface{}{}, body["mostClickedProducts"])
	assert.Equal(t, []interface{}{}, body["recentOrders"])
}

func TestPromoAmount(t *testing.T) {
	assert.Equal(t, 500.0, promoAmount(500.0))
	assert.Equal(t, 250.0, promoAmount(" 250 "))
	assert.Zero(t, promoAmount("abc"))
	assert.Zero(t, promoAmount(-10.0))
	assert.Zero(t, promoAmount(nil))
	assert.Zero(t, promoAmount(true))
}

func TestOrderTotal(t *testing.T) {
	lines := []models.OrderProduct{{Quantity: 2, Price: 1500}, {Quantity: 1, Price: 3000}}
	assert.Equal(t, 6000.0, orderTotal(lines, 0))
	assert.Equal(t, 5000.0, orderTotal(lines, 1000))
	assert.Equal(t, 0.0, orderTotal(lines, 10000))
}

func TestOrderTotals(t *testing.T) {
	orders := []orderWithClient{
		{Order: models.Order{TotalPrice: 100}},
		{Order: models.Order{TotalPrice: 200}},
	}
	promo, total := orderTotals(orders)
	assert.Nil(t, promo)
	assert.Equal(t, 300.0, total)

	orders = append(orders, orderWithClient{Order: models.Order{TotalPrice: 50, PromoAmount: 25}})
	promo, total = orderTotals(orders)
	require.NotNil(t, promo)
	assert.Equal(t, 25.0, *promo)
	assert.Equal(t, 25.0, total)
}

func TestGenerateOrderNumber(t *testing.T) {
	n := generateOrderNumber()
	assert.Regexp(t, `^CMD-\d{13}-\d{1,4}$`, n)
}

func TestRankByUnits(t *testing.T) {
	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	orders := []models.Order{
		{Products: []models.OrderProduct{{Product: a, Quantity: 1}, {Product: b, Quantity: 3}}},
		{Products: []models.OrderProduct{{Product: c, Quantity: 1}, {Product: a, Quantity: 1}}},
	}
	assert.Equal(t, []primitive.ObjectID{b, a, c}, rankByUnits(orders))
	assert.Empty(t, rankByUnits(nil))
}

func TestFlattenSubcategories(t *testing.T) {
	cat := models.Category{
		ID:   primitive.NewObjectID(),
		Name: "Mode",
		Slug: "mode",
		Subcategories: []models.Subcategory{
			{ID: primitive.NewObjectID(), Name: "Robes"},
			{ID: primitive.NewObjectID(), Name: "Sacs"},
		},
	}
	flat := flattenSubcategories([]models.Category{cat, {Name: "Vide"}})
	require.Len(t, flat, 2)
	assert.Equal(t, "Sacs", flat[1].Name)
	assert.Equal(t, parentRef{ID: cat.ID, Name: "Mode", Slug: "mode"}, flat[1].Parent)
}

func TestNormalizeEmail(t *testing.T) {
	email, ok := normalizeEmail("  Awa@Example.COM ")
	assert.True(t, ok)
	assert.Equal(t, "awa@example.com", email)

	for _, bad := range []string{"", "not-an-email", "Awa <awa@example.com>"} {
		_, ok := normalizeEmail(bad)
		assert.False(t, ok, bad)
	}
}

func TestWriteSubscribersCSV(t *testing.T) {
	at := time.Date(2024, time.May, 2, 10, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	err := writeSubscribersCSV(csv.NewWriter(&buf), []models.NewsletterSubscriber{
		{Email: "a@x.com", SubscribedAt: at, Source: "https://shop.example/"},
		{Email: "b@x.com", SubscribedAt: at},
	})
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Email", "Subscribed at", "Source"},
		{"a@x.com", "2024-05-02T10:00:00Z", "https://shop.example/"},
		{"b@x.com", "2024-05-02T10:00:00Z", "website"},
	}, rows)
}

func TestHandlersRejectBadInput(t *testing.T) {
	r := gin.New()
	r.POST("/api/auth/login", Login)
	r.GET("/api/orders/:id", GetOrderByID)
	r.PATCH("/api/orders/:id/status", UpdateOrderStatus)
	r.GET("/api/products/:id", GetProductByID)
	r.POST("/api/products/:id/click", TrackProductClick)
	r.POST("/api/newsletter/subscribe", Subscribe)
	r.POST("/api/orders", CreateOrder)

	valid := primitive.NewObjectID().Hex()
	tests := []struct {
		method, path, body string
		status             int
	}{
		{http.MethodPost, "/api/auth/login", `{"username":"admin"}`, http.StatusBadRequest},
		{http.MethodGet, "/api/orders/nope", "", http.StatusBadRequest},
		{http.MethodPatch, "/api/orders/" + valid + "/status", `{"status":"livré"}`, http.StatusBadRequest},
		{http.MethodGet, "/api/products/123", "", http.StatusBadRequest},
		{http.MethodPost, "/api/products/xyz/click", "", http.StatusBadRequest},
		{http.MethodPost, "/api/newsletter/subscribe", `{}`, http.StatusBadRequest},
		{http.MethodPost, "/api/newsletter/subscribe", `{"email":"nope"}`, http.StatusBadRequest},
		{http.MethodPost, "/api/orders", `{"clientData":{"name":"A","email":"a@x.com"},"cartItems":[]}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
