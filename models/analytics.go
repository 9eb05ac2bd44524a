package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UncategorizedLabel is used for products whose category cannot be resolved.
const UncategorizedLabel = "Uncategorized"

type CategoryProduct struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Sales    int     `json:"sales"`
	Revenue  float64 `json:"revenue"`
}

type MonthlyStat struct {
	Month  string  `json:"month"`
	Sales  float64 `json:"sales"`
	Orders int     `json:"orders"`
}

type ClickedProduct struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Clicks   int64  `json:"clicks"`
}

type RecentOrder struct {
	ID          primitive.ObjectID `json:"_id"`
	OrderNumber string             `json:"orderNumber"`
	Customer    string             `json:"customer"`
	TotalPrice  float64            `json:"totalPrice"`
	Status      string             `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// AnalyticsReport is the body of GET /api/analytics.
type AnalyticsReport struct {
	Revenue         float64 `json:"revenue"`
	Orders          int     `json:"orders"`
	DeliveredOrders int     `json:"deliveredOrders"`
	Products        int64   `json:"products"`
	Customers       int     `json:"customers"`

	RevenueChange   float64 `json:"revenueChange"`
	OrdersChange    float64 `json:"ordersChange"`
	DeliveredChange float64 `json:"deliveredChange"`
	CustomersChange float64 `json:"customersChange"`
	ProductsChange  float64 `json:"productsChange"`

	TopProductsByCategory map[string][]CategoryProduct `json:"topProductsByCategory"`
	MonthlyStats          []MonthlyStat                `json:"monthlyStats"`
	MostClickedProducts   []ClickedProduct             `json:"mostClickedProducts"`
	RecentOrders          []RecentOrder                `json:"recentOrders"`

	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

// DegradedReport is the zero-valued payload returned alongside a 500.
func DegradedReport(details string) AnalyticsReport {
	return AnalyticsReport{
		TopProductsByCategory: map[string][]CategoryProduct{},
		MonthlyStats:          []MonthlyStat{},
		MostClickedProducts:   []ClickedProduct{},
		RecentOrders:          []RecentOrder{},
		Error:                 "failed to compute analytics",
		Details:               details,
	}
}
