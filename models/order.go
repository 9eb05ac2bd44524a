package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. Only these values are accepted by the status endpoint.
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// ActiveStatuses are the statuses that count toward business activity.
var ActiveStatuses = []string{StatusPending, StatusPaid, StatusShipped, StatusDelivered}

type OrderProduct struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Price    float64            `bson:"price" json:"price"`
	Name     string             `bson:"name" json:"name"`
	Image    string             `bson:"image,omitempty" json:"image,omitempty"`
}

type ShippingAddress struct {
	Name    string `bson:"name" json:"name"`
	Email   string `bson:"email" json:"email"`
	Phone   string `bson:"phone" json:"phone"`
	Address string `bson:"address" json:"address"`
	City    string `bson:"city" json:"city"`
}

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	OrderNumber     string             `bson:"orderNumber" json:"orderNumber"`
	User            primitive.ObjectID `bson:"user" json:"user"`
	Products        []OrderProduct     `bson:"products" json:"products"`
	TotalPrice      float64            `bson:"totalPrice" json:"totalPrice"`
	PromoAmount     float64            `bson:"promoAmount" json:"promoAmount"`
	ClientTotal     float64            `bson:"clientTotal,omitempty" json:"clientTotal,omitempty"`
	Status          string             `bson:"status" json:"status"`
	PaymentMethod   string             `bson:"paymentMethod" json:"paymentMethod"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	IsSeen          bool               `bson:"isSeen" json:"isSeen"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ValidOrderStatus reports whether s belongs to the order status enum.
func ValidOrderStatus(s string) bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func normalizedStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsPaid is true for paid orders and anything further along.
func (o *Order) IsPaid() bool {
	switch normalizedStatus(o.Status) {
	case StatusPaid, StatusShipped, StatusDelivered:
		return true
	}
	return false
}

func (o *Order) IsDelivered() bool {
	return normalizedStatus(o.Status) == StatusDelivered
}

// CustomerKey identifies the buyer: shipping email, then shipping name, then
// the client id.
func (o *Order) CustomerKey() string {
	if email := strings.ToLower(strings.TrimSpace(o.ShippingAddress.Email)); email != "" {
		return email
	}
	if name := strings.TrimSpace(o.ShippingAddress.Name); name != "" {
		return name
	}
	if o.User.IsZero() {
		return ""
	}
	return o.User.Hex()
}
