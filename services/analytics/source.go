package analytics

import (
	"context"
	"time"

	"marketplace/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderFilter selects orders by creation time and status. Nil bounds and an
// empty status list do not filter.
type OrderFilter struct {
	From     *time.Time // inclusive
	To       *time.Time // exclusive
	Statuses []string
}

// Source is the read side the aggregator needs from the store.
type Source interface {
	FindOrders(ctx context.Context, f OrderFilter) ([]models.Order, error)
	CountProducts(ctx context.Context, from, to *time.Time) (int64, error)
	MostClickedProducts(ctx context.Context, limit int64) ([]models.Product, error)
	FindProducts(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	CategoryNames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error)
}
