package analytics

import (
	"context"
	"fmt"
	"time"

	"marketplace/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSource reads orders, products and categories from MongoDB.
type MongoSource struct {
	Orders     *mongo.Collection
	Products   *mongo.Collection
	Categories *mongo.Collection
}

func NewMongoSource(orders, products, categories *mongo.Collection) *MongoSource {
	return &MongoSource{Orders: orders, Products: products, Categories: categories}
}

func createdAtRange(from, to *time.Time) bson.M {
	r := bson.M{}
	if from != nil {
		r["$gte"] = *from
	}
	if to != nil {
		r["$lt"] = *to
	}
	return r
}

func (s *MongoSource) FindOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	filter := bson.M{}
	if r := createdAtRange(f.From, f.To); len(r) > 0 {
		filter["createdAt"] = r
	}
	if len(f.Statuses) > 0 {
		filter["status"] = bson.M{"$in": f.Statuses}
	}

	cursor, err := s.Orders.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

func (s *MongoSource) CountProducts(ctx context.Context, from, to *time.Time) (int64, error) {
	filter := bson.M{}
	if r := createdAtRange(from, to); len(r) > 0 {
		filter["createdAt"] = r
	}
	n, err := s.Products.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func (s *MongoSource) MostClickedProducts(ctx context.Context, limit int64) ([]models.Product, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "clicks", Value: -1}}).
		SetLimit(limit).
		SetProjection(bson.M{"name": 1, "category": 1, "clicks": 1})

	cursor, err := s.Products.Find(ctx, bson.M{"clicks": bson.M{"$gt": 0}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find clicked products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode clicked products: %w", err)
	}
	return products, nil
}

func (s *MongoSource) FindProducts(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	opts := options.Find().SetProjection(bson.M{"name": 1, "category": 1})
	cursor, err := s.Products.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

func (s *MongoSource) CategoryNames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	names := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	opts := options.Find().SetProjection(bson.M{"name": 1})
	cursor, err := s.Categories.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var c struct {
			ID   primitive.ObjectID `bson:"_id"`
			Name string             `bson:"name"`
		}
		if err := cursor.Decode(&c); err != nil {
			return nil, fmt.Errorf("decode category: %w", err)
		}
		names[c.ID] = c.Name
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return names, nil
}
