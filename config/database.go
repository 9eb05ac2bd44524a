package config

import (
	"context"
	"fmt"
	"time"

	"marketplace/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	Client               *mongo.Client
	DB                   *mongo.Database
	OrderCollection      *mongo.Collection
	ProductCollection    *mongo.Collection
	CategoryCollection   *mongo.Collection
	ClientCollection     *mongo.Collection
	AdminCollection      *mongo.Collection
	NewsletterCollection *mongo.Collection
	SMSLogCollection     *mongo.Collection
)

func ConnectDatabase(cfg *Configuration) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongo ping: %w", err)
	}

	Client = client
	DB = client.Database(cfg.MongoDBName)
	OrderCollection = DB.Collection("orders")
	ProductCollection = DB.Collection("products")
	CategoryCollection = DB.Collection("categories")
	ClientCollection = DB.Collection("clients")
	AdminCollection = DB.Collection("admins")
	NewsletterCollection = DB.Collection("newslettersubscribers")
	SMSLogCollection = DB.Collection("smslogs")

	logger.Log.WithField("database", cfg.MongoDBName).Info("Connected to MongoDB")
	return nil
}

// EnsureIndexes creates the unique and query indexes the handlers rely on.
func EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	specs := map[*mongo.Collection][]mongo.IndexModel{
		OrderCollection: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		ProductCollection: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "clicks", Value: -1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		CategoryCollection: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
		},
		ClientCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}},
		},
		AdminCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		},
		NewsletterCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		SMSLogCollection: {
			{Keys: bson.D{{Key: "phone", Value: 1}}, Options: unique},
		},
	}

	for coll, models := range specs {
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

func DisconnectDatabase(ctx context.Context) {
	if Client == nil {
		return
	}
	if err := Client.Disconnect(ctx); err != nil {
		logger.Log.WithError(err).Warn("mongo disconnect")
	}
}
