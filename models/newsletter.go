package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SubscriberMetadata struct {
	IPAddress string `bson:"ipAddress,omitempty" json:"ipAddress,omitempty"`
	UserAgent string `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
}

type NewsletterSubscriber struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email          string             `bson:"email" json:"email"`
	IsActive       bool               `bson:"isActive" json:"isActive"`
	SubscribedAt   time.Time          `bson:"subscribedAt" json:"subscribedAt"`
	UnsubscribedAt *time.Time         `bson:"unsubscribedAt,omitempty" json:"unsubscribedAt,omitempty"`
	Source         string             `bson:"source" json:"source"`
	Metadata       SubscriberMetadata `bson:"metadata" json:"metadata"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
