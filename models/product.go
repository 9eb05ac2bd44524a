package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ProductActive   = "active"
	ProductInactive = "inactive"
)

type Product struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Slug              string              `bson:"slug" json:"slug"`
	Name              string              `bson:"name" json:"name"`
	Category          *primitive.ObjectID `bson:"category,omitempty" json:"category,omitempty"`
	Subcategory       *primitive.ObjectID `bson:"subcategory,omitempty" json:"subcategory,omitempty"`
	Description       string              `bson:"description,omitempty" json:"description,omitempty"`
	Images            []string            `bson:"images" json:"images"`
	VideoURL          string              `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	Price             float64             `bson:"price" json:"price"`
	PromoPrice        *float64            `bson:"promoPrice,omitempty" json:"promoPrice,omitempty"`
	IsSpecialOffer    bool                `bson:"isSpecialOffer" json:"isSpecialOffer"`
	SpecialOfferPrice *float64            `bson:"specialOfferPrice,omitempty" json:"specialOfferPrice,omitempty"`
	Stock             int                 `bson:"stock" json:"stock"`
	Status            string              `bson:"status" json:"status"`
	Condition         string              `bson:"condition" json:"condition"`
	Clicks            int64               `bson:"clicks" json:"clicks"`
	CreatedAt         time.Time           `bson:"createdAt" json:"createdAt"`
}

// ValidProductStatus reports whether s is "active" or "inactive".
func ValidProductStatus(s string) bool {
	return s == ProductActive || s == ProductInactive
}

// ValidCondition reports whether s is one of the accepted product conditions.
func ValidCondition(s string) bool {
	switch s {
	case "new", "used", "refurbished":
		return true
	}
	return false
}
