package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type SubSubcategory struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	ProductCount int                `bson:"productCount" json:"productCount"`
}

type Subcategory struct {
	ID               primitive.ObjectID `bson:"_id" json:"_id"`
	Name             string             `bson:"name" json:"name"`
	Image            string             `bson:"image,omitempty" json:"image,omitempty"`
	SubSubcategories []SubSubcategory   `bson:"subsubcategories" json:"subsubcategories"`
}

// Category embeds its subcategories, which in turn embed their sub-subcategories.
type Category struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name          string             `bson:"name" json:"name"`
	Slug          string             `bson:"slug" json:"slug"`
	Image         string             `bson:"image,omitempty" json:"image,omitempty"`
	Subcategories []Subcategory      `bson:"subcategories" json:"subcategories"`
}

// FindSubcategory returns the index of the subcategory with the given id, or -1.
func (c *Category) FindSubcategory(id primitive.ObjectID) int {
	for i := range c.Subcategories {
		if c.Subcategories[i].ID == id {
			return i
		}
	}
	return -1
}

// FindSubSubcategory returns the index of the sub-subcategory with the given id, or -1.
func (s *Subcategory) FindSubSubcategory(id primitive.ObjectID) int {
	for i := range s.SubSubcategories {
		if s.SubSubcategories[i].ID == id {
			return i
		}
	}
	return -1
}
