package controllers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"marketplace/config"
	"marketplace/models"
	"marketplace/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func GetCategories(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	cursor, err := config.CategoryCollection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}
	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode categories"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

func GetCategoryBySlug(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	var category models.Category
	if err := config.CategoryCollection.FindOne(ctx, bson.M{"slug": c.Param("slug")}).Decode(&category); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch category"})
		return
	}
	c.JSON(http.StatusOK, category)
}

// GetAllSubcategories flattens every embedded subcategory with its parent.
func GetAllSubcategories(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	cursor, err := config.CategoryCollection.Find(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subcategories"})
		return
	}
	var categories []models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode subcategories"})
		return
	}
	c.JSON(http.StatusOK, flattenSubcategories(categories))
}

type parentRef struct {
	ID   primitive.ObjectID `json:"_id"`
	Name string             `json:"name"`
	Slug string             `json:"slug"`
}

type flatSubcategory struct {
	models.Subcategory
	Parent parentRef `json:"parent"`
}

func flattenSubcategories(categories []models.Category) []flatSubcategory {
	out := []flatSubcategory{}
	for _, cat := range categories {
		for _, sub := range cat.Subcategories {
			out = append(out, flatSubcategory{
				Subcategory: sub,
				Parent:      parentRef{ID: cat.ID, Name: cat.Name, Slug: cat.Slug},
			})
		}
	}
	return out
}

func optionalImage(ctx context.Context, c *gin.Context, folder string) (string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return "", nil
	}
	urls, err := uploadFiles(ctx, folder, []*multipart.FileHeader{file})
	if err != nil {
		return "", err
	}
	return urls[0], nil
}

func CreateCategory(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	slug := utils.CategorySlug(name)
	if n, err := config.CategoryCollection.CountDocuments(ctx, bson.M{"slug": slug}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	} else if n > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
		return
	}

	image, err := optionalImage(ctx, c, "categories")
	if err != nil {
		c.JSON(uploadStatus(err), gin.H{"error": err.Error()})
		return
	}

	category := models.Category{
		ID:            primitive.NewObjectID(),
		Name:          name,
		Slug:          slug,
		Image:         image,
		Subcategories: []models.Subcategory{},
	}
	if _, err := config.CategoryCollection.InsertOne(ctx, category); err != nil {
		deleteImages(image)
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}
	c.JSON(http.StatusCreated, category)
}

func loadCategory(ctx context.Context, c *gin.Context) (*models.Category, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return nil, false
	}
	var category models.Category
	if err := config.CategoryCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&category); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch category"})
		return nil, false
	}
	return &category, true
}

func saveSubcategories(ctx context.Context, c *gin.Context, category *models.Category, status int) {
	_, err := config.CategoryCollection.UpdateOne(ctx,
		bson.M{"_id": category.ID},
		bson.M{"$set": bson.M{"subcategories": category.Subcategories}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}
	c.JSON(status, category)
}

func UpdateCategory(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	category, ok := loadCategory(ctx, c)
	if !ok {
		return
	}

	set := bson.M{}
	if name := strings.TrimSpace(c.PostForm("name")); name != "" && name != category.Name {
		set["name"] = name
		set["slug"] = utils.CategorySlug(name)
	}

	image, err := optionalImage(ctx, c, "categories")
	if err != nil {
		c.JSON(uploadStatus(err), gin.H{"error": err.Error()})
		return
	}
	if image != "" {
		set["image"] = image
	}
	if len(set) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	var updated models.Category
	err = config.CategoryCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": category.ID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		deleteImages(image)
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}
	if image != "" {
		go deleteImages(category.Image)
	}
	c.JSON(http.StatusOK, updated)
}

func DeleteCategory(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	category, ok := loadCategory(ctx, c)
	if !ok {
		return
	}
	if _, err := config.CategoryCollection.DeleteOne(ctx, bson.M{"_id": category.ID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	images := []string{category.Image}
	for _, sub := range category.Subcategories {
		images = append(images, sub.Image)
	}
	go deleteImages(images...)
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

func subcategoryIndex(c *gin.Context, category *models.Category) (int, bool) {
	subID, err := primitive.ObjectIDFromHex(c.Param("subId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subcategory ID"})
		return -1, false
	}
	i := category.FindSubcategory(subID)
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subcategory not found"})
		return -1, false
	}
	return i, true
}

func AddSubcategory(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	category, ok := loadCategory(ctx, c)
	if !ok {
		return
	}
	image, err := optionalImage(ctx, c, "subcategories")
	if err != nil {
		c.JSON(uploadStatus(err), gin.H{"error": err.Error()})
		return
	}

	category.Subcategories = append(category.Subcategories, models.Subcategory{
		ID:               primitive.NewObjectID(),
		Name:             name,
		Image:            image,
		SubSubcategories: []models.SubSubcategory{},
	})
	saveSubcategories(ctx, c, category, http.StatusCreated)
}

func UpdateSubcategory(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	category, ok := loadCategory(ctx, c)
	if !ok {
		return
	}
	i, ok := subcategoryIndex(c, category)
	if !ok {
		return
	}

	sub := &category.Subcategories[i]
	if name := strings.TrimSpace(c.PostForm("name")); name != "" {
		sub.Name = name
	}
	image, err := optionalImage(ctx, c, "subcategories")
	if err != nil {
		c.JSON(uploadStatus(err), gin.H{"error": err.Error()})
		return
	}
	if image != "" {
		go deleteImages(sub.Image)
		sub.Image = image
	}
	saveSubcategories(ctx, c, category, http.StatusOK)
}

func DeleteSubcategory(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	category, ok := loadCategory(ctx, c)
	if !ok {
		return
	}
	i, ok := subcategoryIndex(c, category)
	if !ok {
		return
	}

	image := category.Subcategories[i].Image
	category.Subcategories = append(category.Subcategories[:i], category.Subcategories[i+1:]...)
	go deleteImages(image)
	saveSubcategories(ctx, c, category, http.StatusOK)
}

type subSubcategoryBody struct {
	Name         string `json:"name"`
	ProductCount *int   `json:"productCount"`
}

func AddSubSubcategory(c *gin.Context) {
	var body subSubcategoryBody
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}
	ctx, cancel := requestContext()
	defer cancel()

	category, ok := loadCategory(ctx, c)
	if !ok {
		return
	}
	i, ok := subcategoryIndex(c, category)
	if !ok {
		return
	}

	count := 0
	if body.ProductCount != nil {
		count = *body.ProductCount
	}
	sub := &category.Subcategories[i]
	sub.SubSubcategories = append(sub.SubSubcategories, models.SubSubcategory{
		ID:           primitive.NewObjectID(),
		Name:         strings.TrimSpace(body.Name),
		ProductCount: count,
	})
	saveSubcategories(ctx, c, category, http.StatusCreated)
}

func subSubcategoryIndex(c *gin.Context, sub *models.Subcategory) (int, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("subsubId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sub-subcategory ID"})
		return -1, false
	}
	j := sub.FindSubSubcategory(id)
	if j < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sub-subcategory not found"})
		return -1, false
	}
	return j, true
}

func UpdateSubSubcategory(c *gin.Context) {
	var body subSubcategoryBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx, cancel := requestContext()
	defer cancel()

	category, ok := loadCategory(ctx, c)
	if !ok {
		return
	}
	i, ok := subcategoryIndex(c, category)
	if !ok {
		return
	}
	sub := &category.Subcategories[i]
	j, ok := subSubcategoryIndex(c, sub)
	if !ok {
		return
	}

	if name := strings.TrimSpace(body.Name); name != "" {
		sub.SubSubcategories[j].Name = name
	}
	if body.ProductCount != nil {
		sub.SubSubcategories[j].ProductCount = *body.ProductCount
	}
	saveSubcategories(ctx, c, category, http.StatusOK)
}

func DeleteSubSubcategory(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	category, ok := loadCategory(ctx, c)
	if !ok {
		return
	}
	i, ok := subcategoryIndex(c, category)
	if !ok {
		return
	}
	sub := &category.Subcategories[i]
	j, ok := subSubcategoryIndex(c, sub)
	if !ok {
		return
	}

	sub.SubSubcategories = append(sub.SubSubcategories[:j], sub.SubSubcategories[j+1:]...)
	saveSubcategories(ctx, c, category, http.StatusOK)
}
