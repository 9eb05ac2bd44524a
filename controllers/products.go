package controllers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"marketplace/config"
	"marketplace/models"
	"marketplace/storage"
	"marketplace/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	maxProductImages = 10
	mostOrderedLimit = 8
)

// GetProducts lists active products, optionally filtered by category and a
// comma separated list of subcategories. Invalid ids are ignored.
func GetProducts(c *gin.Context) {
	filter := bson.M{"status": models.ProductActive}
	if id, err := primitive.ObjectIDFromHex(c.Query("category")); err == nil {
		filter["category"] = id
	}

	var raw []string
	for _, v := range c.QueryArray("subcategory") {
		raw = append(raw, strings.Split(v, ",")...)
	}
	for i := range raw {
		raw[i] = strings.TrimSpace(raw[i])
	}
	if subs := parseObjectIDs(raw); len(subs) > 0 {
		filter["subcategory"] = bson.M{"$in": subs}
	}

	findProducts(c, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func GetAllProductsAdmin(c *gin.Context) {
	findProducts(c, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func findProducts(c *gin.Context, filter bson.M, opts *options.FindOptions) {
	ctx, cancel := requestContext()
	defer cancel()

	cursor, err := config.ProductCollection.Find(ctx, filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode products"})
		return
	}
	c.JSON(http.StatusOK, products)
}

// rankByUnits orders product ids by units sold, ties keeping first-seen order.
func rankByUnits(orders []models.Order) []primitive.ObjectID {
	units := map[primitive.ObjectID]int{}
	var ids []primitive.ObjectID
	for _, o := range orders {
		for _, item := range o.Products {
			if _, ok := units[item.Product]; !ok {
				ids = append(ids, item.Product)
			}
			units[item.Product] += item.Quantity
		}
	}
	sort.SliceStable(ids, func(i, j int) bool { return units[ids[i]] > units[ids[j]] })
	return ids
}

// GetMostOrderedProducts returns up to 8 active, in-stock products ranked by
// units sold in paid, shipped or delivered orders.
func GetMostOrderedProducts(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	cursor, err := config.OrderCollection.Find(ctx, bson.M{
		"status": bson.M{"$in": []string{models.StatusPaid, models.StatusShipped, models.StatusDelivered}},
	}, options.Find().SetProjection(bson.M{"products": 1}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch most ordered products"})
		return
	}
	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch most ordered products"})
		return
	}

	ranked := rankByUnits(orders)
	if len(ranked) == 0 {
		c.JSON(http.StatusOK, []models.Product{})
		return
	}

	pcur, err := config.ProductCollection.Find(ctx, bson.M{
		"_id":    bson.M{"$in": ranked},
		"status": models.ProductActive,
		"stock":  bson.M{"$gt": 0},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch most ordered products"})
		return
	}
	var found []models.Product
	if err := pcur.All(ctx, &found); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch most ordered products"})
		return
	}

	byID := make(map[primitive.ObjectID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	result := []models.Product{}
	for _, id := range ranked {
		if p, ok := byID[id]; ok {
			result = append(result, p)
			if len(result) == mostOrderedLimit {
				break
			}
		}
	}
	c.JSON(http.StatusOK, result)
}

func GetProductByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid product ID format", "id": c.Param("id")})
		return
	}
	ctx, cancel := requestContext()
	defer cancel()

	var product models.Product
	if err := config.ProductCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Product not found", "id": c.Param("id")})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch product"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": product})
}

func formFloat(c *gin.Context, key string) (*float64, error) {
	raw, ok := c.GetPostForm(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	return &v, nil
}

// categoryOfSubcategory finds the category embedding the given subcategory.
func categoryOfSubcategory(ctx context.Context, sub primitive.ObjectID) (*primitive.ObjectID, error) {
	var cat models.Category
	err := config.CategoryCollection.FindOne(ctx, bson.M{"subcategories._id": sub},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Decode(&cat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cat.ID, nil
}

// productFields reads the multipart form into a $set document. Only fields
// present in the form are returned.
func productFields(ctx context.Context, c *gin.Context) (bson.M, error) {
	set := bson.M{}
	if name, ok := c.GetPostForm("name"); ok {
		if strings.TrimSpace(name) == "" {
			return nil, errors.New("name is required")
		}
		set["name"] = strings.TrimSpace(name)
	}
	for _, key := range []string{"description", "videoUrl"} {
		if v, ok := c.GetPostForm(key); ok {
			set[key] = v
		}
	}
	if status, ok := c.GetPostForm("status"); ok {
		if !models.ValidProductStatus(status) {
			return nil, errors.New("status must be active or inactive")
		}
		set["status"] = status
	}
	if cond, ok := c.GetPostForm("condition"); ok {
		if !models.ValidCondition(cond) {
			return nil, errors.New("condition must be new, used or refurbished")
		}
		set["condition"] = cond
	}

	price, err := formFloat(c, "price")
	if err != nil {
		return nil, err
	}
	if price != nil {
		if *price < 0 {
			return nil, errors.New("price must not be negative")
		}
		set["price"] = *price
	}
	for _, key := range []string{"promoPrice", "specialOfferPrice"} {
		v, err := formFloat(c, key)
		if err != nil {
			return nil, err
		}
		if v != nil {
			set[key] = *v
		}
	}
	if raw, ok := c.GetPostForm("stock"); ok {
		stock, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || stock < 0 {
			return nil, errors.New("stock must be a non-negative integer")
		}
		set["stock"] = stock
	}
	if raw, ok := c.GetPostForm("isSpecialOffer"); ok {
		set["isSpecialOffer"] = raw == "true" || raw == "1" || raw == "on"
	}

	if raw, ok := c.GetPostForm("category"); ok && raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, errors.New("invalid category ID")
		}
		set["category"] = id
	}
	if raw, ok := c.GetPostForm("subcategory"); ok && raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, errors.New("invalid subcategory ID")
		}
		set["subcategory"] = id
		if _, hasCategory := set["category"]; !hasCategory {
			parent, err := categoryOfSubcategory(ctx, id)
			if err != nil {
				return nil, err
			}
			if parent != nil {
				set["category"] = *parent
			}
		}
	}
	return set, nil
}

func uploadFiles(ctx context.Context, folder string, files []*multipart.FileHeader) ([]string, error) {
	if store == nil {
		return nil, errors.New("image storage is not configured")
	}
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := storage.UploadImage(ctx, store, folder, fh)
		if err != nil {
			deleteImages(urls...)
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func productImages(c *gin.Context) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File["images"]
}

func slugTaken(ctx context.Context, exclude primitive.ObjectID) func(string) (bool, error) {
	return func(slug string) (bool, error) {
		filter := bson.M{"slug": slug}
		if !exclude.IsZero() {
			filter["_id"] = bson.M{"$ne": exclude}
		}
		n, err := config.ProductCollection.CountDocuments(ctx, filter)
		return n > 0, err
	}
}

func uploadStatus(err error) int {
	if errors.Is(err, storage.ErrFileTooLarge) || errors.Is(err, storage.ErrUnsupportedImage) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func CreateProduct(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fields, err := productFields(ctx, c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, ok := fields["name"]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if _, ok := fields["price"]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price is required"})
		return
	}

	files := productImages(c)
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one image is required"})
		return
	}
	if len(files) > maxProductImages {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Too many files, at most 10 images are allowed"})
		return
	}

	id := primitive.NewObjectID()
	slug, err := utils.UniqueSlug(utils.Slugify(fields["name"].(string)), slugTaken(ctx, primitive.NilObjectID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate slug"})
		return
	}

	urls, err := uploadFiles(ctx, "products", files)
	if err != nil {
		c.JSON(uploadStatus(err), gin.H{"error": err.Error()})
		return
	}

	fields["_id"] = id
	fields["slug"] = slug
	fields["images"] = urls
	fields["clicks"] = int64(0)
	fields["createdAt"] = time.Now()
	setDefault(fields, "status", models.ProductActive)
	setDefault(fields, "condition", "new")
	setDefault(fields, "stock", 0)
	setDefault(fields, "isSpecialOffer", false)

	if _, err := config.ProductCollection.InsertOne(ctx, fields); err != nil {
		deleteImages(urls...)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	var product models.Product
	if err := config.ProductCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		c.JSON(http.StatusCreated, gin.H{"_id": id, "slug": slug})
		return
	}
	c.JSON(http.StatusCreated, product)
}

func setDefault(m bson.M, key string, v interface{}) {
	if _, ok := m[key]; !ok {
		m[key] = v
	}
}

// UpdateProduct applies a partial update. New images replace the stored ones
// unless appendImages=true.
func UpdateProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var existing models.Product
	if err := config.ProductCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&existing); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	fields, err := productFields(ctx, c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if name, ok := fields["name"].(string); ok && name != existing.Name {
		slug, err := utils.UniqueSlug(utils.Slugify(name), slugTaken(ctx, id))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate slug"})
			return
		}
		fields["slug"] = slug
	}

	var replaced []string
	if files := productImages(c); len(files) > 0 {
		appendImages := c.PostForm("appendImages") == "true"
		total := len(files)
		if appendImages {
			total += len(existing.Images)
		}
		if total > maxProductImages {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Too many files, at most 10 images are allowed"})
			return
		}
		urls, err := uploadFiles(ctx, "products", files)
		if err != nil {
			c.JSON(uploadStatus(err), gin.H{"error": err.Error()})
			return
		}
		if appendImages {
			fields["images"] = append(existing.Images, urls...)
		} else {
			fields["images"] = urls
			replaced = existing.Images
		}
	}

	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	var product models.Product
	err = config.ProductCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&product)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	go deleteImages(replaced...)
	c.JSON(http.StatusOK, product)
}

func updateProductFields(c *gin.Context, set bson.M) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}
	ctx, cancel := requestContext()
	defer cancel()

	var product models.Product
	err = config.ProductCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}
	c.JSON(http.StatusOK, product)
}

func UpdateProductStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || !models.ValidProductStatus(body.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be active or inactive"})
		return
	}
	updateProductFields(c, bson.M{"status": body.Status})
}

func UpdateSpecialOffer(c *gin.Context) {
	var body struct {
		IsSpecialOffer    bool     `json:"isSpecialOffer"`
		SpecialOfferPrice *float64 `json:"specialOfferPrice"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	set := bson.M{"isSpecialOffer": body.IsSpecialOffer}
	if body.IsSpecialOffer {
		if body.SpecialOfferPrice == nil || *body.SpecialOfferPrice <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "specialOfferPrice must be positive"})
			return
		}
		set["specialOfferPrice"] = *body.SpecialOfferPrice
	}
	updateProductFields(c, set)
}

func DeleteProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}
	ctx, cancel := requestContext()
	defer cancel()

	var product models.Product
	if err := config.ProductCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	deleteImages(product.Images...)

	if _, err := config.ProductCollection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// TrackProductClick feeds the clicks counter used by the analytics report.
func TrackProductClick(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}
	ctx, cancel := requestContext()
	defer cancel()

	res, err := config.ProductCollection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"clicks": 1}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to track click"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
