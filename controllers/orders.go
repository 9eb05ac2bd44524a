package controllers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"marketplace/config"
	"marketplace/logger"
	"marketplace/models"
	"marketplace/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type clientData struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
}

type cartItem struct {
	ProductID string  `json:"productId" binding:"required"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	Price     float64 `json:"price"`
}

type createOrderRequest struct {
	ClientData  clientData  `json:"clientData" binding:"required"`
	CartItems   []cartItem  `json:"cartItems" binding:"required,min=1,dive"`
	Promo       interface{} `json:"promo"`
	ClientTotal float64     `json:"clientTotal"`
}

func generateOrderNumber() string {
	return fmt.Sprintf("CMD-%d-%d", time.Now().UnixMilli(), rand.Intn(10000))
}

// promoAmount accepts a number or a numeric string; anything else is no promo.
func promoAmount(v interface{}) float64 {
	var amount float64
	switch p := v.(type) {
	case float64:
		amount = p
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0
		}
		amount = f
	}
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0
	}
	return amount
}

// orderTotal sums cart lines and deducts the promo, never going below zero.
func orderTotal(lines []models.OrderProduct, promo float64) float64 {
	total := 0.0
	for _, l := range lines {
		total += l.Price * float64(l.Quantity)
	}
	return math.Max(0, total-promo)
}

func findOrCreateClient(ctx context.Context, data clientData) (*models.Client, error) {
	var client models.Client
	err := config.ClientCollection.FindOne(ctx, bson.M{"email": data.Email}).Decode(&client)
	if err == nil {
		return &client, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	client = models.Client{
		ID:        primitive.NewObjectID(),
		Name:      data.Name,
		Email:     data.Email,
		Phone:     data.Phone,
		Address:   data.Address,
		City:      data.City,
		CreatedAt: time.Now(),
	}
	if _, err := config.ClientCollection.InsertOne(ctx, client); err != nil {
		return nil, err
	}
	return &client, nil
}

func CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	client, err := findOrCreateClient(ctx, req.ClientData)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lines := make([]models.OrderProduct, 0, len(req.CartItems))
	for _, item := range req.CartItems {
		productID, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found: " + item.Name})
			return
		}
		var product models.Product
		if err := config.ProductCollection.FindOne(ctx, bson.M{"_id": productID}).Decode(&product); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found: " + item.Name})
			return
		}
		if product.Stock < item.Quantity {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient stock for " + product.Name})
			return
		}

		image := ""
		if len(product.Images) > 0 {
			image = product.Images[0]
		}
		lines = append(lines, models.OrderProduct{
			Product:  product.ID,
			Quantity: item.Quantity,
			Price:    item.Price,
			Name:     product.Name,
			Image:    image,
		})
	}

	promo := promoAmount(req.Promo)
	now := time.Now()
	order := models.Order{
		ID:            primitive.NewObjectID(),
		OrderNumber:   generateOrderNumber(),
		User:          client.ID,
		Products:      lines,
		TotalPrice:    orderTotal(lines, promo),
		PromoAmount:   promo,
		ClientTotal:   req.ClientTotal,
		Status:        models.StatusPending,
		PaymentMethod: "cash",
		ShippingAddress: models.ShippingAddress{
			Name:    client.Name,
			Email:   client.Email,
			Phone:   client.Phone,
			Address: client.Address,
			City:    client.City,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := config.OrderCollection.InsertOne(ctx, order); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	go notifyOrderPlaced(order)

	c.JSON(http.StatusCreated, order)
}

func notifyOrderPlaced(order models.Order) {
	notifier.OrderPlaced(&order)

	if email := order.ShippingAddress.Email; email != "" {
		m := utils.OrderConfirmation(email, order.ShippingAddress.Name, order.OrderNumber, order.TotalPrice)
		if err := utils.SendEmail(m); err != nil {
			logger.Log.WithError(err).WithField("order", order.OrderNumber).Warn("order confirmation email not sent")
		}
	}

	if order.ShippingAddress.Phone == "" {
		return
	}
	phone := utils.NormalizePhone(order.ShippingAddress.Phone, config.Cfg.SMSCountryCode)
	message := fmt.Sprintf("Merci %s pour votre commande dans la boutique %s ! Notre service client vous contactera très prochainement pour la livraison.",
		order.ShippingAddress.Name, config.Cfg.ShopName)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	log := logger.Log.WithFields(logrus.Fields{"phone": phone, "order": order.OrderNumber})
	if err := utils.SendSMS(ctx, phone, message); err != nil {
		if errors.Is(err, utils.ErrSMSDisabled) {
			return
		}
		log.WithError(err).Warn("order SMS not sent")
		return
	}
	log.Info("order SMS sent")
}

type orderWithClient struct {
	models.Order `bson:",inline"`
	Client       *models.Client `bson:"client,omitempty" json:"user,omitempty"`
}

// orderTotals mirrors the admin listing totals: the promo sum when any promo
// was applied, the revenue sum otherwise.
func orderTotals(orders []orderWithClient) (promoTotal *float64, totalAmount float64) {
	promo, revenue := 0.0, 0.0
	for _, o := range orders {
		if o.PromoAmount > 0 {
			promo += o.PromoAmount
		}
		revenue += o.TotalPrice
	}
	if promo > 0 {
		return &promo, promo
	}
	return nil, revenue
}

func GetOrders(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "clients"},
			{Key: "localField", Value: "user"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "client"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$client"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}

	cursor, err := config.OrderCollection.Aggregate(ctx, pipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer cursor.Close(ctx)

	orders := []orderWithClient{}
	if err := cursor.All(ctx, &orders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	promoTotal, totalAmount := orderTotals(orders)
	c.JSON(http.StatusOK, gin.H{"orders": orders, "promoTotal": promoTotal, "totalAmount": totalAmount})
}

func orderIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func GetOrderByID(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	ctx, cancel := requestContext()
	defer cancel()

	var order models.Order
	if err := config.OrderCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var clientInfo gin.H
	var client models.Client
	if err := config.ClientCollection.FindOne(ctx, bson.M{"_id": order.User}).Decode(&client); err == nil {
		clientInfo = gin.H{"name": client.Name, "email": client.Email, "phone": client.Phone}
	}

	c.JSON(http.StatusOK, gin.H{"order": order, "clientInfo": clientInfo})
}

// UpdateOrderStatus sets a new status. The first move to delivered decrements
// the stock of every line; the read and the decrement are not atomic.
func UpdateOrderStatus(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || !models.ValidOrderStatus(body.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	var order models.Order
	if err := config.OrderCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if body.Status == models.StatusDelivered && order.Status != models.StatusDelivered {
		for _, item := range order.Products {
			_, err := config.ProductCollection.UpdateOne(ctx,
				bson.M{"_id": item.Product},
				bson.M{"$inc": bson.M{"stock": -item.Quantity}})
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
	}

	err := config.OrderCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": body.Status, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, order)
}

func MarkOrderAsSeen(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	ctx, cancel := requestContext()
	defer cancel()

	var order models.Order
	err := config.OrderCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isSeen": true}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order marked as seen", "data": order})
}

func DeleteOrder(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	ctx, cancel := requestContext()
	defer cancel()

	res, err := config.OrderCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order deleted"})
}
