package controllers

import (
	"encoding/csv"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"marketplace/config"
	"marketplace/logger"
	"marketplace/models"
	"marketplace/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type emailBody struct {
	Email string `json:"email"`
}

func normalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", false
	}
	return email, true
}

func Subscribe(c *gin.Context) {
	var body emailBody
	_ = c.ShouldBindJSON(&body)
	if strings.TrimSpace(body.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email is required"})
		return
	}
	email, ok := normalizeEmail(body.Email)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid email address"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	var existing models.NewsletterSubscriber
	err := config.NewsletterCollection.FindOne(ctx, bson.M{"email": email}).Decode(&existing)
	switch {
	case err == nil && existing.IsActive:
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "You are already subscribed to our newsletter", "isNew": false})
		return
	case err == nil:
		_, err := config.NewsletterCollection.UpdateOne(ctx, bson.M{"_id": existing.ID}, bson.M{
			"$set":   bson.M{"isActive": true, "updatedAt": time.Now()},
			"$unset": bson.M{"unsubscribedAt": ""},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Subscription failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Thanks for subscribing again!", "isNew": false})
		return
	case !errors.Is(err, mongo.ErrNoDocuments):
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Subscription failed"})
		return
	}

	source := c.GetHeader("Referer")
	if source == "" {
		source = "website"
	}
	now := time.Now()
	subscriber := models.NewsletterSubscriber{
		Email:        email,
		IsActive:     true,
		SubscribedAt: now,
		Source:       source,
		Metadata: models.SubscriberMetadata{
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := config.NewsletterCollection.InsertOne(ctx, subscriber); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "You are already subscribed to our newsletter", "isNew": false})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Subscription failed"})
		return
	}

	go func() {
		if err := utils.SendNewsletterWelcome(email); err != nil {
			logger.Log.WithError(err).WithField("email", email).Warn("newsletter welcome email failed")
		}
	}()

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Thanks for subscribing to our newsletter!", "isNew": true})
}

func Unsubscribe(c *gin.Context) {
	var body emailBody
	_ = c.ShouldBindJSON(&body)
	email, ok := normalizeEmail(body.Email)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email is required"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	now := time.Now()
	res, err := config.NewsletterCollection.UpdateOne(ctx,
		bson.M{"email": email, "isActive": true},
		bson.M{"$set": bson.M{"isActive": false, "unsubscribedAt": now, "updatedAt": now}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Unsubscribe failed"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Subscriber not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "You have been unsubscribed"})
}

func activeSubscribers(c *gin.Context) ([]models.NewsletterSubscriber, bool) {
	ctx, cancel := requestContext()
	defer cancel()

	cursor, err := config.NewsletterCollection.Find(ctx, bson.M{"isActive": true},
		options.Find().SetSort(bson.D{{Key: "subscribedAt", Value: -1}}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch subscribers"})
		return nil, false
	}
	subscribers := []models.NewsletterSubscriber{}
	if err := cursor.All(ctx, &subscribers); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch subscribers"})
		return nil, false
	}
	return subscribers, true
}

func GetSubscribers(c *gin.Context) {
	subscribers, ok := activeSubscribers(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": subscribers, "count": len(subscribers)})
}

func writeSubscribersCSV(w *csv.Writer, subscribers []models.NewsletterSubscriber) error {
	if err := w.Write([]string{"Email", "Subscribed at", "Source"}); err != nil {
		return err
	}
	for _, s := range subscribers {
		source := s.Source
		if source == "" {
			source = "website"
		}
		if err := w.Write([]string{s.Email, s.SubscribedAt.UTC().Format(time.RFC3339), source}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func ExportSubscribers(c *gin.Context) {
	subscribers, ok := activeSubscribers(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename=newsletter-subscribers.csv")
	c.Status(http.StatusOK)
	if err := writeSubscribersCSV(csv.NewWriter(c.Writer), subscribers); err != nil {
		logger.Log.WithError(err).Error("newsletter export failed")
	}
}
