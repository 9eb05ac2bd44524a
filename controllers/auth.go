package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"marketplace/config"
	"marketplace/logger"
	"marketplace/models"
	"marketplace/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func Login(c *gin.Context) {
	var input loginRequest
	if err := c.ShouldBindJSON(&input); err != nil || input.Username == "" || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Username and password are required"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	var admin models.Admin
	if err := config.AdminCollection.FindOne(ctx, bson.M{"username": input.Username}).Decode(&admin); err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			logger.Log.WithError(err).Error("admin lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error during login"})
			return
		}
		logger.Log.WithField("username", input.Username).Warn("login for unknown admin")
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}

	if err := utils.VerifyPassword(admin.Password, input.Password); err != nil {
		logger.Log.WithField("username", input.Username).Warn("wrong password")
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateToken(admin.ID.Hex(), models.RoleAdmin, admin.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate token"})
		return
	}

	logger.Log.WithField("username", admin.Username).Info("admin logged in")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user": gin.H{
			"id":       admin.ID.Hex(),
			"username": admin.Username,
			"role":     models.RoleAdmin,
		},
	})
}

// ChangePassword re-hashes the password of the authenticated admin.
func ChangePassword(c *gin.Context) {
	var input struct {
		OldPassword string `json:"oldPassword" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid fields"})
		return
	}
	username := c.GetString("username")

	ctx, cancel := requestContext()
	defer cancel()

	var admin models.Admin
	if err := config.AdminCollection.FindOne(ctx, bson.M{"username": username}).Decode(&admin); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found"})
		return
	}
	if err := utils.VerifyPassword(admin.Password, input.OldPassword); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
		return
	}

	hash, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		return
	}
	if _, err := config.AdminCollection.UpdateOne(ctx, bson.M{"_id": admin.ID}, bson.M{"$set": bson.M{"password": hash}}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}

// SeedAdmin creates the configured default admin when it does not exist yet.
func SeedAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		logger.Log.Warn("ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	n, err := config.AdminCollection.CountDocuments(ctx, bson.M{"username": username})
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = config.AdminCollection.InsertOne(ctx, models.Admin{
		Username:  username,
		Password:  hash,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return err
	}
	logger.Log.WithField("username", username).Info("default admin created")
	return nil
}
