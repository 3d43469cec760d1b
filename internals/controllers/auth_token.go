package controllers

import (
	"net/http"
	"time"

	"gin-shop/internals/models"
	"gin-shop/internals/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TokenController struct {
	DB           *gorm.DB
	TokenManager *utils.TokenManager
	Logger       *zap.Logger
}

func NewTokenController(db *gorm.DB, tokenManager *utils.TokenManager, logger *zap.Logger) *TokenController {
	return &TokenController{DB: db, TokenManager: tokenManager, Logger: logger}
}

func (t *TokenController) Validate(c *gin.Context) {
	// set by the auth middleware
	user, _ := c.Get("user")

	c.JSON(http.StatusOK, gin.H{
		"message": "You are logged in!",
		"user":    user,
	})
}

func (t *TokenController) RefreshToken(c *gin.Context) {
	refreshTokenStr, err := c.Cookie("RefreshToken")
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	var session models.Session
	if err := t.DB.Where("refresh_token = ?", refreshTokenStr).First(&session).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session not found or revoked"})
		return
	}

	if time.Now().After(session.ExpiresAt) {
		t.DB.Unscoped().Delete(&session) // Clean up expired session
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
		return
	}

	// ROTATION: Delete the old session and create a new one. The
	// remember flag rides along so a long-lived session stays long.
	t.DB.Unscoped().Delete(&session)

	tokens, err := t.TokenManager.GenerateAndSetToken(c, session.UserID, session.Remember)
	if err != nil {
		t.Logger.Error("session rotation failed", zap.Uint("user_id", session.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Session rotation failed. Please log in again.",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Token refreshed", "access_token": tokens.AccessToken})
}
