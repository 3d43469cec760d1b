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

type VerificationController struct {
	DB           *gorm.DB
	EmailManager *utils.EmailManager
	ActionTokens *utils.ActionTokenManager
	Logger       *zap.Logger
}

func NewVerificationController(db *gorm.DB, emailManager *utils.EmailManager,
	actionTokens *utils.ActionTokenManager, logger *zap.Logger) *VerificationController {
	return &VerificationController{
		DB:           db,
		EmailManager: emailManager,
		ActionTokens: actionTokens,
		Logger:       logger,
	}
}

// VerifyEmail consumes the signed link from the verification email.
// Revisiting an already-used link succeeds without re-applying
// anything; the flag flip is guarded by current state, not by the
// token being single-use.
func (v *VerificationController) VerifyEmail(c *gin.Context) {
	user, action := v.ActionTokens.Verify(c.Param("token"))
	if user == nil || action != utils.ActionVerifyEmail {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired link"})
		return
	}

	if user.EmailVerified {
		c.JSON(http.StatusOK, gin.H{"message": "Email already verified. You can log in."})
		return
	}

	now := time.Now().UTC()
	if err := v.DB.Model(user).Updates(map[string]interface{}{
		"email_verified":    true,
		"email_verified_at": now,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully. You can now log in."})
}

func (v *VerificationController) ResendVerification(c *gin.Context) {
	var body struct {
		Email string `json:"email" binding:"required"`
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	email, err := models.NormalizeEmail(body.Email)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
		return
	}

	var user models.User
	if err := v.DB.Where("email = ?", email).First(&user).Error; err == nil && !user.EmailVerified {
		token, err := v.ActionTokens.Issue(user.ID, utils.ActionVerifyEmail, 0)
		if err != nil {
			v.Logger.Warn("could not issue verification token", zap.Uint("user_id", user.ID), zap.Error(err))
		} else if err := v.EmailManager.SendEmailVerification(user.Email, token); err != nil {
			v.Logger.Warn("verification email not delivered", zap.Uint("user_id", user.ID), zap.Error(err))
		}
	}

	// Identical response whether or not the account exists.
	c.JSON(http.StatusOK, gin.H{
		"message": "If an account with that email exists and is not yet verified, a new link has been sent.",
	})
}
