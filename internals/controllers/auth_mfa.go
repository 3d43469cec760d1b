package controllers

import (
	"net/http"
	"time"

	"gin-shop/internals/models"
	"gin-shop/internals/utils"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MFAController struct {
	DB           *gorm.DB
	TokenManager *utils.TokenManager
	// AppName is the issuer shown in authenticator apps
	AppName       string
	EncryptionKey string
	Logger        *zap.Logger
}

func NewMFAController(db *gorm.DB, tokenManager *utils.TokenManager, appName string,
	encryptionKey string, logger *zap.Logger) *MFAController {
	return &MFAController{
		DB:            db,
		TokenManager:  tokenManager,
		AppName:       appName,
		EncryptionKey: encryptionKey,
		Logger:        logger,
	}
}

// Setup2FA provisions a fresh TOTP secret for the logged-in user and
// returns it once, together with the scannable enrollment QR. Nothing
// is enforced until Activate2FA proves the authenticator works.
func (m *MFAController) Setup2FA(c *gin.Context) {
	user, _ := c.Get("user")
	u := user.(models.User)

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      m.AppName,
		AccountName: u.Email,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate 2FA key"})
		return
	}

	encryptedSecret, err := utils.Encrypt(key.Secret(), m.EncryptionKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encrypt 2FA secret"})
		return
	}

	if err := m.DB.Model(&u).Update("totp_secret", encryptedSecret).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store 2FA secret"})
		return
	}

	qr, err := utils.EnrollmentQR(key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render QR code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"secret":      utils.FormatOTPSecret(key.Secret()),
		"qr_code_url": qr,
	})
}

func (m *MFAController) Activate2FA(c *gin.Context) {
	var body struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code is required"})
		return
	}

	user, _ := c.Get("user")
	u := user.(models.User)

	if u.TOTPSecret == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "2FA has not been set up for this account"})
		return
	}

	secret, err := utils.Decrypt(u.TOTPSecret, m.EncryptionKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decrypt 2FA secret"})
		return
	}

	if !utils.Validate2FA(body.Code, secret) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Incorrect verification code"})
		return
	}

	now := time.Now().UTC()
	if err := m.DB.Model(&u).Updates(map[string]interface{}{
		"uses_two_factor":       true,
		"two_factor_enabled_at": now,
		"last_otp":              body.Code,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to activate 2FA"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "2FA activated successfully"})
}

// Disable2FA requires a current code so a stolen session alone cannot
// turn the second factor off. The secret is cleared along with the
// flag.
func (m *MFAController) Disable2FA(c *gin.Context) {
	var body struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code is required"})
		return
	}

	user, _ := c.Get("user")
	u := user.(models.User)

	if !u.UsesTwoFactor {
		c.JSON(http.StatusBadRequest, gin.H{"error": "2FA is not enabled for this account"})
		return
	}

	secret, err := utils.Decrypt(u.TOTPSecret, m.EncryptionKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decrypt 2FA secret"})
		return
	}

	if !utils.Validate2FA(body.Code, secret) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Incorrect verification code"})
		return
	}

	if err := m.DB.Model(&u).Updates(map[string]interface{}{
		"uses_two_factor":       false,
		"totp_secret":           "",
		"last_otp":              "",
		"two_factor_enabled_at": nil,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to disable 2FA"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "2FA disabled"})
}

// LoginVerify2FA resumes a login suspended by the 2FA requirement. The
// challenge token carries the user, the remember flag and the redirect
// target from the password step.
func (m *MFAController) LoginVerify2FA(c *gin.Context) {
	var body struct {
		Challenge string `json:"challenge" binding:"required"`
		Code      string `json:"code" binding:"required"`
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Challenge and code are required"})
		return
	}

	userID, remember, next, err := m.TokenManager.ParseChallengeToken(body.Challenge)
	if err != nil {
		m.Logger.Warn("2FA challenge rejected", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired login challenge"})
		return
	}

	var user models.User
	if err := m.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired login challenge"})
		return
	}

	if !user.UsesTwoFactor || !user.Active {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired login challenge"})
		return
	}

	secret, err := utils.Decrypt(user.TOTPSecret, m.EncryptionKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process security key"})
		return
	}

	// Replay guard: the previously accepted code stays burned for as
	// long as it could still fall inside the validation window.
	if body.Code == user.LastOTP || !utils.Validate2FA(body.Code, secret) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect verification code"})
		return
	}

	if err := m.DB.Model(&user).Update("last_otp", body.Code).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record verification"})
		return
	}

	finishLogin(c, m.DB, m.TokenManager, m.Logger, &user, remember, next)
}
