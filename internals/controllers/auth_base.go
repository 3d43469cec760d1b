package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gin-shop/internals/config"
	"gin-shop/internals/models"
	"gin-shop/internals/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AuthController struct {
	DB           *gorm.DB
	EmailManager *utils.EmailManager
	TokenManager *utils.TokenManager
	ActionTokens *utils.ActionTokenManager
	Policy       config.PasswordPolicy
	Logger       *zap.Logger
}

func NewAuthController(db *gorm.DB, emailManager *utils.EmailManager, tokenManager *utils.TokenManager,
	actionTokens *utils.ActionTokenManager, policy config.PasswordPolicy, logger *zap.Logger) *AuthController {
	return &AuthController{
		DB:           db,
		EmailManager: emailManager,
		TokenManager: tokenManager,
		ActionTokens: actionTokens,
		Policy:       policy,
		Logger:       logger,
	}
}

// safeNextPath keeps post-login redirects on our own origin. The value
// comes from the client and is untrusted; anything absolute, external,
// or protocol-relative falls back to the landing page.
func safeNextPath(next string) string {
	if next == "" {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" ||
		!strings.HasPrefix(u.Path, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}

// finishLogin is the single place a session comes into existence: it
// issues the cookies and rotates the access timestamps (previous
// current access becomes last access). Both the direct login path and
// the 2FA verification path end here.
func finishLogin(c *gin.Context, db *gorm.DB, tm *utils.TokenManager, logger *zap.Logger, user *models.User, remember bool, next string) {
	tokenMetadata, err := tm.GenerateAndSetToken(c, user.ID, remember)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate tokens"})
		return
	}

	user.RotateAccessTimestamps(time.Now().UTC())
	if err := db.Model(user).Updates(map[string]interface{}{
		"last_access_at":    user.LastAccessAt,
		"current_access_at": user.CurrentAccessAt,
	}).Error; err != nil {
		logger.Warn("access timestamps not rotated", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Logged in successfully",
		"access_token":  tokenMetadata.AccessToken,
		"refresh_token": tokenMetadata.RefreshToken,
		"next":          safeNextPath(next),
	})
}

func (a *AuthController) Signup(c *gin.Context) {
	var body struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
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

	if err := utils.ValidatePassword(body.Password, a.Policy); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password " + err.Error()})
		return
	}

	var existing models.User
	if err := a.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "This email is already registered. Please log in."})
		return
	}

	user := models.User{
		Name:   body.Name,
		Email:  email,
		Active: true,
	}
	if err := user.SetPassword(body.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	if err := a.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to create user"})
		return
	}

	a.sendVerificationLink(&user)

	c.JSON(http.StatusOK, gin.H{
		"message": "Account created. Please check your email for a verification link.",
	})
}

// sendVerificationLink is best-effort: a delivery failure is logged
// and the surrounding flow still succeeds, so responses never reveal
// whether an address exists or whether mail went out.
func (a *AuthController) sendVerificationLink(user *models.User) {
	token, err := a.ActionTokens.Issue(user.ID, utils.ActionVerifyEmail, 0)
	if err != nil {
		a.Logger.Warn("could not issue verification token", zap.Uint("user_id", user.ID), zap.Error(err))
		return
	}
	if err := a.EmailManager.SendEmailVerification(user.Email, token); err != nil {
		a.Logger.Warn("verification email not delivered", zap.Uint("user_id", user.ID), zap.Error(err))
	}
}

func (a *AuthController) Login(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Remember bool   `json:"remember"`
		Next     string `json:"next"`
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
	result := a.DB.Where("email = ?", email).First(&user)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	// One generic message for unknown email and wrong password alike,
	// so responses cannot be used to enumerate accounts.
	if result.Error != nil || !user.CheckPassword(body.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect email or password"})
		return
	}

	if !user.Active {
		c.JSON(http.StatusForbidden, gin.H{"error": "This account is blocked. Please contact an administrator."})
		return
	}

	if !user.EmailVerified {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":      "Email address not verified. Check your inbox or request a new verification link.",
			"can_resend": true,
		})
		return
	}

	if user.UsesTwoFactor {
		// Suspend the login: no session and no cookies yet. The signed
		// challenge carries everything the verification step needs.
		challenge, err := a.TokenManager.ChallengeToken(user.ID, body.Remember, body.Next)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create login challenge"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"mfa_required": true,
			"challenge":    challenge,
			"message":      "Please enter your 2FA code to continue",
		})
		return
	}

	finishLogin(c, a.DB, a.TokenManager, a.Logger, &user, body.Remember, body.Next)
}

func (a *AuthController) ForgotPassword(c *gin.Context) {
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
	if err := a.DB.Where("email = ?", email).First(&user).Error; err == nil {
		token, err := a.ActionTokens.Issue(user.ID, utils.ActionResetPassword, 0)
		if err != nil {
			a.Logger.Warn("could not issue reset token", zap.Uint("user_id", user.ID), zap.Error(err))
		} else if err := a.EmailManager.SendPasswordReset(user.Email, token); err != nil {
			a.Logger.Warn("reset email not delivered", zap.Uint("user_id", user.ID), zap.Error(err))
		}
	}

	// Identical response whether or not the account exists.
	c.JSON(http.StatusOK, gin.H{
		"message": "If an account with that email exists, a password reset link has been sent.",
	})
}

func (a *AuthController) ResetPassword(c *gin.Context) {
	var body struct {
		Password  string `json:"password" binding:"required"`
		Password2 string `json:"password2" binding:"required"`
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	user, action := a.ActionTokens.Verify(c.Param("token"))
	if user == nil || action != utils.ActionResetPassword {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired link"})
		return
	}

	if body.Password != body.Password2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match"})
		return
	}

	if err := utils.ValidatePassword(body.Password, a.Policy); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password " + err.Error()})
		return
	}

	if err := user.SetPassword(body.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}
	if err := a.DB.Model(user).Update("password_hash", user.PasswordHash).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated. You can now log in."})
}

func (a *AuthController) Logout(c *gin.Context) {
	acctokenStr, accErr := c.Cookie("Authorization")
	reftokenStr, refErr := c.Cookie("RefreshToken")

	// If both are missing, the user is already "logged out"
	if accErr != nil && refErr != nil {
		c.JSON(http.StatusOK, gin.H{"message": "Already logged out"})
		return
	}

	// Revoke the session via the refresh token. If the token is
	// invalid or tampered, the query matches nothing and the janitor
	// eventually removes the session by expiry anyway.
	if reftokenStr != "" {
		a.DB.Unscoped().Where("refresh_token = ?", reftokenStr).Delete(&models.Session{})
	}

	// Blacklist the access token until its natural expiry
	if acctokenStr != "" {
		token, _ := jwt.Parse(acctokenStr, func(t *jwt.Token) (interface{}, error) {
			return []byte(a.TokenManager.JWTSecret), nil
		})

		if token != nil {
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				if jti, ok := claims["jti"].(string); ok {
					// Numbers arrive as float64 from the JSON decoder
					var expireAt time.Time
					if exp, ok := claims["exp"].(float64); ok {
						expireAt = time.Unix(int64(exp), 0)
					} else {
						expireAt = time.Now().Add(time.Duration(a.TokenManager.AccMaxAge) * time.Second)
					}

					a.DB.Create(&models.Blacklist{
						Jti:       jti,
						ExpiresAt: expireAt,
					})
				}
			}
		}
	}

	a.TokenManager.SetClearCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
