package utils

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"gin-shop/internals/config"
	"gin-shop/internals/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audience claim marking the intermediate token issued between a
// correct password and a correct TOTP code.
const challengeAudience = "2fa"

// TokenManager handles session token generation, storage, and cookie management
type TokenManager struct {
	// DB is the database connection used for storing sessions
	DB *gorm.DB
	// CookieConfig holds the shared security baseline for all cookies issued by the server
	CookieConfig *config.CookieConfig
	// JWTSecret is the secret key used for signing tokens (Access, Refresh and 2FA challenge)
	JWTSecret string
	// AccMaxAge is the expiration time in seconds for Access tokens
	AccMaxAge int
	// RefMaxAge is the expiration time in seconds for Refresh tokens
	RefMaxAge int
	// RememberMaxAge replaces RefMaxAge when the login asked to stay connected
	RememberMaxAge int
	// ChallengeMaxAge is the expiration time in seconds for the suspended 2FA login step
	ChallengeMaxAge int
	// AccPath for the Access token cookie
	AccPath string
	// RefPath for the Refresh token cookie
	RefPath string
}

// NewTokenManager initializes and returns a new TokenManager instance
func NewTokenManager(db *gorm.DB, cookieConfig *config.CookieConfig, jwtSecret string,
	accMaxAge, refMaxAge, rememberMaxAge, challengeMaxAge int, accPath, refPath string) *TokenManager {
	return &TokenManager{
		DB:              db,
		CookieConfig:    cookieConfig,
		JWTSecret:       jwtSecret,
		AccMaxAge:       accMaxAge,
		RefMaxAge:       refMaxAge,
		RememberMaxAge:  rememberMaxAge,
		ChallengeMaxAge: challengeMaxAge,
		AccPath:         accPath,
		RefPath:         refPath,
	}
}

// TokenMetadata holds the results of token generation
type TokenMetadata struct {
	AccessToken  string
	RefreshToken string
}

// SetClearCookies clears the Authorization and RefreshToken cookies from the client
// when they log out or present invalid tokens during refresh rotation
func (tm *TokenManager) SetClearCookies(c *gin.Context) {
	c.SetCookie("Authorization", "", -1, tm.AccPath, tm.CookieConfig.Domain, tm.CookieConfig.IsSecure, tm.CookieConfig.HttpOnly)
	c.SetCookie("RefreshToken", "", -1, tm.RefPath, tm.CookieConfig.Domain, tm.CookieConfig.IsSecure, tm.CookieConfig.HttpOnly)
}

// createAccessToken creates a signed JWT access token
func (tm *TokenManager) createAccessToken(userID uint, expAt time.Time) (string, error) {
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"jti": uuid.New().String(),
		"exp": expAt.Unix(),
	})
	return accessToken.SignedString([]byte(tm.JWTSecret))
}

// createRefreshToken creates a signed JWT refresh token. The jti keeps
// tokens from back-to-back logins distinct even within the same second,
// since the stored refresh token is unique per session row.
func (tm *TokenManager) createRefreshToken(userID uint, expAt time.Time) (string, error) {
	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"jti": uuid.New().String(),
		"exp": expAt.Unix(),
	})
	return refreshToken.SignedString([]byte(tm.JWTSecret))
}

// GenerateAndSetToken generates access and refresh tokens, stores the refresh
// token in the database, and sets both tokens in secure cookies. The remember
// flag selects the long refresh lifetime.
func (tm *TokenManager) GenerateAndSetToken(c *gin.Context, userID uint, remember bool) (*TokenMetadata, error) {
	refMaxAge := tm.RefMaxAge
	if remember {
		refMaxAge = tm.RememberMaxAge
	}

	accExpiresAt := time.Now().Add(time.Duration(tm.AccMaxAge) * time.Second)
	refExpiresAt := time.Now().Add(time.Duration(refMaxAge) * time.Second)

	accTokenStr, accErr := tm.createAccessToken(userID, accExpiresAt)
	refTokenStr, refErr := tm.createRefreshToken(userID, refExpiresAt)

	if accErr != nil {
		tm.SetClearCookies(c)
		return nil, fmt.Errorf("access token generation failed")
	}
	if refErr != nil {
		tm.SetClearCookies(c)
		return nil, fmt.Errorf("refresh token generation failed")
	}

	session := models.Session{
		UserID:       userID,
		RefreshToken: refTokenStr,
		UserAgent:    c.Request.UserAgent(),
		IPAddress:    c.ClientIP(),
		Remember:     remember,
		ExpiresAt:    refExpiresAt,
	}

	if err := tm.DB.Create(&session).Error; err != nil {
		// CLEANUP: If DB fails, we must not leave the user with "half-valid" state
		tm.SetClearCookies(c)
		return nil, err
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("Authorization", accTokenStr, tm.AccMaxAge, tm.AccPath, tm.CookieConfig.Domain, tm.CookieConfig.IsSecure, tm.CookieConfig.HttpOnly)
	c.SetCookie("RefreshToken", refTokenStr, refMaxAge, tm.RefPath, tm.CookieConfig.Domain, tm.CookieConfig.IsSecure, tm.CookieConfig.HttpOnly)

	return &TokenMetadata{AccessToken: accTokenStr, RefreshToken: refTokenStr}, nil
}

// ChallengeToken signs the intermediate token handed out after a
// correct password when the account still owes a TOTP code. It carries
// the user, the remember flag and the post-login redirect target, so
// nothing sensitive rides in query parameters while there is no
// session yet.
func (tm *TokenManager) ChallengeToken(userID uint, remember bool, next string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      userID,
		"aud":      challengeAudience,
		"remember": remember,
		"next":     next,
		"exp":      time.Now().Add(time.Duration(tm.ChallengeMaxAge) * time.Second).Unix(),
	})
	return token.SignedString([]byte(tm.JWTSecret))
}

// ParseChallengeToken validates an intermediate 2FA token and returns
// the state it carried across the suspended login step.
func (tm *TokenManager) ParseChallengeToken(tokenStr string) (userID uint, remember bool, next string, err error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(tm.JWTSecret), nil
	}, jwt.WithAudience(challengeAudience))
	if err != nil || !token.Valid {
		return 0, false, "", fmt.Errorf("invalid challenge token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false, "", errors.New("invalid challenge claims")
	}

	// Numbers arrive as float64 from the JSON decoder
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return 0, false, "", errors.New("invalid challenge subject")
	}
	remember, _ = claims["remember"].(bool)
	next, _ = claims["next"].(string)

	return uint(sub), remember, next, nil
}
