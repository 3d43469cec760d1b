package utils

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"gin-shop/internals/models"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Actions an emailed link may authorize.
const (
	ActionVerifyEmail   = "verify_email"
	ActionResetPassword = "reset_password"
)

// DefaultActionTokenTTL is how long an emailed link stays valid.
const DefaultActionTokenTTL = 600 * time.Second

// ActionTokenManager mints and checks the signed, self-contained
// tokens embedded in emailed links. There is no server-side token
// table: a token stays valid until its expiry even if a newer one has
// been issued.
type ActionTokenManager struct {
	DB     *gorm.DB
	Secret string
	Logger *zap.Logger
}

func NewActionTokenManager(db *gorm.DB, secret string, logger *zap.Logger) *ActionTokenManager {
	return &ActionTokenManager{DB: db, Secret: secret, Logger: logger}
}

// Issue signs a token authorizing one user to perform one action until
// the TTL elapses. A zero ttl selects DefaultActionTokenTTL. The
// action is lowercased once here; callers compare it against their
// expected literal on the way back in.
func (m *ActionTokenManager) Issue(userID uint, action string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = DefaultActionTokenTTL
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user":   strconv.FormatUint(uint64(userID), 10),
		"action": strings.ToLower(action),
		"exp":    time.Now().Add(ttl).Unix(),
	})
	return token.SignedString([]byte(m.Secret))
}

// Verify fails closed: a malformed, tampered, or expired token, a user
// claim that does not parse, or a user that no longer exists all yield
// (nil, ""). Failure detail goes to the log only, never to the caller.
func (m *ActionTokenManager) Verify(tokenStr string) (*models.User, string) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(m.Secret), nil
	})
	if err != nil || !token.Valid {
		m.Logger.Warn("action token rejected", zap.Error(err))
		return nil, ""
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ""
	}
	userStr, _ := claims["user"].(string)
	action, _ := claims["action"].(string)

	userID, err := strconv.ParseUint(userStr, 10, 64)
	if err != nil || action == "" {
		m.Logger.Warn("action token with malformed claims")
		return nil, ""
	}

	var user models.User
	if err := m.DB.First(&user, uint(userID)).Error; err != nil {
		m.Logger.Warn("action token for unknown user", zap.Uint64("user_id", userID))
		return nil, ""
	}
	return &user, action
}
