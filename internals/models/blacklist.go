package models

import (
	"time"

	"gorm.io/gorm"
)

// Blacklist holds the jti of access tokens revoked by logout until
// they would have expired on their own.
type Blacklist struct {
	gorm.Model
	Jti       string    `gorm:"column:jti;unique;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
}
