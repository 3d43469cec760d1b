package models

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name         string `gorm:"column:name;size:60"`
	Email        string `gorm:"column:email;size:256;uniqueIndex"`
	PasswordHash string `gorm:"column:password_hash;size:256"`

	// Active gates whether the account may log in at all; only an
	// administrator flips it, never the user.
	Active bool `gorm:"column:active;default:true"`

	EmailVerified   bool       `gorm:"column:email_verified;default:false"`
	EmailVerifiedAt *time.Time `gorm:"column:email_verified_at"`

	// Rotated on every successful login: the previous CurrentAccessAt
	// becomes LastAccessAt.
	LastAccessAt    *time.Time `gorm:"column:last_access_at"`
	CurrentAccessAt *time.Time `gorm:"column:current_access_at"`

	// Multi-Factor Authentication. TOTPSecret is stored AES-GCM
	// encrypted and is non-empty whenever UsesTwoFactor is set.
	UsesTwoFactor      bool       `gorm:"column:uses_two_factor;default:false"`
	TOTPSecret         string     `gorm:"column:totp_secret"`
	LastOTP            string     `gorm:"column:last_otp;size:6"`
	TwoFactorEnabledAt *time.Time `gorm:"column:two_factor_enabled_at"`

	// OAuth2 / Social Login
	GoogleID string `gorm:"column:google_id;index"`
}

// NormalizeEmail lowercases and format-validates an address. The
// normalized form is the uniqueness key for accounts.
func NormalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", errors.New("invalid email address")
	}
	return strings.ToLower(addr.Address), nil
}

// SetPassword hashes the plaintext with bcrypt and stores the hash
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares the plaintext against the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// RotateAccessTimestamps shifts the current access time into the
// previous slot and records now as the current access.
func (u *User) RotateAccessTimestamps(now time.Time) {
	u.LastAccessAt = u.CurrentAccessAt
	u.CurrentAccessAt = &now
}
