package utils

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Validate2FA reports whether a submitted code matches the expected
// TOTP for the secret. The code must be exactly 6 digits. A skew of
// one 30-second step on either side absorbs clock drift; the replay
// guard (last accepted code) is the caller's responsibility.
func Validate2FA(code string, secret string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	ok, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

// FormatOTPSecret renders a secret in groups of four for manual entry
func FormatOTPSecret(secret string) string {
	var groups []string
	for i := 0; i < len(secret); i += 4 {
		end := i + 4
		if end > len(secret) {
			end = len(secret)
		}
		groups = append(groups, secret[i:end])
	}
	return strings.Join(groups, " ")
}

// EnrollmentQR renders the provisioning key (issuer, account label and
// secret) as a scannable base64 PNG data URL. It is produced once at
// setup and never regenerated implicitly.
func EnrollmentQR(key *otp.Key) (string, error) {
	img, err := key.Image(200, 200)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
