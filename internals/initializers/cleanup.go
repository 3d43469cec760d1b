package initializers

import (
	"time"

	"gin-shop/internals/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StartJanitor purges expired sessions and blacklisted token IDs on a
// ticker. Unscoped() performs a hard delete, bypassing GORM's soft
// delete so the tables do not grow indefinitely. User rows are never
// purged here; accounts have no delete path.
func StartJanitor(db *gorm.DB, logger *zap.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)

	go func() {
		for range ticker.C {
			// Sessions that were tampered with, ignored during logout,
			// or simply left to expire.
			sessions := db.Unscoped().Where("expires_at < ?", time.Now()).Delete(&models.Session{})

			// A blacklisted jti is only needed until the token it names
			// would have expired naturally.
			blacklist := db.Unscoped().Where("expires_at < ?", time.Now()).Delete(&models.Blacklist{})

			if sessions.RowsAffected > 0 || blacklist.RowsAffected > 0 {
				logger.Info("janitor purged expired records",
					zap.Int64("sessions", sessions.RowsAffected),
					zap.Int64("blacklisted_tokens", blacklist.RowsAffected))
			}
		}
	}()
}
