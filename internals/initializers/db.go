package initializers

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ConnectToDB opens the SQLite database at the given DSN. The handle
// is returned to the caller and threaded through explicitly instead of
// living in a package-level global.
func ConnectToDB(dsn string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
}
