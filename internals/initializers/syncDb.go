package initializers

import (
	"gin-shop/internals/models"

	"gorm.io/gorm"
)

func SyncDatabase(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Blacklist{},
		&models.Category{},
		&models.Product{},
	)
}
