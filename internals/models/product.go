package models

import "gorm.io/gorm"

type Product struct {
	gorm.Model
	Name   string  `gorm:"column:name;size:100;index;not null"`
	Price  float64 `gorm:"column:price;type:decimal(10,2);default:0"`
	Stock  int     `gorm:"column:stock;default:0"`
	Active bool    `gorm:"column:active;default:true"`

	// Photo bytes live in the row, base64-encoded, alongside their MIME
	// type. HasPhoto distinguishes "no photo" from an empty payload.
	HasPhoto    bool   `gorm:"column:has_photo;default:false"`
	PhotoBase64 string `gorm:"column:photo_base64;type:text"`
	PhotoMIME   string `gorm:"column:photo_mime;size:64"`

	CategoryID uint     `gorm:"column:category_id"`
	Category   Category `gorm:"foreignKey:CategoryID"`
}
