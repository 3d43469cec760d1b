package models

import "gorm.io/gorm"

type Category struct {
	gorm.Model
	Name     string    `gorm:"column:name;size:60;index;not null"`
	Products []Product `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}
