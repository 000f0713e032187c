package models

import "gorm.io/gorm"

// Product represents a product in the store catalog.
type Product struct {
	ID          string   `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string   `json:"name" validate:"required,min=1,max=100"`
	Description string   `json:"description" validate:"required,max=500"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Weight      float64  `json:"weight" validate:"required,gt=0"`
	CategoryID  string   `json:"category_id" gorm:"type:varchar(36)" validate:"required"`
	Category    Category `json:"category" gorm:"foreignKey:CategoryID" validate:"-"`
	gorm.Model           // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
