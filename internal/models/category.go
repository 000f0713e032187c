package models

import "gorm.io/gorm"

// Category groups products in the catalog. The set of categories is seeded
// at startup and only extended through seeding, never through the API.
type Category struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name       string `json:"name" gorm:"uniqueIndex;type:varchar(100)"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
