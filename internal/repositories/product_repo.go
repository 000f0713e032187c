package repositories

import (
	"sklep/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	// Count returns how many products exist; the bulk importer uses it to
	// refuse re-initializing a non-empty catalog.
	Count() (int64, error)
}
