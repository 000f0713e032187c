package repositories

import "sklep/internal/models"

// StatusRepository defines the interface for order status data access. The
// status universe is fixed and seeded once; Create only runs during seeding.
type StatusRepository interface {
	GetAll() ([]models.OrderStatus, error)
	GetByName(name string) (*models.OrderStatus, error)
	Create(status *models.OrderStatus) error
}
