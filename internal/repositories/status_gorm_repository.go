package repositories

import (
	"fmt"

	"sklep/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMStatusRepository is a GORM implementation of StatusRepository.
type GORMStatusRepository struct {
	db *gorm.DB
}

// NewGORMStatusRepository creates a new instance of GORMStatusRepository.
func NewGORMStatusRepository(db *gorm.DB) *GORMStatusRepository {
	return &GORMStatusRepository{
		db: db,
	}
}

// GetAll retrieves all order statuses from the database.
func (r *GORMStatusRepository) GetAll() ([]models.OrderStatus, error) {
	var statuses []models.OrderStatus
	if err := r.db.Find(&statuses).Error; err != nil {
		return nil, fmt.Errorf("failed to get all order statuses: %w", err)
	}
	return statuses, nil
}

// GetByName retrieves an order status by its unique name from the database.
func (r *GORMStatusRepository) GetByName(name string) (*models.OrderStatus, error) {
	var status models.OrderStatus
	if err := r.db.First(&status, "name = ?", name).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order status with name %s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order status by name %s: %w", name, err)
	}
	return &status, nil
}

// Create creates a new order status in the database.
func (r *GORMStatusRepository) Create(status *models.OrderStatus) error {
	if status.ID == "" {
		status.ID = uuid.New().String()
	}
	if err := r.db.Create(status).Error; err != nil {
		return fmt.Errorf("failed to create order status: %w", err)
	}
	return nil
}
