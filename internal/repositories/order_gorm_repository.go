package repositories

import (
	"fmt"
	"time"

	"sklep/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAll retrieves all orders with items and status populated.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Items.Product").Preload("Status").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order by its ID with items and status populated.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items.Product").Preload("Status").First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// GetByStatusID retrieves all orders currently in the given status.
func (r *GORMOrderRepository) GetByStatusID(statusID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Items.Product").Preload("Status").Find(&orders, "status_id = ?", statusID).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders by status %s: %w", statusID, err)
	}
	return orders, nil
}

// Create creates a new order together with its items.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// TransitionStatus performs the status change as a conditional update: the
// new status is written only where the current status still matches the one
// the caller validated against. Zero affected rows means either the order is
// gone or a concurrent transition won the race.
func (r *GORMOrderRepository) TransitionStatus(id, fromStatusID string, to *models.OrderStatus, confirmationDate *time.Time) error {
	updates := map[string]interface{}{
		"status_id":  to.ID,
		"updated_at": time.Now(),
	}
	if confirmationDate != nil {
		updates["confirmation_date"] = *confirmationDate
	}
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND status_id = ?", id, fromStatusID).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update status of order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&models.Order{}).Where("id = ?", id).Count(&count).Error; err == nil && count == 0 {
			return fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("order %s: %w", id, ErrStatusChanged)
	}
	return nil
}

// SetOpinion attaches (or replaces) the opinion on an order.
func (r *GORMOrderRepository) SetOpinion(id string, opinion *models.OrderOpinion) error {
	res := r.db.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"opinion_rating":  opinion.Rating,
		"opinion_content": opinion.Content,
		"updated_at":      time.Now(),
	})
	if res.Error != nil {
		return fmt.Errorf("failed to set opinion on order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
