package repositories

import (
	"fmt"
	"sync"
	"time"

	"sklep/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// GetAll returns all orders.
func (r *MockOrderRepository) GetAll() ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orderList = append(orderList, order)
	}
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return &order, nil
}

// GetByStatusID returns all orders currently in the given status.
func (r *MockOrderRepository) GetByStatusID(statusID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orderList []models.Order
	for _, order := range r.orders {
		if order.StatusID == statusID {
			orderList = append(orderList, order)
		}
	}
	return orderList, nil
}

// Create adds a new order.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}

// TransitionStatus updates the status of an order only when it still is in
// the expected source status, mirroring the conditional update of the GORM
// implementation.
func (r *MockOrderRepository) TransitionStatus(id, fromStatusID string, to *models.OrderStatus, confirmationDate *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	if order.StatusID != fromStatusID {
		return fmt.Errorf("order %s: %w", id, ErrStatusChanged)
	}
	order.StatusID = to.ID
	order.Status = *to
	if confirmationDate != nil {
		order.ConfirmationDate = confirmationDate
	}
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// SetOpinion attaches (or replaces) the opinion on an order.
func (r *MockOrderRepository) SetOpinion(id string, opinion *models.OrderOpinion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	order.Opinion = opinion
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}
