package repositories

import (
	"fmt"
	"sync"

	"sklep/internal/models"

	"github.com/google/uuid"
)

// MockStatusRepository is an in-memory implementation of StatusRepository.
type MockStatusRepository struct {
	statuses map[string]models.OrderStatus
	mu       sync.RWMutex
}

// NewMockStatusRepository creates a new instance of MockStatusRepository.
func NewMockStatusRepository() *MockStatusRepository {
	return &MockStatusRepository{
		statuses: make(map[string]models.OrderStatus),
	}
}

// GetAll returns all order statuses.
func (r *MockStatusRepository) GetAll() ([]models.OrderStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	statusList := make([]models.OrderStatus, 0, len(r.statuses))
	for _, s := range r.statuses {
		statusList = append(statusList, s)
	}
	return statusList, nil
}

// GetByName returns an order status by its unique name.
func (r *MockStatusRepository) GetByName(name string) (*models.OrderStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.statuses {
		if s.Name == name {
			status := s
			return &status, nil
		}
	}
	return nil, fmt.Errorf("order status with name %s: %w", name, ErrNotFound)
}

// Create adds a new order status.
func (r *MockStatusRepository) Create(status *models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if status.ID == "" {
		status.ID = uuid.New().String()
	}
	r.statuses[status.ID] = *status
	return nil
}
