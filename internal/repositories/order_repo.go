package repositories

import (
	"time"

	"sklep/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	GetByStatusID(statusID string) ([]models.Order, error)
	Create(order *models.Order) error
	// TransitionStatus moves the order from fromStatusID to the given status
	// as a single conditional update, stamping confirmationDate when non-nil.
	// It returns ErrStatusChanged when the order is no longer in fromStatusID,
	// so two racing transitions cannot both win.
	TransitionStatus(id, fromStatusID string, to *models.OrderStatus, confirmationDate *time.Time) error
	// SetOpinion attaches (or replaces) the opinion on an order.
	SetOpinion(id string, opinion *models.OrderOpinion) error
}
