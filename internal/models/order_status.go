package models

import "gorm.io/gorm"

// Canonical order status names. The universe is fixed: the four rows are
// seeded once at startup and referenced by id from orders.
const (
	StatusUnapproved = "UNAPPROVED"
	StatusApproved   = "APPROVED"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
)

// OrderStatus is one state of the order lifecycle.
type OrderStatus struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name       string `json:"name" gorm:"uniqueIndex;type:varchar(20)"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// StatusTransitions maps each status name to the set of names it may legally
// move to. Terminal states map to an empty set; an order never revisits a
// prior state.
var StatusTransitions = map[string][]string{
	StatusUnapproved: {StatusApproved, StatusCancelled},
	StatusApproved:   {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether an order may move from the current status
// name to the requested one.
func CanTransition(current, requested string) bool {
	for _, allowed := range StatusTransitions[current] {
		if allowed == requested {
			return true
		}
	}
	return false
}
