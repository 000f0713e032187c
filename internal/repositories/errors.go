package repositories

import "errors"

// Sentinel errors shared by every repository implementation. Services match
// on them with errors.Is and translate them into API errors.
var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrStatusChanged is returned by TransitionStatus when the order is no
	// longer in the expected source status, i.e. a concurrent update won.
	ErrStatusChanged = errors.New("order status changed concurrently")
)
