package services

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"sklep/internal/apierror"
	"sklep/internal/models"
	"sklep/internal/repositories"
)

// OrderEventPublisher publishes order lifecycle events to the message queue.
// A nil publisher disables publication; order handling never fails because
// the broker is down.
type OrderEventPublisher interface {
	PublishOrderEvent(routingKey string, body []byte) error
}

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	ProductID string
	Amount    int
}

// OrderService handles business logic related to orders: creation with price
// snapshotting, the status lifecycle and post-fulfillment opinions.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	statusRepo  repositories.StatusRepository
	events      OrderEventPublisher
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, statusRepo repositories.StatusRepository, events OrderEventPublisher) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		statusRepo:  statusRepo,
		events:      events,
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	orders, err := s.orderRepo.GetAll()
	if err != nil {
		return nil, apierror.Internal("failed to list orders", err)
	}
	return orders, nil
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apierror.NotFound("order with ID %s not found", id)
		}
		return nil, apierror.Internal("failed to get order", err)
	}
	return order, nil
}

// GetOrdersByStatus retrieves all orders currently in the given status.
func (s *OrderService) GetOrdersByStatus(statusID string) ([]models.Order, error) {
	orders, err := s.orderRepo.GetByStatusID(statusID)
	if err != nil {
		return nil, apierror.Internal("failed to list orders by status", err)
	}
	return orders, nil
}

// GetStatuses retrieves the fixed set of order statuses.
func (s *OrderService) GetStatuses() ([]models.OrderStatus, error) {
	statuses, err := s.statusRepo.GetAll()
	if err != nil {
		return nil, apierror.Internal("failed to list order statuses", err)
	}
	return statuses, nil
}

// CreateOrder creates a new order. Every item must reference an existing
// product; the unit price is copied from the current product price and is
// immutable afterward. The new order always starts UNAPPROVED, regardless of
// anything the caller supplied.
func (s *OrderService) CreateOrder(username, email, phoneNumber string, items []OrderItemInput) (*models.Order, error) {
	if len(items) == 0 {
		return nil, apierror.Validation("order must contain at least one item")
	}

	var orderItems []models.OrderItem
	for _, item := range items {
		if item.Amount <= 0 {
			return nil, apierror.Validation("item amount must be a positive whole number")
		}
		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, apierror.Validation("one or more products do not exist")
			}
			return nil, apierror.Internal("failed to resolve order items", err)
		}
		orderItems = append(orderItems, models.OrderItem{
			ProductID: product.ID,
			Product:   *product,
			Amount:    item.Amount,
			Price:     product.Price, // price at the time of order
		})
	}

	initial, err := s.statusRepo.GetByName(models.StatusUnapproved)
	if err != nil {
		return nil, apierror.Internal("initial order status missing", err)
	}

	order := &models.Order{
		Username:    username,
		Email:       email,
		PhoneNumber: phoneNumber,
		Items:       orderItems,
		StatusID:    initial.ID,
		Status:      *initial,
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, apierror.Internal("failed to create order", err)
	}

	s.publish("order.created", map[string]interface{}{
		"order_id": order.ID,
		"username": order.Username,
		"status":   initial.Name,
	})
	return order, nil
}

// ApplyTransition moves an order to the requested status name, enforcing the
// lifecycle UNAPPROVED -> {APPROVED, CANCELLED}, APPROVED -> {COMPLETED,
// CANCELLED}. A transition to COMPLETED stamps the confirmation date in the
// same update. The write is conditional on the status the caller validated
// against, so a racing transition surfaces as a conflict instead of a silent
// lost update.
func (s *OrderService) ApplyTransition(orderID, requestedStatus string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apierror.NotFound("order with ID %s not found", orderID)
		}
		return nil, apierror.Internal("failed to get order", err)
	}

	current := order.Status.Name
	if !models.CanTransition(current, requestedStatus) {
		return nil, apierror.Validation("cannot transition order from %s to %s", current, requestedStatus)
	}

	newStatus, err := s.statusRepo.GetByName(requestedStatus)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apierror.Validation("invalid status name: %s", requestedStatus)
		}
		return nil, apierror.Internal("failed to resolve status", err)
	}

	var confirmationDate *time.Time
	if newStatus.Name == models.StatusCompleted {
		now := time.Now()
		confirmationDate = &now
	}

	if err := s.orderRepo.TransitionStatus(order.ID, order.StatusID, newStatus, confirmationDate); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, apierror.NotFound("order with ID %s not found", orderID)
		case errors.Is(err, repositories.ErrStatusChanged):
			return nil, apierror.Conflict("order %s was updated concurrently", orderID)
		default:
			return nil, apierror.Internal("failed to update order status", err)
		}
	}

	order.StatusID = newStatus.ID
	order.Status = *newStatus
	if confirmationDate != nil {
		order.ConfirmationDate = confirmationDate
	}

	s.publish("order.status_changed", map[string]interface{}{
		"order_id": order.ID,
		"from":     current,
		"to":       newStatus.Name,
	})
	return order, nil
}

// AddOpinion attaches a rating and review to an order. Only the order's
// placer may do so, and only once the order reached a terminal status.
func (s *OrderService) AddOpinion(orderID, callerUsername string, rating int, content string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apierror.NotFound("order with ID %s not found", orderID)
		}
		return nil, apierror.Internal("failed to get order", err)
	}

	if order.Username != callerUsername {
		return nil, apierror.Forbidden("you are not authorized to add an opinion to this order")
	}

	statusName := order.Status.Name
	if statusName != models.StatusCompleted && statusName != models.StatusCancelled {
		return nil, apierror.Validation("opinion can only be added to completed or cancelled orders")
	}

	if rating < 1 || rating > 5 {
		return nil, apierror.Validation("rating must be an integer between 1 and 5")
	}

	opinion := &models.OrderOpinion{Rating: rating, Content: content}
	if err := s.orderRepo.SetOpinion(order.ID, opinion); err != nil {
		return nil, apierror.Internal("failed to store opinion", err)
	}
	order.Opinion = opinion
	return order, nil
}

// publish marshals and sends an order event, logging instead of failing when
// the broker is unavailable.
func (s *OrderService) publish(routingKey string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := s.events.PublishOrderEvent(routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}
