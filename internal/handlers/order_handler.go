package handlers

import (
	"log"

	"sklep/internal/middleware"
	"sklep/internal/models"
	"sklep/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders and order statuses.
type OrderHandler struct {
	service     *services.OrderService
	authService *services.AuthService
	validate    *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, authService *services.AuthService) *OrderHandler {
	return &OrderHandler{
		service:     service,
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the order and status routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/status/:statusId", h.HandleGetOrdersByStatus)
	orderRoutes.Patch("/:id", middleware.AuthRequired(h.authService, models.RoleEmployee), h.HandleUpdateOrderStatus)
	orderRoutes.Post("/:id/opinions", middleware.AuthRequired(h.authService, models.RoleClient), h.HandleAddOpinion)

	statusRoutes := router.Group("/status")
	statusRoutes.Get("/", h.HandleGetStatuses)
}

// HandleGetOrders retrieves all orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetAllOrders()
	if err != nil {
		log.Printf("Error getting all orders: %v", err)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"orders": orders,
	})
}

// HandleGetOrdersByStatus retrieves all orders in the given status.
func (h *OrderHandler) HandleGetOrdersByStatus(c *fiber.Ctx) error {
	orders, err := h.service.GetOrdersByStatus(c.Params("statusId"))
	if err != nil {
		log.Printf("Error getting orders by status %s: %v", c.Params("statusId"), err)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"orders": orders,
	})
}

// OrderItemRequest is one requested line of a new order.
type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Amount    int    `json:"amount" validate:"required,gt=0"`
}

// CreateOrderRequest represents the request body for checkout. Any status
// the caller supplies is ignored; new orders always start UNAPPROVED.
type CreateOrderRequest struct {
	Username    string             `json:"username" validate:"required,min=1"`
	Email       string             `json:"email" validate:"required,email"`
	PhoneNumber string             `json:"phone_number" validate:"required,numeric,min=9,max=15"`
	Items       []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// HandleCreateOrder creates a new order.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing order request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	items := make([]services.OrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, services.OrderItemInput{
			ProductID: item.ProductID,
			Amount:    item.Amount,
		})
	}

	order, err := h.service.CreateOrder(req.Username, req.Email, req.PhoneNumber, items)
	if err != nil {
		log.Printf("Error creating order: %v", err)
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// UpdateOrderStatusRequest represents the request body for a status change.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// HandleUpdateOrderStatus applies a status transition to an order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing status update body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	order, err := h.service.ApplyTransition(c.Params("id"), req.Status)
	if err != nil {
		log.Printf("Error updating status of order %s: %v", c.Params("id"), err)
		return respondError(c, err)
	}
	return c.JSON(order)
}

// OpinionRequest represents the request body for attaching an opinion.
type OpinionRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Content string `json:"content" validate:"omitempty,max=1000"`
}

// HandleAddOpinion attaches a rating and review to an order. The caller
// identity comes from the validated access token, never from the body.
func (h *OrderHandler) HandleAddOpinion(c *fiber.Ctx) error {
	var req OpinionRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing opinion request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	callerUsername, _ := c.Locals(middleware.LocalUsername).(string)
	order, err := h.service.AddOpinion(c.Params("id"), callerUsername, req.Rating, req.Content)
	if err != nil {
		log.Printf("Error adding opinion to order %s: %v", c.Params("id"), err)
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Opinion added successfully",
		"opinion": order.Opinion,
	})
}

// HandleGetStatuses retrieves the fixed set of order statuses.
func (h *OrderHandler) HandleGetStatuses(c *fiber.Ctx) error {
	statuses, err := h.service.GetStatuses()
	if err != nil {
		log.Printf("Error getting order statuses: %v", err)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"statuses": statuses,
	})
}
