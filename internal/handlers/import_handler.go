package handlers

import (
	"log"
	"strings"

	"sklep/internal/middleware"
	"sklep/internal/models"
	"sklep/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ImportHandler handles bulk product import requests.
type ImportHandler struct {
	service     *services.ImportService
	authService *services.AuthService
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(service *services.ImportService, authService *services.AuthService) *ImportHandler {
	return &ImportHandler{
		service:     service,
		authService: authService,
	}
}

// RegisterRoutes registers the import route with the Fiber app.
func (h *ImportHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/init", middleware.AuthRequired(h.authService, models.RoleEmployee), h.HandleInitProducts)
}

// HandleInitProducts seeds an empty catalog from a JSON array body or a CSV
// file uploaded as multipart form field "file".
func (h *ImportHandler) HandleInitProducts(c *fiber.Ctx) error {
	contentType := c.Get(fiber.HeaderContentType)
	if contentType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Content-Type header is required",
		})
	}

	var rows []services.ProductImport
	switch {
	case strings.Contains(contentType, fiber.MIMEApplicationJSON):
		if err := c.BodyParser(&rows); err != nil {
			log.Printf("Error parsing import JSON body: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "JSON data must be an array of products",
				"error":   err.Error(),
			})
		}
	case strings.Contains(contentType, fiber.MIMEMultipartForm):
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "CSV file is required",
			})
		}
		file, err := fileHeader.Open()
		if err != nil {
			log.Printf("Error opening uploaded CSV: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Could not read uploaded file",
			})
		}
		defer file.Close()

		rows, err = services.ParseCSV(file)
		if err != nil {
			log.Printf("Error parsing uploaded CSV: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid CSV file",
				"error":   err.Error(),
			})
		}
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Unsupported Content-Type. Use JSON or CSV",
		})
	}

	created, err := h.service.InitProducts(rows)
	if err != nil {
		log.Printf("Error importing products: %v", err)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Database initialized successfully",
		"count":   created,
	})
}
