package handlers

import (
	"log"
	"time"

	"sklep/internal/middleware"
	"sklep/internal/models"
	"sklep/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// refreshCookie is the httpOnly cookie carrying the refresh token.
const refreshCookie = "jwt"

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	refreshTTL  time.Duration
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler. refreshTTL controls the refresh
// cookie lifetime.
func NewAuthHandler(authService *services.AuthService, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		refreshTTL:  refreshTTL,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Get("/", middleware.AuthRequired(h.authService, models.RoleEmployee), h.HandleGetUsers)
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Get("/refresh", h.HandleRefresh)
	authRoutes.Get("/logout", h.HandleLogout)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=4,max=100"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=CLIENT EMPLOYEE"`
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing register request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	user, err := h.authService.RegisterUser(req.Username, req.Password, req.Role)
	if err != nil {
		log.Printf("Error registering user %s: %v", req.Username, err)
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"user":    user,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin authenticates a user, returns a short-lived access token and
// sets the refresh token as an httpOnly cookie.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	accessToken, refreshToken, err := h.authService.LoginUser(req.Username, req.Password)
	if err != nil {
		log.Printf("Error during login for user %s: %v", req.Username, err)
		return respondError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     refreshCookie,
		Value:    refreshToken,
		HTTPOnly: true,
		Expires:  time.Now().Add(h.refreshTTL),
	})
	return c.JSON(fiber.Map{
		"accessToken": accessToken,
	})
}

// HandleRefresh exchanges the refresh cookie for a new access token. A
// missing cookie yields 204; an unknown or invalid token 401/403.
func (h *AuthHandler) HandleRefresh(c *fiber.Ctx) error {
	refreshToken := c.Cookies(refreshCookie)
	if refreshToken == "" {
		return c.SendStatus(fiber.StatusNoContent)
	}

	accessToken, err := h.authService.Refresh(refreshToken)
	if err != nil {
		log.Printf("Error refreshing access token: %v", err)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"accessToken": accessToken,
	})
}

// HandleLogout revokes the refresh token server-side and clears the cookie.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	refreshToken := c.Cookies(refreshCookie)
	if refreshToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "No refresh token provided",
		})
	}

	if err := h.authService.Revoke(refreshToken); err != nil {
		log.Printf("Error revoking refresh token: %v", err)
		return respondError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     refreshCookie,
		Value:    "",
		HTTPOnly: true,
		Expires:  time.Now().Add(-time.Hour),
	})
	return c.JSON(fiber.Map{
		"message": "Successfully logged out",
	})
}

// HandleGetUsers lists all registered users.
func (h *AuthHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.authService.GetUsers()
	if err != nil {
		log.Printf("Error getting users: %v", err)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"users": users,
	})
}
