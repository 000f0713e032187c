package repositories

import "sklep/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetAll() ([]models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	// GetByRefreshToken looks up the user owning this exact refresh token.
	GetByRefreshToken(token string) (*models.User, error)
	// SetRefreshToken stores token as the user's single live refresh token,
	// replacing any prior value. An empty token revokes the session.
	SetRefreshToken(userID, token string) error
}
