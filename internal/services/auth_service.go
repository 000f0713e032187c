package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"sklep/internal/apierror"
	"sklep/internal/models"
	"sklep/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// Token validation failures. The middleware maps the two to distinct 403
// responses so clients can tell an expired token from a malformed one.
var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// AuthService handles registration, login and the access/refresh token
// lifecycle. Access tokens are short-lived capability tokens carrying
// {username, role}; refresh tokens live longer, are signed with a distinct
// secret and are additionally stored on the user record so they can be
// revoked immediately on logout. Each account holds at most one live refresh
// token: issuing a new one permanently invalidates the previous one.
type AuthService struct {
	userRepo      repositories.UserRepository
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// RegisterUser registers a new user with a bcrypt-hashed password. The role
// defaults to CLIENT and must be one of CLIENT or EMPLOYEE.
func (s *AuthService) RegisterUser(username, password, role string) (*models.User, error) {
	if role == "" {
		role = models.RoleClient
	}
	if role != models.RoleClient && role != models.RoleEmployee {
		return nil, apierror.Validation("invalid role value: %s", role)
	}

	if existing, err := s.userRepo.GetByUsername(username); err == nil && existing != nil {
		return nil, apierror.Conflict("username '%s' already exists", username)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierror.Internal("failed to hash password", err)
	}

	user := &models.User{
		Username: username,
		Password: string(hashedPassword),
		Role:     role,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, apierror.Internal("failed to register user", err)
	}
	return user, nil
}

// LoginUser authenticates a user and issues a new access/refresh token pair.
// The refresh token is persisted onto the user record, replacing any prior
// one — the previous session's refresh token becomes permanently invalid.
func (s *AuthService) LoginUser(username, password string) (accessToken, refreshToken string, err error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		// Do not reveal whether the username exists.
		return "", "", apierror.Unauthorized("invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", apierror.Unauthorized("invalid username or password")
	}

	accessToken, err = s.signToken(user, s.accessSecret, s.accessTTL)
	if err != nil {
		return "", "", apierror.Internal("failed to generate access token", err)
	}
	refreshToken, err = s.signToken(user, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return "", "", apierror.Internal("failed to generate refresh token", err)
	}

	if err := s.userRepo.SetRefreshToken(user.ID, refreshToken); err != nil {
		return "", "", apierror.Internal("failed to store refresh token", err)
	}
	return accessToken, refreshToken, nil
}

// Refresh exchanges a refresh token for a new access token. The token must be
// the exact one stored on a user record: a rotated-out or revoked token is
// rejected before any signature check. The refresh token itself is unchanged.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	user, err := s.userRepo.GetByRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", apierror.Unauthorized("refresh token not recognized")
		}
		return "", apierror.Internal("failed to look up refresh token", err)
	}

	claims, err := s.parseToken(refreshToken, s.refreshSecret)
	if err != nil {
		return "", apierror.Forbidden("invalid or expired refresh token")
	}
	username, _ := claims["username"].(string)
	if username == "" || username != user.Username {
		return "", apierror.Forbidden("refresh token identity mismatch")
	}

	accessToken, err := s.signToken(user, s.accessSecret, s.accessTTL)
	if err != nil {
		return "", apierror.Internal("failed to generate access token", err)
	}
	return accessToken, nil
}

// Revoke clears the stored refresh token for its owner, making it unusable
// even before it expires. Revoking an unknown or already-cleared token is not
// an error.
func (s *AuthService) Revoke(refreshToken string) error {
	user, err := s.userRepo.GetByRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return apierror.Internal("failed to look up refresh token", err)
	}
	if err := s.userRepo.SetRefreshToken(user.ID, ""); err != nil {
		return apierror.Internal("failed to clear refresh token", err)
	}
	return nil
}

// ValidateAccessToken verifies an access token and returns the identity it
// carries. It fails with ErrTokenExpired when the token is merely expired and
// ErrTokenInvalid for every other defect.
func (s *AuthService) ValidateAccessToken(tokenString string) (username, role string, err error) {
	claims, err := s.parseToken(tokenString, s.accessSecret)
	if err != nil {
		return "", "", err
	}
	username, _ = claims["username"].(string)
	role, _ = claims["role"].(string)
	if username == "" {
		return "", "", ErrTokenInvalid
	}
	return username, role, nil
}

// GetUsers retrieves all registered users.
func (s *AuthService) GetUsers() ([]models.User, error) {
	users, err := s.userRepo.GetAll()
	if err != nil {
		return nil, apierror.Internal("failed to list users", err)
	}
	return users, nil
}

// signToken signs an HS256 JWT carrying the user's username and role.
func (s *AuthService) signToken(user *models.User, secret []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(ttl).Unix(),
		"iat":      time.Now().Unix(),
	})
	return token.SignedString(secret)
}

// parseToken parses and verifies a JWT, translating library failures into the
// two sentinel errors above.
func (s *AuthService) parseToken(tokenString string, secret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if vErr, ok := err.(*jwt.ValidationError); ok && vErr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrTokenExpired
		}
		log.Printf("Token validation error: %v", err)
		return nil, ErrTokenInvalid
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
