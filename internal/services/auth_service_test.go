package services_test

import (
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"sklep/internal/apierror"
	"sklep/internal/models"
	"sklep/internal/repositories"
	"sklep/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAccessSecret  = "test_access_secret"
	testRefreshSecret = "test_refresh_secret"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetAll() ([]models.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByRefreshToken(token string) (*models.User, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) SetRefreshToken(userID, token string) error {
	args := m.Called(userID, token)
	return args.Error(0)
}

func newAuthService(repo repositories.UserRepository) *services.AuthService {
	return services.NewAuthService(repo, testAccessSecret, testRefreshSecret, 15*time.Minute, 24*time.Hour)
}

// TestMain is used to setup the test environment
func TestMain(m *testing.M) {
	log.SetOutput(os.Stdout)
	code := m.Run()
	os.Exit(code)
}

func TestAuthService_RegisterUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	// Successful registration defaults the role to CLIENT
	mockRepo.On("GetByUsername", "testuser").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()

	user, err := authService.RegisterUser("testuser", "password123", "")
	assert.NoError(t, err)
	assert.Equal(t, models.RoleClient, user.Role)
	// The stored password is a bcrypt hash of the submitted one
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
	mockRepo.AssertExpectations(t)

	// Username already taken
	mockRepo.On("GetByUsername", "testuser").Return(&models.User{ID: "1"}, nil).Once()
	_, err = authService.RegisterUser("testuser", "password123", "")
	assert.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	mockRepo.AssertExpectations(t)

	// Invalid role value
	_, err = authService.RegisterUser("otheruser", "password123", "ADMIN")
	assert.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
}

func TestAuthService_LoginUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:       "user-123",
		Username: "testuser",
		Password: string(hashedPassword),
		Role:     models.RoleClient,
	}

	// Successful login issues a token pair and persists the refresh token
	var storedRefresh string
	mockRepo.On("GetByUsername", "testuser").Return(user, nil).Once()
	mockRepo.On("SetRefreshToken", "user-123", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { storedRefresh = args.String(1) }).
		Return(nil).Once()

	accessToken, refreshToken, err := authService.LoginUser("testuser", "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)
	assert.Equal(t, refreshToken, storedRefresh)
	assert.NotEqual(t, accessToken, refreshToken)

	// The access token carries username and role
	parsed, err := jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testAccessSecret), nil
	})
	assert.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, "testuser", claims["username"])
	assert.Equal(t, models.RoleClient, claims["role"])
	mockRepo.AssertExpectations(t)

	// Wrong password
	mockRepo.On("GetByUsername", "testuser").Return(user, nil).Once()
	_, _, err = authService.LoginUser("testuser", "wrongpassword")
	assert.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindUnauthorized))
	mockRepo.AssertExpectations(t)

	// Unknown user gets the same generic failure
	mockRepo.On("GetByUsername", "nobody").Return(nil, repositories.ErrNotFound).Once()
	_, _, err = authService.LoginUser("nobody", "password123")
	assert.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindUnauthorized))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateAccessToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	makeToken := func(secret string, exp time.Time) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"username": "testuser",
			"role":     models.RoleEmployee,
			"exp":      exp.Unix(),
			"iat":      time.Now().Unix(),
		})
		signed, _ := token.SignedString([]byte(secret))
		return signed
	}

	// Valid token
	username, role, err := authService.ValidateAccessToken(makeToken(testAccessSecret, time.Now().Add(time.Hour)))
	assert.NoError(t, err)
	assert.Equal(t, "testuser", username)
	assert.Equal(t, models.RoleEmployee, role)

	// Expired token is a distinct failure
	_, _, err = authService.ValidateAccessToken(makeToken(testAccessSecret, time.Now().Add(-time.Hour)))
	assert.ErrorIs(t, err, services.ErrTokenExpired)

	// Garbage token
	_, _, err = authService.ValidateAccessToken("invalid.token.string")
	assert.ErrorIs(t, err, services.ErrTokenInvalid)

	// A refresh token does not pass as an access token
	_, _, err = authService.ValidateAccessToken(makeToken(testRefreshSecret, time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, services.ErrTokenInvalid)
}

func TestAuthService_Refresh(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{ID: "user-123", Username: "testuser", Password: string(hashedPassword), Role: models.RoleClient}

	var refreshToken string
	mockRepo.On("GetByUsername", "testuser").Return(user, nil).Once()
	mockRepo.On("SetRefreshToken", "user-123", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { refreshToken = args.String(1) }).
		Return(nil).Once()
	_, _, err := authService.LoginUser("testuser", "password123")
	assert.NoError(t, err)

	// Successful refresh issues a new access token, refresh token unchanged
	mockRepo.On("GetByRefreshToken", refreshToken).Return(&models.User{ID: "user-123", Username: "testuser", Role: models.RoleClient, RefreshToken: refreshToken}, nil).Once()
	accessToken, err := authService.Refresh(refreshToken)
	assert.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	mockRepo.AssertExpectations(t)

	// A token no user owns is rejected before any signature check
	mockRepo.On("GetByRefreshToken", "unknown-token").Return(nil, repositories.ErrNotFound).Once()
	_, err = authService.Refresh("unknown-token")
	assert.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindUnauthorized))
	mockRepo.AssertExpectations(t)

	// A stored token whose decoded identity does not match the record fails
	mockRepo.On("GetByRefreshToken", refreshToken).Return(&models.User{ID: "user-999", Username: "otheruser"}, nil).Once()
	_, err = authService.Refresh(refreshToken)
	assert.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindForbidden))
	mockRepo.AssertExpectations(t)

	// An expired refresh token fails even when a user still holds it
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": "testuser",
		"role":     models.RoleClient,
		"exp":      time.Now().Add(-time.Hour).Unix(),
	})
	expiredToken, _ := expired.SignedString([]byte(testRefreshSecret))
	mockRepo.On("GetByRefreshToken", expiredToken).Return(&models.User{ID: "user-123", Username: "testuser"}, nil).Once()
	_, err = authService.Refresh(expiredToken)
	assert.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindForbidden))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RefreshTokenRotation(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{ID: "user-123", Username: "testuser", Password: string(hashedPassword), Role: models.RoleClient}

	// Two logins: the second stored token replaces the first
	var tokens []string
	mockRepo.On("GetByUsername", "testuser").Return(user, nil).Twice()
	mockRepo.On("SetRefreshToken", "user-123", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { tokens = append(tokens, args.String(1)) }).
		Return(nil).Twice()

	_, first, err := authService.LoginUser("testuser", "password123")
	assert.NoError(t, err)
	time.Sleep(1100 * time.Millisecond) // distinct iat so the tokens differ
	_, second, err := authService.LoginUser("testuser", "password123")
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, []string{first, second}, tokens)

	// The first token no longer matches any user record, so refresh fails
	mockRepo.On("GetByRefreshToken", first).Return(nil, repositories.ErrNotFound).Once()
	_, err = authService.Refresh(first)
	assert.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindUnauthorized))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Revoke(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	// Revoking a live token clears it on the user record
	mockRepo.On("GetByRefreshToken", "live-token").Return(&models.User{ID: "user-123", Username: "testuser"}, nil).Once()
	mockRepo.On("SetRefreshToken", "user-123", "").Return(nil).Once()
	assert.NoError(t, authService.Revoke("live-token"))
	mockRepo.AssertExpectations(t)

	// Revoking an unknown or already-cleared token is not an error
	mockRepo.On("GetByRefreshToken", "stale-token").Return(nil, repositories.ErrNotFound).Once()
	assert.NoError(t, authService.Revoke("stale-token"))
	mockRepo.AssertExpectations(t)
}
