package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"reviewhub/internal/api/middleware"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// --- MOCKS ---

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) SendCode(ctx context.Context, emailAddr, username string) error {
	args := m.Called(ctx, emailAddr, username)
	return args.Error(0)
}

func (m *MockAuthService) IssueTokens(ctx context.Context, emailAddr, code string) (string, string, error) {
	args := m.Called(ctx, emailAddr, code)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockAuthService) RefreshAccessToken(refreshToken string) (string, error) {
	args := m.Called(refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error { return m.Called(user).Error(0) }
func (m *MockUserRepository) Save(user *models.User) error   { return m.Called(user).Error(0) }
func (m *MockUserRepository) Delete(user *models.User) error { return m.Called(user).Error(0) }

func (m *MockUserRepository) FindByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(page, pageSize int) ([]models.User, int64, error) {
	args := m.Called(page, pageSize)
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

// --- SETUP ---

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// asUser simulates an upstream Authenticate that resolved the caller.
func asUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("currentUser", user)
		c.Next()
	}
}

func do(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// --- AUTHENTICATE ---

func TestAuthenticate_NoHeaderStaysAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	authService := new(MockAuthService)
	userRepo := new(MockUserRepository)

	r := gin.New()
	r.Use(middleware.Authenticate(authService, userRepo))
	r.GET("/ping", func(c *gin.Context) {
		assert.Nil(t, middleware.CurrentUser(c))
		c.Status(http.StatusOK)
	})

	w := do(r, http.MethodGet, "/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	authService.AssertNotCalled(t, "ValidateToken")
}

func TestAuthenticate_ValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	authService := new(MockAuthService)
	userRepo := new(MockUserRepository)

	user := &models.User{ID: "u1", Username: "alice", Role: models.RoleUser}
	authService.On("ValidateToken", "good-token").Return(&service.Claims{UserID: "u1"}, nil)
	userRepo.On("FindByID", "u1").Return(user, nil)

	r := gin.New()
	r.Use(middleware.Authenticate(authService, userRepo))
	r.GET("/ping", func(c *gin.Context) {
		got := middleware.CurrentUser(c)
		assert.NotNil(t, got)
		assert.Equal(t, "alice", got.Username)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticate_BadToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	authService := new(MockAuthService)
	userRepo := new(MockUserRepository)

	authService.On("ValidateToken", "bad-token").Return(nil, service.ErrInvalidToken)

	r := gin.New()
	r.Use(middleware.Authenticate(authService, userRepo))
	r.GET("/ping", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_DeletedUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	authService := new(MockAuthService)
	userRepo := new(MockUserRepository)

	authService.On("ValidateToken", "stale-token").Return(&service.Claims{UserID: "gone"}, nil)
	userRepo.On("FindByID", "gone").Return(nil, gorm.ErrRecordNotFound)

	r := gin.New()
	r.Use(middleware.Authenticate(authService, userRepo))
	r.GET("/ping", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer stale-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- REQUIRE AUTH ---

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	anon := gin.New()
	anon.GET("/x", middleware.RequireAuth(), okHandler)
	assert.Equal(t, http.StatusUnauthorized, do(anon, http.MethodGet, "/x").Code)

	authed := gin.New()
	authed.Use(asUser(&models.User{ID: "u1", Role: models.RoleUser}))
	authed.GET("/x", middleware.RequireAuth(), okHandler)
	assert.Equal(t, http.StatusOK, do(authed, http.MethodGet, "/x").Code)
}

// --- ADMIN GATES ---

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	anon := gin.New()
	anon.GET("/x", middleware.RequireAdmin(), okHandler)
	assert.Equal(t, http.StatusUnauthorized, do(anon, http.MethodGet, "/x").Code)

	plain := gin.New()
	plain.Use(asUser(&models.User{ID: "u1", Role: models.RoleUser}))
	plain.GET("/x", middleware.RequireAdmin(), okHandler)
	assert.Equal(t, http.StatusForbidden, do(plain, http.MethodGet, "/x").Code)

	// Moderators do not clear the admin gate.
	moderator := gin.New()
	moderator.Use(asUser(&models.User{ID: "m1", Role: models.RoleModerator}))
	moderator.GET("/x", middleware.RequireAdmin(), okHandler)
	assert.Equal(t, http.StatusForbidden, do(moderator, http.MethodGet, "/x").Code)

	admin := gin.New()
	admin.Use(asUser(&models.User{ID: "a1", Role: models.RoleAdmin}))
	admin.GET("/x", middleware.RequireAdmin(), okHandler)
	assert.Equal(t, http.StatusOK, do(admin, http.MethodGet, "/x").Code)
}

func TestAdminOrReadOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)

	build := func(user *models.User) *gin.Engine {
		r := gin.New()
		if user != nil {
			r.Use(asUser(user))
		}
		r.Use(middleware.AdminOrReadOnly())
		r.GET("/x", okHandler)
		r.POST("/x", okHandler)
		return r
	}

	anon := build(nil)
	assert.Equal(t, http.StatusOK, do(anon, http.MethodGet, "/x").Code)
	assert.Equal(t, http.StatusUnauthorized, do(anon, http.MethodPost, "/x").Code)

	plain := build(&models.User{ID: "u1", Role: models.RoleUser})
	assert.Equal(t, http.StatusOK, do(plain, http.MethodGet, "/x").Code)
	assert.Equal(t, http.StatusForbidden, do(plain, http.MethodPost, "/x").Code)

	admin := build(&models.User{ID: "a1", Role: models.RoleAdmin})
	assert.Equal(t, http.StatusOK, do(admin, http.MethodGet, "/x").Code)
	assert.Equal(t, http.StatusOK, do(admin, http.MethodPost, "/x").Code)
}
