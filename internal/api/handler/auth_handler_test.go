package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/handler"
	"reviewhub/internal/api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- MOCK SERVICE ---

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

// --- SETUP ---

func setupAuthRouter(mockService *MockAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.NewAuthHandler(mockService).RegisterRoutes(r.Group("/api/v1/auth"))
	return r
}

func postJSON(router *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// --- TESTS ---

func TestSendCode(t *testing.T) {
	mockService := new(MockAuthService)
	router := setupAuthRouter(mockService)

	mockService.On("SendCode", mock.Anything, "alice@example.com", "alice").Return(nil)

	w := postJSON(router, "/api/v1/auth/email",
		map[string]string{"email": "alice@example.com", "username": "alice"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.SendCodeResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alice@example.com", resp.Email)
	// The code itself never leaves over HTTP.
	assert.NotContains(t, w.Body.String(), "confirmation_code")
}

func TestSendCode_EmailInUse(t *testing.T) {
	mockService := new(MockAuthService)
	router := setupAuthRouter(mockService)

	mockService.On("SendCode", mock.Anything, "alice@example.com", "impostor").
		Return(service.ErrEmailInUse)

	w := postJSON(router, "/api/v1/auth/email",
		map[string]string{"email": "alice@example.com", "username": "impostor"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendCode_MailDown(t *testing.T) {
	mockService := new(MockAuthService)
	router := setupAuthRouter(mockService)

	mockService.On("SendCode", mock.Anything, "alice@example.com", "alice").
		Return(errors.Join(service.ErrEmailDelivery, errors.New("smtp timeout")))

	w := postJSON(router, "/api/v1/auth/email",
		map[string]string{"email": "alice@example.com", "username": "alice"})

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestIssueToken(t *testing.T) {
	mockService := new(MockAuthService)
	router := setupAuthRouter(mockService)

	mockService.On("IssueTokens", mock.Anything, "alice@example.com", "secret").
		Return("access-jwt", "refresh-uuid", nil)

	w := postJSON(router, "/api/v1/auth/token",
		map[string]string{"email": "alice@example.com", "confirmation_code": "secret"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.TokenResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "access-jwt", resp.Token)
	assert.Equal(t, "refresh-uuid", resp.RefreshToken)
}

func TestIssueToken_WrongCode(t *testing.T) {
	mockService := new(MockAuthService)
	router := setupAuthRouter(mockService)

	mockService.On("IssueTokens", mock.Anything, "alice@example.com", "wrong").
		Return("", "", service.ErrInvalidCode)

	w := postJSON(router, "/api/v1/auth/token",
		map[string]string{"email": "alice@example.com", "confirmation_code": "wrong"})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "confirmation_code")
}

func TestIssueToken_UnknownEmail(t *testing.T) {
	mockService := new(MockAuthService)
	router := setupAuthRouter(mockService)

	mockService.On("IssueTokens", mock.Anything, "ghost@example.com", "whatever").
		Return("", "", service.ErrUserNotFound)

	w := postJSON(router, "/api/v1/auth/token",
		map[string]string{"email": "ghost@example.com", "confirmation_code": "whatever"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRefresh(t *testing.T) {
	mockService := new(MockAuthService)
	router := setupAuthRouter(mockService)

	mockService.On("RefreshAccessToken", "refresh-uuid").Return("new-access-jwt", nil)

	w := postJSON(router, "/api/v1/auth/refresh",
		map[string]string{"refresh_token": "refresh-uuid"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.RefreshResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "new-access-jwt", resp.Token)
}

func TestRefresh_Invalid(t *testing.T) {
	mockService := new(MockAuthService)
	router := setupAuthRouter(mockService)

	mockService.On("RefreshAccessToken", "stale").Return("", service.ErrInvalidToken)

	w := postJSON(router, "/api/v1/auth/refresh",
		map[string]string{"refresh_token": "stale"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
