package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"reviewhub/internal/api/models"
	"reviewhub/internal/api/service"
	"reviewhub/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// --- MOCK REPOSITORIES ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Save(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

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

type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(token *models.RefreshToken) error {
	args := m.Called(token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) FindByToken(tokenString string) (*models.RefreshToken, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) Revoke(tokenID string) error {
	args := m.Called(tokenID)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) Delete(tokenID string) error {
	args := m.Called(tokenID)
	return args.Error(0)
}

// captureSender records the last mail it was asked to send.
type captureSender struct {
	lastTo   string
	lastCode string
	err      error
}

func (s *captureSender) SendConfirmationCode(ctx context.Context, to, code string) error {
	s.lastTo = to
	s.lastCode = code
	return s.err
}

// --- SETUP ---

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:       "0123456789abcdef0123456789abcdef",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
}

func newAuthService(userRepo *MockUserRepository, tokenRepo *MockRefreshTokenRepository, sender *captureSender) service.AuthService {
	return service.NewAuthService(userRepo, tokenRepo, sender, testConfig())
}

// --- SEND CODE ---

func TestSendCode_RegistersNewUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokenRepo := new(MockRefreshTokenRepository)
	sender := &captureSender{}
	svc := newAuthService(userRepo, tokenRepo, sender)

	userRepo.On("FindByEmail", "new@example.com").Return(nil, gorm.ErrRecordNotFound)
	userRepo.On("FindByUsername", "newbie").Return(nil, gorm.ErrRecordNotFound)
	userRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil)

	var saved *models.User
	userRepo.On("Save", mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		saved = args.Get(0).(*models.User)
	}).Return(nil)

	err := svc.SendCode(context.Background(), "new@example.com", "newbie")
	assert.NoError(t, err)

	assert.Equal(t, "new@example.com", sender.lastTo)
	assert.NotEmpty(t, sender.lastCode)

	// Only a hash lands in storage, and it must verify against the
	// mailed code.
	assert.NotNil(t, saved)
	assert.NotEqual(t, sender.lastCode, saved.ConfirmationCode)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(saved.ConfirmationCode), []byte(sender.lastCode)))

	userRepo.AssertExpectations(t)
}

func TestSendCode_RepeatRegistrationSameUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	sender := &captureSender{}
	svc := newAuthService(userRepo, new(MockRefreshTokenRepository), sender)

	existing := &models.User{ID: "u1", Username: "alice", Email: "alice@example.com"}
	userRepo.On("FindByEmail", "alice@example.com").Return(existing, nil)
	userRepo.On("Save", existing).Return(nil)

	err := svc.SendCode(context.Background(), "alice@example.com", "alice")
	assert.NoError(t, err)
	assert.NotEmpty(t, sender.lastCode)
}

func TestSendCode_EmailOwnedByOtherUsername(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newAuthService(userRepo, new(MockRefreshTokenRepository), &captureSender{})

	existing := &models.User{ID: "u1", Username: "alice", Email: "alice@example.com"}
	userRepo.On("FindByEmail", "alice@example.com").Return(existing, nil)

	err := svc.SendCode(context.Background(), "alice@example.com", "impostor")
	assert.ErrorIs(t, err, service.ErrEmailInUse)
}

func TestSendCode_UsernameTaken(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newAuthService(userRepo, new(MockRefreshTokenRepository), &captureSender{})

	userRepo.On("FindByEmail", "other@example.com").Return(nil, gorm.ErrRecordNotFound)
	userRepo.On("FindByUsername", "alice").Return(&models.User{ID: "u1", Username: "alice"}, nil)

	err := svc.SendCode(context.Background(), "other@example.com", "alice")
	assert.ErrorIs(t, err, service.ErrNameInUse)
}

func TestSendCode_MailFailure(t *testing.T) {
	userRepo := new(MockUserRepository)
	sender := &captureSender{err: errors.New("smtp: connection refused")}
	svc := newAuthService(userRepo, new(MockRefreshTokenRepository), sender)

	existing := &models.User{ID: "u1", Username: "alice", Email: "alice@example.com"}
	userRepo.On("FindByEmail", "alice@example.com").Return(existing, nil)
	userRepo.On("Save", existing).Return(nil)

	err := svc.SendCode(context.Background(), "alice@example.com", "alice")
	assert.ErrorIs(t, err, service.ErrEmailDelivery)
}

// --- ISSUE TOKENS ---

func pendingUser(t *testing.T, code string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	assert.NoError(t, err)
	return &models.User{
		ID:               "u1",
		Username:         "alice",
		Email:            "alice@example.com",
		Role:             models.RoleUser,
		ConfirmationCode: string(hash),
	}
}

func TestIssueTokens_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokenRepo := new(MockRefreshTokenRepository)
	svc := newAuthService(userRepo, tokenRepo, &captureSender{})

	user := pendingUser(t, "topsecret")
	userRepo.On("FindByEmail", "alice@example.com").Return(user, nil)
	userRepo.On("Save", user).Return(nil)
	tokenRepo.On("Create", mock.AnythingOfType("*models.RefreshToken")).Return(nil)

	access, refresh, err := svc.IssueTokens(context.Background(), "alice@example.com", "topsecret")
	assert.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	// The code is single use.
	assert.Empty(t, user.ConfirmationCode)

	claims, err := svc.ValidateToken(access)
	assert.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, string(models.RoleUser), claims.Role)
}

func TestIssueTokens_WrongCode(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newAuthService(userRepo, new(MockRefreshTokenRepository), &captureSender{})

	userRepo.On("FindByEmail", "alice@example.com").Return(pendingUser(t, "topsecret"), nil)

	_, _, err := svc.IssueTokens(context.Background(), "alice@example.com", "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCode)
}

func TestIssueTokens_NoPendingCode(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newAuthService(userRepo, new(MockRefreshTokenRepository), &captureSender{})

	user := &models.User{ID: "u1", Username: "alice", Email: "alice@example.com"}
	userRepo.On("FindByEmail", "alice@example.com").Return(user, nil)

	_, _, err := svc.IssueTokens(context.Background(), "alice@example.com", "anything")
	assert.ErrorIs(t, err, service.ErrInvalidCode)
}

func TestIssueTokens_UnknownEmail(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newAuthService(userRepo, new(MockRefreshTokenRepository), &captureSender{})

	userRepo.On("FindByEmail", "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)

	_, _, err := svc.IssueTokens(context.Background(), "ghost@example.com", "anything")
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

// --- REFRESH ---

func TestRefreshAccessToken_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokenRepo := new(MockRefreshTokenRepository)
	svc := newAuthService(userRepo, tokenRepo, &captureSender{})

	tokenRepo.On("FindByToken", "refresh-token").Return(&models.RefreshToken{
		ID:        "t1",
		UserID:    "u1",
		Token:     "refresh-token",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)
	userRepo.On("FindByID", "u1").Return(&models.User{ID: "u1", Username: "alice", Role: models.RoleUser}, nil)

	access, err := svc.RefreshAccessToken("refresh-token")
	assert.NoError(t, err)

	claims, err := svc.ValidateToken(access)
	assert.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}

func TestRefreshAccessToken_Revoked(t *testing.T) {
	tokenRepo := new(MockRefreshTokenRepository)
	svc := newAuthService(new(MockUserRepository), tokenRepo, &captureSender{})

	tokenRepo.On("FindByToken", "refresh-token").Return(&models.RefreshToken{
		ID:        "t1",
		UserID:    "u1",
		Token:     "refresh-token",
		ExpiresAt: time.Now().Add(time.Hour),
		Revoked:   true,
	}, nil)

	_, err := svc.RefreshAccessToken("refresh-token")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestRefreshAccessToken_Expired(t *testing.T) {
	tokenRepo := new(MockRefreshTokenRepository)
	svc := newAuthService(new(MockUserRepository), tokenRepo, &captureSender{})

	tokenRepo.On("FindByToken", "refresh-token").Return(&models.RefreshToken{
		ID:        "t1",
		UserID:    "u1",
		Token:     "refresh-token",
		ExpiresAt: time.Now().Add(-time.Minute),
	}, nil)
	tokenRepo.On("Delete", "t1").Return(nil)

	_, err := svc.RefreshAccessToken("refresh-token")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
	tokenRepo.AssertCalled(t, "Delete", "t1")
}

func TestRefreshAccessToken_ExpiredCleanupFails(t *testing.T) {
	tokenRepo := new(MockRefreshTokenRepository)
	svc := newAuthService(new(MockUserRepository), tokenRepo, &captureSender{})

	tokenRepo.On("FindByToken", "refresh-token").Return(&models.RefreshToken{
		ID:        "t1",
		UserID:    "u1",
		Token:     "refresh-token",
		ExpiresAt: time.Now().Add(-time.Minute),
	}, nil)
	// A failed cleanup must not change the caller-visible outcome.
	tokenRepo.On("Delete", "t1").Return(errors.New("connection reset"))

	_, err := svc.RefreshAccessToken("refresh-token")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := newAuthService(new(MockUserRepository), new(MockRefreshTokenRepository), &captureSender{})

	_, err := svc.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}
