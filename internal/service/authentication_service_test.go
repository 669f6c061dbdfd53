package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"user-management-server/internal/apperrors"
	"user-management-server/internal/model"
	"user-management-server/internal/security"
	"user-management-server/internal/service"
)

// ===== MOCKS =====

// MockUserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByUUID(ctx context.Context, uuid string) (*model.User, error) {
	args := m.Called(ctx, uuid)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) EmailTaken(ctx context.Context, email string, excludeUUID string) (bool, error) {
	args := m.Called(ctx, email, excludeUUID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, uuid, fullName, email string) (*model.User, error) {
	args := m.Called(ctx, uuid, fullName, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, uuid, newPasswordHash string) error {
	args := m.Called(ctx, uuid, newPasswordHash)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, uuid string, at time.Time) error {
	args := m.Called(ctx, uuid, at)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateStatusCAS(ctx context.Context, uuid, status string, expectedUpdatedAt time.Time) (bool, error) {
	args := m.Called(ctx, uuid, status, expectedUpdatedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ListUsers(ctx context.Context, filter model.UserFilter, offset, limit int) ([]*model.User, int, error) {
	args := m.Called(ctx, filter, offset, limit)
	if users, ok := args.Get(0).([]*model.User); ok {
		return users, args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

// MockTokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Issue(userUUID, role string) (*model.TokensPair, error) {
	args := m.Called(userUUID, role)
	if tokens, ok := args.Get(0).(*model.TokensPair); ok {
		return tokens, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenService) ValidateAccess(tokenStr string) (*security.Claims, error) {
	args := m.Called(tokenStr)
	if claims, ok := args.Get(0).(*security.Claims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenService) Rotate(ctx context.Context, refreshTokenStr string) (*model.TokensPair, *security.Claims, error) {
	args := m.Called(ctx, refreshTokenStr)

	var tokens *model.TokensPair
	if t := args.Get(0); t != nil {
		tokens = t.(*model.TokensPair)
	}

	var claims *security.Claims
	if c := args.Get(1); c != nil {
		claims = c.(*security.Claims)
	}

	return tokens, claims, args.Error(2)
}

func (m *MockTokenService) Revoke(ctx context.Context, refreshTokenStr string) error {
	args := m.Called(ctx, refreshTokenStr)
	return args.Error(0)
}

// ===== HELPERS =====

func newTestAuthService() (*service.AuthenticationService, *MockUserRepository, *MockTokenService) {
	mockUserRepo := new(MockUserRepository)
	mockTokens := new(MockTokenService)

	svc := service.NewAuthenticationService(mockUserRepo, mockTokens)

	return svc, mockUserRepo, mockTokens
}

// ===== TESTS =====

func TestSignup_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name            string
		email           string
		fullName        string
		password        string
		confirmPassword string
		expectFields    []string
	}{
		{
			name:         "пустой запрос: ошибки по всем полям разом",
			expectFields: []string{"email", "full_name", "password", "confirm_password"},
		},
		{
			name:            "некорректный email",
			email:           "not-an-email",
			fullName:        "Иван Петров",
			password:        "Passw0rd!",
			confirmPassword: "Passw0rd!",
			expectFields:    []string{"email"},
		},
		{
			name:            "email без доменной зоны",
			email:           "user@host",
			fullName:        "Иван Петров",
			password:        "Passw0rd!",
			confirmPassword: "Passw0rd!",
			expectFields:    []string{"email"},
		},
		{
			name:            "имя из одного символа",
			email:           "user@example.com",
			fullName:        "И",
			password:        "Passw0rd!",
			confirmPassword: "Passw0rd!",
			expectFields:    []string{"full_name"},
		},
		{
			name:            "слабый пароль без цифр и спецсимволов",
			email:           "user@example.com",
			fullName:        "Иван Петров",
			password:        "password",
			confirmPassword: "password",
			expectFields:    []string{"password"},
		},
		{
			name:            "короткий пароль",
			email:           "user@example.com",
			fullName:        "Иван Петров",
			password:        "P0w!",
			confirmPassword: "P0w!",
			expectFields:    []string{"password"},
		},
		{
			name:            "пароли не совпадают",
			email:           "user@example.com",
			fullName:        "Иван Петров",
			password:        "Passw0rd!",
			confirmPassword: "Other0rd!",
			expectFields:    []string{"confirm_password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockUserRepo, _ := newTestAuthService()

			user, tokens, err := svc.Signup(ctx, tt.email, tt.fullName, tt.password, tt.confirmPassword)

			assert.Nil(t, user)
			assert.Nil(t, tokens)
			assert.Error(t, err)

			ve, ok := apperrors.AsValidation(err)
			assert.True(t, ok)
			for _, field := range tt.expectFields {
				assert.Contains(t, ve.Fields, field)
			}
			// до репозитория невалидный запрос не доходит
			mockUserRepo.AssertNotCalled(t, "EmailTaken")
			mockUserRepo.AssertNotCalled(t, "CreateUser")
		})
	}
}

func TestSignup_PasswordPolicyReportsAllViolations(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, _, err := svc.Signup(context.Background(), "user@example.com", "Иван Петров", "short", "short")

	ve, ok := apperrors.AsValidation(err)
	assert.True(t, ok)
	// короткий + без заглавных + без цифр + без спецсимволов
	assert.Len(t, ve.Fields["password"], 4)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, mockUserRepo, _ := newTestAuthService()
	ctx := context.Background()

	mockUserRepo.On("EmailTaken", ctx, "user@example.com", "").Return(true, nil)

	user, tokens, err := svc.Signup(ctx, "user@example.com", "Иван Петров", "Passw0rd!", "Passw0rd!")

	assert.Nil(t, user)
	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	mockUserRepo.AssertExpectations(t)
}

func TestSignup_Success(t *testing.T) {
	svc, mockUserRepo, mockTokens := newTestAuthService()
	ctx := context.Background()

	mockUserRepo.On("EmailTaken", ctx, "user@example.com", "").Return(false, nil)
	mockUserRepo.On("CreateUser", ctx, mock.Anything).
		Run(func(args mock.Arguments) {
			created := args.Get(1).(*model.User)
			// роль и статус назначает сервер, клиентский ввод их не задаёт
			assert.Equal(t, model.RoleUser, created.Role)
			assert.Equal(t, model.StatusActive, created.Status)
			assert.NotEmpty(t, created.UUID)
			assert.NotEqual(t, "Passw0rd!", created.PasswordHash)
		}).
		Return(&model.User{UUID: "u1", Email: "user@example.com", Role: model.RoleUser, Status: model.StatusActive}, nil)
	mockTokens.On("Issue", "u1", model.RoleUser).
		Return(&model.TokensPair{AccessToken: "acc", RefreshToken: "ref"}, nil)

	// email нормализуется к нижнему регистру до проверки уникальности
	user, tokens, err := svc.Signup(ctx, "  User@Example.COM ", "Иван Петров", "Passw0rd!", "Passw0rd!")

	assert.NoError(t, err)
	assert.Equal(t, "u1", user.UUID)
	assert.Equal(t, "acc", tokens.AccessToken)
	mockUserRepo.AssertExpectations(t)
	mockTokens.AssertExpectations(t)
}

func TestLogin_UnknownEmailAndWrongPasswordIndistinguishable(t *testing.T) {
	ctx := context.Background()

	hash, err := security.HashPassword("Passw0rd!")
	assert.NoError(t, err)

	// неизвестный email
	svc1, repo1, _ := newTestAuthService()
	repo1.On("FindByEmail", ctx, "ghost@example.com").Return(nil, apperrors.ErrNotFound)
	_, _, errUnknown := svc1.Login(ctx, "ghost@example.com", "Passw0rd!")

	// неверный пароль
	svc2, repo2, _ := newTestAuthService()
	repo2.On("FindByEmail", ctx, "user@example.com").
		Return(&model.User{UUID: "u1", PasswordHash: hash, Status: model.StatusActive}, nil)
	_, _, errWrong := svc2.Login(ctx, "user@example.com", "badpass")

	assert.ErrorIs(t, errUnknown, apperrors.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, apperrors.ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestLogin_InactiveAccount(t *testing.T) {
	svc, mockUserRepo, _ := newTestAuthService()
	ctx := context.Background()

	hash, _ := security.HashPassword("Passw0rd!")
	mockUserRepo.On("FindByEmail", ctx, "user@example.com").
		Return(&model.User{UUID: "u1", PasswordHash: hash, Status: model.StatusInactive}, nil)

	user, tokens, err := svc.Login(ctx, "user@example.com", "Passw0rd!")

	assert.Nil(t, user)
	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, apperrors.ErrAccountInactive)
}

func TestLogin_Success(t *testing.T) {
	svc, mockUserRepo, mockTokens := newTestAuthService()
	ctx := context.Background()

	hash, _ := security.HashPassword("Passw0rd!")
	user := &model.User{UUID: "u1", Email: "user@example.com", PasswordHash: hash, Role: model.RoleUser, Status: model.StatusActive}

	mockUserRepo.On("FindByEmail", ctx, "user@example.com").Return(user, nil)
	mockUserRepo.On("UpdateLastLogin", ctx, "u1", mock.Anything).Return(nil)
	mockTokens.On("Issue", "u1", model.RoleUser).
		Return(&model.TokensPair{AccessToken: "acc", RefreshToken: "ref"}, nil)

	result, tokens, err := svc.Login(ctx, "User@Example.com", "Passw0rd!")

	assert.NoError(t, err)
	assert.Equal(t, "u1", result.UUID)
	assert.NotNil(t, result.LastLogin)
	assert.Equal(t, "ref", tokens.RefreshToken)
	mockUserRepo.AssertExpectations(t)
	mockTokens.AssertExpectations(t)
}

func TestLogout_AlwaysSucceeds(t *testing.T) {
	svc, _, mockTokens := newTestAuthService()
	ctx := context.Background()

	mockTokens.On("Revoke", ctx, "broken-token").Return(apperrors.ErrInvalidToken)

	err := svc.Logout(ctx, "broken-token")

	assert.NoError(t, err)
	mockTokens.AssertExpectations(t)
}

func TestCurrentUser_InactiveRejected(t *testing.T) {
	svc, mockUserRepo, mockTokens := newTestAuthService()
	ctx := context.Background()

	mockTokens.On("ValidateAccess", "token").
		Return(&security.Claims{UserUUID: "u1"}, nil)
	mockUserRepo.On("FindByUUID", ctx, "u1").
		Return(&model.User{UUID: "u1", Status: model.StatusInactive}, nil)

	user, err := svc.CurrentUser(ctx, "token")

	assert.Nil(t, user)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestRefresh_RevokedToken(t *testing.T) {
	svc, _, mockTokens := newTestAuthService()
	ctx := context.Background()

	mockTokens.On("Rotate", ctx, "revoked").Return(nil, nil, apperrors.ErrRevoked)

	tokens, err := svc.Refresh(ctx, "revoked")

	assert.Nil(t, tokens)
	// наружу уходит единая ошибка авторизации, без деталей причины
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestRefresh_InactiveUser(t *testing.T) {
	svc, mockUserRepo, mockTokens := newTestAuthService()
	ctx := context.Background()

	mockTokens.On("Rotate", ctx, "ref").Return(
		&model.TokensPair{AccessToken: "acc2", RefreshToken: "ref2"},
		&security.Claims{UserUUID: "u1"},
		nil,
	)
	mockUserRepo.On("FindByUUID", ctx, "u1").
		Return(&model.User{UUID: "u1", Status: model.StatusInactive}, nil)

	tokens, err := svc.Refresh(ctx, "ref")

	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, apperrors.ErrAccountInactive)
}

func TestRefresh_Success(t *testing.T) {
	svc, mockUserRepo, mockTokens := newTestAuthService()
	ctx := context.Background()

	pair := &model.TokensPair{AccessToken: "acc2", RefreshToken: "ref2"}
	mockTokens.On("Rotate", ctx, "ref").Return(pair, &security.Claims{UserUUID: "u1"}, nil)
	mockUserRepo.On("FindByUUID", ctx, "u1").
		Return(&model.User{UUID: "u1", Status: model.StatusActive}, nil)

	tokens, err := svc.Refresh(ctx, "ref")

	assert.NoError(t, err)
	assert.Equal(t, pair, tokens)

	repoErr := errors.New("db down")
	mockUserRepo.ExpectedCalls = nil
	mockUserRepo.On("FindByUUID", ctx, "u1").Return(nil, repoErr)

	tokens, err = svc.Refresh(ctx, "ref")
	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, repoErr)
}
