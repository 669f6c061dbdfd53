package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"user-management-server/internal/apperrors"
	"user-management-server/internal/model"
	"user-management-server/internal/ports"
	"user-management-server/internal/security"
	"user-management-server/internal/util"
)

type AuthenticationService struct {
	userRepository ports.UserRepository
	tokenService   ports.TokenService
}

func NewAuthenticationService(
	userRepository ports.UserRepository,
	tokenService ports.TokenService,
) *AuthenticationService {
	return &AuthenticationService{
		userRepository: userRepository,
		tokenService:   tokenService,
	}
}

// Signup регистрирует нового пользователя.
// Порядок валидации: наличие полей, формат, затем кросс-полевые
// проверки; все ошибки полей возвращаются разом.
// Роль и статус задаются сервером: role=user, status=active.
func (s *AuthenticationService) Signup(ctx context.Context, email, fullName, password, confirmPassword string) (*model.User, *model.TokensPair, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	fullName = strings.TrimSpace(fullName)

	ve := &apperrors.ValidationError{}

	if email == "" {
		ve.Add("email", msgRequired)
	} else if !validEmail(email) {
		ve.Add("email", msgInvalidEmail)
	}

	if fullName == "" {
		ve.Add("full_name", msgRequired)
	} else if !validFullName(fullName) {
		ve.Add("full_name", msgShortFullName)
	}

	if password == "" {
		ve.Add("password", msgRequired)
	} else {
		for _, violation := range validatePasswordPolicy(password) {
			ve.Add("password", violation)
		}
	}

	if confirmPassword == "" {
		ve.Add("confirm_password", msgRequired)
	} else if password != "" && password != confirmPassword {
		ve.Add("confirm_password", msgPasswordsDiffer)
	}

	if ve.HasErrors() {
		return nil, nil, ve
	}

	taken, err := s.userRepository.EmailTaken(ctx, email, "")
	if err != nil {
		return nil, nil, err
	}
	if taken {
		return nil, nil, apperrors.ErrConflict
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, nil, util.LogError("[AuthService] не удалось создать хэш пароля", err)
	}

	user := &model.User{
		UUID:         uuid.New().String(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		Role:         model.RoleUser,
		Status:       model.StatusActive,
	}

	// уникальность email окончательно гарантирует индекс БД:
	// проигранная гонка вставки тоже вернёт ErrConflict
	created, err := s.userRepository.CreateUser(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	tokens, err := s.tokenService.Issue(created.UUID, created.Role)
	if err != nil {
		return nil, nil, util.LogError("[AuthService] ошибка генерации токенов", err)
	}

	return created, tokens, nil
}

// Login аутентифицирует пользователя по email и паролю.
// «Пользователь не найден» и «неверный пароль» дают одну и ту же
// ошибку, чтобы не раскрывать существование учётной записи.
func (s *AuthenticationService) Login(ctx context.Context, email, password string) (*model.User, *model.TokensPair, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepository.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsActive() {
		return nil, nil, apperrors.ErrAccountInactive
	}

	now := time.Now()
	if err := s.userRepository.UpdateLastLogin(ctx, user.UUID, now); err != nil {
		return nil, nil, err
	}
	user.LastLogin = &now

	tokens, err := s.tokenService.Issue(user.UUID, user.Role)
	if err != nil {
		return nil, nil, util.LogError("[AuthService] ошибка генерации токенов", err)
	}

	return user, tokens, nil
}

// Logout отзывает refresh токен. Отзыв выполняется по возможности:
// невалидный или просроченный токен не считается ошибкой, для
// вызывающей стороны logout всегда успешен.
func (s *AuthenticationService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.tokenService.Revoke(ctx, refreshToken); err != nil {
		log.Printf("[AuthService] отзыв токена при logout не удался: %v", err)
	}
	return nil
}

// CurrentUser валидирует access токен и перечитывает запись из БД,
// чтобы изменения роли и статуса действовали со следующего запроса
func (s *AuthenticationService) CurrentUser(ctx context.Context, accessToken string) (*model.User, error) {
	claims, err := s.tokenService.ValidateAccess(accessToken)
	if err != nil {
		return nil, apperrors.ErrUnauthenticated
	}

	user, err := s.userRepository.FindByUUID(ctx, claims.UserUUID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, err
	}

	if !user.IsActive() {
		return nil, apperrors.ErrUnauthenticated
	}

	return user, nil
}

// Refresh обменивает refresh токен на новую пару и дополнительно
// сверяет текущий статус пользователя: деактивированная запись не
// получает новых токенов, даже если refresh ещё криптографически валиден
func (s *AuthenticationService) Refresh(ctx context.Context, refreshToken string) (*model.TokensPair, error) {
	tokens, claims, err := s.tokenService.Rotate(ctx, refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidToken),
			errors.Is(err, apperrors.ErrExpiredToken),
			errors.Is(err, apperrors.ErrRevoked):
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, err
	}

	user, err := s.userRepository.FindByUUID(ctx, claims.UserUUID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, err
	}

	if !user.IsActive() {
		return nil, apperrors.ErrAccountInactive
	}

	return tokens, nil
}
