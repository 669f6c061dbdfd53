package service

import (
	"context"
	"strings"

	"user-management-server/internal/apperrors"
	"user-management-server/internal/model"
	"user-management-server/internal/ports"
	"user-management-server/internal/security"
	"user-management-server/internal/util"
)

// UserService обслуживает самостоятельные операции пользователя
// над собственным профилем
type UserService struct {
	userRepository ports.UserRepository
}

func NewUserService(userRepository ports.UserRepository) *UserService {
	return &UserService{userRepository: userRepository}
}

// UpdateProfile обновляет имя и email. Уникальность email проверяется
// без учёта регистра, исключая собственную запись.
func (s *UserService) UpdateProfile(ctx context.Context, user *model.User, fullName, email string) (*model.User, error) {
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

	if !ve.HasErrors() && email != "" {
		taken, err := s.userRepository.EmailTaken(ctx, email, user.UUID)
		if err != nil {
			return nil, err
		}
		if taken {
			ve.Add("email", msgEmailTaken)
		}
	}

	if ve.HasErrors() {
		return nil, ve
	}

	return s.userRepository.UpdateProfile(ctx, user.UUID, fullName, email)
}

// ChangePassword меняет пароль после проверки текущего.
// Все ошибки полей возвращаются разом.
func (s *UserService) ChangePassword(ctx context.Context, user *model.User, currentPassword, newPassword, confirmNewPassword string) error {
	ve := &apperrors.ValidationError{}

	if currentPassword == "" {
		ve.Add("current_password", msgRequired)
	} else if !security.CheckPassword(currentPassword, user.PasswordHash) {
		ve.Add("current_password", "текущий пароль указан неверно")
	}

	if newPassword == "" {
		ve.Add("new_password", msgRequired)
	} else {
		for _, violation := range validatePasswordPolicy(newPassword) {
			ve.Add("new_password", violation)
		}
		if currentPassword != "" && newPassword == currentPassword {
			ve.Add("new_password", "новый пароль должен отличаться от текущего")
		}
	}

	if confirmNewPassword == "" {
		ve.Add("confirm_new_password", msgRequired)
	} else if newPassword != "" && newPassword != confirmNewPassword {
		ve.Add("confirm_new_password", msgPasswordsDiffer)
	}

	if ve.HasErrors() {
		return ve
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return util.LogError("[UserService] не удалось создать хэш пароля", err)
	}

	return s.userRepository.UpdatePassword(ctx, user.UUID, hash)
}
