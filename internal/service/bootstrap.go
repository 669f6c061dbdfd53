package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"user-management-server/config"
	"user-management-server/internal/apperrors"
	"user-management-server/internal/model"
	"user-management-server/internal/ports"
	"user-management-server/internal/security"
	"user-management-server/internal/util"
)

// EnsureAdmin создаёт учётную запись администратора из конфигурации,
// если пользователя с таким email ещё нет. Вызывается при старте.
func EnsureAdmin(ctx context.Context, userRepository ports.UserRepository, cfg *config.AdminConfig) error {
	if cfg == nil || cfg.Email == "" {
		return nil
	}

	_, err := userRepository.FindByEmail(ctx, cfg.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	hash, err := security.HashPassword(cfg.Password)
	if err != nil {
		return util.LogError("не удалось создать хэш пароля администратора", err)
	}

	admin := &model.User{
		UUID:         uuid.New().String(),
		Email:        cfg.Email,
		FullName:     cfg.FullName,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Status:       model.StatusActive,
	}

	if _, err := userRepository.CreateUser(ctx, admin); err != nil {
		// конкурентный старт второго экземпляра мог успеть раньше
		if errors.Is(err, apperrors.ErrConflict) {
			return nil
		}
		return err
	}

	log.Printf("создана учётная запись администратора %s", cfg.Email)
	return nil
}
