package service

import (
	"context"

	"user-management-server/internal/apperrors"
	"user-management-server/internal/model"
	"user-management-server/internal/ports"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// AdminService обслуживает административные операции над
// пользователями. RBAC-проверку роли выполняет middleware,
// сюда запросы попадают уже от администратора.
type AdminService struct {
	userRepository ports.UserRepository
}

func NewAdminService(userRepository ports.UserRepository) *AdminService {
	return &AdminService{userRepository: userRepository}
}

// ListUsers возвращает страницу пользователей и общее количество.
// Страницы нумеруются с единицы; страница за пределами выборки - это
// пустой список с корректным totalCount, а не ошибка.
func (s *AdminService) ListUsers(ctx context.Context, page, pageSize int, filter model.UserFilter) ([]*model.User, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	offset := (page - 1) * pageSize

	return s.userRepository.ListUsers(ctx, filter, offset, pageSize)
}

func (s *AdminService) GetUser(ctx context.Context, uuid string) (*model.User, error) {
	return s.userRepository.FindByUUID(ctx, uuid)
}

// Activate переводит пользователя в статус active.
// Активация уже активного пользователя успешна и ничего не меняет.
func (s *AdminService) Activate(ctx context.Context, caller *model.User, targetUUID string) (*model.User, error) {
	return s.setStatus(ctx, caller, targetUUID, model.StatusActive)
}

// Deactivate переводит пользователя в статус inactive.
// Администратор не может деактивировать собственную учётную запись.
// Смена статуса действует на авторизацию немедленно: middleware читает
// статус из БД при каждом запросе.
func (s *AdminService) Deactivate(ctx context.Context, caller *model.User, targetUUID string) (*model.User, error) {
	if caller.UUID == targetUUID {
		return nil, apperrors.ErrSelfAction
	}
	return s.setStatus(ctx, caller, targetUUID, model.StatusInactive)
}

func (s *AdminService) setStatus(ctx context.Context, caller *model.User, targetUUID, status string) (*model.User, error) {
	target, err := s.userRepository.FindByUUID(ctx, targetUUID)
	if err != nil {
		return nil, err
	}

	if target.Status == status {
		return target, nil
	}

	// compare-and-set по updated_at: конкурентное изменение записи
	// не теряется молча, а возвращает конфликт
	applied, err := s.userRepository.UpdateStatusCAS(ctx, target.UUID, status, target.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, apperrors.ErrConflict
	}

	return s.userRepository.FindByUUID(ctx, targetUUID)
}
