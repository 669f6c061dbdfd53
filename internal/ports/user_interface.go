package ports

import (
	"context"
	"time"

	"user-management-server/internal/model"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	FindByUUID(ctx context.Context, uuid string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	EmailTaken(ctx context.Context, email string, excludeUUID string) (bool, error)
	UpdateProfile(ctx context.Context, uuid, fullName, email string) (*model.User, error)
	UpdatePassword(ctx context.Context, uuid, newPasswordHash string) error
	UpdateLastLogin(ctx context.Context, uuid string, at time.Time) error
	// UpdateStatusCAS меняет статус через compare-and-set по updated_at.
	// Возвращает false, если запись была изменена конкурентно.
	UpdateStatusCAS(ctx context.Context, uuid, status string, expectedUpdatedAt time.Time) (bool, error)
	ListUsers(ctx context.Context, filter model.UserFilter, offset, limit int) ([]*model.User, int, error)
}

type UserService interface {
	UpdateProfile(ctx context.Context, user *model.User, fullName, email string) (*model.User, error)
	ChangePassword(ctx context.Context, user *model.User, currentPassword, newPassword, confirmNewPassword string) error
}
