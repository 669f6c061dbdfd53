package ports

import (
	"context"

	"user-management-server/internal/model"
)

type AdminService interface {
	ListUsers(ctx context.Context, page, pageSize int, filter model.UserFilter) ([]*model.User, int, error)
	GetUser(ctx context.Context, uuid string) (*model.User, error)
	Activate(ctx context.Context, caller *model.User, targetUUID string) (*model.User, error)
	Deactivate(ctx context.Context, caller *model.User, targetUUID string) (*model.User, error)
}
