package ports

import (
	"context"

	"user-management-server/internal/model"
	"user-management-server/internal/security"
)

type TokenService interface {
	Issue(userUUID, role string) (*model.TokensPair, error)
	ValidateAccess(tokenStr string) (*security.Claims, error)
	Rotate(ctx context.Context, refreshTokenStr string) (*model.TokensPair, *security.Claims, error)
	Revoke(ctx context.Context, refreshTokenStr string) error
}
