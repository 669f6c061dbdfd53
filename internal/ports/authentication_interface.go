package ports

import (
	"context"

	"user-management-server/internal/model"
)

type AuthenticationService interface {
	Signup(ctx context.Context, email, fullName, password, confirmPassword string) (*model.User, *model.TokensPair, error)
	Login(ctx context.Context, email, password string) (*model.User, *model.TokensPair, error)
	Logout(ctx context.Context, refreshToken string) error
	CurrentUser(ctx context.Context, accessToken string) (*model.User, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokensPair, error)
}
