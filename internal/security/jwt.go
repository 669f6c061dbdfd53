package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"user-management-server/config"
	"user-management-server/internal/apperrors"
	"user-management-server/internal/model"
	"user-management-server/internal/util"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type Claims struct {
	UserUUID  string `json:"user_uuid"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// RevocationStore хранит отозванные refresh-токены по их jti.
// Записи живут не дольше естественного срока токена.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type JWTService struct {
	cfg         *config.JWTConfig
	revocations RevocationStore
}

func NewJWTService(cfg *config.JWTConfig, revocations RevocationStore) *JWTService {
	return &JWTService{cfg: cfg, revocations: revocations}
}

// Issue выдаёт новую пару токенов. Оба токена подписаны HS512 и несут
// uuid пользователя, роль и тип; refresh дополнительно получает jti.
func (service *JWTService) Issue(userUUID, role string) (*model.TokensPair, error) {
	accessTTL, err := time.ParseDuration(service.cfg.AccessTokenTTL)
	if err != nil {
		return nil, util.LogError("ошибка парсинга access_token_ttl", err)
	}
	refreshTTL, err := time.ParseDuration(service.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, util.LogError("ошибка парсинга refresh_token_ttl", err)
	}

	now := time.Now()

	accessClaims := Claims{
		UserUUID:  userUUID,
		Role:      role,
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    service.cfg.Issuer,
		},
	}

	refreshClaims := Claims{
		UserUUID:  userUUID,
		Role:      role,
		TokenType: TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    service.cfg.Issuer,
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS512, accessClaims).SignedString([]byte(service.cfg.SecretKey))
	if err != nil {
		return nil, util.LogError("ошибка подписи access токена", err)
	}

	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS512, refreshClaims).SignedString([]byte(service.cfg.SecretKey))
	if err != nil {
		return nil, util.LogError("ошибка подписи refresh токена", err)
	}

	return &model.TokensPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ValidateAccess проверяет подпись и срок access токена
func (service *JWTService) ValidateAccess(tokenStr string) (*Claims, error) {
	claims, err := service.parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// Rotate обменивает валидный refresh токен на новую пару.
// Старый refresh при этом не отзывается: отзыв выполняет только logout.
func (service *JWTService) Rotate(ctx context.Context, refreshTokenStr string) (*model.TokensPair, *Claims, error) {
	claims, err := service.parseRefresh(refreshTokenStr)
	if err != nil {
		return nil, nil, err
	}

	revoked, err := service.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, util.LogError("ошибка проверки отзыва токена", err)
	}
	if revoked {
		return nil, nil, apperrors.ErrRevoked
	}

	pair, err := service.Issue(claims.UserUUID, claims.Role)
	if err != nil {
		return nil, nil, err
	}

	return pair, claims, nil
}

// Revoke записывает jti refresh токена в хранилище отозванных.
// Повторный отзыв уже отозванного токена не является ошибкой.
func (service *JWTService) Revoke(ctx context.Context, refreshTokenStr string) error {
	claims, err := service.parseRefresh(refreshTokenStr)
	if err != nil {
		return err
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		// токен и так уже не примется по сроку
		return nil
	}

	return service.revocations.Revoke(ctx, claims.ID, ttl)
}

func (service *JWTService) parseRefresh(tokenStr string) (*Claims, error) {
	claims, err := service.parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeRefresh || claims.ID == "" {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

func (service *JWTService) parse(tokenStr string) (*Claims, error) {
	var claims = &Claims{}

	jwtToken, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Header["alg"] != jwt.SigningMethodHS512.Alg() {
			return nil, fmt.Errorf("неверный способ подписи токена: %v", token.Header["alg"])
		}
		return []byte(service.cfg.SecretKey), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrExpiredToken
		}
		return nil, apperrors.ErrInvalidToken
	}
	if !jwtToken.Valid {
		return nil, apperrors.ErrInvalidToken
	}

	return claims, nil
}
