package repository

import (
	"context"
	"fmt"
	"time"

	"user-management-server/config"
	"user-management-server/internal/util"
)

// RevocationRepository хранит jti отозванных refresh-токенов в Redis.
// TTL ключа равен оставшемуся сроку токена, поэтому записи исчезают
// ровно тогда, когда токен и так перестал бы приниматься.
type RevocationRepository struct {
	client *config.RedisClient
}

func NewRevocationRepository(rdb *config.RedisClient) *RevocationRepository {
	return &RevocationRepository{client: rdb}
}

// Revoke помечает токен отозванным. Повторный отзыв перезаписывает
// ключ с тем же результатом.
func (r *RevocationRepository) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := r.client.Client.Set(ctx, r.key(jti), "1", ttl).Err(); err != nil {
		return util.LogError("ошибка записи отзыва в Redis", err)
	}
	return nil
}

// IsRevoked проверяет, отозван ли токен
func (r *RevocationRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	exists, err := r.client.Client.Exists(ctx, r.key(jti)).Result()
	if err != nil {
		return false, util.LogError("ошибка чтения отзыва из Redis", err)
	}
	return exists > 0, nil
}

func (r *RevocationRepository) key(jti string) string {
	return fmt.Sprintf("revoked:%s", jti)
}
