package repository

import (
	"context"
	"fmt"
	"time"

	"user-management-server/config"
	"user-management-server/internal/util"
)

// RateLimiter ограничивает частоту попыток входа по ключу (ip) в
// фиксированном окне на Redis: INCR + EXPIRE при первом обращении.
type RateLimiter struct {
	client *config.RedisClient
	limit  int
	window time.Duration
}

func NewRateLimiter(rdb *config.RedisClient, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: rdb, limit: limit, window: window}
}

// Allow возвращает false, когда лимит в текущем окне исчерпан.
// Ошибка Redis не блокирует вход: лимитер деградирует в разрешение.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("ratelimit:login:%s", key)

	count, err := l.client.Client.Incr(ctx, redisKey).Result()
	if err != nil {
		return true, util.LogError("ошибка инкремента лимитера в Redis", err)
	}

	if count == 1 {
		if err := l.client.Client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return true, util.LogError("ошибка установки TTL лимитера", err)
		}
	}

	return count <= int64(l.limit), nil
}
