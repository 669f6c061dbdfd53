package security

import (
	"context"
	"net"
	"net/http"
)

// Limiter решает, пропустить ли очередную попытку для ключа
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// LoginRateLimit ограничивает частоту попыток входа по IP клиента.
// Ошибка лимитера не блокирует запрос.
func LoginRateLimit(limiter Limiter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			host, _, err := net.SplitHostPort(request.RemoteAddr)
			if err != nil {
				host = request.RemoteAddr
			}

			allowed, err := limiter.Allow(request.Context(), host)
			if err == nil && !allowed {
				writeAuthError(writer, http.StatusTooManyRequests, "слишком много попыток входа, повторите позже")
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
