package security

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"user-management-server/internal/apperrors"
	"user-management-server/internal/model"
	"user-management-server/internal/model/requestresponse"
)

type contextKey string

const (
	UserContextKey contextKey = "user"
)

// UserFinder загружает актуальную запись пользователя.
// Статус берётся из БД, а не из снимка в токене: деактивированный
// пользователь теряет доступ сразу, даже с непросроченным токеном.
type UserFinder interface {
	FindByUUID(ctx context.Context, uuid string) (*model.User, error)
}

// Authenticate проверяет bearer access токен и кладёт живую запись
// пользователя в контекст запроса
func Authenticate(jwtService *JWTService, users UserFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authorizationHeader := request.Header.Get("Authorization")
			if !strings.HasPrefix(authorizationHeader, "Bearer ") {
				writeAuthError(writer, http.StatusUnauthorized, apperrors.ErrUnauthenticated.Error())
				return
			}

			token := strings.TrimPrefix(authorizationHeader, "Bearer ")

			claims, err := jwtService.ValidateAccess(token)
			if err != nil {
				log.Printf("невалидный access токен: %v", err)
				writeAuthError(writer, http.StatusUnauthorized, apperrors.ErrUnauthenticated.Error())
				return
			}

			user, err := users.FindByUUID(request.Context(), claims.UserUUID)
			if err != nil {
				// отсутствие пользователя - проблема сессии, всё
				// остальное (обрыв БД, таймаут) - проблема сервера
				if errors.Is(err, apperrors.ErrNotFound) {
					log.Printf("пользователь из токена не найден: %v", err)
					writeAuthError(writer, http.StatusUnauthorized, apperrors.ErrUnauthenticated.Error())
					return
				}
				log.Printf("не удалось загрузить пользователя из токена: %v", err)
				writeAuthError(writer, http.StatusInternalServerError, "внутренняя ошибка сервера")
				return
			}

			if !user.IsActive() {
				writeAuthError(writer, http.StatusUnauthorized, apperrors.ErrAccountInactive.Error())
				return
			}

			req := request.WithContext(context.WithValue(request.Context(), UserContextKey, user))
			next.ServeHTTP(writer, req)
		})
	}
}

// RequireAdmin пропускает только пользователей с ролью admin.
// Должен стоять после Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		user, err := GetUserFromContext(request.Context())
		if err != nil {
			writeAuthError(writer, http.StatusUnauthorized, apperrors.ErrUnauthenticated.Error())
			return
		}

		if !user.IsAdmin() {
			writeAuthError(writer, http.StatusForbidden, apperrors.ErrForbidden.Error())
			return
		}

		next.ServeHTTP(writer, request)
	})
}

func GetUserFromContext(ctx context.Context) (*model.User, error) {
	user, ok := ctx.Value(UserContextKey).(*model.User)
	if !ok || user == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	return user, nil
}

func writeAuthError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(requestresponse.ErrorResponse{
		Success: false,
		Message: message,
	})
}
