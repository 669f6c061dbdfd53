package requestresponse

import "user-management-server/internal/model"

// SignupRequest : тело запроса регистрации
type SignupRequest struct {
	Email           string `json:"email" example:"user@example.com"`
	Password        string `json:"password" example:"P@ssw0rd123"`
	ConfirmPassword string `json:"confirm_password" example:"P@ssw0rd123"`
	FullName        string `json:"full_name" example:"Ivan Petrov"`
}

// LoginRequest : тело запроса на аутентификацию
type LoginRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"P@ssw0rd123"`
}

// LogoutRequest : тело запроса на завершение сессии
type LogoutRequest struct {
	Refresh string `json:"refresh" example:"eyJhbGciOiJIUzUxMiJ9..."`
}

// RefreshRequest : тело запроса на обновление пары токенов
type RefreshRequest struct {
	Refresh string `json:"refresh" example:"eyJhbGciOiJIUzUxMiJ9..."`
}

// AuthData : пользователь и пара токенов в успешном ответе
type AuthData struct {
	User   *model.User       `json:"user"`
	Tokens *model.TokensPair `json:"tokens"`
}

// UserData : пользователь в успешном ответе
type UserData struct {
	User *model.User `json:"user"`
}

// TokensData : пара токенов в успешном ответе
type TokensData struct {
	Tokens *model.TokensPair `json:"tokens"`
}
