package handler

import (
	"errors"
	"net/http"

	"user-management-server/internal/apperrors"
	"user-management-server/internal/metrics"
	"user-management-server/internal/model/requestresponse"
	"user-management-server/internal/ports"
	"user-management-server/internal/security"
)

type AuthenticationHandler struct {
	ports.AuthenticationService
	collector metrics.AuthCollector
}

func NewAuthenticationHandler(authenticationService ports.AuthenticationService, collector metrics.AuthCollector) *AuthenticationHandler {
	return &AuthenticationHandler{authenticationService, collector}
}

// Signup godoc
// @Summary Регистрация нового пользователя
// @Description Создаёт пользователя (role=user, status=active) и сразу выдаёт пару токенов
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.SignupRequest true "Тело запроса"
// @Success 201 {object} requestresponse.SuccessResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Ошибки валидации по полям, все сразу"
// @Router /auth/signup [post]
func (h *AuthenticationHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	user, tokens, err := h.AuthenticationService.Signup(r.Context(), req.Email, req.FullName, req.Password, req.ConfirmPassword)
	if err != nil {
		// дубликат email отдаётся как ошибка поля, в той же форме,
		// что и остальные ошибки валидации
		if errors.Is(err, apperrors.ErrConflict) {
			writeError(w, http.StatusBadRequest, "ошибка валидации", map[string][]string{
				"email": {"пользователь с таким email уже существует"},
			})
			return
		}
		handleServiceError(w, err)
		return
	}

	h.collector.RecordSignup()

	writeSuccess(w, http.StatusCreated, "пользователь зарегистрирован", requestresponse.AuthData{
		User:   user,
		Tokens: tokens,
	})
}

// Login godoc
// @Summary Аутентификация пользователя
// @Description Выдаёт пару токенов по email и паролю. Неизвестный email и неверный пароль дают одинаковый ответ.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.LoginRequest true "Тело запроса"
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /auth/login [post]
func (h *AuthenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "ошибка валидации", map[string][]string{
			"detail": {"email и пароль обязательны"},
		})
		return
	}

	user, tokens, err := h.AuthenticationService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.collector.RecordLoginFailure()
		handleServiceError(w, err)
		return
	}

	h.collector.RecordLoginSuccess()

	writeSuccess(w, http.StatusOK, "вход выполнен", requestresponse.AuthData{
		User:   user,
		Tokens: tokens,
	})
}

// Logout godoc
// @Summary Завершение сессии
// @Description Отзывает refresh токен. Ответ успешен всегда, даже если токен уже невалиден.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.LogoutRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthenticationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.LogoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	// отзыв по возможности: сервис не возвращает ошибок logout
	_ = h.AuthenticationService.Logout(r.Context(), req.Refresh)

	h.collector.RecordRevocation()

	writeSuccess(w, http.StatusOK, "сессия завершена", nil)
}

// Me godoc
// @Summary Текущий пользователь
// @Description Возвращает актуальную запись пользователя из БД, а не снимок из токена
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /auth/me [get]
func (h *AuthenticationHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := security.GetUserFromContext(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "данные пользователя получены", requestresponse.UserData{User: user})
}

// Refresh godoc
// @Summary Обновление пары токенов
// @Description Обменивает валидный refresh токен на новую пару. Отозванный или просроченный токен даёт 401.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.RefreshRequest true "Тело запроса"
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /auth/token/refresh [post]
func (h *AuthenticationHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	tokens, err := h.AuthenticationService.Refresh(r.Context(), req.Refresh)
	if err != nil {
		h.collector.RecordRefreshFailure()
		handleServiceError(w, err)
		return
	}

	h.collector.RecordRefreshSuccess()

	writeSuccess(w, http.StatusOK, "токены обновлены", requestresponse.TokensData{Tokens: tokens})
}
