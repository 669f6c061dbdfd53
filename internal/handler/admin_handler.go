package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"user-management-server/internal/model"
	"user-management-server/internal/model/requestresponse"
	"user-management-server/internal/ports"
	"user-management-server/internal/security"
)

type AdminHandler struct {
	ports.AdminService
}

func NewAdminHandler(adminService ports.AdminService) *AdminHandler {
	return &AdminHandler{adminService}
}

// ListUsers godoc
// @Summary Список пользователей
// @Description Постраничный список с фильтрами по статусу и роли и поиском по имени или email (подстрока, без учёта регистра). Фильтры объединяются по AND.
// @Tags Admin
// @Produce json
// @Param page query int false "Номер страницы (с 1)" default(1)
// @Param page_size query int false "Размер страницы" default(10) maximum(100)
// @Param status query string false "active или inactive"
// @Param role query string false "user или admin"
// @Param search query string false "Подстрока имени или email"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := 1
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	pageSize := 0
	if sizeStr := query.Get("page_size"); sizeStr != "" {
		if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 {
			pageSize = s
		}
	}

	filter := model.UserFilter{
		Status: query.Get("status"),
		Role:   query.Get("role"),
		Search: query.Get("search"),
	}

	users, total, err := h.AdminService.ListUsers(r.Context(), page, pageSize, filter)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "список пользователей получен", requestresponse.UserListData{
		Count: total,
		Users: users,
	})
}

// GetUser godoc
// @Summary Данные пользователя
// @Tags Admin
// @Produce json
// @Param uuid path string true "UUID пользователя"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /admin/users/{uuid} [get]
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.AdminService.GetUser(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "пользователь получен", requestresponse.UserData{User: user})
}

// Activate godoc
// @Summary Активация учётной записи
// @Description Идемпотентна: активация уже активного пользователя успешна
// @Tags Admin
// @Produce json
// @Param uuid path string true "UUID пользователя"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /admin/users/{uuid}/activate [post]
func (h *AdminHandler) Activate(w http.ResponseWriter, r *http.Request) {
	caller, err := security.GetUserFromContext(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	user, err := h.AdminService.Activate(r.Context(), caller, chi.URLParam(r, "uuid"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "пользователь активирован", requestresponse.UserData{User: user})
}

// Deactivate godoc
// @Summary Деактивация учётной записи
// @Description Собственную учётную запись деактивировать нельзя. Статус действует на авторизацию немедленно.
// @Tags Admin
// @Produce json
// @Param uuid path string true "UUID пользователя"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /admin/users/{uuid}/deactivate [post]
func (h *AdminHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	caller, err := security.GetUserFromContext(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	user, err := h.AdminService.Deactivate(r.Context(), caller, chi.URLParam(r, "uuid"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "пользователь деактивирован", requestresponse.UserData{User: user})
}
