package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"user-management-server/internal/apperrors"
	"user-management-server/internal/model/requestresponse"
)

func writeSuccess(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(requestresponse.SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, statusCode int, message string, fieldErrors map[string][]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(requestresponse.ErrorResponse{
		Success: false,
		Message: message,
		Errors:  fieldErrors,
	})
}

// decodeJSON обрабатывает декодирование JSON и возвращает ответ об
// ошибке, если декодирование не удалось
func decodeJSON(w http.ResponseWriter, r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "некорректный JSON", nil)
		return err
	}
	return nil
}

// handleServiceError переводит доменную ошибку в HTTP-ответ.
// Ошибки токен-сервиса сюда не доходят: сервисы уже привели их
// к ErrUnauthenticated.
func handleServiceError(w http.ResponseWriter, err error) {
	if ve, ok := apperrors.AsValidation(err); ok {
		writeError(w, http.StatusBadRequest, "ошибка валидации", ve.Fields)
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials),
		errors.Is(err, apperrors.ErrAccountInactive):
		writeError(w, http.StatusUnauthorized, err.Error(), map[string][]string{
			"detail": {err.Error()},
		})
	case errors.Is(err, apperrors.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, apperrors.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, apperrors.ErrSelfAction):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, apperrors.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, apperrors.ErrConflict):
		writeError(w, http.StatusConflict, err.Error(), nil)
	default:
		log.Println(err)
		writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера", nil)
	}
}
