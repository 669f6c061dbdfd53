// Package apperrors определяет ошибки доменного уровня.
// Слои auth/rbac/admin приводят все низкоуровневые ошибки токенов к
// ErrUnauthenticated/ErrForbidden до выхода на транспортный уровень.
package apperrors

import "errors"

var (
	// ErrInvalidCredentials : неверный email или пароль.
	// Одна и та же ошибка для «пользователь не найден» и «неверный пароль»,
	// чтобы не раскрывать существование учётной записи.
	ErrInvalidCredentials = errors.New("неверный email или пароль")

	// ErrAccountInactive : учётная запись деактивирована администратором
	ErrAccountInactive = errors.New("учётная запись деактивирована")

	// ErrUnauthenticated : токен отсутствует, невалиден или просрочен
	ErrUnauthenticated = errors.New("пользователь не авторизован")

	// ErrForbidden : недостаточно прав (требуется роль admin)
	ErrForbidden = errors.New("доступ запрещён")

	// ErrSelfAction : администратор попытался применить операцию к себе
	ErrSelfAction = errors.New("операция над собственной учётной записью запрещена")

	// ErrConflict : нарушение уникальности (дубликат email) или проигранная
	// гонка compare-and-set при смене статуса
	ErrConflict = errors.New("конфликт изменения данных")

	// ErrNotFound : целевой пользователь не найден
	ErrNotFound = errors.New("пользователь не найден")

	// Ошибки уровня токен-сервиса. Наружу не выходят: сервисы
	// классифицируют их в ErrUnauthenticated.
	ErrInvalidToken = errors.New("невалидный токен")
	ErrExpiredToken = errors.New("токен просрочен")
	ErrRevoked      = errors.New("токен отозван")
)

// ValidationError : ошибки валидации полей, все сразу (не fail-fast),
// чтобы вызывающая сторона могла отрисовать полную карту ошибок.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return "ошибка валидации"
}

// Add добавляет сообщение к полю
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// HasErrors сообщает, накоплена ли хотя бы одна ошибка
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// AsValidation возвращает *ValidationError, если err им является
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
