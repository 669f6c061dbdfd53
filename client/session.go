// Package client реализует клиентскую сторону жизненного цикла сессии:
// хранение пары токенов, подстановку bearer в запросы, один тихий
// refresh-and-retry на 401 и принудительный выход при его неудаче.
package client

import (
	"encoding/json"
	"errors"
	"os"

	"user-management-server/internal/model"
)

// State : состояние сессии.
// Unauthenticated -> Authenticating -> Authenticated -> {Refreshing} ->
// Authenticated | Unauthenticated
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	default:
		return "unauthenticated"
	}
}

// ErrSessionExpired возвращается, когда восстановить сессию не удалось
// и клиент перешёл в Unauthenticated. UI-слой по этому сигналу (или по
// уведомлению подписчика) уводит пользователя на вход.
var ErrSessionExpired = errors.New("сессия истекла, требуется повторный вход")

// Session : клиентская проекция {пользователь, токены}.
// Серверной сущности не соответствует.
type Session struct {
	User   *model.User       `json:"user"`
	Tokens *model.TokensPair `json:"tokens"`
}

// loadSession читает сохранённую сессию. Отсутствие файла или
// испорченное содержимое - не ошибка: сессии просто нет.
func loadSession(path string) *Session {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil
	}
	if session.Tokens == nil || session.Tokens.AccessToken == "" {
		return nil
	}

	return &session
}

func saveSession(path string, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func clearSession(path string) {
	_ = os.Remove(path)
}
