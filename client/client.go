package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"user-management-server/internal/model"
	"user-management-server/internal/model/requestresponse"
)

// Client держит сессию и выполняет запросы к API от её имени.
// Потокобезопасен; конкурентные 401 приводят к одному общему refresh,
// результат которого переиспользуют все ожидающие вызовы.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	storagePath string

	mu         sync.Mutex
	session    *Session
	state      State
	generation uint64

	// сериализует refresh: пока один вызов меняет пару, остальные ждут
	refreshMu sync.Mutex

	subscribers []func(State)
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func New(baseURL, storagePath string, opts ...Option) *Client {
	c := &Client{
		baseURL:     baseURL,
		httpClient:  http.DefaultClient,
		storagePath: storagePath,
		state:       StateUnauthenticated,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe регистрирует наблюдателя смены состояния.
// UI-слой подписывается вместо неявной привязки к полям клиента.
func (c *Client) Subscribe(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session возвращает копию текущей сессии или nil
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	copied := *c.session
	return &copied
}

// APIError : ошибка уровня API с картой ошибок полей
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string][]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// Restore восстанавливает сессию из хранилища и один раз сверяет её с
// сервером через /auth/me. Невалидное сохранённое состояние молча
// очищается, клиент остаётся в Unauthenticated.
func (c *Client) Restore(ctx context.Context) error {
	stored := loadSession(c.storagePath)
	if stored == nil {
		return nil
	}

	c.mu.Lock()
	c.session = stored
	c.generation++
	c.mu.Unlock()
	c.setState(StateAuthenticated)

	user, err := c.CurrentUser(ctx)
	if err != nil {
		// просроченное состояние - не ошибка запуска
		c.forceLogout()
		return nil
	}

	c.mu.Lock()
	c.session.User = user
	_ = saveSession(c.storagePath, c.session)
	c.mu.Unlock()

	return nil
}

// Signup регистрирует пользователя и сразу открывает сессию
func (c *Client) Signup(ctx context.Context, email, fullName, password, confirmPassword string) (*model.User, error) {
	c.setState(StateAuthenticating)

	body := requestresponse.SignupRequest{
		Email:           email,
		FullName:        fullName,
		Password:        password,
		ConfirmPassword: confirmPassword,
	}

	var data requestresponse.AuthData
	if err := c.call(ctx, http.MethodPost, "/auth/signup", body, "", &data); err != nil {
		c.setState(StateUnauthenticated)
		return nil, err
	}

	c.openSession(data.User, data.Tokens)
	return data.User, nil
}

// Login открывает сессию по email и паролю
func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	c.setState(StateAuthenticating)

	body := requestresponse.LoginRequest{Email: email, Password: password}

	var data requestresponse.AuthData
	if err := c.call(ctx, http.MethodPost, "/auth/login", body, "", &data); err != nil {
		c.setState(StateUnauthenticated)
		return nil, err
	}

	c.openSession(data.User, data.Tokens)
	return data.User, nil
}

// Logout отзывает refresh токен на сервере и очищает сессию.
// Локальное состояние очищается даже при сетевой ошибке.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session != nil && session.Tokens != nil {
		body := requestresponse.LogoutRequest{Refresh: session.Tokens.RefreshToken}
		_ = c.call(ctx, http.MethodPost, "/auth/logout", body, session.Tokens.AccessToken, nil)
	}

	c.forceLogout()
	return nil
}

// CurrentUser запрашивает актуальную запись пользователя
func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	var data requestresponse.UserData
	if err := c.Do(ctx, http.MethodGet, "/auth/me", nil, &data); err != nil {
		return nil, err
	}
	return data.User, nil
}

// Do выполняет авторизованный запрос. На первый 401 выполняется ровно
// один тихий refresh и ровно один повтор исходного запроса; повторный
// 401 терминален и принудительно завершает сессию.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	c.mu.Lock()
	if c.session == nil || c.session.Tokens == nil {
		c.mu.Unlock()
		return ErrSessionExpired
	}
	accessToken := c.session.Tokens.AccessToken
	generation := c.generation
	c.mu.Unlock()

	err := c.call(ctx, method, path, body, accessToken, out)
	apiErr, ok := err.(*APIError)
	if !ok || apiErr.StatusCode != http.StatusUnauthorized {
		return err
	}

	if err := c.refresh(ctx, generation); err != nil {
		return err
	}

	c.mu.Lock()
	if c.session == nil || c.session.Tokens == nil {
		c.mu.Unlock()
		return ErrSessionExpired
	}
	accessToken = c.session.Tokens.AccessToken
	c.mu.Unlock()

	err = c.call(ctx, method, path, body, accessToken, out)
	if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode == http.StatusUnauthorized {
		// второй 401 после успешного refresh: сессия не подлежит восстановлению
		c.forceLogout()
		return ErrSessionExpired
	}
	return err
}

// refresh обменивает refresh токен на новую пару. failedGeneration -
// номер пары, с которой вызов получил 401: если пара уже сменилась,
// другой вызов успел обновиться, и повторный rotate не нужен.
func (c *Client) refresh(ctx context.Context, failedGeneration uint64) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	c.mu.Lock()
	if c.session == nil || c.session.Tokens == nil {
		c.mu.Unlock()
		return ErrSessionExpired
	}
	if c.generation != failedGeneration {
		c.mu.Unlock()
		return nil
	}
	refreshToken := c.session.Tokens.RefreshToken
	c.mu.Unlock()

	c.setState(StateRefreshing)

	body := requestresponse.RefreshRequest{Refresh: refreshToken}

	var data requestresponse.TokensData
	if err := c.call(ctx, http.MethodPost, "/auth/token/refresh", body, "", &data); err != nil {
		// любая неудача refresh терминальна
		c.forceLogout()
		return ErrSessionExpired
	}

	c.mu.Lock()
	c.session.Tokens = data.Tokens
	c.generation++
	_ = saveSession(c.storagePath, c.session)
	c.mu.Unlock()
	c.setState(StateAuthenticated)

	return nil
}

func (c *Client) openSession(user *model.User, tokens *model.TokensPair) {
	c.mu.Lock()
	c.session = &Session{User: user, Tokens: tokens}
	c.generation++
	_ = saveSession(c.storagePath, c.session)
	c.mu.Unlock()
	c.setState(StateAuthenticated)
}

func (c *Client) forceLogout() {
	c.mu.Lock()
	c.session = nil
	clearSession(c.storagePath)
	c.mu.Unlock()
	c.setState(StateUnauthenticated)
}

func (c *Client) setState(state State) {
	c.mu.Lock()
	if c.state == state {
		c.mu.Unlock()
		return
	}
	c.state = state
	subscribers := make([]func(State), len(c.subscribers))
	copy(subscribers, c.subscribers)
	c.mu.Unlock()

	for _, fn := range subscribers {
		fn(state)
	}
}

// call выполняет один HTTP-запрос и раскрывает конверт ответа
func (c *Client) call(ctx context.Context, method, path string, body interface{}, accessToken string, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		request.Header.Set("Authorization", "Bearer "+accessToken)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode >= 400 {
		var errResp requestresponse.ErrorResponse
		_ = json.NewDecoder(response.Body).Decode(&errResp)
		return &APIError{
			StatusCode: response.StatusCode,
			Message:    errResp.Message,
			Fields:     errResp.Errors,
		}
	}

	if out == nil {
		return nil
	}

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(response.Body).Decode(&envelope); err != nil {
		return err
	}

	return json.Unmarshal(envelope.Data, out)
}
