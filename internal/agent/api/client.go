// Package api содержит HTTP-клиент для REST API трекера расходов.
//
// Клиент хранит базовый URL (вместе с префиксом, например /api/v1) и настроенный
// http.Client, отправляет JSON-запросы с bearer-токеном и разбирает единый
// формат ошибок сервера в *APIError.
//
// Особенности:
//   - baseURL нормализуется (обрезаются завершающие "/").
//   - Всегда добавляется заголовок Accept: application/json.
//   - Content-Type: application/json ставится только при наличии тела запроса.
//   - 204 No Content и пустое тело ответа считаются успехом.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	serr "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/errors"
	sharedModels "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/models"
)

// DefaultServerURL — адрес API по умолчанию.
const DefaultServerURL = "http://127.0.0.1:8080/api/v1"

const defaultTimeout = 10 * time.Second

// APIError — ответ сервера со статусом вне диапазона 2xx.
//
// Message и Errors берутся из тела {"message": ..., "errors": [...]}. Если тело
// не JSON, в Message попадает его текст или строка статуса.
type APIError struct {
	StatusCode int
	Message    string
	Errors     []sharedModels.FieldError
	// RetryAfter заполняется для 429 из заголовка Retry-After.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// Unwrap сопоставляет статус общей ошибке, чтобы вызывающий код мог
// использовать errors.Is(err, serr.ErrUnauthorized) и т.п.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return serr.ErrInvalidInput
	case http.StatusUnauthorized:
		return serr.ErrUnauthorized
	case http.StatusForbidden:
		return serr.ErrForbidden
	case http.StatusNotFound:
		return serr.ErrNotFound
	case http.StatusConflict:
		return serr.ErrAlreadyExists
	case http.StatusTooManyRequests:
		return serr.ErrTooManyRequests
	}
	if e.StatusCode >= http.StatusInternalServerError {
		return serr.ErrInternal
	}
	return nil
}

// Client реализует HTTP-клиент трекера расходов.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет http.Client целиком (используется в тестах).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout задаёт общий таймаут запроса.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithInsecureTLS отключает проверку сертификата сервера.
//
// ВНИМАНИЕ: только для локальной разработки с самоподписанным сертификатом.
func WithInsecureTLS() Option {
	return func(c *Client) {
		c.http.Transport = &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		}
	}
}

// NewClient создаёт клиент для baseURL (например "http://127.0.0.1:8080/api/v1").
// Пустой baseURL заменяется на DefaultServerURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultServerURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL возвращает нормализованный базовый адрес.
func (c *Client) BaseURL() string { return c.baseURL }

// PostJSON выполняет POST path с телом req и декодирует ответ в resp.
func (c *Client) PostJSON(ctx context.Context, path string, req, resp any, authToken string) error {
	return c.do(ctx, http.MethodPost, path, req, resp, authToken)
}

// GetJSON выполняет GET path и декодирует ответ в resp.
func (c *Client) GetJSON(ctx context.Context, path string, resp any, authToken string) error {
	return c.do(ctx, http.MethodGet, path, nil, resp, authToken)
}

// PutJSON выполняет PUT path с телом req и декодирует ответ в resp.
func (c *Client) PutJSON(ctx context.Context, path string, req, resp any, authToken string) error {
	return c.do(ctx, http.MethodPut, path, req, resp, authToken)
}

// DeleteJSON выполняет DELETE path и декодирует ответ в resp.
func (c *Client) DeleteJSON(ctx context.Context, path string, resp any, authToken string) error {
	return c.do(ctx, http.MethodDelete, path, nil, resp, authToken)
}

// do — общий путь для всех методов.
//
// Обработка ответа:
//   - не 2xx: *APIError из тела ответа;
//   - 204: успех без чтения тела;
//   - прочие 2xx: JSON в resp (если resp != nil), пустое тело не ошибка.
func (c *Client) do(ctx context.Context, method, path string, req, resp any, authToken string) error {
	var body io.Reader
	if req != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(req); err != nil {
			return err
		}
		body = &buf
	}

	r, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	r.Header.Set("Accept", "application/json")
	if req != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if authToken != "" {
		r.Header.Set("Authorization", "Bearer "+authToken)
	}

	res, err := c.http.Do(r)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return readAPIError(res)
	}
	if res.StatusCode == http.StatusNoContent {
		return nil
	}
	return decodeJSONOrOK(res.Body, resp)
}

// readAPIError собирает *APIError из ответа с ошибкой.
func readAPIError(res *http.Response) error {
	apiErr := &APIError{StatusCode: res.StatusCode}

	if s := res.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs >= 0 {
			apiErr.RetryAfter = time.Duration(secs) * time.Second
		}
	}

	raw, _ := io.ReadAll(res.Body)

	var payload sharedModels.ErrorResponse
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
		apiErr.Message = payload.Message
		apiErr.Errors = payload.Errors
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(raw))
	if apiErr.Message == "" {
		apiErr.Message = res.Status
	}
	return apiErr
}

// decodeJSONOrOK декодирует JSON из r в resp; io.EOF (пустое тело) не ошибка.
func decodeJSONOrOK(r io.Reader, resp any) error {
	if resp == nil {
		return nil
	}
	err := json.NewDecoder(r).Decode(resp)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
