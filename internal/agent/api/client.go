// Package api содержит HTTP-клиент для взаимодействия с API админки.
//
// Клиент инкапсулирует базовый URL сервера и настроенный http.Client,
// и реализует удалённые вызовы session.Remote: текущий пользователь и выход.
//
// Особенности:
//   - baseURL нормализуется (обрезаются завершающие "/").
//   - По умолчанию добавляются заголовки Accept: application/json и X-Request-ID.
//   - Если задан токен сессии, добавляется Authorization: Bearer <token>.
//   - Cookie сервера сохраняются в cookie jar на время жизни клиента.
//   - При ответах 204 No Content тело не читается и это считается успехом.
//   - Пустое тело ответа (EOF при декодировании) не считается ошибкой.
//   - При ошибочных ответах (не 2xx) возвращается *StatusError с текстом тела ответа
//     (если тело пустое — используется res.Status).
//   - Каждый запрос пишется в лог через logger.HTTPLogger.LogRequest.
package api

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/go-yandex-gophadmin/internal/shared/logger"
)

const (
	// DefaultUserPath — эндпоинт "кто я".
	DefaultUserPath = "/api/v1/user"
	// DefaultLogoutPath — эндпоинт выхода.
	DefaultLogoutPath = "/api/v1/logout"
	// DefaultTimeout — таймаут одного запроса.
	DefaultTimeout = 10 * time.Second

	// RequestIDHeader — заголовок с идентификатором запроса.
	RequestIDHeader = "X-Request-ID"
)

// StatusError — ответ сервера с кодом не 2xx.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

// Option настраивает Client.
type Option func(*Client)

// WithToken задаёт токен сессии для заголовка Authorization.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithLogger задаёт логгер запросов.
func WithLogger(l *logger.HTTPLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithPaths переопределяет пути эндпоинтов. Пустые значения не меняют дефолт.
func WithPaths(userPath, logoutPath string) Option {
	return func(c *Client) {
		if userPath != "" {
			c.userPath = userPath
		}
		if logoutPath != "" {
			c.logoutPath = logoutPath
		}
	}
}

// WithTimeout задаёт таймаут запроса.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithInsecureTLS отключает проверку TLS сертификата сервера.
//
// ВНИМАНИЕ: только для локального devserver с самоподписанным сертификатом.
func WithInsecureTLS() Option {
	return func(c *Client) {
		c.http.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // только для dev
		}
	}
}

// Client реализует HTTP-клиент для общения с API админки.
type Client struct {
	baseURL    string
	http       *http.Client
	token      string
	userPath   string
	logoutPath string
	log        *logger.HTTPLogger
}

// NewClient создаёт новый HTTP-клиент.
//
// Параметры:
//   - baseURL: базовый адрес сервера (например: "https://127.0.0.1:8443").
//
// По умолчанию: таймаут DefaultTimeout, пути DefaultUserPath/DefaultLogoutPath,
// логгер, который ничего не пишет.
func NewClient(baseURL string, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
		userPath:   DefaultUserPath,
		logoutPath: DefaultLogoutPath,
		log:        logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// readAPIErrorBody читает тело ответа сервера и возвращает ошибку с текстом тела.
func readAPIErrorBody(res *http.Response, body io.Reader) error {
	raw, _ := io.ReadAll(body)
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = res.Status
	}
	return &StatusError{Code: res.StatusCode, Message: msg}
}

// decodeJSONOrOK декодирует JSON из r в resp.
//
// Если resp == nil — функция ничего не делает и возвращает nil.
// Пустое тело (io.EOF) не считается ошибкой.
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

// countingReader считает прочитанные байты тела ответа для лога.
type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

// GetJSON выполняет GET-запрос к серверу и (опционально) декодирует JSON-ответ.
//
// Обработка ответа:
//   - 2xx: успех
//   - 204 No Content: успех без попытки декодирования тела
//   - прочие 2xx: декодирует JSON в resp (если resp != nil); EOF не ошибка
//   - не 2xx: возвращает *StatusError с текстом тела ответа (или res.Status)
func (c *Client) GetJSON(ctx context.Context, path string, resp any) error {
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	r.Header.Set("Accept", "application/json")
	r.Header.Set(RequestIDHeader, uuid.NewString())
	if c.token != "" {
		r.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	res, err := c.http.Do(r)
	if err != nil {
		c.log.LogRequest(r.Method, path, 0, 0, msSince(start))
		return err
	}
	defer res.Body.Close()

	body := &countingReader{r: res.Body}
	defer func() {
		c.log.LogRequest(r.Method, path, res.StatusCode, body.n, msSince(start))
	}()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return readAPIErrorBody(res, body)
	}

	if res.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := decodeJSONOrOK(body, resp); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func msSince(t time.Time) float64 {
	return time.Since(t).Seconds() * 1000
}
