// Package gallery — клиент продуктового API и координатор батчевой
// загрузки сгруппированных товаров.
//
// Клиент — это тонкий HTTP-слой: авторизация bearer-токеном, rate
// limiting, retry на 429 и классификация ошибок. Логика построения
// payload'ов и обхода коллекции живёт в Uploader.
package gallery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/lenscraft/optibulk/pkg/config"
)

// ErrNoToken возвращается когда API-токен не настроен.
//
// Проверяется до отправки первого запроса: батч без токена не должен
// сделать ни одного сетевого вызова.
var ErrNoToken = errors.New("gallery api token is missing")

// ErrorType представляет тип ошибки при работе с продуктовым API.
type ErrorType int

const (
	ErrUnknown ErrorType = iota
	ErrAuthFailed
	ErrTimeout
	ErrNetwork
	ErrRateLimit
)

// String возвращает строковое представление типа ошибки.
func (e ErrorType) String() string {
	switch e {
	case ErrAuthFailed:
		return "authentication_failed"
	case ErrTimeout:
		return "timeout"
	case ErrNetwork:
		return "network_error"
	case ErrRateLimit:
		return "rate_limit"
	default:
		return "unknown"
	}
}

// HumanMessage возвращает человекочитаемое сообщение для типа ошибки.
func (e ErrorType) HumanMessage() string {
	switch e {
	case ErrAuthFailed:
		return "Токен недействителен или отсутствует. Проверьте GALLERY_API_TOKEN в конфигурации."
	case ErrTimeout:
		return "Превышено время ожидания. Сервер не отвечает или проблемы с сетью."
	case ErrNetwork:
		return "Сервер недоступен. Проверьте подключение к интернету."
	case ErrRateLimit:
		return "Превышен лимит запросов. Подождите перед следующей попыткой."
	default:
		return "Неизвестная ошибка при обращении к продуктовому API."
	}
}

// HTTPClient интерфейс для выполнения HTTP запросов.
//
// Позволяет мокировать HTTP клиент в тестах.
// Стандартный *http.Client реализует этот интерфейс.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client — авторизованный клиент продуктового API.
type Client struct {
	baseURL       string
	token         string
	httpClient    HTTPClient
	retryAttempts int
	rateLimit     int
	burstLimit    int

	mu       sync.RWMutex
	limiters map[string]*rate.Limiter // endpoint ID → limiter
}

// NewFromConfig создаёт клиент из конфигурации.
//
// Поля с нулевыми значениями заполняются через GetDefaults().
// Пустой токен не является ошибкой на этом этапе: он проверяется
// перед стартом батча (HasToken).
func NewFromConfig(cfg config.GalleryConfig) (*Client, error) {
	cfg = cfg.GetDefaults()

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gallery.base_url is required")
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid gallery.timeout format: %w", err)
	}

	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		token:         cfg.Token,
		retryAttempts: cfg.RetryAttempts,
		rateLimit:     cfg.RateLimit,
		burstLimit:    cfg.BurstLimit,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiters: make(map[string]*rate.Limiter),
	}, nil
}

// WithHTTPClient подменяет транспорт (для тестов).
func (c *Client) WithHTTPClient(hc HTTPClient) *Client {
	c.httpClient = hc
	return c
}

// HasToken сообщает, настроен ли API-токен.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// ClassifyError классифицирует ошибку по типу для лучшей диагностики.
//
// Анализирует текст ошибки и возвращает соответствующий тип:
//   - ErrAuthFailed: ошибки 401/403, unauthorized
//   - ErrTimeout: timeout, deadline exceeded
//   - ErrNetwork: connection refused, no such host
//   - ErrRateLimit: ошибки 429, Too Many Requests
//   - ErrUnknown: все остальные ошибки
func (c *Client) ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrUnknown
	}

	errMsg := err.Error()
	errMsgLower := strings.ToLower(errMsg)

	if errors.Is(err, ErrNoToken) ||
		strings.Contains(errMsg, "401") ||
		strings.Contains(errMsg, "403") ||
		strings.Contains(errMsgLower, "unauthorized") ||
		strings.Contains(errMsgLower, "forbidden") {
		return ErrAuthFailed
	}

	if strings.Contains(errMsgLower, "timeout") ||
		strings.Contains(errMsg, "deadline exceeded") {
		return ErrTimeout
	}

	if strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "no such host") {
		return ErrNetwork
	}

	if strings.Contains(errMsg, "429") ||
		strings.Contains(errMsg, "Too Many Requests") {
		return ErrRateLimit
	}

	return ErrUnknown
}

// postForm выполняет multipart POST с retry логикой и rate limiting.
//
// Retry только на сетевые ошибки и 429 (с учётом Retry-After);
// любой другой не-2xx статус — финальная ошибка с телом ответа от
// сервера, решение о продолжении батча принимает вызывающий.
func (c *Client) postForm(ctx context.Context, endpointID, path string, form *Form) ([]byte, error) {
	limiter := c.getOrCreateLimiter(endpointID)

	var lastErr error

	for i := 0; i < c.retryAttempts; i++ {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(form.Body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", form.ContentType)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue // Сетевая ошибка, пробуем еще
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := 1 * time.Second
			if s := resp.Header.Get("Retry-After"); s != "" {
				if sec, err := strconv.Atoi(s); err == nil {
					retryAfter = time.Duration(sec) * time.Second
				}
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryAfter):
				continue
			}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("gallery api error: status %d, body: %s", resp.StatusCode, string(body))
		}

		return body, nil
	}

	return nil, fmt.Errorf("max retries exceeded, last error: %v", lastErr)
}

// getOrCreateLimiter возвращает существующий limiter для endpoint
// или создаёт новый.
func (c *Client) getOrCreateLimiter(endpointID string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if limiter, exists := c.limiters[endpointID]; exists {
		return limiter
	}

	// rateLimit в запросах/минуту → rate.Limit в запросах/секунду
	ratePerSec := float64(c.rateLimit) / 60.0
	limiter := rate.NewLimiter(rate.Limit(ratePerSec), c.burstLimit)
	c.limiters[endpointID] = limiter

	return limiter
}

// PingResponse представляет ответ health-check endpoint'а API.
type PingResponse struct {
	Status string `json:"status"`
}

// Ping проверяет доступность API и валидность токена.
//
// Полезен для диагностики: 401 = невалидный токен, сетевые ошибки =
// проблемы с подключением.
func (c *Client) Ping(ctx context.Context) (*PingResponse, error) {
	limiter := c.getOrCreateLimiter("ping")
	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ping failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ping failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	return &PingResponse{Status: "OK"}, nil
}
