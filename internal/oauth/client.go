// Package oauth предоставляет клиент внешнего сервиса аутентификации.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrInvalidSession возвращается, если внешний сервис не подтвердил session id.
var ErrInvalidSession = errors.New("invalid external session")

// Client инкапсулирует HTTP-взаимодействие с внешним сервисом аутентификации.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// SessionData описывает ответ внешнего сервиса по подтверждённой сессии.
type SessionData struct {
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	Picture      *string `json:"picture,omitempty"`
	SessionToken string  `json:"session_token"`
}

// NewClient создаёт HTTP-клиент для обращения к внешнему сервису
// аутентификации по указанному адресу.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// GetSessionData обменивает внешний session id на данные пользователя.
func (c *Client) GetSessionData(ctx context.Context, sessionID string) (*SessionData, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("oauth client not configured")
	}

	base := c.baseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}

	url := fmt.Sprintf("%s/auth/v1/env/oauth/session-data", base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Session-ID", sessionID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrInvalidSession
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result SessionData
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if result.Email == "" {
		return nil, ErrInvalidSession
	}

	return &result, nil
}
