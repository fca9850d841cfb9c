package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/driftstream/driftstream-cli/internal/config"
	"github.com/driftstream/driftstream-cli/internal/logging"
	"go.uber.org/zap"
)

// ErrSessionExpired is returned when the backend rejects the stored token.
// The stored credentials are cleared before it is returned; the user must
// log in again.
var ErrSessionExpired = errors.New("session expired, please log in again")

// Client wraps net/http with bearer-token auth and backend error decoding.
type Client struct {
	client *http.Client
}

// APIError is a decoded backend error response.
type APIError struct {
	Status   int    `json:"status"`
	Message  string `json:"message"`
	Code     string `json:"code"`
	ErrorMsg string `json:"error"`
}

func (e APIError) Error() string {
	message := e.Message
	if message == "" {
		message = e.ErrorMsg
	}
	if message == "" {
		message = fmt.Sprintf("HTTP %d error", e.Status)
	}
	return message
}

// APIResponse is the standard backend response envelope.
type APIResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// NewClient builds a client using the configured request timeout.
func NewClient() *Client {
	cfg := config.GetConfig()
	return &Client{
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// NewLongRunningClient builds a client without a request timeout, for
// connection tests and stream discovery which the backend may take minutes
// to answer.
func NewLongRunningClient() *Client {
	return &Client{client: &http.Client{}}
}

func (c *Client) makeRequest(ctx context.Context, method, url string, body interface{}, requireAuth bool) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if requireAuth {
		username, authErr := config.GetUsername()
		if authErr != nil {
			return nil, fmt.Errorf("authentication required but no user logged in: %v", authErr)
		}
		token, authErr := config.GetToken(username)
		if authErr != nil {
			return nil, fmt.Errorf("authentication required but no valid token found: %v", authErr)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		logging.L().Warn("request failed", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("no response received from server: %v", err)
	}
	return resp, nil
}

func (c *Client) handleResponse(resp *http.Response, result interface{}) error {
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %v", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		config.ClearCurrentSession()
		return ErrSessionExpired
	case resp.StatusCode == http.StatusForbidden:
		logging.L().Warn("permission denied", zap.String("url", resp.Request.URL.String()))
	case resp.StatusCode >= 500:
		logging.L().Error("server error",
			zap.Int("status", resp.StatusCode),
			zap.String("url", resp.Request.URL.String()))
	}

	if resp.StatusCode >= 400 {
		var apiErr APIError
		if err := json.Unmarshal(body, &apiErr); err != nil {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %v", err)
		}
	}
	return nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string, result interface{}, requireAuth bool) error {
	resp, err := c.makeRequest(ctx, "GET", url, nil, requireAuth)
	if err != nil {
		return err
	}
	return c.handleResponse(resp, result)
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, url string, body, result interface{}, requireAuth bool) error {
	resp, err := c.makeRequest(ctx, "POST", url, body, requireAuth)
	if err != nil {
		return err
	}
	return c.handleResponse(resp, result)
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, url string, body, result interface{}, requireAuth bool) error {
	resp, err := c.makeRequest(ctx, "PUT", url, body, requireAuth)
	if err != nil {
		return err
	}
	return c.handleResponse(resp, result)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, url string, requireAuth bool) error {
	resp, err := c.makeRequest(ctx, "DELETE", url, nil, requireAuth)
	if err != nil {
		return err
	}
	return c.handleResponse(resp, nil)
}

var client *Client

// GetClient returns the shared HTTP client.
func GetClient() *Client {
	if client == nil {
		client = NewClient()
	}
	return client
}
