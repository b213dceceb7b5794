package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/7Lumine/whitelistbot/internal/adapters/httpgate"
)

// Client habla con la API del bot.
type Client struct {
	baseURL    string
	secret     string
	httpClient *http.Client
}

func NewClient(baseURL, secret string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		secret:     secret,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// APIError es el sobre {"error":{...}} de la API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%s, HTTP %d)", e.Message, e.Code, e.Status)
}

// Do devuelve el status; los 4xx con sobre de error vuelven como *APIError,
// el resto se decodifica en result.
func (c *Client) Do(ctx context.Context, method, path string, body, result any) (int, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.secret != "" {
		req.Header.Set(httpgate.HeaderSecret, c.secret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var er httpgate.ErrorResponse
		if json.Unmarshal(raw, &er) == nil && er.Error.Code != "" {
			return resp.StatusCode, &APIError{Status: resp.StatusCode, Code: er.Error.Code, Message: er.Error.Message}
		}
	}
	if result != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, result); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to parse response (HTTP %d): %w", resp.StatusCode, err)
		}
	}
	if resp.StatusCode >= 400 && result == nil {
		return resp.StatusCode, &APIError{Status: resp.StatusCode, Code: "http_error", Message: http.StatusText(resp.StatusCode)}
	}
	return resp.StatusCode, nil
}
