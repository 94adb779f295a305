package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sipeed/mediapaste/pkg/logger"
	"github.com/sipeed/mediapaste/pkg/reconcile"
)

// Client uploads payload bytes to an HTTP endpoint that answers with
// {"url": "..."}.
type Client struct {
	Endpoint   string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

var _ reconcile.Resolver = (*Client)(nil)

type response struct {
	URL   string `json:"url"`
	Error string `json:"error,omitempty"`
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upload returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("upload returned status %d: %s", e.StatusCode, e.Message)
}

func NewClient(endpoint, token string, timeout time.Duration) *Client {
	return &Client{Endpoint: endpoint, Token: token, Timeout: timeout}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func (c *Client) Resolve(ctx context.Context, up reconcile.Upload) (string, error) {
	if strings.TrimSpace(c.Endpoint) == "" {
		return "", fmt.Errorf("upload endpoint is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(up.Data))
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	contentType := up.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Filename", up.Name)
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", up.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read upload response: %w", err)
	}

	var out response
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &out); err != nil && resp.StatusCode/100 == 2 {
			return "", fmt.Errorf("decode upload response: %w", err)
		}
	}

	if resp.StatusCode/100 != 2 {
		msg := out.Error
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return "", &StatusError{StatusCode: resp.StatusCode, Message: msg}
	}

	logger.DebugCF("upload", "Upload finished", map[string]interface{}{
		"name":   up.Name,
		"status": resp.StatusCode,
		"url":    out.URL,
	})
	return strings.TrimSpace(out.URL), nil
}
