// Package client provides an HTTP and WebSocket client for a running muednote server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xiaot623/gogo/muednote/internal/domain"
)

// Client is an HTTP client for the muednote command API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ProcessFragment calls POST /v1/fragments.
func (c *Client) ProcessFragment(ctx context.Context, fragment domain.Fragment) (*domain.Fragment, error) {
	var out domain.Fragment
	if err := c.do(ctx, http.MethodPost, "/v1/fragments", fragment, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchMessages calls GET /v1/messages.
func (c *Client) FetchMessages(ctx context.Context) ([]domain.Message, error) {
	var out domain.MessagesResponse
	if err := c.do(ctx, http.MethodGet, "/v1/messages", nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// DeleteMessage calls DELETE /v1/messages/:message_id.
func (c *Client) DeleteMessage(ctx context.Context, messageID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/messages/"+url.PathEscape(messageID), nil, nil)
}

// Signal calls POST /v1/signals/:name.
func (c *Client) Signal(ctx context.Context, signal domain.Signal) (*domain.SignalResponse, error) {
	var out domain.SignalResponse
	if err := c.do(ctx, http.MethodPost, "/v1/signals/"+url.PathEscape(string(signal)), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to reach muednote: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp domain.ErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("muednote error: %s", errResp.Error)
		}
		return fmt.Errorf("muednote returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
