package main

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
)

// apiClient 调用正在运行的聊天服务。
type apiClient struct {
	baseURL string
	origin  string
	http    *http.Client
}

func newAPIClient(baseURL, origin string, timeout time.Duration) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		origin:  origin,
		http:    &http.Client{Timeout: timeout},
	}
}

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func (c *apiClient) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.origin != "" {
		req.Header.Set("Origin", c.origin)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var failure struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(raw, &failure); err != nil || failure.Error == "" {
			failure.Error = strings.TrimSpace(string(raw))
		}
		return nil, &apiError{Status: resp.StatusCode, Message: failure.Error}
	}
	return raw, nil
}

func (c *apiClient) Health(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/api/health", nil)
}

func (c *apiClient) Send(ctx context.Context, message, conversationID string) (json.RawMessage, error) {
	body := map[string]string{"message": message}
	if conversationID != "" {
		body["conversationId"] = conversationID
	}
	return c.do(ctx, http.MethodPost, "/api/chat", body)
}

func (c *apiClient) History(ctx context.Context, conversationID string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/api/chat/"+url.PathEscape(conversationID), nil)
}

func (c *apiClient) Clear(ctx context.Context, conversationID string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, "/api/chat/"+url.PathEscape(conversationID), nil)
}

func (c *apiClient) UserStory(ctx context.Context, feature string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/api/user-story", map[string]string{"feature": feature})
}
