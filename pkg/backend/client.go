package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client calls the managed backend's named remote functions. Every function
// speaks the same envelope: {success, data, error: {message, code}}. The
// portal never interprets function internals; it only unwraps the envelope.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

// APIError carries the structured error envelope returned by a function.
type APIError struct {
	Function string
	Message  string
	Code     int
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("function %s failed", e.Function)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func NewClient(baseURL, anonKey string) *Client {
	return &Client{
		baseURL: baseURL,
		anonKey: anonKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Call invokes a function without a user credential (anon key only).
// fn may carry a query string, e.g. "search-providers?query=foo".
func (c *Client) Call(ctx context.Context, fn string, body, out interface{}) error {
	return c.invoke(ctx, http.MethodPost, fn, "", body, out)
}

// CallWithAuth invokes a function with the user's bearer token.
func (c *Client) CallWithAuth(ctx context.Context, fn, token string, body, out interface{}) error {
	if token == "" {
		return &APIError{Function: fn, Message: "not authenticated"}
	}
	return c.invoke(ctx, http.MethodPost, fn, token, body, out)
}

// Get invokes a function with GET semantics (query params in fn).
func (c *Client) Get(ctx context.Context, fn, token string, out interface{}) error {
	return c.invoke(ctx, http.MethodGet, fn, token, nil, out)
}

// Put invokes a function with PUT semantics (profile updates use this).
func (c *Client) Put(ctx context.Context, fn, token string, body, out interface{}) error {
	if token == "" {
		return &APIError{Function: fn, Message: "not authenticated"}
	}
	return c.invoke(ctx, http.MethodPut, fn, token, body, out)
}

func (c *Client) invoke(ctx context.Context, method, fn, token string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request for %s: %w", fn, err)
		}
		reqBody = bytes.NewReader(data)
	} else if method != http.MethodGet {
		reqBody = bytes.NewReader([]byte("{}"))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/functions/v1/"+fn, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.anonKey)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.anonKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", fn, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", fn, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// Non-envelope response (gateway error page etc). Generic fallback.
		return &APIError{Function: fn, Message: fmt.Sprintf("function %s returned status %d", fn, resp.StatusCode), Code: resp.StatusCode}
	}

	if !env.Success {
		apiErr := &APIError{Function: fn, Code: resp.StatusCode}
		if env.Error != nil {
			apiErr.Message = env.Error.Message
			if env.Error.Code != 0 {
				apiErr.Code = env.Error.Code
			}
		}
		return apiErr
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", fn, err)
		}
	}
	return nil
}
