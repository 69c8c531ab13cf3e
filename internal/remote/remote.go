// Package remote is the shared HTTP/JSON client for the console's backend
// collaborators (device registry, telemetry store, rule engine, analytics
// engine, export service). Services wrap payloads either as {"data": ...} or
// return them bare; decode accepts both.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// Error is returned for any transport failure or non-2xx response.
type Error struct {
	Service string
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Service, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Service, e.Message)
}

// Client talks to one collaborator identified by its base URL.
type Client struct {
	Service string
	BaseURL string
	HTTP    *http.Client
}

func NewClient(service, baseURL string) *Client {
	return &Client{
		Service: service,
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// GetRaw fetches a binary payload (report downloads). The caller receives the
// body bytes and the Content-Type header.
func (c *Client) GetRaw(ctx context.Context, path string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, "", &Error{Service: c.Service, Message: err.Error()}
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, "", &Error{Service: c.Service, Message: err.Error()}
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &Error{Service: c.Service, Message: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &Error{Service: c.Service, Status: resp.StatusCode, Message: snippet(data)}
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Service: c.Service, Message: err.Error()}
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return &Error{Service: c.Service, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &Error{Service: c.Service, Message: err.Error()}
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Service: c.Service, Message: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Service: c.Service, Status: resp.StatusCode, Message: snippet(data)}
	}
	if out == nil {
		return nil
	}
	if err := decode(data, out); err != nil {
		return &Error{Service: c.Service, Message: "malformed response: " + err.Error()}
	}
	return nil
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// decode unwraps a {"data": ...} envelope when present, otherwise decodes the
// body directly into out.
func decode(body []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err == nil {
			return nil
		}
	}
	return json.Unmarshal(body, out)
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	if s == "" {
		s = "empty response body"
	}
	return s
}
