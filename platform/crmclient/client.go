// Package crmclient provides a generic JSON client for the upstream CRM
// collaborator API. List endpoints may answer with a bare array or with a
// {success, data} envelope; Decode accepts both shapes so callers never see
// the difference.
package crmclient

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

// Client is an HTTP client for the CRM collaborator API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Config configures the CRM collaborator client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// New creates a new CRM collaborator client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// envelope is the optional response wrapper some collaborator endpoints use.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Get performs a GET request and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST request with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put performs a PUT request with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Patch performs a PATCH request with a JSON body and decodes the response into out.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	url := c.baseURL + "/" + strings.TrimLeft(path, "/")
	request, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create %s %s request: %w", method, path, err)
	}

	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		request.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%s %s request failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s %s response: %w", method, path, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("CRM API returned %d for %s %s: %s", resp.StatusCode, method, path, truncate(raw))
	}

	if out == nil {
		return nil
	}
	return Decode(raw, out)
}

// Decode unmarshals a collaborator response body into out, unwrapping the
// {success, data} envelope when present. An envelope with success == false is
// an error even on a 2xx status. Anything undecodable is treated as no data.
func Decode(raw []byte, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}

	if trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err == nil && (env.Success != nil || env.Data != nil) {
			if env.Success != nil && !*env.Success {
				if env.Error != "" {
					return fmt.Errorf("CRM API rejected request: %s", env.Error)
				}
				return fmt.Errorf("CRM API rejected request")
			}
			if env.Data == nil {
				return nil
			}
			return json.Unmarshal(env.Data, out)
		}
	}

	return json.Unmarshal(trimmed, out)
}

func truncate(raw []byte) string {
	const max = 512
	if len(raw) > max {
		return string(raw[:max]) + "..."
	}
	return string(raw)
}
