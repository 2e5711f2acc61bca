package provider

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

	"github.com/rotisserie/eris"
)

const maxAPIBodyBytes = 4 << 20

// HTTPClient abstracts the transport used for provider API calls.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type requestIDKey struct{}

// WithRequestID attaches the caller's request id so provider calls can forward it.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request id attached with WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// JSONClient issues JSON requests against one provider API.
type JSONClient struct {
	client  HTTPClient
	baseURL string
	headers map[string]string
}

// NewJSONClient builds a client rooted at baseURL. headers are sent on every
// request; a nil client gets a 20 second default.
func NewJSONClient(client HTTPClient, baseURL string, headers map[string]string) *JSONClient {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &JSONClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: headers,
	}
}

// PostJSON posts payload to path and decodes the response into out.
func (c *JSONClient) PostJSON(ctx context.Context, path string, query url.Values, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "failed to marshal payload")
	}
	return c.do(ctx, http.MethodPost, path, query, bytes.NewReader(body), out)
}

// GetJSON fetches path and decodes the response into out.
func (c *JSONClient) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *JSONClient) do(ctx context.Context, method, path string, query url.Values, body io.Reader, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return eris.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if rid := RequestIDFromContext(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, maxAPIBodyBytes)
	if resp.StatusCode >= 400 {
		return eris.Errorf("status %d: %s", resp.StatusCode, extractAPIError(limited))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(limited).Decode(out); err != nil && err != io.EOF {
		return eris.Wrap(err, "could not decode response")
	}
	return nil
}

// extractAPIError pulls a readable message out of an error response body.
func extractAPIError(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return "provider returned an error"
	}

	var payload struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Errors  []struct {
			Details string `json:"details"`
			ID      string `json:"id"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		switch {
		case payload.Message != "":
			return payload.Message
		case payload.Detail != "":
			return payload.Detail
		case len(payload.Errors) > 0 && payload.Errors[0].Details != "":
			return payload.Errors[0].Details
		case payload.Error != nil:
			if s, ok := payload.Error.(string); ok && s != "" {
				return s
			}
			return fmt.Sprint(payload.Error)
		}
	}
	msg := strings.TrimSpace(string(data))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
