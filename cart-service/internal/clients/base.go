// Package clients talks to the Order API and the Product Catalog API.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fjod/fitlyf/pkg/circuitbreaker"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const headerRequestID = "X-Request-Id"

type Client struct {
	Name    string
	BaseURL *url.URL
	HTTP    *http.Client
}

// NewClient builds a client whose transport is traced and guarded by a
// circuit breaker named after the collaborator.
func NewClient(name, baseURL string, timeout time.Duration, cb circuitbreaker.Settings, log *zap.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid %s base url %q: %w", name, baseURL, err)
	}
	transport := otelhttp.NewTransport(circuitbreaker.NewTransport(name, http.DefaultTransport, cb, log))
	return &Client{
		Name:    name,
		BaseURL: u,
		HTTP:    &http.Client{Timeout: timeout, Transport: transport},
	}, nil
}

func (c *Client) Do(ctx context.Context, method, path, rawQuery string, body io.Reader) (*http.Response, error) {
	rel := &url.URL{Path: path, RawQuery: rawQuery}
	u := c.BaseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if rid := middleware.GetReqID(ctx); rid != "" {
		req.Header.Set(headerRequestID, rid)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if circuitbreaker.IsOpen(err) {
			return nil, fmt.Errorf("%s: %w", c.Name, ErrServiceUnavailable)
		}
		return nil, fmt.Errorf("%s %s %s: %w", c.Name, method, path, err)
	}
	return resp, nil
}

// doJSON sends in (when non-nil) and decodes a 2xx body into out. Other
// statuses are turned into *APIError.
func (c *Client) doJSON(ctx context.Context, method, path, rawQuery string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", c.Name, err)
		}
		body = bytes.NewReader(b)
	}

	resp, err := c.Do(ctx, method, path, rawQuery, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read %s response: %w", c.Name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.apiError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", c.Name, err)
	}
	return nil
}

type errorBody struct {
	Message string   `json:"message"`
	Error   string   `json:"error"`
	Errors  []string `json:"errors"`
}

func (c *Client) apiError(status int, data []byte) *APIError {
	apiErr := &APIError{Service: c.Name, StatusCode: status}
	var eb errorBody
	if json.Unmarshal(data, &eb) == nil {
		apiErr.Message = eb.Message
		if apiErr.Message == "" {
			apiErr.Message = eb.Error
		}
		apiErr.Errors = eb.Errors
	}
	return apiErr
}
