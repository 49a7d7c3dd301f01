// Package providerapi is the HTTP transport shared by every outbound
// provider adapter: JSON GET with a per-call timeout, optional bearer
// auth, and a circuit breaker per upstream host.
package providerapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	apperrors "github.com/cityexplorer/backend/pkg/errors"
)

// ErrCircuitOpen is returned while an upstream is considered unhealthy
var ErrCircuitOpen = errors.New("provider circuit open")

// Options configures an HTTPClient
type Options struct {
	Name        string
	BaseURL     string
	Timeout     time.Duration
	BearerToken string
	HTTPClient  *http.Client
}

// HTTPClient performs JSON requests against one upstream provider
type HTTPClient struct {
	name        string
	baseURL     string
	bearerToken string
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker
}

// NewClient creates a client for one upstream. The breaker opens after five
// consecutive provider failures and probes again after 30s.
func NewClient(opts Options) *HTTPClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	name := opts.Name
	if name == "" {
		name = "provider"
	}

	return &HTTPClient{
		name:        name,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		bearerToken: opts.BearerToken,
		httpClient:  httpClient,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			// A caller hanging up says nothing about the provider's health.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
		}),
	}
}

// Name identifies the upstream in errors and logs
func (c *HTTPClient) Name() string {
	return c.name
}

// URL joins path segments onto the base URL and encodes query
func (c *HTTPClient) URL(query url.Values, segments ...string) string {
	endpoint := c.baseURL
	for _, segment := range segments {
		endpoint += "/" + strings.TrimLeft(segment, "/")
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return endpoint
}

// GetJSON issues a GET to endpoint and decodes the body into out.
// Every failure is reported as an upstream error.
func (c *HTTPClient) GetJSON(ctx context.Context, endpoint string, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewUpstreamError(fmt.Sprintf("%s request abandoned", c.name), err)
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.doJSON(ctx, http.MethodGet, endpoint, nil, out)
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = ErrCircuitOpen
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.NewUpstreamError(fmt.Sprintf("%s request failed", c.name), err)
}

func (c *HTTPClient) doJSON(ctx context.Context, method, endpoint string, body io.Reader, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.bearerToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s returned status %d", c.name, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", c.name, err)
	}

	return nil
}
