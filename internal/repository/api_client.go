package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/campus-events-console/pkg/errors"
	"github.com/noah-isme/campus-events-console/pkg/middleware/requestid"
)

const (
	defaultTimeout   = 5 * time.Second
	maxResponseBytes = 4 << 20
)

// UpstreamObserver receives one observation per backend call.
type UpstreamObserver interface {
	ObserveUpstream(method, resource, outcome string, duration time.Duration)
}

// APIClientConfig configures the backend client.
type APIClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Observer   UpstreamObserver
	Logger     *zap.Logger
}

// APIClient is the only component that talks to the event-management backend.
// It does not retry and does not cache.
type APIClient struct {
	baseURL   string
	timeout   time.Duration
	userAgent string
	http      *http.Client
	observer  UpstreamObserver
	logger    *zap.Logger
}

// NewAPIClient constructs a client for the configured backend.
func NewAPIClient(cfg APIClientConfig) (*APIClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("api client: base url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "campus-events-console"
	}
	return &APIClient{
		baseURL:   base,
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
		http:      cfg.HTTPClient,
		observer:  cfg.Observer,
		logger:    cfg.Logger,
	}, nil
}

// BaseURL returns the backend root the client is bound to.
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// FetchList issues a GET for resource and decodes the JSON array body into dest,
// which must be a pointer to a slice. Order is preserved.
func (c *APIClient) FetchList(ctx context.Context, resource string, params url.Values, dest interface{}) error {
	return c.do(ctx, http.MethodGet, resource, params, nil, dest)
}

// Fetch issues a GET for resource and decodes a JSON object body into dest.
func (c *APIClient) Fetch(ctx context.Context, resource string, params url.Values, dest interface{}) error {
	return c.do(ctx, http.MethodGet, resource, params, nil, dest)
}

// Mutate sends payload as JSON with the given method. The response body is
// decoded into dest when dest is not nil.
func (c *APIClient) Mutate(ctx context.Context, method, resource string, payload, dest interface{}) error {
	return c.do(ctx, method, resource, nil, payload, dest)
}

// Ping checks the backend health endpoint.
func (c *APIClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

func (c *APIClient) do(ctx context.Context, method, resource string, params url.Values, payload, dest interface{}) (err error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	label := resourceLabel(resource)
	status := 0
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = appErrors.CodeOf(err)
			if outcome == "" {
				outcome = "canceled"
			}
			c.logger.Warn("backend call failed",
				zap.String("method", method),
				zap.String("resource", resource),
				zap.Int("status", status),
				zap.String("request_id", requestid.FromContext(ctx)),
				zap.Error(err),
			)
		}
		if c.observer != nil {
			c.observer.ObserveUpstream(method, label, outcome, time.Since(start))
		}
	}()

	endpoint := c.baseURL + "/" + strings.TrimLeft(resource, "/")
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var body io.Reader
	if payload != nil {
		raw, marshalErr := json.Marshal(payload)
		if marshalErr != nil {
			return fmt.Errorf("encode %s payload: %w", resource, marshalErr)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", resource, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if reqID := requestid.FromContext(ctx); reqID != "" {
		req.Header.Set(requestid.HeaderKey, reqID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return classifyTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, raw)
	}

	if dest == nil {
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return appErrors.NewDecodeError(errors.New("empty response body"))
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return appErrors.NewDecodeError(err)
	}
	return nil
}

type backendErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

// statusError maps a non-2xx response. A 4xx carrying a JSON object with an
// error or message becomes a validation error; anything else is an HTTP error.
func statusError(statusCode int, raw []byte) error {
	if statusCode >= 400 && statusCode < 500 {
		var body backendErrorBody
		if err := json.Unmarshal(raw, &body); err == nil {
			reason := body.Error
			if reason == "" {
				reason = body.Message
			}
			if reason != "" {
				field := body.Field
				if field == "" {
					field = "body"
				}
				verr := appErrors.NewValidationError(field, reason)
				verr.Message = reason
				verr.Status = statusCode
				verr.UpstreamStatus = statusCode
				return verr
			}
		}
	}
	return appErrors.NewHTTPError(statusCode)
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return appErrors.NewTimeoutError(err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return appErrors.NewTimeoutError(err)
	}
	return appErrors.NewNetworkError(err)
}

// resourceLabel collapses numeric path segments so metric labels stay bounded.
func resourceLabel(resource string) string {
	parts := strings.Split(strings.Trim(resource, "/"), "/")
	for i, part := range parts {
		if _, err := strconv.ParseInt(part, 10, 64); err == nil {
			parts[i] = ":id"
		}
	}
	return "/" + strings.Join(parts, "/")
}
