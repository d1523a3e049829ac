// Package httpapi implements service.AuthService and service.TaskService
// against the task API over HTTP.
package httpapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"

	"taskman/internal/authn"
	"taskman/internal/config"
	"taskman/internal/json"
	"taskman/internal/logging"
	"taskman/internal/service"
)

const (
	// APITimeout is the default timeout for API calls.
	APITimeout = config.DefaultTimeout

	authPath  = "/auth"
	tasksPath = "/api/tasks"
)

// ErrTimeout is reported when a call exceeds its timeout.
var ErrTimeout = errors.New("request timed out")

// Client implements service.AuthService and service.TaskService.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	log     *zap.SugaredLogger
}

var (
	_ service.AuthService = (*Client)(nil)
	_ service.TaskService = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for cfg.Server whose requests carry the bearer
// token supplied by tokens.
func New(cfg *config.Config, tokens authn.TokenSource, log *zap.SugaredLogger) (*Client, error) {
	return NewWithHTTPClient(cfg.Server, authn.NewClient(tokens, nil, log), WithTimeout(cfg.Timeout), WithLogger(log))
}

// NewWithHTTPClient creates a client with a custom HTTP client.
func NewWithHTTPClient(baseURL string, httpClient *http.Client, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL: %s", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		timeout: APITimeout,
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logging.Nop()
	}
	return c, nil
}

// do performs one round trip. in is encoded as the JSON body when non-nil;
// a 2xx response body is decoded into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debugw("request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return wrapError(err)
	}
	defer resp.Body.Close()

	c.log.Debugw("response", "method", method, "path", path, "request_id", requestID,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	if err := googleapi.CheckResponse(resp); err != nil {
		return wrapError(err)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrapError(err)
	}
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("empty response from %s %s", method, path)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// wrapError converts transport and HTTP failures into *service.Error.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &service.Error{Err: ErrTimeout}
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &service.Error{
			Status:  gerr.Code,
			Message: serverMessage(gerr),
			Err:     gerr,
		}
	}

	return &service.Error{Err: err}
}

// serverMessage extracts the "message" field of an error body such as
// {"success":false,"message":"..."}. Framework error bodies that carry only
// {"error":"Internal Server Error"} have no message for the user.
func serverMessage(gerr *googleapi.Error) string {
	if gerr.Message != "" {
		return gerr.Message
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(gerr.Body), &body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.Message)
}
