package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eduoj/ojcli/pkg/domain"
)

// DefaultTimeout bounds every request. A request still pending after it is
// treated as a network failure.
const DefaultTimeout = 10 * time.Second

const (
	maxBodySize      = 8 << 20 // 8 MB
	maxErrorBodySize = 1 << 20 // 1 MB
)

// Response is a successful API response with its body already read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into out.
func (r *Response) Decode(out any) error {
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Client is the OJ API client. Every request carries the cookie jar and the
// fixed timeout; every failed request is classified exactly once.
type Client struct {
	baseURL    string
	httpClient *http.Client
	jar        http.CookieJar
	notifier   Notifier
	navigator  Navigator
	effects    *Effects
	logger     *zap.Logger
	metrics    *Metrics
	requestID  func() string
}

// New creates a new API client rooted at baseURL, e.g. http://localhost:8080/api.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		logger:    zap.NewNop(),
		requestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}

	hc := &http.Client{}
	if c.httpClient != nil {
		*hc = *c.httpClient
	}
	if hc.Timeout == 0 {
		hc.Timeout = DefaultTimeout
	}
	if c.jar != nil {
		hc.Jar = c.jar
	}
	if hc.Jar == nil {
		jar, _ := cookiejar.New(nil) //nolint:errcheck // never fails with nil options
		hc.Jar = jar
	}
	c.httpClient = hc
	c.effects = NewEffects(c.notifier, c.navigator, c.logger)
	return c
}

// BaseURL returns the API root requests are issued against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetMe returns the account of the current caller. An anonymous caller gets
// a 401, which is never announced to the user.
func (c *Client) GetMe(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.Get(ctx, IdentityPath, &u); err != nil {
		return nil, fmt.Errorf("client.GetMe: %w", err)
	}
	return &u, nil
}

// Login authenticates with username and password. On success the server sets
// the session cookie in the jar.
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	if err := c.Post(ctx, "/user/login", req, &out); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &out, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	if err := c.Post(ctx, "/user/register", req, &out); err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	return &out, nil
}

// Get issues a GET and decodes the JSON response into out when out is non-nil.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body and decodes the response into out when out is non-nil.
func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	return resp.Decode(out)
}

// Do issues a request and returns the raw successful response. On failure the
// error is classified, the resulting notice and redirect are applied, and the
// original error is returned unchanged.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	reqID := c.requestID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.send(req, path)
	outcome := Classify(path, err, c.effects.Location())
	c.metrics.observe(method, time.Since(start).Seconds(), outcome)

	if err != nil {
		fields := []zap.Field{
			zap.String("request_id", reqID),
			zap.String("method", method),
			zap.String("path", path),
			zap.Stringer("kind", outcome.Kind),
			zap.Error(err),
		}
		if outcome.ShouldNotify() {
			c.logger.Warn("api request failed", fields...)
		} else {
			c.logger.Debug("api request failed", fields...)
		}
		c.effects.Apply(outcome)
		return nil, err
	}

	c.logger.Debug("api request",
		zap.String("request_id", reqID),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)
	return resp, nil
}

func (c *Client) send(req *http.Request, path string) (*Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		if readErr != nil {
			return nil, &HTTPError{StatusCode: resp.StatusCode, Path: path}
		}
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    decodeMessage(respBody),
			Path:       path,
			Body:       respBody,
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}
