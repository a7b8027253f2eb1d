// Package httpapi implements wifi.Backend against the wifi manager service's
// REST API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/jlbmaritime/hotspotctl/wifi"
)

const (
	DefaultBaseURL = "http://wifi.local"
	DefaultTimeout = 30 * time.Second
)

// Options configures a Client. The zero value talks to DefaultBaseURL
// without credentials.
type Options struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration

	// Logger receives request and response traces. Defaults to a no-op.
	Logger *zap.Logger
	// HTTPClient overrides the underlying client, mostly for tests.
	HTTPClient *http.Client
}

// Client is a wifi.Backend backed by the service's HTTP API.
type Client struct {
	client *resty.Client
	logger *zap.Logger
}

var _ wifi.Backend = (*Client)(nil)

// New creates a Client.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var client *resty.Client
	if opts.HTTPClient != nil {
		client = resty.NewWithClient(opts.HTTPClient)
	} else {
		client = resty.New()
	}
	client.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	client.SetHeader("Accept", "application/json")
	client.SetContentLength(true)
	client.SetTimeout(opts.Timeout)
	client.SetLogger(logger.Sugar())
	if opts.Username != "" || opts.Password != "" {
		client.SetBasicAuth(opts.Username, opts.Password)
		client.SetDisableWarn(true)
	}

	c := &Client{client: client, logger: logger}
	client.OnBeforeRequest(c.traceRequest)
	client.OnAfterResponse(c.traceResponse)
	client.OnError(c.traceError)
	return c
}

// BaseURL returns the address requests are sent to.
func (c *Client) BaseURL() string {
	return c.client.BaseURL
}

func (c *Client) traceRequest(_ *resty.Client, r *resty.Request) error {
	c.logger.Debug("request",
		zap.String("method", r.Method),
		zap.String("url", r.URL),
	)
	return nil
}

func (c *Client) traceResponse(_ *resty.Client, r *resty.Response) error {
	c.logger.Debug("response",
		zap.String("method", r.Request.Method),
		zap.String("url", r.Request.URL),
		zap.Int("status", r.StatusCode()),
		zap.Duration("duration", r.Time()),
		zap.Int("body_length", len(r.Body())),
	)
	return nil
}

func (c *Client) traceError(r *resty.Request, err error) {
	c.logger.Warn("request failed",
		zap.String("method", r.Method),
		zap.String("url", r.URL),
		zap.Error(err),
	)
}

// do performs one exchange and decodes the body into out. Failures to
// exchange or decode become *wifi.TransportError; a response whose success
// flag is missing or false becomes *wifi.ApplicationError.
func (c *Client) do(ctx context.Context, op, method, path string, body any, out result) error {
	req := c.client.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return &wifi.TransportError{Op: op, Err: err}
	}

	if !resp.IsSuccess() {
		var env envelope
		detail := http.StatusText(resp.StatusCode())
		if json.Unmarshal(resp.Body(), &env) == nil && env.Message != "" {
			detail = env.Message
		}
		return &wifi.TransportError{Op: op, Status: resp.StatusCode(), Err: errors.New(detail)}
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &wifi.TransportError{Op: op, Status: resp.StatusCode(), Err: fmt.Errorf("decoding response: %w", err)}
	}
	if env := out.status(); !env.ok() {
		return &wifi.ApplicationError{Op: op, Message: env.Message}
	}
	return nil
}

func (c *Client) Current(ctx context.Context) (wifi.ConnectionState, error) {
	var r currentResponse
	if err := c.do(ctx, "current", http.MethodGet, "/api/current", nil, &r); err != nil {
		return wifi.ConnectionState{}, err
	}
	return r.state(), nil
}

func (c *Client) Scan(ctx context.Context) ([]wifi.Network, error) {
	var r networksResponse
	if err := c.do(ctx, "scan", http.MethodGet, "/api/scan", nil, &r); err != nil {
		return nil, err
	}
	return networks(r.Networks, false), nil
}

func (c *Client) Rescan(ctx context.Context) ([]wifi.Network, error) {
	var r networksResponse
	if err := c.do(ctx, "rescan", http.MethodPost, "/api/rescan", nil, &r); err != nil {
		return nil, err
	}
	return networks(r.Networks, false), nil
}

func (c *Client) Saved(ctx context.Context) ([]wifi.Network, error) {
	var r networksResponse
	if err := c.do(ctx, "saved", http.MethodGet, "/api/saved", nil, &r); err != nil {
		return nil, err
	}
	return networks(r.Networks, true), nil
}

func (c *Client) Connect(ctx context.Context, ssid, password string) (string, error) {
	if ssid == "" {
		return "", &wifi.ValidationError{Field: "ssid", Reason: "SSID is required"}
	}
	var r messageResponse
	if err := c.do(ctx, "connect", http.MethodPost, "/api/connect", connectRequest{SSID: ssid, Password: password}, &r); err != nil {
		return "", err
	}
	return r.Message, nil
}

func (c *Client) Forget(ctx context.Context, ssid string) (string, error) {
	if ssid == "" {
		return "", &wifi.ValidationError{Field: "ssid", Reason: "SSID is required"}
	}
	var r messageResponse
	if err := c.do(ctx, "forget", http.MethodPost, "/api/forget", forgetRequest{SSID: ssid}, &r); err != nil {
		return "", err
	}
	return r.Message, nil
}

func (c *Client) Ping(ctx context.Context, host string, count int) (wifi.PingResult, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		host = wifi.DefaultPingHost
	}
	if count <= 0 {
		count = wifi.DefaultPingCount
	}
	var r pingResponse
	err := c.do(ctx, "ping", http.MethodPost, "/api/ping", pingRequest{Host: host, Count: count}, &r)
	if r.Host == "" {
		r.Host = host
	}
	var appErr *wifi.ApplicationError
	if err != nil && !errors.As(err, &appErr) {
		return wifi.PingResult{Host: host}, err
	}
	return r.PingResult, err
}

func (c *Client) Diagnostics(ctx context.Context) (wifi.Diagnostics, error) {
	var r diagnosticsResponse
	if err := c.do(ctx, "diagnostics", http.MethodGet, "/api/diagnostics", nil, &r); err != nil {
		return wifi.Diagnostics{}, err
	}
	return r.Diagnostics, nil
}

func (c *Client) Status(ctx context.Context) (wifi.Status, error) {
	var r statusResponse
	if err := c.do(ctx, "status", http.MethodGet, "/api/status", nil, &r); err != nil {
		return wifi.Status{}, err
	}
	return wifi.Status{Connection: r.state(), SavedCount: r.SavedCount}, nil
}
