package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

const (
	defaultBaseURL  = "http://localhost:6060/api"
	requestTimeout  = 10 * time.Second
	userAgent       = "panelist/1.0"
	requestIDHeader = "X-Request-ID"

	// authCookie is the cookie the platform reads the bearer token from when
	// a request is sent with CredentialsInclude.
	authCookie = "auth_key"
)

// CredentialsMode controls whether and how the bearer credential is attached.
type CredentialsMode int

const (
	CredentialsOmit CredentialsMode = iota
	CredentialsInclude
	CredentialsBearer
)

func (m CredentialsMode) String() string {
	switch m {
	case CredentialsInclude:
		return "include"
	case CredentialsBearer:
		return "bearer"
	default:
		return "omit"
	}
}

// CredentialProvider supplies the opaque bearer credential held by the
// hosting session. ok is false when there is none.
type CredentialProvider interface {
	Credential() (token string, ok bool)
}

// Request is the option set of a single remote call.
type Request struct {
	Method      string
	Path        string
	Header      http.Header
	Credentials CredentialsMode
	// Body is JSON-encoded when non-nil.
	Body any
}

// Client is the comics platform API client.
type Client struct {
	http     *http.Client
	baseURL  string
	creds    CredentialProvider
	logger   *zap.Logger
	retryMax int
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API root, e.g. "http://localhost:6060/api".
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithCredentials sets the credential provider used by requests that
// include credentials.
func WithCredentials(p CredentialProvider) Option {
	return func(c *Client) { c.creds = p }
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request, including body reads.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRetry wraps the transport so that connection errors, 429 and 5xx
// responses are retried up to max times. Zero disables retries. Loaders never
// retry on their own; this is the opt-in wrapper for callers that want it.
func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

// NewClient creates a new API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: requestTimeout},
		baseURL: defaultBaseURL,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retryMax > 0 {
		c.http = retryingClient(c.http, c.retryMax, c.logger)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs req and decodes a successful JSON response into dst. dst may
// be nil when the body is not needed. Non-2xx responses are returned as
// *Error; failures to reach the server as *TransportError.
func (c *Client) Do(ctx context.Context, req Request, dst any) error {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return &TransportError{Method: httpReq.Method, URL: httpReq.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("api response",
		zap.String("request_id", httpReq.Header.Get(requestIDHeader)),
		zap.String("method", httpReq.Method),
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return parseError(resp.StatusCode, body)
	}

	if dst == nil {
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: httpReq.Method, URL: httpReq.URL.String(), Err: err}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decoding response from %s: %w", req.Path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	url := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("Accept", "application/json")
	if httpReq.Header.Get(requestIDHeader) == "" {
		httpReq.Header.Set(requestIDHeader, uuid.NewString())
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if req.Credentials != CredentialsOmit && c.creds != nil {
		if token, ok := c.creds.Credential(); ok {
			switch req.Credentials {
			case CredentialsBearer:
				httpReq.Header.Set("Authorization", "Bearer "+token)
			case CredentialsInclude:
				httpReq.AddCookie(&http.Cookie{Name: authCookie, Value: token})
			}
		}
	}
	return httpReq, nil
}

func retryingClient(base *http.Client, max int, logger *zap.Logger) *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = max
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = retryLogger{logger.Sugar()}
	// Hand the last response back so the status and body can be mapped
	// like any other failure.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if base.Transport != nil {
		rc.HTTPClient.Transport = base.Transport
	}
	hc := rc.StandardClient()
	hc.Timeout = base.Timeout
	return hc
}

// retryLogger adapts zap to retryablehttp.LeveledLogger.
type retryLogger struct {
	s *zap.SugaredLogger
}

func (l retryLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l retryLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l retryLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l retryLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
