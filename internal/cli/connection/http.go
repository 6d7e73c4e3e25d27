package connection

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
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/unionhub-go/internal/infra/buildinfo"
	"github.com/yndnr/unionhub-go/internal/infra/tlsroots"
	"github.com/yndnr/unionhub-go/internal/telemetry/logger"
	"github.com/yndnr/unionhub-go/internal/telemetry/metric"
)

// Defaults.
const (
	DefaultBaseURL = "http://localhost:7860/api"
	DefaultTimeout = 30 * time.Second

	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 1 << 20
)

// Header names.
const (
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
	HeaderContentType   = "Content-Type"
)

// TokenSource supplies the bearer token for outgoing requests. An empty
// token means the request is sent without an Authorization header.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource with a fixed value.
type StaticToken string

// Token implements TokenSource.
func (t StaticToken) Token() string { return string(t) }

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	Burst     int
	CAFile    string
	UserAgent string
	Logger    logger.Logger
	Metrics   *metric.ClientMetrics
	Transport http.RoundTripper
}

// Response is a successful API response with its body read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

// Client sends requests to the API.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
	logger    logger.Logger
	metrics   *metric.ClientMetrics

	mu     sync.RWMutex
	tokens TokenSource
}

// NewClient creates a client for the API at opts.BaseURL.
func NewClient(opts Options) (*Client, error) {
	baseURL, err := NormalizeBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := opts.Transport
	if transport == nil && opts.CAFile != "" {
		tlsCfg, err := tlsroots.ClientConfig(opts.CAFile)
		if err != nil {
			return nil, fmt.Errorf("load CA file: %w", err)
		}
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = tlsCfg
		transport = t
	}

	c := &Client{
		baseURL:   baseURL,
		userAgent: opts.UserAgent,
		http:      &http.Client{Timeout: timeout, Transport: transport},
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}
	if c.userAgent == "" {
		c.userAgent = buildinfo.UserAgent()
	}
	if c.logger == nil {
		c.logger = logger.Default()
	}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return c, nil
}

// NormalizeBaseURL adds http:// when the scheme is missing and trims the
// trailing slash.
func NormalizeBaseURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		s = DefaultBaseURL
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		s = "http://" + s
	}
	s = strings.TrimRight(s, "/")

	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", raw, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q: missing host", raw)
	}
	return s, nil
}

// WithQuery appends encoded query values to path.
func WithQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + q.Encode()
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// UseTokenSource installs the source of the bearer token.
func (c *Client) UseTokenSource(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

func (c *Client) token() string {
	c.mu.RLock()
	ts := c.tokens
	c.mu.RUnlock()
	if ts == nil {
		return ""
	}
	return ts.Token()
}

// WithNewRequestID returns ctx carrying a fresh request ID. Do sends it as
// X-Request-ID and callers log with it, so one action shares one ID.
func WithNewRequestID(ctx context.Context) context.Context {
	return logger.WithRequestID(ctx, ulid.Make().String())
}

// Do sends a request. body may be nil, url.Values (form-encoded), an
// io.Reader (sent as is, Content-Type must be given in headers), []byte,
// or any value to be JSON-encoded. Every error is an *Error.
func (c *Client) Do(ctx context.Context, method, path string, body any, headers http.Header) (*Response, error) {
	reqID := logger.RequestIDFromContext(ctx)
	if reqID == "" {
		ctx = WithNewRequestID(ctx)
		reqID = logger.RequestIDFromContext(ctx)
	}
	log := c.logger.WithContext(ctx).With("method", method, "path", path)

	reader, contentType, size, err := encodeBody(body)
	if err != nil {
		return nil, withRequestID(err, reqID)
	}

	target, err := c.resolve(path)
	if err != nil {
		return nil, withRequestID(setupError("invalid request path %q", err, path), reqID)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, withRequestID(setupError("build %s request", err, method), reqID)
	}
	if size >= 0 && reader != nil {
		req.ContentLength = size
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, reqID)
	if contentType != "" {
		req.Header.Set(HeaderContentType, contentType)
	}
	for k, vs := range headers {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if tok := c.token(); tok != "" {
		req.Header.Set(HeaderAuthorization, "Bearer "+tok)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.metrics.Observe(method, path, metric.OutcomeSetup, 0)
			return nil, withRequestID(setupError("rate limit wait", err), reqID)
		}
	}

	done := c.metrics.Start()
	start := time.Now()
	resp, err := c.http.Do(req)
	done()
	elapsed := time.Since(start)

	if err != nil {
		c.metrics.Observe(method, path, metric.OutcomeNoResponse, elapsed)
		log.Debug("api request failed", "duration", elapsed, "error", err)
		return nil, &Error{
			Kind:      KindNoResponse,
			Message:   noResponseMessage(err),
			RequestID: reqID,
			Cause:     err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.metrics.Observe(method, path, metric.OutcomeServerError, elapsed)
		e := serverError(resp.StatusCode, data)
		e.RequestID = reqID
		log.Debug("api request rejected", "status", resp.StatusCode, "duration", elapsed, "message", e.Message)
		return nil, e
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.Observe(method, path, metric.OutcomeNoResponse, elapsed)
		return nil, &Error{
			Kind:      KindNoResponse,
			Status:    resp.StatusCode,
			Message:   MsgNoResponse,
			RequestID: reqID,
			Cause:     err,
		}
	}

	c.metrics.Observe(method, path, metric.OutcomeSuccess, elapsed)
	log.Debug("api request", "status", resp.StatusCode, "duration", elapsed, "bytes", len(data))

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		RequestID:  reqID,
	}, nil
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, nil)
}

// PostJSON sends a POST request with a JSON body.
func (c *Client) PostJSON(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, nil)
}

// PutJSON sends a PUT request with a JSON body.
func (c *Client) PutJSON(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body, nil)
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// PostForm sends a POST request with a form-encoded body.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values) (*Response, error) {
	if form == nil {
		form = url.Values{}
	}
	return c.Do(ctx, http.MethodPost, path, form, nil)
}

// DecodeJSON decodes a successful response body into target.
func DecodeJSON(resp *Response, target any) error {
	if target == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, target); err != nil {
		return &Error{
			Kind:      KindServerError,
			Status:    resp.StatusCode,
			Message:   "invalid response from server",
			RequestID: resp.RequestID,
			Cause:     err,
		}
	}
	return nil
}

func (c *Client) resolve(path string) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// sized is implemented by request bodies that know their length.
type sized interface {
	Size() int64
}

func encodeBody(body any) (io.Reader, string, int64, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", -1, nil
	case url.Values:
		enc := b.Encode()
		return strings.NewReader(enc), "application/x-www-form-urlencoded", int64(len(enc)), nil
	case []byte:
		return bytes.NewReader(b), "", int64(len(b)), nil
	case io.Reader:
		if s, ok := b.(sized); ok {
			return b, "", s.Size(), nil
		}
		return b, "", -1, nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, "", -1, setupError("encode request body", err)
		}
		return bytes.NewReader(data), "application/json", int64(len(data)), nil
	}
}

func noResponseMessage(err error) string {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return MsgNetworkUnreachable
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return MsgNetworkUnreachable
	}
	return MsgNoResponse
}

func withRequestID(err error, reqID string) error {
	var e *Error
	if errors.As(err, &e) {
		e.RequestID = reqID
		return e
	}
	return err
}
