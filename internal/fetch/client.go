package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds one request including reading the body.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodySize is the largest page accepted.
	DefaultMaxBodySize int64 = 5 << 20

	// DefaultUserAgent is sent unless overridden.
	DefaultUserAgent = "listat/1.0 (+https://github.com/nao1215/listat)"
)

// Client fetches statistics pages over HTTP.
type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *slog.Logger
	userAgent   string
	maxBodySize int64

	timeout   time.Duration
	proxyAddr string
	cookie    string
	headers   http.Header
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxBodySize caps the accepted page size in bytes.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		c.maxBodySize = n
	}
}

// WithRateLimit allows at most rps requests per second across all
// goroutines using the client. rps <= 0 disables the limit.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithProxy routes all connections through a SOCKS5 proxy at host:port.
func WithProxy(addr string) Option {
	return func(c *Client) {
		c.proxyAddr = addr
	}
}

// WithCookie sends a raw Cookie header value with every request that does
// not carry its own.
func WithCookie(cookie string) Option {
	return func(c *Client) {
		c.cookie = cookie
	}
}

// WithHeaders sends headers with every request. A header set on the
// Request wins; these in turn replace the client's Accept and
// Accept-Language defaults.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		if len(headers) == 0 {
			c.headers = nil
			return
		}
		c.headers = make(http.Header, len(headers))
		for k, v := range headers {
			c.headers.Set(k, v)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying client. Proxy and transport
// options other than cookies and headers are ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Client.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		logger:      slog.Default(),
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		transport, err := c.newTransport()
		if err != nil {
			return nil, err
		}
		c.httpClient = &http.Client{
			Transport: transport,
			Timeout:   c.timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}

	if c.cookie != "" || len(c.headers) > 0 {
		base := c.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		hc := *c.httpClient
		hc.Transport = &headerInjectingTransport{
			base:    base,
			cookie:  c.cookie,
			headers: c.headers,
		}
		c.httpClient = &hc
	}

	return c, nil
}

// newTransport builds the transport, dialing through the proxy if set.
func (c *Client) newTransport() (http.RoundTripper, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 4
	transport.IdleConnTimeout = 30 * time.Second

	if c.proxyAddr == "" {
		return transport, nil
	}
	if !isValidProxyAddress(c.proxyAddr) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProxyAddress, c.proxyAddr)
	}

	dialer, err := proxy.SOCKS5("tcp", c.proxyAddr, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	transport.Proxy = nil
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		transport.DialContext = cd.DialContext
	} else {
		transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	}
	return transport, nil
}

// isValidProxyAddress checks for "host:port" with a port in 1..65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}

// Fetch loads req.URL and returns the body decoded to UTF-8.
func (c *Client) Fetch(ctx context.Context, req Request) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	for key, value := range defaultHeaders {
		if c.headers.Get(key) == "" {
			httpReq.Header.Set(key, value)
		}
	}
	if req.Cookie != "" {
		httpReq.Header.Set("Cookie", req.Cookie)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("fetched page",
		"source", req.SourceID,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return "", &StatusError{URL: req.URL, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(raw)) > c.maxBodySize {
		return "", fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, c.maxBodySize)
	}

	return decodeBody(raw, resp.Header.Get("Content-Type"))
}

// defaultHeaders are sent unless the client is configured with its own.
var defaultHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml",
	"Accept-Language": "ru,en;q=0.8",
}

// headerInjectingTransport fills in the client-wide cookie and headers on
// requests that do not set them.
type headerInjectingTransport struct {
	base    http.RoundTripper
	cookie  string
	headers http.Header
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if t.cookie != "" && clone.Header.Get("Cookie") == "" {
		clone.Header.Set("Cookie", t.cookie)
	}
	for key, values := range t.headers {
		if clone.Header.Get(key) == "" {
			clone.Header[key] = values
		}
	}

	return t.base.RoundTrip(clone)
}
