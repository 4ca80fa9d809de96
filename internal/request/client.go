// Package request implements the request-state controller every dashboard
// view is built on: one HTTP call at a time, exposed as an Outcome with
// data, a loading flag and a normalized error.
package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Doer performs HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options describes one request. The zero value is a GET without a body.
type Options struct {
	Method string
	Header http.Header
	// Body is JSON-encoded when non-nil.
	Body any
	// Form is sent as application/x-www-form-urlencoded when non-nil and Body is nil.
	Form url.Values
}

func (o Options) method() string {
	if o.Method == "" {
		return http.MethodGet
	}
	return o.Method
}

// Settlement is reported to observers once per invocation, after it settles.
type Settlement struct {
	Method   string
	Path     string
	Status   int
	Failure  *Failure
	Applied  bool
	Duration time.Duration
	At       time.Time
}

// Observer receives every settlement. Observers must not block.
type Observer func(Settlement)

// Client is the shared transport for all controllers of one dashboard session.
type Client struct {
	base     *url.URL
	doer     Doer
	jar      http.CookieJar
	logger   *slog.Logger
	expired  func(loginURL string)
	observer []Observer
	timeout  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithDoer replaces the default cookie-aware *http.Client.
func WithDoer(d Doer) Option {
	return func(c *Client) { c.doer = d }
}

// WithLogger sets the logger used for settlement logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithSessionExpired sets the callback run when the backend answers 401.
// It receives the login entry point at the API origin.
func WithSessionExpired(fn func(loginURL string)) Option {
	return func(c *Client) { c.expired = fn }
}

// WithObserver adds a settlement observer.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = append(c.observer, o) }
}

// WithTimeout sets the per-request timeout of the default transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a client rooted at baseURL (scheme and host required).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("request: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("request: base url must be absolute: %q", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("request: cookie jar: %w", err)
	}

	c := &Client{
		base:    base,
		jar:     jar,
		logger:  slog.Default(),
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.doer == nil {
		c.doer = &http.Client{Jar: jar, Timeout: c.timeout}
	}
	return c, nil
}

// Origin returns scheme://host of the API root.
func (c *Client) Origin() string {
	return c.base.Scheme + "://" + c.base.Host
}

// LoginURL returns the login entry point at the API origin.
func (c *Client) LoginURL() string {
	return c.Origin() + "/login"
}

// SetSession stores a session cookie for the API origin, replacing any
// previous value. Only the default transport consults the jar.
func (c *Client) SetSession(name, value string) {
	if name == "" {
		return
	}
	root := &url.URL{Scheme: c.base.Scheme, Host: c.base.Host, Path: "/"}
	c.jar.SetCookies(root, []*http.Cookie{{
		Name:   name,
		Value:  value,
		Path:   "/",
		Secure: c.base.Scheme == "https",
	}})
}

// resolve maps a path onto the API root. Absolute URLs must share its origin.
func (c *Client) resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}
	if ref.IsAbs() || ref.Host != "" {
		if !strings.EqualFold(ref.Scheme, c.base.Scheme) || !strings.EqualFold(ref.Host, c.base.Host) {
			return nil, fmt.Errorf("path %q is not on origin %s", path, c.Origin())
		}
		return ref, nil
	}
	// Join both forms so escapes such as %2F inside a segment survive.
	u := *c.base
	u.Path = strings.TrimSuffix(c.base.Path, "/") + "/" + strings.TrimPrefix(ref.Path, "/")
	u.RawPath = strings.TrimSuffix(c.base.EscapedPath(), "/") + "/" + strings.TrimPrefix(ref.EscapedPath(), "/")
	u.RawQuery = ref.RawQuery
	u.Fragment = ""
	return &u, nil
}

// exchange performs one request and returns the raw body of a 2xx response.
func (c *Client) exchange(ctx context.Context, path string, o Options) ([]byte, int, *Failure) {
	target, err := c.resolve(path)
	if err != nil {
		return nil, 0, &Failure{Kind: FailureTransport, Err: err}
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case o.Body != nil:
		raw, err := json.Marshal(o.Body)
		if err != nil {
			return nil, 0, &Failure{Kind: FailureTransport, Err: fmt.Errorf("encode body: %w", err)}
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	case o.Form != nil:
		body = strings.NewReader(o.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	req, err := http.NewRequestWithContext(ctx, o.method(), target.String(), body)
	if err != nil {
		return nil, 0, &Failure{Kind: FailureTransport, Err: err}
	}
	for k, vs := range o.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, 0, &Failure{Kind: FailureTransport, Err: err}
	}
	defer resp.Body.Close()

	if f := classifyStatus(resp.StatusCode); f != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, f
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &Failure{Kind: FailureTransport, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	return raw, resp.StatusCode, nil
}

func (c *Client) settle(s Settlement) {
	attrs := []any{
		slog.String("method", s.Method),
		slog.String("path", s.Path),
		slog.Int("status", s.Status),
		slog.Bool("applied", s.Applied),
		slog.Duration("duration", s.Duration),
	}
	switch {
	case s.Failure == nil:
		c.logger.Debug("request settled", attrs...)
	case s.Failure.Kind == FailureUnauthenticated:
		c.logger.Warn("session expired", append(attrs, slog.String("login_url", c.LoginURL()))...)
	default:
		c.logger.Warn("request failed", append(attrs,
			slog.String("kind", s.Failure.Kind.String()),
			slog.String("error", s.Failure.Error()))...)
	}
	for _, o := range c.observer {
		o(s)
	}
}

func (c *Client) sessionExpired() {
	if c.expired != nil {
		c.expired(c.LoginURL())
	}
}
