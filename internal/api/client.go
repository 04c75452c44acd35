package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	userAgent      = "kaboocam/1.0"
	requestTimeout = 15 * time.Second

	// LoginPath is where an expired session sends the user.
	LoginPath = "/login"
)

// TokenStore holds the access token between requests.
type TokenStore interface {
	Token() string
	SetToken(token string) error
	ClearAll() error
}

// RequestOptions tunes a single request.
type RequestOptions struct {
	Params   url.Values
	Body     any
	Headers  http.Header
	SkipAuth bool
}

// Client is the board API client. It attaches the bearer token, unwraps
// the response envelope and recovers from an expired access token with one
// refresh and one replay.
type Client struct {
	baseURL string
	http    *http.Client
	jar     *Jar
	tokens  TokenStore
	logger  *zap.Logger

	refreshGroup singleflight.Group

	mu        sync.RWMutex
	onExpired func(redirect string)
}

type Option func(*Client)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithJar shares a cookie jar, typically a file-backed one.
func WithJar(jar *Jar) Option {
	return func(c *Client) { c.jar = jar }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithSessionExpired registers the hook called with LoginPath when the
// session cannot be recovered.
func WithSessionExpired(fn func(redirect string)) Option {
	return func(c *Client) { c.onExpired = fn }
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
		tokens:  tokens,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.jar == nil {
		jar, err := NewJar("")
		if err != nil {
			// An in-memory jar has no file to read.
			panic(fmt.Sprintf("api: creating cookie jar: %v", err))
		}
		c.jar = jar
	}
	c.http.Jar = c.jar
	return c
}

// SetSessionExpiredHandler replaces the session-expired hook. The UI sets
// it once the program exists.
func (c *Client) SetSessionExpiredHandler(fn func(redirect string)) {
	c.mu.Lock()
	c.onExpired = fn
	c.mu.Unlock()
}

// HTTPClient returns the underlying client. It shares the cookie jar, so
// CDN requests carry the signed cookies issued through this client.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Jar() *Jar {
	return c.jar
}

// Do performs a request and decodes the envelope's data into dst (which
// may be nil). A 401 triggers one token refresh and one replay.
func (c *Client) Do(ctx context.Context, method, path string, opts RequestOptions, dst any) error {
	return c.do(ctx, method, path, opts, false, dst)
}

func (c *Client) do(ctx context.Context, method, path string, opts RequestOptions, isRetry bool, dst any) error {
	resp, err := c.send(ctx, method, path, opts)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && !opts.SkipAuth {
		io.Copy(io.Discard, resp.Body)
		if isRetry {
			c.logger.Warn("request unauthorized after refresh",
				zap.String("method", method), zap.String("path", path))
			c.expireSession()
			return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
		}
		c.logger.Debug("access token rejected, refreshing",
			zap.String("method", method), zap.String("path", path))
		if _, err := c.RefreshAccessToken(ctx); err != nil {
			return err
		}
		return c.do(ctx, method, path, opts, true, dst)
	}
	return decodeInto(resp, dst)
}

// DoWithCredentials performs a single cookie-carrying request with no
// refresh handling. It is used by the auth endpoints themselves.
func (c *Client) DoWithCredentials(ctx context.Context, method, path string, body any, includeAuth bool, dst any) error {
	resp, err := c.send(ctx, method, path, RequestOptions{Body: body, SkipAuth: !includeAuth})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeInto(resp, dst)
}

func (c *Client) Get(ctx context.Context, path string, params url.Values, dst any) error {
	return c.Do(ctx, http.MethodGet, path, RequestOptions{Params: params}, dst)
}

func (c *Client) Post(ctx context.Context, path string, body, dst any) error {
	return c.Do(ctx, http.MethodPost, path, RequestOptions{Body: body}, dst)
}

func (c *Client) Put(ctx context.Context, path string, body, dst any) error {
	return c.Do(ctx, http.MethodPut, path, RequestOptions{Body: body}, dst)
}

func (c *Client) Patch(ctx context.Context, path string, body, dst any) error {
	return c.Do(ctx, http.MethodPatch, path, RequestOptions{Body: body}, dst)
}

func (c *Client) Delete(ctx context.Context, path string, dst any) error {
	return c.Do(ctx, http.MethodDelete, path, RequestOptions{}, dst)
}

// RefreshAccessToken exchanges the refresh cookie for a new access token.
// Concurrent callers share one PUT. On failure the session is purged and
// the expired hook fires.
func (c *Client) RefreshAccessToken(ctx context.Context) (string, error) {
	v, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		var out LoginResult
		err := c.DoWithCredentials(context.WithoutCancel(ctx), http.MethodPut, "/api/auth", nil, false, &out)
		if err == nil && out.AccessJWT == "" {
			err = fmt.Errorf("refresh response has no access token")
		}
		if err == nil {
			err = c.tokens.SetToken(out.AccessJWT)
		}
		if err != nil {
			c.logger.Warn("token refresh failed", zap.Error(err))
			c.expireSession()
			return "", err
		}
		c.logger.Debug("access token refreshed")
		return out.AccessJWT, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return v.(string), nil
}

func (c *Client) expireSession() {
	if err := c.tokens.ClearAll(); err != nil {
		c.logger.Warn("clearing session", zap.Error(err))
	}
	c.mu.RLock()
	fn := c.onExpired
	c.mu.RUnlock()
	if fn != nil {
		fn(LoginPath)
	}
}

func (c *Client) send(ctx context.Context, method, path string, opts RequestOptions) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, path, opts)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, opts RequestOptions) (*http.Request, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("parsing url %q: %w", path, err)
	}
	if len(opts.Params) > 0 {
		q := u.Query()
		for key, values := range opts.Params {
			for _, v := range values {
				if v != "" {
					q.Add(key, v)
				}
			}
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if opts.Body != nil {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !opts.SkipAuth {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	for key, values := range opts.Headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	return req, nil
}
