// Package cdn fetches images from the CDN, which authorizes requests with
// signed cookies issued by the API.
package cdn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	defaultIssueTimeout = 10 * time.Second
	defaultConcurrency  = 6
)

// maxImageBytes caps a single download.
var maxImageBytes int64 = 20 << 20

var (
	ErrNoBaseURL     = errors.New("cdn base url is required")
	ErrImageTooLarge = errors.New("image exceeds 20MB")
)

// CookieIssuer asks the backend to set the CDN signed cookies.
type CookieIssuer interface {
	IssueSignedCookie(ctx context.Context) error
}

// Accessor loads images and makes sure signed cookies exist first. The
// cookie state moves from not-ready to ready once and never back; at most
// one issuance is in flight at a time.
type Accessor struct {
	http         *http.Client
	issuer       CookieIssuer
	logger       *zap.Logger
	issueTimeout time.Duration
	concurrency  int

	ready atomic.Bool
	group singleflight.Group
}

type Option func(*Accessor)

func WithLogger(logger *zap.Logger) Option {
	return func(a *Accessor) { a.logger = logger }
}

func WithIssueTimeout(d time.Duration) Option {
	return func(a *Accessor) { a.issueTimeout = d }
}

func WithConcurrency(n int) Option {
	return func(a *Accessor) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// New creates an accessor. httpClient must share the cookie jar the issuer
// writes to.
func New(httpClient *http.Client, issuer CookieIssuer, opts ...Option) *Accessor {
	a := &Accessor{
		http:         httpClient,
		issuer:       issuer,
		logger:       zap.NewNop(),
		issueTimeout: defaultIssueTimeout,
		concurrency:  defaultConcurrency,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// GetURL joins the base and the object key with exactly one slash.
func GetURL(cdnBaseURL, objectKey string) (string, error) {
	if cdnBaseURL == "" {
		return "", ErrNoBaseURL
	}
	return strings.TrimSuffix(cdnBaseURL, "/") + "/" + objectKey, nil
}

func (a *Accessor) Ready() bool {
	return a.ready.Load()
}

// EnsureCookie returns once signed cookies are available. Concurrent callers
// share a single issuance and all see its outcome. A failed issuance leaves
// the state not-ready so a later call can try again.
func (a *Accessor) EnsureCookie(ctx context.Context) error {
	if a.ready.Load() {
		return nil
	}
	ch := a.group.DoChan("signed-cookie", func() (any, error) {
		if a.ready.Load() {
			return nil, nil
		}
		issueCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.issueTimeout)
		defer cancel()
		if err := a.issuer.IssueSignedCookie(issueCtx); err != nil {
			a.logger.Warn("signed cookie issuance failed", zap.Error(err))
			return nil, err
		}
		a.ready.Store(true)
		a.logger.Debug("signed cookie issued")
		return nil, nil
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FetchImage downloads one image. A 401 or 403 seen while cookies were not
// yet ready triggers issuance and exactly one retry.
func (a *Accessor) FetchImage(ctx context.Context, cdnBaseURL, objectKey string) ([]byte, error) {
	u, err := GetURL(cdnBaseURL, objectKey)
	if err != nil {
		return nil, err
	}

	wasReady := a.ready.Load()
	data, status, err := a.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("loading image %s: %w", objectKey, err)
	}
	if (status == http.StatusUnauthorized || status == http.StatusForbidden) && !wasReady {
		if err := a.EnsureCookie(ctx); err != nil {
			return nil, fmt.Errorf("loading image %s: %w", objectKey, err)
		}
		data, status, err = a.get(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("loading image %s: %w", objectKey, err)
		}
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("failed to load image %s: HTTP %d", objectKey, status)
	}
	return data, nil
}

// FetchImages downloads every key concurrently. Results keep the input
// order; any failure fails the whole batch.
func (a *Accessor) FetchImages(ctx context.Context, cdnBaseURL string, objectKeys []string) ([][]byte, error) {
	if len(objectKeys) == 0 {
		return [][]byte{}, nil
	}
	results := make([][]byte, len(objectKeys))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, key := range objectKeys {
		g.Go(func() error {
			data, err := a.FetchImage(ctx, cdnBaseURL, key)
			if err != nil {
				return err
			}
			results[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// FetchURL downloads an already signed absolute URL.
func (a *Accessor) FetchURL(ctx context.Context, rawURL string) ([]byte, error) {
	data, status, err := a.get(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("loading image: %w", err)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("failed to load image: HTTP %d", status)
	}
	return data, nil
}

func (a *Accessor) get(ctx context.Context, u string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	resp, err := a.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, nil
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading body: %w", err)
	}
	if int64(len(data)) > maxImageBytes {
		return nil, resp.StatusCode, ErrImageTooLarge
	}
	return data, resp.StatusCode, nil
}
