package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Jar is an http.CookieJar that remembers every cookie it was handed so
// the set can be written to disk. The refresh cookie issued at login lives
// here and survives restarts.
type Jar struct {
	mu      sync.Mutex
	inner   *cookiejar.Jar
	path    string
	entries map[string]savedCookie
}

// savedCookie is the JSON structure written to disk.
type savedCookie struct {
	URL      string    `json:"url"`
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain,omitempty"`
	Path     string    `json:"path,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"http_only,omitempty"`
}

type savedJar struct {
	Cookies []savedCookie `json:"cookies"`
	SavedAt time.Time     `json:"saved_at"`
}

// NewJar creates a jar backed by path. An empty path keeps cookies in
// memory only. Cookies already stored at path are restored.
func NewJar(path string) (*Jar, error) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	j := &Jar{inner: inner, path: path, entries: make(map[string]savedCookie)}
	if path == "" {
		return j, nil
	}
	if err := j.load(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.inner.SetCookies(u, cookies)

	now := time.Now()
	for _, c := range cookies {
		key := cookieKey(u, c)
		expires := c.Expires
		if c.MaxAge > 0 {
			expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		if c.MaxAge < 0 || (!expires.IsZero() && expires.Before(now)) {
			delete(j.entries, key)
			continue
		}
		j.entries[key] = savedCookie{
			URL:      (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}).String(),
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}
	}
	_ = j.saveLocked()
}

func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	inner := j.inner
	j.mu.Unlock()
	return inner.Cookies(u)
}

// Save writes the current cookies to disk.
func (j *Jar) Save() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.saveLocked()
}

// Clear drops every cookie and removes the file.
func (j *Jar) Clear() error {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("creating cookie jar: %w", err)
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.inner = inner
	j.entries = make(map[string]savedCookie)
	if j.path == "" {
		return nil
	}
	if err := os.Remove(j.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing cookie file: %w", err)
	}
	return nil
}

// Len reports how many cookies the jar is tracking.
func (j *Jar) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

func (j *Jar) saveLocked() error {
	if j.path == "" {
		return nil
	}
	saved := savedJar{SavedAt: time.Now()}
	for _, c := range j.entries {
		saved.Cookies = append(saved.Cookies, c)
	}
	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return fmt.Errorf("creating cookie dir: %w", err)
	}
	return os.WriteFile(j.path, data, 0o600)
}

func (j *Jar) load() error {
	data, err := os.ReadFile(j.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading cookie file: %w", err)
	}

	var saved savedJar
	if err := json.Unmarshal(data, &saved); err != nil {
		// A corrupt file only costs the user a fresh login.
		return nil
	}

	now := time.Now()
	for _, sc := range saved.Cookies {
		if !sc.Expires.IsZero() && sc.Expires.Before(now) {
			continue
		}
		u, err := url.Parse(sc.URL)
		if err != nil {
			continue
		}
		c := &http.Cookie{
			Name:     sc.Name,
			Value:    sc.Value,
			Domain:   sc.Domain,
			Path:     sc.Path,
			Expires:  sc.Expires,
			Secure:   sc.Secure,
			HttpOnly: sc.HttpOnly,
		}
		j.inner.SetCookies(u, []*http.Cookie{c})
		j.entries[cookieKey(u, c)] = sc
	}
	return nil
}

func cookieKey(u *url.URL, c *http.Cookie) string {
	domain := c.Domain
	if domain == "" {
		domain = u.Hostname()
	}
	return domain + ";" + c.Path + ";" + c.Name
}
