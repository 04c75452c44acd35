// Package uitest runs page models against a fake backend.
package uitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kaboocam/kaboocam/internal/api"
	"github.com/kaboocam/kaboocam/internal/cache"
	"github.com/kaboocam/kaboocam/internal/cdn"
	"github.com/kaboocam/kaboocam/internal/config"
	"github.com/kaboocam/kaboocam/internal/store"
	"github.com/kaboocam/kaboocam/internal/ui/common"
)

// Backend is an httptest server answering "METHOD /path" routes with
// envelope responses. Unrouted requests get 404.
type Backend struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []string
	bodies   map[string][]byte
}

func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{routes: map[string]http.HandlerFunc{}, bodies: map[string][]byte{}}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)
	return b
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + r.URL.Path
	var body []byte
	if r.Body != nil {
		body, _ = io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
	}
	b.mu.Lock()
	b.requests = append(b.requests, route)
	b.bodies[route] = body
	h := b.routes[route]
	b.mu.Unlock()
	if h == nil {
		Envelope(w, http.StatusNotFound, nil)
		return
	}
	h(w, r)
}

// Handle routes "METHOD /path" to h.
func (b *Backend) Handle(route string, h http.HandlerFunc) {
	b.mu.Lock()
	b.routes[route] = h
	b.mu.Unlock()
}

// Reply answers route with a fixed envelope.
func (b *Backend) Reply(route string, status int, data any) {
	b.Handle(route, func(w http.ResponseWriter, r *http.Request) {
		Envelope(w, status, data)
	})
}

// Requests lists every route hit so far.
func (b *Backend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

// Body returns the JSON body last sent to route.
func (b *Backend) Body(route string) map[string]any {
	b.mu.Lock()
	raw := b.bodies[route]
	b.mu.Unlock()
	out := map[string]any{}
	_ = json.Unmarshal(raw, &out)
	return out
}

// Envelope writes a standard response envelope.
func Envelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	msg := http.StatusText(status)
	if m, ok := data.(string); ok && status >= 300 {
		msg = m
		data = nil
	}
	json.NewEncoder(w).Encode(map[string]any{
		"isSuccess": status < 300,
		"code":      status,
		"message":   msg,
		"data":      data,
	})
}

// Deps wires a client, cache and CDN accessor to b. With loggedIn set, the
// store holds a token and a member named "mina".
func Deps(t *testing.T, b *Backend, loggedIn bool) common.Deps {
	t.Helper()
	dir := t.TempDir()
	db, err := cache.Open(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := store.New(store.NewMemory())
	if loggedIn {
		require.NoError(t, st.SetToken("tok"))
		require.NoError(t, st.SetUser(api.Member{ID: "1", Name: "mina", Email: "mina@example.com"}))
	}

	cfg := config.Default()
	cfg.APIBaseURL = b.URL
	cfg.CacheDir = dir
	cfg.ImageDir = filepath.Join(dir, "images")
	cfg.RequestTimeout = 5 * time.Second

	client := api.NewClient(b.URL, st, api.WithTimeout(cfg.RequestTimeout))
	return common.Deps{
		Cfg:    cfg,
		Client: client,
		CDN:    cdn.New(client.HTTPClient(), client),
		Cache:  db,
		Store:  st,
		Logger: zap.NewNop(),
	}
}

// Key builds the key message for s, e.g. "enter", "ctrl+s" or "hello".
func Key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// Exec runs cmd and every command batched inside it, returning the
// messages they produce. Only use it on commands that do not tick.
func Exec(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, Exec(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// Find returns the first message of type T.
func Find[T any](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// PNG is the smallest header mimetype recognises as image/png.
var PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

// ImageFile writes PNG to a temp file called name and returns its path.
func ImageFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, PNG, 0o600))
	return path
}
