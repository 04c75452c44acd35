package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaboocam/kaboocam/internal/ui/uitest"
)

// run executes one command line against backend b with a private cache dir.
func run(t *testing.T, b *uitest.Backend, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))
	root.SetIn(strings.NewReader(stdin))
	if b != nil {
		args = append(args, "--api", b.URL)
	}
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("KABOOCAM_CACHE_DIR", t.TempDir())
	t.Setenv("KABOOCAM_API_BASE_URL", "")
	t.Setenv("PORT", "")
}

func TestVersion(t *testing.T) {
	out, err := run(t, nil, "", "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)

	out, err = run(t, nil, "", "version", "--json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "dev", info["version"])
	assert.Contains(t, info, "goVersion")
}

func TestLoginWhoamiLogout(t *testing.T) {
	setupEnv(t)
	b := uitest.NewBackend(t)
	b.Reply("POST /api/auth", http.StatusOK, map[string]any{"accessJwt": "access-token"})
	b.Reply("GET /api/members", http.StatusOK, map[string]any{"id": "1", "name": "mina", "email": "mina@example.com"})
	b.Reply("DELETE /api/auth", http.StatusOK, nil)

	out, err := run(t, b, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")

	out, err = run(t, b, "secret-pass\n", "login", "-e", "mina@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as mina")
	body := b.Body("POST /api/auth")
	assert.Equal(t, "mina@example.com", body["email"])
	assert.Equal(t, "secret-pass", body["password"])
	assert.NotEmpty(t, body["deviceId"])

	out, err = run(t, b, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "mina <mina@example.com>")

	out, err = run(t, b, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
	assert.Contains(t, b.Requests(), "DELETE /api/auth")

	out, err = run(t, b, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")
}

func TestLoginPromptsForEmail(t *testing.T) {
	setupEnv(t)
	b := uitest.NewBackend(t)
	b.Reply("POST /api/auth", http.StatusOK, map[string]any{"accessJwt": "access-token"})
	b.Reply("GET /api/members", http.StatusOK, map[string]any{"id": "1", "name": "mina"})

	out, err := run(t, b, "mina@example.com\nsecret-pass\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Email: ")
	assert.Contains(t, out, "Logged in as mina")
}

func TestLoginRejectsBadInput(t *testing.T) {
	setupEnv(t)
	b := uitest.NewBackend(t)

	_, err := run(t, b, "secret-pass\n", "login", "-e", "mina@example")
	assert.EqualError(t, err, "That doesn't look like an email address")

	_, err = run(t, b, "short\n", "login", "-e", "mina@example.com")
	assert.ErrorContains(t, err, "at least 8")
	assert.Empty(t, b.Requests())
}

func TestLoginFailureIsReported(t *testing.T) {
	setupEnv(t)
	b := uitest.NewBackend(t)
	b.Reply("POST /api/auth", http.StatusBadRequest, "Wrong email or password")

	_, err := run(t, b, "secret-pass\n", "login", "-e", "mina@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Wrong email or password")
}

func TestLogoutWithoutSession(t *testing.T) {
	setupEnv(t)
	b := uitest.NewBackend(t)
	out, err := run(t, b, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")
	assert.Empty(t, b.Requests())
}

func TestPosts(t *testing.T) {
	setupEnv(t)
	b := uitest.NewBackend(t)
	b.Handle("GET /api/posts", func(w http.ResponseWriter, r *http.Request) {
		title := "Morning walk"
		if r.URL.Query().Get("strategy") == "POPULAR" {
			title = "Best sunset"
		}
		uitest.Envelope(w, http.StatusOK, map[string]any{"posts": map[string]any{"items": []any{
			map[string]any{"postId": "1", "title": title, "author": map[string]any{"name": "joon"}, "like": map[string]any{"count": 3}},
			map[string]any{"postId": "2", "title": "Second", "commentCount": 5},
		}}})
	})

	out, err := run(t, b, "", "posts")
	require.NoError(t, err)
	assert.Contains(t, out, "Morning walk")
	assert.Contains(t, out, "joon")
	assert.Contains(t, out, "TITLE")

	out, err = run(t, b, "", "posts", "--popular", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Best sunset")
	assert.NotContains(t, out, "Second")

	out, err = run(t, b, "", "posts", "--json")
	require.NoError(t, err)
	var posts []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &posts))
	assert.Len(t, posts, 2)
}

func TestPostsEmpty(t *testing.T) {
	setupEnv(t)
	b := uitest.NewBackend(t)
	b.Reply("GET /api/posts", http.StatusOK, map[string]any{"posts": map[string]any{"items": []any{}}})

	out, err := run(t, b, "", "posts")
	require.NoError(t, err)
	assert.Equal(t, "No posts yet.\n", out)
}

func TestServeStopsWithContext(t *testing.T) {
	setupEnv(t)
	root := NewRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetArgs([]string{"serve", "--port", "0"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, root.ExecuteContext(ctx))
}

func TestFlagsOverrideEnv(t *testing.T) {
	setupEnv(t)
	t.Setenv("PORT", "4000")
	opts := &options{apiURL: "http://api.test", staticDir: "/srv/pages", verbose: true}
	cfg, err := opts.config()
	require.NoError(t, err)
	assert.Equal(t, "http://api.test", cfg.APIBaseURL)
	assert.Equal(t, "4000", cfg.Server.Port)
	assert.Equal(t, "/srv/pages", cfg.Server.StaticDir)
	assert.Equal(t, "debug", cfg.LogLevel)

	opts.port = "web"
	_, err = opts.config()
	assert.Error(t, err)
}
