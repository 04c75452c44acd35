package login

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaboocam/kaboocam/internal/api"
	"github.com/kaboocam/kaboocam/internal/ui/messages"
	"github.com/kaboocam/kaboocam/internal/ui/uitest"
)

func TestInvalidFormNeverReachesNetwork(t *testing.T) {
	b := uitest.NewBackend(t)
	m := New(uitest.Deps(t, b, false), "")

	m, _ = m.Update(uitest.Key("mina@example"))
	m, cmd := m.Update(uitest.Key("enter"))
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "doesn't look like an email")
	assert.Empty(t, b.Requests())
}

func TestLoginStoresSession(t *testing.T) {
	b := uitest.NewBackend(t)
	b.Reply("POST /api/auth", http.StatusOK, map[string]any{"accessJwt": "jwt-1"})
	b.Reply("GET /api/members", http.StatusOK, map[string]any{"id": 7, "name": "mina", "email": "mina@example.com"})
	deps := uitest.Deps(t, b, false)

	m := New(deps, "mina@example.com")
	m, _ = m.Update(uitest.Key("password1"))
	m, cmd := m.Update(uitest.Key("enter"))
	require.NotNil(t, cmd)
	assert.True(t, m.Loading())

	res, ok := uitest.Find[messages.LoginResultMsg](uitest.Exec(cmd))
	require.True(t, ok)
	require.NoError(t, res.Err)

	assert.Equal(t, "jwt-1", deps.Store.Token())
	var member api.Member
	found, err := deps.Store.User(&member)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "mina", member.Name)
	assert.Equal(t, api.ID("7"), member.ID)
	assert.Equal(t, "mina@example.com", b.Body("POST /api/auth")["email"])
	assert.NotEmpty(t, b.Body("POST /api/auth")["deviceId"])

	m, _ = m.Update(res)
	assert.False(t, m.Loading())
}

func TestLoginFailureShowsBackendMessage(t *testing.T) {
	b := uitest.NewBackend(t)
	b.Reply("POST /api/auth", http.StatusBadRequest, "Wrong email or password")
	m := New(uitest.Deps(t, b, false), "mina@example.com")

	m, _ = m.Update(uitest.Key("password1"))
	m, cmd := m.Update(uitest.Key("enter"))
	res, ok := uitest.Find[messages.LoginResultMsg](uitest.Exec(cmd))
	require.True(t, ok)
	require.Error(t, res.Err)

	m, _ = m.Update(res)
	assert.Contains(t, m.View(), "Wrong email or password")
}

func TestLinksNavigate(t *testing.T) {
	m := New(uitest.Deps(t, uitest.NewBackend(t), false), "")
	_, cmd := m.Update(uitest.Key("ctrl+n"))
	assert.Equal(t, messages.NavigateMsg{Path: "/signup"}, cmd())
	_, cmd = m.Update(uitest.Key("ctrl+r"))
	assert.Equal(t, messages.NavigateMsg{Path: "/recover"}, cmd())
}
