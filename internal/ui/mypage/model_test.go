package mypage

import (
	"net/http"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaboocam/kaboocam/internal/api"
	"github.com/kaboocam/kaboocam/internal/ui/messages"
	"github.com/kaboocam/kaboocam/internal/ui/uitest"
)

var profile = map[string]any{"id": 1, "email": "mina@example.com", "name": "mina"}

func loaded(t *testing.T, b *uitest.Backend) Model {
	t.Helper()
	m := New(uitest.Deps(t, b, true))
	m.SetSize(100, 40)
	msg, ok := uitest.Find[messages.ProfileLoadedMsg](uitest.Exec(m.Init()))
	require.True(t, ok)
	m, _ = m.Update(msg)
	return m
}

func send(m Model, keys ...string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		m, cmd = m.Update(uitest.Key(k))
	}
	return m, cmd
}

func TestProfileLoadsAndIsCached(t *testing.T) {
	b := uitest.NewBackend(t)
	b.Reply("GET /api/members", http.StatusOK, profile)
	m := loaded(t, b)

	require.NotNil(t, m.Member())
	view := m.View()
	assert.Contains(t, view, "mina@example.com")
	assert.Contains(t, view, "change nickname")

	again := New(m.deps)
	msg, ok := uitest.Find[messages.ProfileLoadedMsg](uitest.Exec(again.Init()))
	require.True(t, ok)
	assert.Equal(t, "mina", msg.Member.Name)
	assert.Equal(t, []string{"GET /api/members"}, b.Requests())
}

func TestChangeNickname(t *testing.T) {
	b := uitest.NewBackend(t)
	b.Reply("GET /api/members", http.StatusOK, profile)
	b.Reply("PATCH /api/members/names", http.StatusOK, nil)
	m := loaded(t, b)

	m, _ = send(m, "n")
	require.True(t, m.InputActive())
	m, cmd := send(m, "enter")
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "already your nickname")

	m, cmd = send(m, "2", "enter")
	require.NotNil(t, cmd)
	m, cmd = m.Update(cmd())
	assert.False(t, m.InputActive())
	assert.Equal(t, "mina2", b.Body("PATCH /api/members/names")["name"])

	msgs := uitest.Exec(cmd)
	toast, _ := uitest.Find[messages.ToastMsg](msgs)
	assert.Equal(t, "Nickname changed", toast.Text)
	session, ok := uitest.Find[messages.SessionChangedMsg](msgs)
	require.True(t, ok)
	assert.Equal(t, messages.SessionChangedMsg{Name: "mina2", LoggedIn: true}, session)
	_, reloaded := uitest.Find[messages.ProfileLoadedMsg](msgs)
	assert.True(t, reloaded)
}

func TestNicknameTooShort(t *testing.T) {
	b := uitest.NewBackend(t)
	b.Reply("GET /api/members", http.StatusOK, profile)
	m := loaded(t, b)

	m, _ = send(m, "n", "backspace", "backspace", "backspace", "enter")
	assert.Contains(t, m.View(), "at least 2 characters")

	m, _ = send(m, "esc")
	assert.False(t, m.InputActive())
	assert.NotContains(t, m.View(), "at least 2")
}

func TestChangePassword(t *testing.T) {
	b := uitest.NewBackend(t)
	b.Reply("GET /api/members", http.StatusOK, profile)
	b.Reply("PATCH /api/members/passwords", http.StatusBadRequest, "Current password is wrong")
	m := loaded(t, b)

	m, _ = send(m, "p", "oldpass1", "enter", "newpass12", "enter", "newpass13", "enter")
	assert.Contains(t, m.View(), "Passwords do not match")

	m, _ = send(m, "backspace", "2")
	m, cmd := send(m, "ctrl+s")
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())
	assert.True(t, m.InputActive(), "the form stays open on failure")
	assert.Contains(t, m.View(), "Current password is wrong")
	body := b.Body("PATCH /api/members/passwords")
	assert.Equal(t, "oldpass1", body["oldPassword"])
	assert.Equal(t, "newpass12", body["newPassword"])
}

func TestChangeProfileImage(t *testing.T) {
	b := uitest.NewBackend(t)
	b.Reply("GET /api/members", http.StatusOK, profile)
	b.Reply("POST /api/members/images/presigned-url", http.StatusOK, map[string]any{
		"presignedUrl": b.URL + "/s3/me", "objectKey": "profiles/me.png",
	})
	b.Reply("PUT /s3/me", http.StatusOK, nil)
	b.Reply("PATCH /api/members/profileImages", http.StatusOK, nil)
	m := loaded(t, b)

	m, cmd := send(m, "i", uitest.ImageFile(t, "me.png"), "enter")
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())
	assert.False(t, m.InputActive())
	assert.Equal(t, "profiles/me.png", b.Body("PATCH /api/members/profileImages")["imageObjectKey"])
}

func TestDeleteAccount(t *testing.T) {
	b := uitest.NewBackend(t)
	b.Reply("GET /api/members", http.StatusOK, profile)
	b.Reply("DELETE /api/members", http.StatusOK, nil)
	m := loaded(t, b)

	m, cmd := send(m, "D")
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Delete your account?")
	m, cmd = send(m, "n")
	assert.Nil(t, cmd)
	assert.NotContains(t, b.Requests(), "DELETE /api/members")

	m, _ = send(m, "D")
	m, cmd = send(m, "y")
	m, cmd = m.Update(cmd())
	assert.Nil(t, m.Member())
	assert.False(t, m.deps.Store.HasToken())

	msgs := uitest.Exec(cmd)
	assert.Contains(t, msgs, messages.SessionChangedMsg{LoggedIn: false})
	assert.Contains(t, msgs, messages.NavigateMsg{Path: "/login"})
	assert.Contains(t, msgs, messages.ToastMsg{Text: "Your account has been deleted"})
}

func TestLogoutClearsSessionEvenWhenServerFails(t *testing.T) {
	b := uitest.NewBackend(t)
	b.Reply("GET /api/members", http.StatusOK, profile)
	b.Reply("DELETE /api/auth", http.StatusInternalServerError, "boom")
	m := loaded(t, b)

	m, cmd := send(m, "x", "y")
	m, cmd = m.Update(cmd())
	assert.False(t, m.deps.Store.HasToken())
	_, fresh, _ := m.deps.Cache.GetProfile(m.deps.Cfg.ProfileTTL)
	assert.False(t, fresh)
	assert.Contains(t, uitest.Exec(cmd), messages.NavigateMsg{Path: "/login"})
}

func TestOpenProfileImageWithoutOne(t *testing.T) {
	b := uitest.NewBackend(t)
	b.Reply("GET /api/members", http.StatusOK, profile)
	m := loaded(t, b)

	_, cmd := send(m, "o")
	assert.Equal(t, messages.ToastMsg{Text: "No profile image set"}, cmd())
}

func TestOpenProfileImageSavesIt(t *testing.T) {
	b := uitest.NewBackend(t)
	b.Reply("GET /api/members", http.StatusOK, profile)
	b.Handle("GET /cdn/profiles/me.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write(uitest.PNG)
	})
	m := loaded(t, b)
	m.member = &api.Member{ID: "1", Name: "mina", CDNBaseURL: b.URL + "/cdn", ProfileImageObjectKey: "profiles/me.png"}

	m, cmd := send(m, "o")
	require.True(t, m.Loading())
	msg, ok := cmd().(imageSavedMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)
	assert.FileExists(t, msg.path)
	assert.Contains(t, msg.path, "profile-1.png")
}
