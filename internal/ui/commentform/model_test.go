package commentform

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaboocam/kaboocam/internal/api"
	"github.com/kaboocam/kaboocam/internal/ui/messages"
	"github.com/kaboocam/kaboocam/internal/ui/uitest"
)

func typeText(m Model, s string) Model {
	m, _ = m.Update(uitest.Key(s))
	return m
}

func TestCreateComment(t *testing.T) {
	b := uitest.NewBackend(t)
	b.Reply("POST /api/posts/7/comments", http.StatusCreated, nil)
	deps := uitest.Deps(t, b, true)
	m := New(deps, "7", nil)
	m.SetSize(80, 30)
	assert.False(t, m.Editing())

	m = typeText(m, "  nice shot  ")
	assert.Contains(t, m.View(), "13/500")

	m, cmd := m.Update(uitest.Key("ctrl+s"))
	require.NotNil(t, cmd)
	assert.True(t, m.Loading())
	assert.Equal(t, messages.CommentSavedMsg{PostID: "7"}, cmd())
	assert.Equal(t, "nice shot", b.Body("POST /api/posts/7/comments")["content"])
}

func TestEditComment(t *testing.T) {
	b := uitest.NewBackend(t)
	b.Reply("PUT /api/posts/comments/c2", http.StatusOK, nil)
	m := New(uitest.Deps(t, b, true), "7", &api.Comment{CommentID: "c2", Content: "thanks"})
	m.SetSize(80, 30)
	require.True(t, m.Editing())
	assert.Contains(t, m.View(), "Edit comment")

	m, cmd := m.Update(uitest.Key("ctrl+s"))
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Nothing changed")

	m = typeText(m, "!")
	m, cmd = m.Update(uitest.Key("ctrl+s"))
	require.NotNil(t, cmd)
	assert.Equal(t, messages.CommentSavedMsg{PostID: "7"}, cmd())
	assert.Equal(t, "thanks!", b.Body("PUT /api/posts/comments/c2")["content"])
}

func TestEmptyCommentRejected(t *testing.T) {
	b := uitest.NewBackend(t)
	m := New(uitest.Deps(t, b, true), "7", nil)
	m.SetSize(80, 30)
	m = typeText(m, "   ")

	m, cmd := m.Update(uitest.Key("ctrl+s"))
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Please enter your comment")
	assert.Empty(t, b.Requests())
}

func TestCharLimit(t *testing.T) {
	b := uitest.NewBackend(t)
	m := New(uitest.Deps(t, b, true), "7", nil)
	m = typeText(m, strings.Repeat("a", 600))
	assert.Len(t, m.textarea.Value(), 500)
}

func TestSaveErrorKeepsText(t *testing.T) {
	b := uitest.NewBackend(t)
	b.Reply("POST /api/posts/7/comments", http.StatusForbidden, "Comments are closed")
	m := New(uitest.Deps(t, b, true), "7", nil)
	m.SetSize(80, 30)
	m = typeText(m, "hello")

	m, cmd := m.Update(uitest.Key("ctrl+s"))
	m, _ = m.Update(cmd())
	assert.False(t, m.Loading())
	assert.Contains(t, m.View(), "Comments are closed")
	assert.Equal(t, "hello", m.textarea.Value())
}
