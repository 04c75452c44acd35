package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaboocam/kaboocam/internal/api"
	"github.com/kaboocam/kaboocam/internal/cache"
	"github.com/kaboocam/kaboocam/internal/ui/messages"
	"github.com/kaboocam/kaboocam/internal/ui/uitest"
)

func seeded(t *testing.T) Model {
	t.Helper()
	deps := uitest.Deps(t, uitest.NewBackend(t), true)
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	for i, title := range []string{"older", "newer"} {
		require.NoError(t, deps.Cache.AddActivity(cache.Activity{
			PostID:    []api.ID{"p1", "p2"}[i],
			Title:     title,
			Author:    "joon",
			Preview:   "preview of " + title,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	m := New(deps)
	m.now = func() time.Time { return base.Add(3 * time.Hour) }
	m.SetSize(80, 30)
	m.Load()
	return m
}

func TestListsNewestFirst(t *testing.T) {
	m := seeded(t)
	require.Len(t, m.entries, 2)
	assert.Equal(t, "newer", m.entries[0].Title)
	assert.Equal(t, 2, m.UnreadCount())

	view := m.View()
	assert.Contains(t, view, "joon posted 2h ago")
	assert.Contains(t, view, "preview of older")
}

func TestOpenMarksRead(t *testing.T) {
	m := seeded(t)
	m, _ = m.Update(uitest.Key("j"))
	m, cmd := m.Update(uitest.Key("enter"))

	msgs := uitest.Exec(cmd)
	assert.Contains(t, msgs, messages.OpenPostMsg{PostID: "p1"})
	assert.Contains(t, msgs, messages.NewActivityMsg{Unread: 1})
	assert.Equal(t, 1, m.deps.Cache.UnreadActivityCount())
}

func TestMarkAllRead(t *testing.T) {
	m := seeded(t)
	m, cmd := m.Update(uitest.Key("A"))
	assert.Equal(t, messages.NewActivityMsg{Unread: 0}, cmd())
	assert.Zero(t, m.UnreadCount())

	m.Load()
	assert.Zero(t, m.UnreadCount(), "read state is persisted")
	assert.Zero(t, m.deps.Cache.UnreadActivityCount())
}

func TestEmpty(t *testing.T) {
	m := New(uitest.Deps(t, uitest.NewBackend(t), true))
	m.Load()
	assert.Contains(t, m.View(), "Nothing new yet")
	_, cmd := m.Update(uitest.Key("enter"))
	assert.Nil(t, cmd)
}
