package statusbar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaboocam/kaboocam/internal/ui/messages"
)

func TestToastIsReplacedAndCleared(t *testing.T) {
	m := New()
	m.SetSize(120)

	m, cmd := m.Update(messages.ToastMsg{Text: "first", IsError: true})
	require.NotNil(t, cmd)
	m, _ = m.Update(messages.ToastMsg{Text: "second"})

	text, isErr := m.Toast()
	assert.Equal(t, "second", text)
	assert.False(t, isErr)

	m, _ = m.Update(clearToastMsg{id: 1})
	text, _ = m.Toast()
	assert.Equal(t, "second", text, "a stale timer must not clear a newer toast")

	m, _ = m.Update(clearToastMsg{id: 2})
	text, _ = m.Toast()
	assert.Empty(t, text)
}

func TestViewShowsUserAndUnread(t *testing.T) {
	m := New()
	m.SetSize(120)
	assert.Contains(t, m.View(), "L:login")

	m.SetUser("mina")
	m.SetUnread(3)
	m.SetActiveTab("/board")
	view := m.View()
	assert.Contains(t, view, "mina")
	assert.Contains(t, view, "3 new")
	assert.Contains(t, view, "2 Board")
}

func TestSetBusyTicksOnce(t *testing.T) {
	m := New()
	assert.NotNil(t, m.SetBusy(true))
	assert.Nil(t, m.SetBusy(true))
	assert.Nil(t, m.SetBusy(false))
	assert.NotNil(t, m.SetBusy(true))
}
