package home

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaboocam/kaboocam/internal/api"
	"github.com/kaboocam/kaboocam/internal/ui/messages"
	"github.com/kaboocam/kaboocam/internal/ui/uitest"
)

func posts(prefix string, n int) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = map[string]any{
			"postId":  prefix + string(rune('a'+i)),
			"title":   prefix + " title",
			"content": "body",
			"like":    map[string]any{"count": i},
		}
	}
	return out
}

func TestLoadsTopThreeOfEachStrategy(t *testing.T) {
	b := uitest.NewBackend(t)
	b.Handle("GET /api/posts", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("strategy") {
		case "POPULAR":
			uitest.Envelope(w, http.StatusOK, map[string]any{"cdnBaseUrl": "https://cdn", "posts": map[string]any{"items": posts("pop", 5)}})
		default:
			uitest.Envelope(w, http.StatusOK, map[string]any{"items": posts("new", 2)})
		}
	})
	m := New(uitest.Deps(t, b, false))
	m.SetSize(80, 40)

	msgs := uitest.Exec(m.Init())
	require.Len(t, msgs, 1)
	loaded := msgs[0].(messages.HomeLoadedMsg)
	require.NoError(t, loaded.Err)
	assert.Len(t, loaded.Popular, 3)
	assert.Len(t, loaded.Recent, 2)

	m, _ = m.Update(loaded)
	assert.False(t, m.Loading())
	assert.Contains(t, m.View(), "pop title")

	for i := 0; i < 10; i++ {
		m, _ = m.Update(uitest.Key("j"))
	}
	assert.Equal(t, 4, m.cursor)
	_, cmd := m.Update(uitest.Key("enter"))
	assert.Equal(t, messages.OpenPostMsg{PostID: api.ID("newb")}, cmd())
}

func TestOneFailingSectionKeepsTheOther(t *testing.T) {
	b := uitest.NewBackend(t)
	b.Handle("GET /api/posts", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("strategy") == "POPULAR" {
			uitest.Envelope(w, http.StatusInternalServerError, "popular is down")
			return
		}
		uitest.Envelope(w, http.StatusOK, map[string]any{"items": posts("new", 1)})
	})
	m := New(uitest.Deps(t, b, false))
	m.SetSize(80, 40)

	m, _ = m.Update(uitest.Exec(m.Init())[0])
	view := m.View()
	assert.Contains(t, view, "popular is down")
	assert.Contains(t, view, "new title")
}
