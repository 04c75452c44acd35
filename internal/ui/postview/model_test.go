package postview

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaboocam/kaboocam/internal/ui/common"
	"github.com/kaboocam/kaboocam/internal/ui/messages"
	"github.com/kaboocam/kaboocam/internal/ui/uitest"
)

func detail(extra map[string]any) map[string]any {
	d := map[string]any{
		"postId":    "7",
		"title":     "Sunset at the pier",
		"content":   "Took this yesterday.",
		"views":     12,
		"likes":     2,
		"amILiking": false,
		"createdAt": "2026-10-01T10:00:00",
		"isOwner":   true,
		"author":    map[string]any{"name": "mina"},
		"comments": []map[string]any{
			{"commentId": "c1", "content": "lovely colours", "isOwner": false, "author": map[string]any{"name": "joon"}},
			{"commentId": "c2", "content": "thanks!", "isOwner": true, "author": map[string]any{"name": "mina"}},
		},
	}
	for k, v := range extra {
		d[k] = v
	}
	return d
}

func loadedModel(t *testing.T, b *uitest.Backend) (Model, tea.Cmd) {
	t.Helper()
	m := New(uitest.Deps(t, b, true), "7")
	m.SetSize(100, 60)
	msg, ok := uitest.Find[messages.PostLoadedMsg](uitest.Exec(m.Init()))
	require.True(t, ok)
	require.NoError(t, msg.Err)
	return m.Update(msg)
}

func count(reqs []string, route string) int {
	n := 0
	for _, r := range reqs {
		if r == route {
			n++
		}
	}
	return n
}

func TestLoadRendersPostAndComments(t *testing.T) {
	b := uitest.NewBackend(t)
	b.Reply("GET /api/posts/7", http.StatusOK, detail(nil))

	m, cmd := loadedModel(t, b)
	assert.Nil(t, cmd, "no images to fetch")
	assert.False(t, m.Loading())
	view := m.View()
	assert.Contains(t, view, "Sunset at the pier")
	assert.Contains(t, view, "lovely colours")
	assert.Contains(t, view, "12 views")
	assert.Contains(t, view, "2 comments")

	// A second open within the TTL is served from the cache.
	again := New(m.deps, "7")
	_, ok := uitest.Find[messages.PostLoadedMsg](uitest.Exec(again.Init()))
	require.True(t, ok)
	assert.Equal(t, 1, count(b.Requests(), "GET /api/posts/7"))
}

func TestCommentsFetchedWhenNotEmbedded(t *testing.T) {
	b := uitest.NewBackend(t)
	d := detail(nil)
	delete(d, "comments")
	b.Reply("GET /api/posts/7", http.StatusOK, d)
	b.Reply("GET /api/posts/7/comments", http.StatusOK, map[string]any{
		"comments": []map[string]any{{"commentId": "c9", "content": "from the list", "author": map[string]any{"name": "joon"}}},
	})

	m, _ := loadedModel(t, b)
	require.Len(t, m.comments, 1)
	assert.Contains(t, m.View(), "from the list")
}

func TestLikeToggle(t *testing.T) {
	b := uitest.NewBackend(t)
	b.Reply("GET /api/posts/7", http.StatusOK, detail(nil))
	b.Reply("POST /api/posts/7/likes", http.StatusOK, nil)
	b.Reply("DELETE /api/posts/7/likes", http.StatusOK, nil)
	m, _ := loadedModel(t, b)

	m, cmd := m.Update(uitest.Key("l"))
	require.True(t, m.Loading())
	m, _ = m.Update(cmd())
	assert.True(t, m.post.AmILiking)
	assert.Equal(t, 3, m.post.Likes)
	assert.Contains(t, m.View(), "♥ 3")

	m, cmd = m.Update(uitest.Key("l"))
	m, _ = m.Update(cmd())
	assert.False(t, m.post.AmILiking)
	assert.Equal(t, 2, m.post.Likes)
	assert.Equal(t, []string{"GET /api/posts/7", "POST /api/posts/7/likes", "DELETE /api/posts/7/likes"}, b.Requests())
}

func TestDeleteOwnCommentAsksFirst(t *testing.T) {
	b := uitest.NewBackend(t)
	b.Reply("GET /api/posts/7", http.StatusOK, detail(nil))
	b.Reply("DELETE /api/posts/comments/c2", http.StatusOK, nil)
	m, _ := loadedModel(t, b)

	m, _ = m.Update(uitest.Key("j"))
	m, cmd := m.Update(uitest.Key("d"))
	assert.Nil(t, cmd)
	require.True(t, m.Confirming())
	assert.Contains(t, m.View(), "Delete this comment?")

	m, cmd = m.Update(uitest.Key("n"))
	assert.Nil(t, cmd)
	assert.False(t, m.Confirming())

	m, _ = m.Update(uitest.Key("d"))
	m, cmd = m.Update(uitest.Key("y"))
	msg := cmd()
	assert.Equal(t, messages.CommentDeletedMsg{PostID: "7"}, msg)

	m, cmd = m.Update(msg)
	assert.True(t, m.Loading(), "the post is reloaded")
	msgs := uitest.Exec(cmd)
	_, ok := uitest.Find[messages.PostLoadedMsg](msgs)
	assert.True(t, ok)
	assert.Equal(t, 2, count(b.Requests(), "GET /api/posts/7"))
}

func TestOthersCommentsAreReadOnly(t *testing.T) {
	b := uitest.NewBackend(t)
	b.Reply("GET /api/posts/7", http.StatusOK, detail(nil))
	m, _ := loadedModel(t, b)

	_, cmd := m.Update(uitest.Key("e"))
	assert.Equal(t, messages.ToastMsg{Text: "You can only edit your own comments"}, cmd())
	m, _ = m.Update(uitest.Key("d"))
	assert.False(t, m.Confirming())

	m, _ = m.Update(uitest.Key("j"))
	_, cmd = m.Update(uitest.Key("e"))
	open, ok := cmd().(messages.OpenCommentFormMsg)
	require.True(t, ok)
	require.NotNil(t, open.Comment)
	assert.Equal(t, "thanks!", open.Comment.Content)

	_, cmd = m.Update(uitest.Key("c"))
	assert.Equal(t, messages.OpenCommentFormMsg{PostID: "7"}, cmd())
}

func TestOwnerEditsAndDeletesPost(t *testing.T) {
	b := uitest.NewBackend(t)
	b.Reply("GET /api/posts/7", http.StatusOK, detail(nil))
	b.Reply("DELETE /api/posts/7", http.StatusOK, nil)
	m, _ := loadedModel(t, b)

	_, cmd := m.Update(uitest.Key("E"))
	compose, ok := cmd().(messages.OpenComposeMsg)
	require.True(t, ok)
	assert.Equal(t, "Sunset at the pier", compose.Post.Title)

	m, _ = m.Update(uitest.Key("D"))
	require.True(t, m.Confirming())
	_, cmd = m.Update(uitest.Key("y"))
	assert.Equal(t, messages.PostDeletedMsg{PostID: "7"}, cmd())

	_, fresh, err := m.deps.Cache.GetPost("7", m.deps.Cfg.PostTTL)
	require.NoError(t, err)
	assert.False(t, fresh, "the cached copy is dropped")
}

func TestNonOwnerCannotDeletePost(t *testing.T) {
	b := uitest.NewBackend(t)
	b.Reply("GET /api/posts/7", http.StatusOK, detail(map[string]any{"isOwner": false}))
	m, _ := loadedModel(t, b)

	m, cmd := m.Update(uitest.Key("D"))
	assert.False(t, m.Confirming())
	assert.Equal(t, messages.ToastMsg{Text: "You can only delete your own posts"}, cmd())
}

func TestImagesAreSavedLocally(t *testing.T) {
	b := uitest.NewBackend(t)
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")
	b.Handle("GET /cdn/posts/a.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write(png)
	})
	b.Reply("GET /api/posts/7", http.StatusOK, detail(map[string]any{
		"cdnBaseUrl":      b.URL + "/cdn/",
		"imageObjectKeys": []string{"posts/a.png"},
	}))

	m, cmd := loadedModel(t, b)
	require.NotNil(t, cmd)
	assert.True(t, m.Loading())
	assert.Contains(t, m.View(), "loading images")

	msg, ok := cmd().(messages.ImagesLoadedMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	require.Len(t, msg.Paths, 1)
	assert.Equal(t, filepath.Join(m.deps.Cfg.ImageDir, "7-1.png"), msg.Paths[0])
	saved, err := os.ReadFile(msg.Paths[0])
	require.NoError(t, err)
	assert.Equal(t, png, saved)

	m, _ = m.Update(msg)
	assert.False(t, m.Loading())
	assert.Contains(t, m.View(), "1 image saved")
}

func TestImageFailureIsShown(t *testing.T) {
	b := uitest.NewBackend(t)
	b.Reply("GET /api/posts/7", http.StatusOK, detail(map[string]any{
		"imageUrls": []string{b.URL + "/cdn/gone.png"},
	}))
	m, cmd := loadedModel(t, b)
	m, _ = m.Update(cmd())
	assert.Contains(t, m.View(), "images unavailable")
}

func TestLoadErrorWithoutPost(t *testing.T) {
	b := uitest.NewBackend(t)
	b.Reply("GET /api/posts/7", http.StatusNotFound, "Post not found")
	m := New(uitest.Deps(t, b, false), "7")
	m.SetSize(80, 20)

	msg, ok := uitest.Find[messages.PostLoadedMsg](uitest.Exec(m.Init()))
	require.True(t, ok)
	assert.Equal(t, "Post not found", common.ErrorText(msg.Err))

	m, cmd := m.Update(msg)
	assert.Nil(t, m.Post())
	assert.Contains(t, m.View(), "Post not found")
	assert.Equal(t, messages.ToastMsg{Text: "Post not found", IsError: true}, cmd())
}
