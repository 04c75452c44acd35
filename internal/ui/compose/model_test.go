package compose

import (
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaboocam/kaboocam/internal/api"
	"github.com/kaboocam/kaboocam/internal/ui/messages"
	"github.com/kaboocam/kaboocam/internal/ui/uitest"
)

// fill types each value into the focused field and tabs to the next one.
func fill(m Model, values ...string) Model {
	for _, v := range values {
		if v != "" {
			m, _ = m.Update(uitest.Key(v))
		}
		m, _ = m.Update(uitest.Key("tab"))
	}
	return m
}

func TestCreatePostUploadsImagesFirst(t *testing.T) {
	b := uitest.NewBackend(t)
	var presigned atomic.Int32
	b.Handle("POST /api/posts/images/presigned-url", func(w http.ResponseWriter, r *http.Request) {
		n := presigned.Add(1)
		uitest.Envelope(w, http.StatusOK, map[string]any{
			"presignedUrl": fmt.Sprintf("%s/s3/%d", b.URL, n),
			"objectKey":    fmt.Sprintf("posts/%d.png", n),
		})
	})
	var uploads atomic.Int32
	for _, route := range []string{"PUT /s3/1", "PUT /s3/2"} {
		b.Handle(route, func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			assert.Equal(t, uitest.PNG, body)
			assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
			assert.Empty(t, r.Header.Get("Authorization"))
			uploads.Add(1)
		})
	}
	b.Reply("POST /api/posts", http.StatusCreated, map[string]any{"postId": 42})

	a := uitest.ImageFile(t, "a.png")
	c := uitest.ImageFile(t, "c.png")
	m := New(uitest.Deps(t, b, true), nil)
	m.SetSize(100, 40)
	m = fill(m, "Harbour", "Boats at dawn", a+", "+c)

	m, cmd := m.Update(uitest.Key("ctrl+s"))
	require.NotNil(t, cmd)
	assert.True(t, m.Loading())
	assert.Equal(t, messages.PostSavedMsg{PostID: "42"}, cmd())

	assert.Equal(t, int32(2), uploads.Load())
	body := b.Body("POST /api/posts")
	assert.Equal(t, "Harbour", body["title"])
	assert.Equal(t, "Boats at dawn", body["content"])
	assert.Equal(t, []any{"posts/1.png", "posts/2.png"}, body["imageObjectKeys"])
}

func TestCreatePostWithoutImages(t *testing.T) {
	b := uitest.NewBackend(t)
	b.Reply("POST /api/posts", http.StatusCreated, map[string]any{"postId": "9"})
	m := New(uitest.Deps(t, b, true), nil)
	m = fill(m, "Hello", "First post")

	_, cmd := m.Update(uitest.Key("ctrl+s"))
	assert.Equal(t, messages.PostSavedMsg{PostID: "9"}, cmd())
	assert.Equal(t, []any{}, b.Body("POST /api/posts")["imageObjectKeys"])
}

func TestValidation(t *testing.T) {
	b := uitest.NewBackend(t)
	m := New(uitest.Deps(t, b, true), nil)
	m.SetSize(100, 40)

	m, cmd := m.Update(uitest.Key("ctrl+s"))
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Please enter your title")

	m = fill(m, "Title", "", "/nowhere/a.png")
	m, cmd = m.Update(uitest.Key("ctrl+s"))
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Please enter your content")

	m = fill(m, "", "body")
	m, cmd = m.Update(uitest.Key("ctrl+s"))
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Cannot read /nowhere/a.png")
	assert.Empty(t, b.Requests())
}

func editable() *api.PostDetail {
	return &api.PostDetail{
		PostID:          "7",
		Title:           "Sunset",
		Content:         "Took this yesterday.",
		ImageObjectKeys: []string{"posts/a.png", "posts/b.png"},
		IsOwner:         true,
	}
}

func TestEditPostSwapsImages(t *testing.T) {
	b := uitest.NewBackend(t)
	b.Reply("POST /api/posts/7/images/presigned-url", http.StatusOK, map[string]any{
		"urls": []map[string]any{{"presignedUrl": b.URL + "/s3/new", "objectKey": "posts/new.png"}},
	})
	b.Reply("PUT /s3/new", http.StatusOK, nil)
	b.Reply("PUT /api/posts/7", http.StatusOK, nil)

	m := New(uitest.Deps(t, b, true), editable())
	m.SetSize(100, 40)
	require.True(t, m.Editing())
	assert.Contains(t, m.View(), "Edit post")

	m = fill(m, "", "", uitest.ImageFile(t, "new.png"))
	require.Equal(t, fieldExisting, m.focused)
	m, _ = m.Update(uitest.Key(" "))
	assert.Contains(t, m.View(), "✗ a.png")

	m, cmd := m.Update(uitest.Key("ctrl+s"))
	require.NotNil(t, cmd)
	assert.Equal(t, messages.PostSavedMsg{PostID: "7"}, cmd())

	body := b.Body("PUT /api/posts/7")
	assert.Equal(t, "Sunset", body["title"])
	assert.Equal(t, "Took this yesterday.", body["contents"])
	assert.Equal(t, []any{"posts/new.png"}, body["addedImageObjectKeys"])
	assert.Equal(t, []any{"posts/a.png"}, body["removedImageObjectKeys"])
	files := b.Body("POST /api/posts/7/images/presigned-url")["files"].([]any)
	assert.Equal(t, "new.png", files[0].(map[string]any)["fileName"])
}

func TestEditCountsKeptImages(t *testing.T) {
	b := uitest.NewBackend(t)
	m := New(uitest.Deps(t, b, true), editable())
	m.SetSize(100, 40)
	m = fill(m, "", "", uitest.ImageFile(t, "x.png")+","+uitest.ImageFile(t, "y.png"))

	m, cmd := m.Update(uitest.Key("ctrl+s"))
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "at most 3 images")

	// Removing one existing image makes room.
	m, _ = m.Update(uitest.Key("l"))
	m, _ = m.Update(uitest.Key("x"))
	assert.Equal(t, []string{"posts/b.png"}, m.removedKeys())
	assert.Equal(t, []string{"posts/a.png"}, m.keptKeys())
}

func TestSaveErrorShown(t *testing.T) {
	b := uitest.NewBackend(t)
	b.Reply("PUT /api/posts/7", http.StatusForbidden, "Not your post")
	m := New(uitest.Deps(t, b, true), editable())
	m.SetSize(100, 40)

	m, cmd := m.Update(uitest.Key("ctrl+s"))
	m, _ = m.Update(cmd())
	assert.False(t, m.Loading())
	assert.Contains(t, m.View(), "Not your post")
}
