package board

import (
	"github.com/kaboocam/kaboocam/internal/api"
	"github.com/kaboocam/kaboocam/internal/render"
)

// PostItem wraps a post summary for the bubbles list.
type PostItem struct {
	api.PostSummary
	Index int
}

func (p PostItem) Title() string {
	if p.PostSummary.Title != "" {
		return p.PostSummary.Title
	}
	return "(untitled)"
}

func (p PostItem) Description() string {
	return render.Summary(p.Content, 100)
}

func (p PostItem) FilterValue() string {
	name := ""
	if p.Author != nil {
		name = p.Author.Name
	}
	return p.PostSummary.Title + " " + name
}
