package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/kaboocam/kaboocam/internal/api"
	"github.com/kaboocam/kaboocam/internal/render"
)

// SummaryLen is how much of a post body a card previews.
const SummaryLen = 100

// PostMeta renders the one-line meta row of a post card.
func PostMeta(p api.PostSummary, now time.Time) string {
	parts := make([]string, 0, 5)
	if p.Author != nil && p.Author.Name != "" {
		parts = append(parts, "by "+p.Author.Name)
	}
	parts = append(parts, render.TimeAgo(p.CreatedAt.Time, now), render.Views(p.Views))
	like := fmt.Sprintf("♡ %d", p.Like.Count)
	if p.Like.AmILike {
		like = LikedStyle.Render(fmt.Sprintf("♥ %d", p.Like.Count))
	}
	parts = append(parts, like, fmt.Sprintf("💬 %d", p.CommentCount))
	if len(p.ImageObjectKeys) > 0 {
		parts = append(parts, fmt.Sprintf("📷 %d", len(p.ImageObjectKeys)))
	}
	return strings.Join(parts, " · ")
}

// PostCard renders a title, a preview and the meta row.
func PostCard(p api.PostSummary, selected bool, width int, now time.Time) string {
	if width < 20 {
		width = 20
	}
	title := HeaderStyle.Render(render.Truncate(p.Title, width-2))
	lines := []string{title}
	if preview := render.Summary(p.Content, SummaryLen); preview != "" {
		lines = append(lines, render.Truncate(preview, width-2))
	}
	lines = append(lines, MetaStyle.Render(PostMeta(p, now)))
	card := strings.Join(lines, "\n")
	if selected {
		return SelectedStyle.Render(card)
	}
	return UnselectedStyle.Render(card)
}
