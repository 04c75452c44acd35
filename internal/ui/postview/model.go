package postview

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kaboocam/kaboocam/internal/api"
	"github.com/kaboocam/kaboocam/internal/render"
	"github.com/kaboocam/kaboocam/internal/ui/common"
	"github.com/kaboocam/kaboocam/internal/ui/messages"
)

var (
	postHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Padding(0, 1)
	postMetaStyle   = lipgloss.NewStyle().Foreground(common.Muted).Padding(0, 1)
	commentSelStyle = lipgloss.NewStyle().Background(lipgloss.Color("#333333"))
	ownerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#000")).Background(common.Accent).Bold(true)
	confirmStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true)
)

const scrollStep = 3

type commentOffset struct {
	startLine int
	endLine   int
}

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmDeletePost
	confirmDeleteComment
)

// Model is the post detail view with its comments.
type Model struct {
	viewport    viewport.Model
	postID      api.ID
	post        *api.PostDetail
	comments    []api.Comment
	offsets     []commentOffset
	selectedIdx int
	images      []string
	imagesErr   error
	imagesBusy  bool
	confirm     confirmKind
	deps        common.Deps
	loading     bool
	busy        bool
	width       int
	height      int
	now         func() time.Time
}

// New creates a post view for id.
func New(deps common.Deps, id api.ID) Model {
	vp := viewport.New(0, 0)
	vp.SetContent("  Loading...")
	return Model{
		viewport: vp,
		postID:   id,
		deps:     deps,
		loading:  true,
		now:      time.Now,
	}
}

// Init loads the post.
func (m Model) Init() tea.Cmd {
	return load(m.deps, m.postID, false)
}

// SetSize updates viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.viewport.Height = max(h-1, 1)
	m.rebuildContent()
}

func (m Model) Loading() bool {
	return m.loading || m.busy || m.imagesBusy
}

// Confirming reports whether a yes/no prompt owns the keyboard.
func (m Model) Confirming() bool {
	return m.confirm != confirmNone
}

// Post returns the loaded post, or nil.
func (m Model) Post() *api.PostDetail {
	return m.post
}

// Reload refetches the post, bypassing the cache.
func (m *Model) Reload() tea.Cmd {
	m.loading = true
	return load(m.deps, m.postID, true)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.PostLoadedMsg:
		if msg.Post != nil && msg.Post.PostID != m.postID {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			if m.post == nil {
				m.viewport.SetContent("  Could not load the post: " + common.ErrorText(msg.Err) + "\n\n  esc: go back")
			}
			return m, common.ErrorToast(msg.Err)
		}
		hadImages := m.post != nil && sameImages(m.post, msg.Post)
		m.post = msg.Post
		m.comments = msg.Post.Comments
		if m.selectedIdx >= len(m.comments) {
			m.selectedIdx = max(len(m.comments)-1, 0)
		}
		if hadImages || !hasImages(m.post) {
			m.rebuildContent()
			return m, nil
		}
		m.imagesBusy = true
		m.images = nil
		m.imagesErr = nil
		m.rebuildContent()
		return m, loadImages(m.deps, m.post)

	case messages.ImagesLoadedMsg:
		if msg.PostID != m.postID {
			return m, nil
		}
		m.imagesBusy = false
		m.images = msg.Paths
		m.imagesErr = msg.Err
		m.rebuildContent()
		return m, nil

	case messages.LikeResultMsg:
		m.busy = false
		if msg.Err != nil {
			return m, common.ErrorToast(msg.Err)
		}
		if m.post != nil && m.post.AmILiking != msg.Liked {
			m.post.AmILiking = msg.Liked
			if msg.Liked {
				m.post.Likes++
			} else if m.post.Likes > 0 {
				m.post.Likes--
			}
		}
		m.rebuildContent()
		return m, nil

	case messages.CommentDeletedMsg:
		m.busy = false
		if msg.Err != nil {
			return m, common.ErrorToast(msg.Err)
		}
		cmd := tea.Batch(common.Toast("Comment deleted"), m.Reload())
		return m, cmd

	case messages.PostDeletedMsg:
		m.busy = false
		if msg.Err != nil {
			return m, common.ErrorToast(msg.Err)
		}
		return m, nil

	case tea.KeyMsg:
		if m.confirm != confirmNone {
			return m.updateConfirm(msg)
		}
		return m.updateKeys(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (Model, tea.Cmd) {
	kind := m.confirm
	m.confirm = confirmNone
	m.rebuildContent()
	if msg.String() != "y" && msg.String() != "Y" {
		return m, nil
	}
	deps := m.deps
	m.busy = true
	switch kind {
	case confirmDeletePost:
		id := m.postID
		return m, func() tea.Msg {
			ctx, cancel := deps.Context()
			defer cancel()
			err := deps.Client.DeletePost(ctx, id)
			if err == nil {
				deps.InvalidatePost(id)
			}
			return messages.PostDeletedMsg{PostID: id, Err: err}
		}
	case confirmDeleteComment:
		c, ok := m.selectedComment()
		if !ok {
			m.busy = false
			return m, nil
		}
		postID := m.postID
		return m, func() tea.Msg {
			ctx, cancel := deps.Context()
			defer cancel()
			err := deps.Client.DeleteComment(ctx, c.CommentID)
			if err == nil {
				deps.InvalidatePost(postID)
			}
			return messages.CommentDeletedMsg{PostID: postID, Err: err}
		}
	}
	m.busy = false
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.selectedIdx >= 0 && m.selectedIdx < len(m.offsets) {
			off := m.offsets[m.selectedIdx]
			if off.endLine >= m.viewport.YOffset+m.viewport.Height {
				m.viewport.SetYOffset(m.viewport.YOffset + scrollStep)
				return m, nil
			}
		}
		if m.selectedIdx < len(m.comments)-1 {
			m.selectedIdx++
			m.rebuildContent()
			m.scrollToCursor()
		} else {
			m.viewport.SetYOffset(m.viewport.YOffset + scrollStep)
		}
		return m, nil
	case "k", "up":
		if m.selectedIdx >= 0 && m.selectedIdx < len(m.offsets) {
			off := m.offsets[m.selectedIdx]
			if off.startLine < m.viewport.YOffset && m.selectedIdx > 0 {
				m.viewport.SetYOffset(max(m.viewport.YOffset-scrollStep, off.startLine))
				return m, nil
			}
		}
		if m.selectedIdx > 0 {
			m.selectedIdx--
			m.rebuildContent()
			m.scrollToCursor()
		} else {
			m.viewport.SetYOffset(m.viewport.YOffset - scrollStep)
		}
		return m, nil
	case "g", "home":
		m.selectedIdx = 0
		m.rebuildContent()
		m.viewport.GotoTop()
		return m, nil
	case "G", "end":
		if len(m.comments) > 0 {
			m.selectedIdx = len(m.comments) - 1
			m.rebuildContent()
		}
		m.viewport.GotoBottom()
		return m, nil
	case "ctrl+d", "pgdown":
		m.viewport.HalfViewDown()
		return m, nil
	case "ctrl+u", "pgup":
		m.viewport.HalfViewUp()
		return m, nil
	case "ctrl+r", "r":
		cmd := m.Reload()
		return m, cmd
	}

	if m.post == nil {
		return m, nil
	}

	switch msg.String() {
	case "l":
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, toggleLike(m.deps, m.postID, !m.post.AmILiking)
	case "c":
		id := m.postID
		return m, func() tea.Msg { return messages.OpenCommentFormMsg{PostID: id} }
	case "e":
		c, ok := m.selectedComment()
		if !ok {
			return m, nil
		}
		if !c.IsOwner {
			return m, common.Toast("You can only edit your own comments")
		}
		id := m.postID
		return m, func() tea.Msg { return messages.OpenCommentFormMsg{PostID: id, Comment: &c} }
	case "d":
		c, ok := m.selectedComment()
		if !ok {
			return m, nil
		}
		if !c.IsOwner {
			return m, common.Toast("You can only delete your own comments")
		}
		m.confirm = confirmDeleteComment
		m.rebuildContent()
		return m, nil
	case "E":
		if !m.post.IsOwner {
			return m, common.Toast("You can only edit your own posts")
		}
		post := *m.post
		return m, func() tea.Msg { return messages.OpenComposeMsg{Post: &post} }
	case "D":
		if !m.post.IsOwner {
			return m, common.Toast("You can only delete your own posts")
		}
		m.confirm = confirmDeletePost
		m.rebuildContent()
		return m, nil
	case "o":
		if len(m.images) > 0 {
			opens := make([]tea.Cmd, len(m.images))
			for i, p := range m.images {
				opens[i] = common.OpenFile(p)
			}
			return m, tea.Batch(opens...)
		}
		if m.imagesBusy {
			return m, common.Toast("Images are still loading")
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the post view.
func (m Model) View() string {
	return m.viewport.View()
}

func (m Model) selectedComment() (api.Comment, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.comments) {
		return api.Comment{}, false
	}
	return m.comments[m.selectedIdx], true
}

func (m *Model) rebuildContent() {
	if m.post == nil {
		return
	}
	width := max(m.width-4, 20)
	now := m.now()

	var sb strings.Builder
	lines := 0
	write := func(s string) {
		sb.WriteString(s)
		sb.WriteString("\n")
		lines += strings.Count(s, "\n") + 1
	}

	p := m.post
	write(postHeaderStyle.Render(p.Title))
	meta := []string{p.Author.Name, render.TimeAgo(p.CreatedAt.Time, now), render.Views(p.Views)}
	if p.IsUpdated {
		meta = append(meta, "edited")
	}
	write(postMetaStyle.Render(strings.Join(meta, " · ")))

	like := fmt.Sprintf("♡ %d", p.Likes)
	if p.AmILiking {
		like = common.LikedStyle.Render(fmt.Sprintf("♥ %d", p.Likes))
	}
	write(postMetaStyle.Render(like + " · " + render.Count(len(m.comments), "comment", "comments")))

	switch {
	case m.imagesBusy:
		write(postMetaStyle.Render("📷 loading images..."))
	case m.imagesErr != nil:
		write(postMetaStyle.Render("📷 images unavailable: " + common.ErrorText(m.imagesErr)))
	case len(m.images) > 0:
		write(postMetaStyle.Render("📷 " + render.Count(len(m.images), "image", "images") + " saved (o to open)"))
	}
	write(common.SeparatorStyle.Render(strings.Repeat("─", max(m.width, 1))))
	write(strings.TrimRight(render.Markdown(p.Content, width), "\n"))
	write(common.SeparatorStyle.Render(strings.Repeat("─", max(m.width, 1))))

	if m.confirm != confirmNone {
		prompt := "Delete this post? (y/N)"
		if m.confirm == confirmDeleteComment {
			prompt = "Delete this comment? (y/N)"
		}
		write(confirmStyle.Render(prompt))
	}

	m.offsets = make([]commentOffset, len(m.comments))
	if len(m.comments) == 0 {
		write(common.MetaStyle.Render("  No comments yet. Press c to write one."))
	}
	for i, c := range m.comments {
		start := lines
		selected := i == m.selectedIdx
		bar := common.SeparatorStyle.Render("│")
		if selected {
			bar = common.FocusStyle.Render("│")
		}
		header := common.AuthorStyle.Render(c.Author.Name) + " " + common.MetaStyle.Render(render.TimeAgo(c.CreatedAt.Time, now))
		if c.IsOwner {
			header += " " + ownerStyle.Render(" me ")
		}
		headerLine := bar + " " + header
		if selected {
			headerLine = commentSelStyle.Render(headerLine)
		}
		write(headerLine)
		for _, line := range strings.Split(render.Wrap(c.Content, width-2), "\n") {
			bodyLine := bar + " " + line
			if selected {
				bodyLine = commentSelStyle.Render(bodyLine)
			}
			write(bodyLine)
		}
		write("")
		m.offsets[i] = commentOffset{startLine: start, endLine: lines - 1}
	}

	hint := "j/k: comments  l: like  c: comment  e/d: edit/delete comment  o: images  r: refresh"
	if p.IsOwner {
		hint += "  E/D: edit/delete post"
	}
	write(common.HintStyle.Render(hint))
	m.viewport.SetContent(sb.String())
}

func (m *Model) scrollToCursor() {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.offsets) {
		return
	}
	off := m.offsets[m.selectedIdx]
	if off.startLine < m.viewport.YOffset || off.startLine >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(off.startLine)
	}
}

func hasImages(p *api.PostDetail) bool {
	return len(p.ImageObjectKeys) > 0 || len(p.ImageURLs) > 0
}

func sameImages(a, b *api.PostDetail) bool {
	return strings.Join(a.ImageObjectKeys, "\x00") == strings.Join(b.ImageObjectKeys, "\x00") &&
		strings.Join(a.ImageURLs, "\x00") == strings.Join(b.ImageURLs, "\x00")
}
