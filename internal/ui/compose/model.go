// Package compose is the form for writing and editing posts.
package compose

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kaboocam/kaboocam/internal/api"
	"github.com/kaboocam/kaboocam/internal/ui/common"
	"github.com/kaboocam/kaboocam/internal/ui/messages"
	"github.com/kaboocam/kaboocam/internal/validate"
)

var labelStyle = common.LabelStyle.Width(8)

type field int

const (
	fieldTitle field = iota
	fieldContent
	fieldImages
	fieldExisting
)

// Model creates a post, or edits post when one is given.
type Model struct {
	titleInput  textinput.Model
	content     textarea.Model
	imagesInput textinput.Model
	focused     field
	post        *api.PostDetail
	removed     map[string]bool
	existingIdx int
	deps        common.Deps
	err         string
	submitting  bool
	width       int
	height      int
}

func New(deps common.Deps, post *api.PostDetail) Model {
	ti := textinput.New()
	ti.Placeholder = "Title"
	ti.CharLimit = 100
	ti.Width = 60
	ti.Focus()

	ta := textarea.New()
	ta.Placeholder = "What would you like to share?"
	ta.CharLimit = validate.MaxPostContent
	ta.ShowLineNumbers = false
	ta.SetWidth(60)
	ta.SetHeight(8)

	ii := textinput.New()
	ii.Placeholder = "~/Pictures/a.png, ~/Pictures/b.jpg (up to 3)"
	ii.CharLimit = 1024
	ii.Width = 60

	if post != nil {
		ti.SetValue(post.Title)
		ta.SetValue(post.Content)
	}

	return Model{
		titleInput:  ti,
		content:     ta,
		imagesInput: ii,
		focused:     fieldTitle,
		post:        post,
		removed:     map[string]bool{},
		deps:        deps,
	}
}

func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	fw := min(w-14, 80)
	m.titleInput.Width = fw
	m.imagesInput.Width = fw
	m.content.SetWidth(fw)
	m.content.SetHeight(max(h-20, 4))
}

func (m Model) Loading() bool {
	return m.submitting
}

// Editing reports whether an existing post is being changed.
func (m Model) Editing() bool {
	return m.post != nil
}

func (m Model) fieldCount() int {
	if m.post != nil && len(m.post.ImageObjectKeys) > 0 {
		return 4
	}
	return 3
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			m.focused = field((int(m.focused) + 1) % m.fieldCount())
			cmd := m.updateFocus()
			return m, cmd
		case "shift+tab":
			n := m.fieldCount()
			m.focused = field((int(m.focused) + n - 1) % n)
			cmd := m.updateFocus()
			return m, cmd
		case "ctrl+s":
			return m.submit()
		}
		if m.focused == fieldExisting {
			return m.updateExisting(msg), nil
		}

	case messages.PostSavedMsg:
		m.submitting = false
		if msg.Err != nil {
			m.err = common.ErrorText(msg.Err)
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.focused {
	case fieldTitle:
		m.titleInput, cmd = m.titleInput.Update(msg)
	case fieldContent:
		m.content, cmd = m.content.Update(msg)
	case fieldImages:
		m.imagesInput, cmd = m.imagesInput.Update(msg)
	}
	return m, cmd
}

// updateExisting moves over the post's current images and toggles their
// removal.
func (m Model) updateExisting(msg tea.KeyMsg) Model {
	keys := m.post.ImageObjectKeys
	switch msg.String() {
	case "left", "h", "up", "k":
		if m.existingIdx > 0 {
			m.existingIdx--
		}
	case "right", "l", "down", "j":
		if m.existingIdx < len(keys)-1 {
			m.existingIdx++
		}
	case " ", "x", "enter":
		key := keys[m.existingIdx]
		m.removed[key] = !m.removed[key]
	}
	return m
}

func (m *Model) updateFocus() tea.Cmd {
	m.titleInput.Blur()
	m.content.Blur()
	m.imagesInput.Blur()
	switch m.focused {
	case fieldTitle:
		return m.titleInput.Focus()
	case fieldContent:
		return m.content.Focus()
	case fieldImages:
		return m.imagesInput.Focus()
	}
	return nil
}

func (m Model) imagePaths() []string {
	var paths []string
	for _, p := range strings.Split(m.imagesInput.Value(), ",") {
		if p = expandHome(strings.TrimSpace(p)); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func (m Model) keptKeys() []string {
	if m.post == nil {
		return nil
	}
	var kept []string
	for _, k := range m.post.ImageObjectKeys {
		if !m.removed[k] {
			kept = append(kept, k)
		}
	}
	return kept
}

func (m Model) removedKeys() []string {
	if m.post == nil {
		return nil
	}
	var out []string
	for _, k := range m.post.ImageObjectKeys {
		if m.removed[k] {
			out = append(out, k)
		}
	}
	return out
}

func (m Model) submit() (Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	paths := m.imagePaths()
	form := validate.PostForm{
		Title:   m.titleInput.Value(),
		Content: m.content.Value(),
		Images:  append(m.keptKeys(), paths...),
	}
	if err := validate.Struct(&form); err != nil {
		m.err = common.ErrorText(err)
		return m, nil
	}
	images, err := validate.ImageFiles(paths)
	if err != nil {
		m.err = common.ErrorText(err)
		return m, nil
	}
	m.submitting = true
	m.err = ""

	deps := m.deps
	if m.post == nil {
		return m, create(deps, form.Title, form.Content, images)
	}
	return m, update(deps, m.post.PostID, api.PostUpdate{
		Title:                  form.Title,
		Contents:               form.Content,
		RemovedImageObjectKeys: m.removedKeys(),
	}, images)
}

// create uploads each image through its own presigned URL before the post
// itself is created with the resulting object keys.
func create(deps common.Deps, title, content string, images []*validate.Image) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := uploadContext(deps, len(images))
		defer cancel()
		keys, err := common.UploadEach(ctx, deps.Client.HTTPClient(), images, deps.Client.PostImagePresignedURL)
		if err != nil {
			return messages.PostSavedMsg{Err: err}
		}
		ref, err := deps.Client.CreatePost(ctx, api.NewPost{Title: title, Content: content, ImageObjectKeys: keys})
		if err != nil {
			return messages.PostSavedMsg{Err: err}
		}
		deps.InvalidatePost(ref.PostID)
		return messages.PostSavedMsg{PostID: ref.PostID}
	}
}

// update presigns every added image in one request, uploads them and then
// sends the edit with the added and removed keys.
func update(deps common.Deps, id api.ID, u api.PostUpdate, images []*validate.Image) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := uploadContext(deps, len(images))
		defer cancel()
		if len(images) > 0 {
			specs := make([]api.FileSpec, len(images))
			for i, img := range images {
				specs[i] = common.FileSpec(img)
			}
			targets, err := deps.Client.PostImagesPresignedURLs(ctx, id, specs)
			if err != nil {
				return messages.PostSavedMsg{PostID: id, Err: err}
			}
			for i, img := range images {
				if err := common.UploadImage(ctx, deps.Client.HTTPClient(), img, &targets[i]); err != nil {
					return messages.PostSavedMsg{PostID: id, Err: err}
				}
				u.AddedImageObjectKeys = append(u.AddedImageObjectKeys, targets[i].ObjectKey)
			}
		}
		err := deps.Client.UpdatePost(ctx, id, u)
		if err == nil {
			deps.InvalidatePost(id)
		}
		return messages.PostSavedMsg{PostID: id, Err: err}
	}
}

// uploadContext grants each image its own request timeout on top of the
// post request.
func uploadContext(deps common.Deps, images int) (context.Context, context.CancelFunc) {
	if deps.Cfg.RequestTimeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), deps.Cfg.RequestTimeout*time.Duration(images+1))
}

func (m Model) View() string {
	var sb strings.Builder

	title := "New post"
	if m.post != nil {
		title = "Edit post"
	}
	sb.WriteString(common.TitleStyle.Render(title))
	sb.WriteString("\n")

	sb.WriteString(labelStyle.Render("title") + " " + m.titleInput.View())
	sb.WriteString("\n\n")

	sb.WriteString(labelStyle.Render("content"))
	sb.WriteString("\n")
	sb.WriteString(m.content.View())
	sb.WriteString("\n")
	n := utf8.RuneCountInString(m.content.Value())
	sb.WriteString(common.MetaStyle.Render(fmt.Sprintf("%d/%d", n, validate.MaxPostContent)))
	sb.WriteString("\n\n")

	sb.WriteString(labelStyle.Render("images") + " " + m.imagesInput.View())
	sb.WriteString("\n")

	if m.post != nil && len(m.post.ImageObjectKeys) > 0 {
		sb.WriteString("\n")
		sb.WriteString(labelStyle.Render("current"))
		for i, key := range m.post.ImageObjectKeys {
			name := path.Base(key)
			if m.removed[key] {
				name = "✗ " + name
			}
			style := common.UnselectedStyle
			if m.focused == fieldExisting && i == m.existingIdx {
				style = common.SelectedStyle
			}
			if m.removed[key] {
				name = common.ErrorStyle.Render(name)
			}
			sb.WriteString(" " + style.Render(name))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if m.err != "" {
		sb.WriteString(common.ErrorStyle.Render(m.err))
		sb.WriteString("\n")
	}

	if m.submitting {
		sb.WriteString("Uploading...")
	} else {
		hint := "tab: next field  ctrl+s: publish  esc: cancel"
		if m.fieldCount() == 4 {
			hint = "tab: next field  space: keep/remove image  ctrl+s: save  esc: cancel"
		}
		sb.WriteString(common.HintStyle.Render(hint))
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, sb.String())
}
