// Package commentform writes and edits comments.
package commentform

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kaboocam/kaboocam/internal/api"
	"github.com/kaboocam/kaboocam/internal/ui/common"
	"github.com/kaboocam/kaboocam/internal/ui/messages"
	"github.com/kaboocam/kaboocam/internal/validate"
)

// Model is the comment composer. It edits comment when one is given.
type Model struct {
	textarea   textarea.Model
	postID     api.ID
	comment    *api.Comment
	deps       common.Deps
	err        string
	submitting bool
	width      int
	height     int
}

func New(deps common.Deps, postID api.ID, comment *api.Comment) Model {
	ta := textarea.New()
	ta.Placeholder = "Write a comment..."
	ta.CharLimit = validate.MaxComment
	ta.ShowLineNumbers = false
	ta.SetWidth(80)
	ta.SetHeight(6)
	if comment != nil {
		ta.SetValue(comment.Content)
	}
	ta.Focus()

	return Model{
		textarea: ta,
		postID:   postID,
		comment:  comment,
		deps:     deps,
	}
}

func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.textarea.SetWidth(min(w-4, 100))
	m.textarea.SetHeight(max(h-10, 4))
}

func (m Model) Loading() bool {
	return m.submitting
}

// Editing reports whether an existing comment is being changed.
func (m Model) Editing() bool {
	return m.comment != nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+s" {
			return m.submit()
		}

	case messages.CommentSavedMsg:
		m.submitting = false
		if msg.Err != nil {
			m.err = common.ErrorText(msg.Err)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	form := validate.CommentForm{Content: m.textarea.Value()}
	if err := validate.Struct(&form); err != nil {
		m.err = common.ErrorText(err)
		return m, nil
	}
	if m.comment != nil && form.Content == strings.TrimSpace(m.comment.Content) {
		m.err = "Nothing changed"
		return m, nil
	}
	m.submitting = true
	m.err = ""

	deps := m.deps
	postID := m.postID
	content := form.Content
	var commentID api.ID
	if m.comment != nil {
		commentID = m.comment.CommentID
	}
	return m, func() tea.Msg {
		ctx, cancel := deps.Context()
		defer cancel()
		var err error
		if commentID != "" {
			err = deps.Client.UpdateComment(ctx, commentID, content)
		} else {
			err = deps.Client.CreateComment(ctx, postID, content)
		}
		if err == nil {
			deps.InvalidatePost(postID)
		}
		return messages.CommentSavedMsg{PostID: postID, Err: err}
	}
}

func (m Model) View() string {
	var sb strings.Builder

	title := "New comment"
	if m.comment != nil {
		title = "Edit comment"
	}
	sb.WriteString(common.TitleStyle.Render(title))
	sb.WriteString("\n")
	sb.WriteString(m.textarea.View())
	sb.WriteString("\n")

	n := utf8.RuneCountInString(m.textarea.Value())
	counter := fmt.Sprintf("%d/%d", n, validate.MaxComment)
	if n >= validate.MaxComment {
		counter = common.ErrorStyle.Render(counter)
	} else {
		counter = common.MetaStyle.Render(counter)
	}
	sb.WriteString(counter)
	sb.WriteString("\n\n")

	if m.err != "" {
		sb.WriteString(common.ErrorStyle.Render(m.err))
		sb.WriteString("\n")
	}

	if m.submitting {
		sb.WriteString("Saving...")
	} else {
		sb.WriteString(common.HintStyle.Render("ctrl+s: save  esc: cancel"))
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, sb.String())
}
