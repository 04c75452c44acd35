// Package activity lists posts that appeared on the board since the user
// last looked.
package activity

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/kaboocam/kaboocam/internal/cache"
	"github.com/kaboocam/kaboocam/internal/render"
	"github.com/kaboocam/kaboocam/internal/ui/common"
	"github.com/kaboocam/kaboocam/internal/ui/messages"
)

const limit = 50

var (
	entryStyle     = lipgloss.NewStyle().Padding(0, 1)
	selectedStyle  = lipgloss.NewStyle().Background(lipgloss.Color("#333333")).Padding(0, 1)
	unreadDotStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
	previewStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
)

// Model is the activity view.
type Model struct {
	entries     []cache.Activity
	selectedIdx int
	deps        common.Deps
	width       int
	height      int
	now         func() time.Time
}

func New(deps common.Deps) Model {
	return Model{deps: deps, now: time.Now}
}

func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Load refreshes the entries from the cache.
func (m *Model) Load() {
	entries, err := m.deps.Cache.Activities(limit)
	if err != nil {
		m.deps.Log().Warn("loading activity", zap.Error(err))
	}
	m.entries = entries
	if m.selectedIdx >= len(m.entries) {
		m.selectedIdx = max(len(m.entries)-1, 0)
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.NewActivityMsg:
		m.Load()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.selectedIdx < len(m.entries)-1 {
				m.selectedIdx++
			}
		case "k", "up":
			if m.selectedIdx > 0 {
				m.selectedIdx--
			}
		case "enter":
			if m.selectedIdx < 0 || m.selectedIdx >= len(m.entries) {
				return m, nil
			}
			e := m.entries[m.selectedIdx]
			if err := m.deps.Cache.MarkActivityRead(e.PostID); err != nil {
				m.deps.Log().Warn("marking activity read", zap.Error(err))
			}
			m.entries[m.selectedIdx].Read = true
			return m, tea.Batch(
				unreadChanged(m.UnreadCount()),
				func() tea.Msg { return messages.OpenPostMsg{PostID: e.PostID} },
			)
		case "A":
			if err := m.deps.Cache.MarkAllActivityRead(); err != nil {
				m.deps.Log().Warn("marking activity read", zap.Error(err))
			}
			for i := range m.entries {
				m.entries[i].Read = true
			}
			return m, unreadChanged(0)
		}
	}
	return m, nil
}

func unreadChanged(n int) tea.Cmd {
	return func() tea.Msg { return messages.NewActivityMsg{Unread: n} }
}

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(common.TitleStyle.Render("New on the board"))
	sb.WriteString("\n")

	if len(m.entries) == 0 {
		sb.WriteString("\n  Nothing new yet.\n")
		return sb.String()
	}

	now := m.now()
	for i, e := range m.entries {
		var line strings.Builder
		if !e.Read {
			line.WriteString(unreadDotStyle.Render("● "))
		} else {
			line.WriteString("  ")
		}
		line.WriteString(common.AuthorStyle.Render(e.Author))
		line.WriteString(common.MetaStyle.Render(" posted " + render.TimeAgo(e.CreatedAt, now)))
		line.WriteString("  " + e.Title)
		if e.Preview != "" {
			line.WriteString("\n  " + previewStyle.Render(render.Truncate(e.Preview, max(m.width-8, 20))))
		}

		entry := line.String()
		if i == m.selectedIdx {
			entry = selectedStyle.Render(entry)
		} else {
			entry = entryStyle.Render(entry)
		}
		sb.WriteString(entry + "\n")
	}
	sb.WriteString("\n" + common.HintStyle.Render("enter: open  A: mark all read"))

	return sb.String()
}

// UnreadCount returns the number of unread entries.
func (m Model) UnreadCount() int {
	count := 0
	for _, e := range m.entries {
		if !e.Read {
			count++
		}
	}
	return count
}
