package board

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kaboocam/kaboocam/internal/render"
	"github.com/kaboocam/kaboocam/internal/ui/common"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF"))

	descStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#828282"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(common.Accent)

	selectedDescStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#CCCCCC"))

	indexStyle = lipgloss.NewStyle().
			Foreground(common.Accent).
			Width(4).
			Align(lipgloss.Right)
)

// Delegate draws a post as a title line, a preview line and a meta line.
type Delegate struct {
	Now func() time.Time
}

func (d Delegate) Height() int                             { return 3 }
func (d Delegate) Spacing() int                            { return 1 }
func (d Delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d Delegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(PostItem)
	if !ok {
		return
	}
	now := time.Now()
	if d.Now != nil {
		now = d.Now()
	}

	width := m.Width() - 6
	if width < 10 {
		width = 10
	}
	idx := indexStyle.Render(fmt.Sprintf("%d.", item.Index+1))
	title := render.Truncate(item.Title(), width)
	desc := render.Truncate(item.Description(), width)
	meta := render.Truncate(common.PostMeta(item.PostSummary, now), width)

	if index == m.Index() {
		title = selectedTitleStyle.Render(title)
		desc = selectedDescStyle.Render(desc)
	} else {
		title = titleStyle.Render(title)
		desc = descStyle.Render(desc)
	}

	fmt.Fprintf(w, "%s %s\n     %s\n     %s", idx, title, desc, descStyle.Render(meta))
}
