package statusbar

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kaboocam/kaboocam/internal/ui/common"
	"github.com/kaboocam/kaboocam/internal/ui/messages"
)

const toastTTL = 4 * time.Second

var (
	barStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#FFFFFF"))

	activeTabStyle = lipgloss.NewStyle().
			Background(common.Accent).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#555555")).
				Foreground(lipgloss.Color("#CCCCCC")).
				Padding(0, 1)

	userStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#00FF00")).
			Padding(0, 1)

	notifyStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#FF0000")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)

	statusTextStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#AAAAAA")).
			Padding(0, 1)

	errorTextStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#8B0000")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)
)

type tab struct {
	label string
	path  string
}

var tabs = []tab{
	{"1 Home", "/"},
	{"2 Board", "/board"},
	{"3 My page", "/mypage"},
}

type clearToastMsg struct{ id int }

// Model is the status bar at the bottom of the screen.
type Model struct {
	width      int
	activePath string
	username   string
	unread     int
	toast      string
	toastErr   bool
	toastID    int
	busy       bool
	spinner    spinner.Model
}

// New creates a new status bar.
func New() Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	return Model{activePath: "/", spinner: sp}
}

// SetSize sets the width.
func (m *Model) SetSize(w int) {
	m.width = w
}

// SetActiveTab highlights the tab owning path.
func (m *Model) SetActiveTab(path string) {
	m.activePath = path
}

// SetUser sets the logged-in nickname. Empty means logged out.
func (m *Model) SetUser(name string) {
	m.username = name
}

// SetUnread sets the unread activity count.
func (m *Model) SetUnread(count int) {
	m.unread = count
}

// SetBusy shows the spinner while a request runs. It returns the first
// spinner tick when the bar turns busy.
func (m *Model) SetBusy(busy bool) tea.Cmd {
	was := m.busy
	m.busy = busy
	if busy && !was {
		return m.spinner.Tick
	}
	return nil
}

// Toast returns the visible toast text.
func (m Model) Toast() (string, bool) {
	return m.toast, m.toastErr
}

// Update handles toasts and spinner ticks.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.ToastMsg:
		m.toast = msg.Text
		m.toastErr = msg.IsError
		m.toastID++
		id := m.toastID
		return m, tea.Tick(toastTTL, func(time.Time) tea.Msg { return clearToastMsg{id: id} })

	case clearToastMsg:
		if msg.id == m.toastID {
			m.toast = ""
			m.toastErr = false
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the status bar.
func (m Model) View() string {
	var tabsStr string
	for _, t := range tabs {
		if t.path == m.activePath {
			tabsStr += activeTabStyle.Render(t.label)
		} else {
			tabsStr += inactiveTabStyle.Render(t.label)
		}
	}

	var right string
	if m.busy {
		right += statusTextStyle.Render(m.spinner.View())
	}
	if m.toast != "" {
		if m.toastErr {
			right += errorTextStyle.Render(m.toast)
		} else {
			right += statusTextStyle.Render(m.toast)
		}
	}
	if m.unread > 0 {
		right += notifyStyle.Render(fmt.Sprintf(" %d new ", m.unread))
	}
	if m.username != "" {
		right += userStyle.Render(m.username)
	} else {
		right += statusTextStyle.Render("L:login")
	}

	gap := m.width - lipgloss.Width(tabsStr) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	mid := barStyle.Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, tabsStr, mid, right)
}
