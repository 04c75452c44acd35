package login

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kaboocam/kaboocam/internal/ui/common"
	"github.com/kaboocam/kaboocam/internal/ui/messages"
	"github.com/kaboocam/kaboocam/internal/validate"
)

// Model is the login form view.
type Model struct {
	emailInput    textinput.Model
	passwordInput textinput.Model
	focusIndex    int
	err           string
	submitting    bool
	deps          common.Deps
	width         int
	height        int
}

// New creates a new login form. email pre-fills the address, e.g. right
// after signup.
func New(deps common.Deps, email string) Model {
	emailInput := textinput.New()
	emailInput.Placeholder = "email"
	emailInput.SetValue(email)
	emailInput.Width = 30

	passwordInput := textinput.New()
	passwordInput.Placeholder = "password"
	passwordInput.EchoMode = textinput.EchoPassword
	passwordInput.Width = 30

	m := Model{
		emailInput:    emailInput,
		passwordInput: passwordInput,
		deps:          deps,
	}
	if email != "" {
		m.focusIndex = 1
		m.passwordInput.Focus()
	} else {
		m.emailInput.Focus()
	}
	return m
}

// SetSize sets the viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Loading reports whether a login request is in flight.
func (m Model) Loading() bool {
	return m.submitting
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			if m.focusIndex == 0 {
				m.focusIndex = 1
				m.emailInput.Blur()
				m.passwordInput.Focus()
			} else {
				m.focusIndex = 0
				m.passwordInput.Blur()
				m.emailInput.Focus()
			}
			return m, nil
		case "ctrl+n":
			return m, common.Navigate("/signup")
		case "ctrl+r":
			return m, common.Navigate("/recover")
		case "enter":
			if m.submitting {
				return m, nil
			}
			form := &validate.LoginForm{Email: m.emailInput.Value(), Password: m.passwordInput.Value()}
			if err := validate.Struct(form); err != nil {
				m.err = common.ErrorText(err)
				return m, nil
			}
			m.submitting = true
			m.err = ""
			return m, login(m.deps, form.Email, form.Password)
		}

	case messages.LoginResultMsg:
		m.submitting = false
		if msg.Err != nil {
			m.err = common.ErrorText(msg.Err)
			m.passwordInput.SetValue("")
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.focusIndex == 0 {
		m.emailInput, cmd = m.emailInput.Update(msg)
	} else {
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return m, cmd
}

func login(deps common.Deps, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := deps.Context()
		defer cancel()
		_, err := deps.SignIn(ctx, email, password)
		return messages.LoginResultMsg{Email: email, Err: err}
	}
}

// View renders the login form.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(common.TitleStyle.Render("Log in to Kaboocam"))
	sb.WriteString("\n\n")
	sb.WriteString(common.LabelStyle.Render("Email:"))
	sb.WriteString("\n")
	sb.WriteString(m.emailInput.View())
	sb.WriteString("\n\n")
	sb.WriteString(common.LabelStyle.Render("Password:"))
	sb.WriteString("\n")
	sb.WriteString(m.passwordInput.View())
	sb.WriteString("\n\n")

	if m.err != "" {
		sb.WriteString(common.ErrorStyle.Render(m.err))
		sb.WriteString("\n\n")
	}

	if m.submitting {
		sb.WriteString("Logging in...")
	} else {
		sb.WriteString(common.FocusStyle.Render("Enter") + " to log in, " + common.FocusStyle.Render("Esc") + " to cancel\n")
		sb.WriteString(common.HintStyle.Render("ctrl+n: sign up  ctrl+r: forgot password"))
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, sb.String())
}
