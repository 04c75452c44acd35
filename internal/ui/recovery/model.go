package recovery

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kaboocam/kaboocam/internal/ui/common"
	"github.com/kaboocam/kaboocam/internal/ui/messages"
	"github.com/kaboocam/kaboocam/internal/validate"
)

type stage int

const (
	stageEmail stage = iota
	stageCode
	stagePassword
)

type codeSentMsg struct{ err error }

type codeVerifiedMsg struct {
	token string
	err   error
}

type recoveredMsg struct{ err error }

// Model restores a withdrawn account: a code is mailed to the address,
// verified, and exchanged for a new password.
type Model struct {
	stage         stage
	emailInput    textinput.Model
	codeInput     textinput.Model
	passwordInput textinput.Model
	confirmInput  textinput.Model
	confirmFocus  bool
	verifiedToken string
	info          string
	err           string
	submitting    bool
	deps          common.Deps
	width         int
	height        int
}

// New creates the recovery form. A non-empty email sends the first code
// from Init.
func New(deps common.Deps, email string) Model {
	emailInput := textinput.New()
	emailInput.Placeholder = "email"
	emailInput.SetValue(email)
	emailInput.Width = 36
	emailInput.Focus()

	codeInput := textinput.New()
	codeInput.Placeholder = "verification code"
	codeInput.Width = 12

	passwordInput := textinput.New()
	passwordInput.Placeholder = "letters, digits and a symbol"
	passwordInput.EchoMode = textinput.EchoPassword
	passwordInput.Width = 36

	confirmInput := textinput.New()
	confirmInput.Placeholder = "repeat the password"
	confirmInput.EchoMode = textinput.EchoPassword
	confirmInput.Width = 36

	return Model{
		emailInput:    emailInput,
		codeInput:     codeInput,
		passwordInput: passwordInput,
		confirmInput:  confirmInput,
		deps:          deps,
	}
}

// Init sends a code right away when the address is already known.
func (m Model) Init() tea.Cmd {
	if strings.TrimSpace(m.emailInput.Value()) == "" {
		return nil
	}
	return func() tea.Msg { return tea.KeyMsg{Type: tea.KeyEnter} }
}

func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m Model) Loading() bool {
	return m.submitting
}

func (m Model) email() string {
	return strings.TrimSpace(m.emailInput.Value())
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+r":
			if m.stage != stageEmail {
				m.codeInput.SetValue("")
				return m.sendCode()
			}
		case "tab", "shift+tab", "up", "down":
			if m.stage == stagePassword {
				m.confirmFocus = !m.confirmFocus
				if m.confirmFocus {
					m.passwordInput.Blur()
					cmd := m.confirmInput.Focus()
					return m, cmd
				}
				m.confirmInput.Blur()
				cmd := m.passwordInput.Focus()
				return m, cmd
			}
			return m, nil
		case "enter", "ctrl+s":
			if m.submitting {
				return m, nil
			}
			switch m.stage {
			case stageEmail:
				return m.sendCode()
			case stageCode:
				return m.verifyCode()
			case stagePassword:
				if msg.String() == "enter" && !m.confirmFocus {
					m.confirmFocus = true
					m.passwordInput.Blur()
					cmd := m.confirmInput.Focus()
					return m, cmd
				}
				return m.recover()
			}
		}

	case codeSentMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = common.ErrorText(msg.err)
			return m, nil
		}
		m.err = ""
		m.info = "A verification code was sent to " + m.email()
		m.stage = stageCode
		m.emailInput.Blur()
		cmd := tea.Batch(m.codeInput.Focus(), common.Toast("Verification code sent"))
		return m, cmd

	case codeVerifiedMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = common.ErrorText(msg.err)
			m.verifiedToken = ""
			return m, nil
		}
		m.err = ""
		m.info = "Email verified. Choose a new password."
		m.verifiedToken = msg.token
		m.stage = stagePassword
		m.codeInput.Blur()
		cmd := m.passwordInput.Focus()
		return m, cmd

	case recoveredMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = common.ErrorText(msg.err)
			return m, nil
		}
		email := m.email()
		return m, tea.Batch(
			common.Toast("Your account is back. Please log in."),
			func() tea.Msg { return messages.NavigateMsg{Path: "/login", Email: email} },
		)
	}

	var cmd tea.Cmd
	switch m.stage {
	case stageEmail:
		m.emailInput, cmd = m.emailInput.Update(msg)
	case stageCode:
		m.codeInput, cmd = m.codeInput.Update(msg)
	case stagePassword:
		if m.confirmFocus {
			m.confirmInput, cmd = m.confirmInput.Update(msg)
		} else {
			m.passwordInput, cmd = m.passwordInput.Update(msg)
		}
	}
	return m, cmd
}

func (m Model) sendCode() (Model, tea.Cmd) {
	email := m.email()
	if !validate.IsEmail(email) {
		m.err = "That doesn't look like an email address"
		return m, nil
	}
	m.submitting = true
	m.err = ""
	deps := m.deps
	return m, func() tea.Msg {
		ctx, cancel := deps.Context()
		defer cancel()
		return codeSentMsg{err: deps.Client.SendRecoverCode(ctx, email)}
	}
}

func (m Model) verifyCode() (Model, tea.Cmd) {
	code := strings.TrimSpace(m.codeInput.Value())
	if code == "" {
		m.err = "Please enter the verification code"
		return m, nil
	}
	m.submitting = true
	m.err = ""
	deps := m.deps
	email := m.email()
	return m, func() tea.Msg {
		ctx, cancel := deps.Context()
		defer cancel()
		token, err := deps.Client.VerifyRecoverCode(ctx, email, code)
		return codeVerifiedMsg{token: token, err: err}
	}
}

func (m Model) recover() (Model, tea.Cmd) {
	if m.verifiedToken == "" {
		m.err = "Please verify your email first"
		return m, nil
	}
	form := &validate.RecoverForm{
		Email:           m.email(),
		Password:        m.passwordInput.Value(),
		PasswordConfirm: m.confirmInput.Value(),
	}
	if err := validate.Struct(form); err != nil {
		m.err = common.ErrorText(err)
		return m, nil
	}
	m.submitting = true
	m.err = ""
	deps := m.deps
	token := m.verifiedToken
	return m, func() tea.Msg {
		ctx, cancel := deps.Context()
		defer cancel()
		return recoveredMsg{err: deps.Client.RecoverMember(ctx, form.Email, form.Password, token)}
	}
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(common.TitleStyle.Render("Recover your account"))
	sb.WriteString("\n\n")
	sb.WriteString(common.LabelStyle.Render("Email:") + "\n" + m.emailInput.View() + "\n\n")
	if m.stage >= stageCode {
		sb.WriteString(common.LabelStyle.Render("Code:") + "\n" + m.codeInput.View() + "\n\n")
	}
	if m.stage == stagePassword {
		sb.WriteString(common.LabelStyle.Render("New password:") + "\n" + m.passwordInput.View() + "\n\n")
		sb.WriteString(common.LabelStyle.Render("Confirm:") + "\n" + m.confirmInput.View() + "\n\n")
	}
	if m.info != "" {
		sb.WriteString(common.SuccessStyle.Render(m.info) + "\n\n")
	}
	if m.err != "" {
		sb.WriteString(common.ErrorStyle.Render(m.err) + "\n\n")
	}
	switch {
	case m.submitting:
		sb.WriteString("Working...")
	case m.stage == stageEmail:
		sb.WriteString(common.HintStyle.Render("Enter: send code | Esc: cancel"))
	case m.stage == stageCode:
		sb.WriteString(common.HintStyle.Render("Enter: verify | ctrl+r: resend code | Esc: cancel"))
	default:
		sb.WriteString(common.HintStyle.Render("Tab: switch field | ctrl+s: save | Esc: cancel"))
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, sb.String())
}
