package signup

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/kaboocam/kaboocam/internal/api"
	"github.com/kaboocam/kaboocam/internal/ui/common"
	"github.com/kaboocam/kaboocam/internal/ui/messages"
	"github.com/kaboocam/kaboocam/internal/validate"
)

const (
	fieldEmail = iota
	fieldName
	fieldPassword
	fieldConfirm
	fieldImage
	fieldCount
)

var labels = [fieldCount]string{"Email", "Nickname", "Password", "Confirm", "Profile image"}

type emailCheckedMsg struct {
	email     string
	available bool
	err       error
}

type registeredMsg struct {
	email      string
	imageError error
	err        error
}

// Model is the signup form.
type Model struct {
	inputs       [fieldCount]textinput.Model
	focused      int
	checkedEmail string
	emailNote    string
	err          string
	submitting   bool
	deps         common.Deps
	width        int
	height       int
}

func New(deps common.Deps) Model {
	var inputs [fieldCount]textinput.Model
	for i := range inputs {
		ti := textinput.New()
		ti.Width = 40
		inputs[i] = ti
	}
	inputs[fieldEmail].Placeholder = "you@example.com"
	inputs[fieldName].Placeholder = "2 to 12 characters"
	inputs[fieldName].CharLimit = 12
	inputs[fieldPassword].Placeholder = "at least 8 characters"
	inputs[fieldPassword].EchoMode = textinput.EchoPassword
	inputs[fieldConfirm].EchoMode = textinput.EchoPassword
	inputs[fieldImage].Placeholder = "optional path to an image"
	inputs[fieldEmail].Focus()
	return Model{inputs: inputs, deps: deps}
}

func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m Model) Loading() bool {
	return m.submitting
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			cmd := m.focus((m.focused + 1) % fieldCount)
			return m, cmd
		case "shift+tab", "up":
			cmd := m.focus((m.focused + fieldCount - 1) % fieldCount)
			return m, cmd
		case "ctrl+e":
			return m.checkEmail()
		case "enter":
			if m.focused == fieldEmail {
				return m.checkEmail()
			}
			if m.focused < fieldImage {
				cmd := m.focus(m.focused + 1)
				return m, cmd
			}
			return m.submit()
		case "ctrl+s":
			return m.submit()
		}

	case emailCheckedMsg:
		m.submitting = false
		switch {
		case msg.err != nil:
			m.emailNote = ""
			m.err = common.ErrorText(msg.err)
		case msg.available:
			m.checkedEmail = msg.email
			m.emailNote = "This email is available"
			m.err = ""
		default:
			m.checkedEmail = ""
			m.emailNote = ""
			m.err = "This email is already in use"
		}
		return m, nil

	case registeredMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = common.ErrorText(msg.err)
			return m, nil
		}
		email := msg.email
		cmds := []tea.Cmd{
			common.Toast("Welcome aboard! Please log in."),
			func() tea.Msg { return messages.NavigateMsg{Path: "/login", Email: email} },
		}
		if msg.imageError != nil {
			cmds[0] = common.Toast("Signed up, but the profile image upload failed")
		}
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	before := m.inputs[fieldEmail].Value()
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	if m.focused == fieldEmail && m.inputs[fieldEmail].Value() != before {
		m.checkedEmail = ""
		m.emailNote = ""
	}
	return m, cmd
}

func (m *Model) focus(i int) tea.Cmd {
	m.inputs[m.focused].Blur()
	m.focused = i
	return m.inputs[i].Focus()
}

func (m Model) checkEmail() (Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	email := strings.TrimSpace(m.inputs[fieldEmail].Value())
	if email == "" {
		m.err = "Please enter your email"
		return m, nil
	}
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
		ok, err := deps.Client.CheckEmail(ctx, email)
		return emailCheckedMsg{email: email, available: ok, err: err}
	}
}

func (m Model) submit() (Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	form := &validate.SignupForm{
		Name:            m.inputs[fieldName].Value(),
		Email:           m.inputs[fieldEmail].Value(),
		Password:        m.inputs[fieldPassword].Value(),
		PasswordConfirm: m.inputs[fieldConfirm].Value(),
	}
	if err := validate.Struct(form); err != nil {
		m.err = common.ErrorText(err)
		return m, nil
	}
	if m.checkedEmail == "" || m.checkedEmail != form.Email {
		m.err = "Please check the email for duplicates first (ctrl+e)"
		return m, nil
	}

	var image *validate.Image
	if path := strings.TrimSpace(m.inputs[fieldImage].Value()); path != "" {
		img, err := validate.ImageFile(path)
		if err != nil {
			m.err = common.ErrorText(err)
			return m, nil
		}
		image = img
	}

	m.submitting = true
	m.err = ""
	deps := m.deps
	return m, func() tea.Msg {
		ctx, cancel := deps.Context()
		defer cancel()
		reg := api.Registration{Email: form.Email, Password: form.Password, Name: form.Name}
		var imageErr error
		if image != nil {
			keys, err := common.UploadEach(ctx, deps.Client.HTTPClient(), []*validate.Image{image}, deps.Client.ProfileImagePresignedURL)
			if err != nil {
				deps.Log().Warn("profile image upload failed", zap.Error(err))
				imageErr = err
			} else {
				reg.ImageObjectKey = keys[0]
			}
		}
		if err := deps.Client.Register(ctx, reg); err != nil {
			return registeredMsg{err: err}
		}
		return registeredMsg{email: form.Email, imageError: imageErr}
	}
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(common.TitleStyle.Render("Create an account"))
	sb.WriteString("\n\n")
	for i := range m.inputs {
		label := common.LabelStyle.Width(15).Render(labels[i])
		if i == m.focused {
			label = common.FocusStyle.Bold(true).Width(15).Render(labels[i])
		}
		sb.WriteString(label + " " + m.inputs[i].View())
		sb.WriteString("\n")
		if i == fieldEmail && m.emailNote != "" {
			sb.WriteString(strings.Repeat(" ", 16) + common.SuccessStyle.Render(m.emailNote) + "\n")
		}
		sb.WriteString("\n")
	}

	if m.err != "" {
		sb.WriteString(common.ErrorStyle.Render(m.err))
		sb.WriteString("\n\n")
	}
	if m.submitting {
		sb.WriteString("Working...")
	} else {
		sb.WriteString(common.HintStyle.Render("Tab: next field | ctrl+e: check email | ctrl+s: sign up | Esc: cancel"))
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, sb.String())
}
