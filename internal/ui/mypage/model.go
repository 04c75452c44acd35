// Package mypage shows the signed-in member's profile and account actions.
package mypage

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kaboocam/kaboocam/internal/api"
	"github.com/kaboocam/kaboocam/internal/ui/common"
	"github.com/kaboocam/kaboocam/internal/ui/messages"
	"github.com/kaboocam/kaboocam/internal/validate"
)

var (
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	keyStyle   = lipgloss.NewStyle().Foreground(common.Accent).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true)
	labelStyle = common.LabelStyle.Width(18)
)

type mode int

const (
	modeView mode = iota
	modeNickname
	modePassword
	modeImage
	modeConfirmDelete
	modeConfirmLogout
)

// Model is the my page view.
type Model struct {
	member   *api.Member
	mode     mode
	inputs   []textinput.Model
	focused  int
	deps     common.Deps
	loading  bool
	busy     bool
	err      string
	imageErr string
	width    int
	height   int
}

func New(deps common.Deps) Model {
	return Model{
		deps:    deps,
		member:  deps.CurrentUser(),
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return loadProfile(m.deps, false)
}

func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	for i := range m.inputs {
		m.inputs[i].Width = min(w-24, 50)
	}
}

func (m Model) Loading() bool {
	return m.loading || m.busy
}

// InputActive reports whether a form or prompt owns the keyboard.
func (m Model) InputActive() bool {
	return m.mode != modeView
}

func (m Model) Member() *api.Member {
	return m.member
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.ProfileLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			return m, common.ErrorToast(msg.Err)
		}
		m.member = msg.Member
		return m, nil

	case savedMsg:
		m.busy = false
		if msg.err != nil {
			m.err = common.ErrorText(msg.err)
			return m, nil
		}
		m.mode = modeView
		m.inputs = nil
		m.err = ""
		cmds := []tea.Cmd{common.Toast(msg.toast)}
		if msg.name != "" {
			name := msg.name
			cmds = append(cmds, func() tea.Msg { return messages.SessionChangedMsg{Name: name, LoggedIn: true} })
		}
		if msg.reload {
			m.loading = true
			cmds = append(cmds, loadProfile(m.deps, true))
		}
		return m, tea.Batch(cmds...)

	case signedOutMsg:
		m.busy = false
		m.mode = modeView
		if msg.err != nil {
			return m, common.ErrorToast(msg.err)
		}
		m.member = nil
		return m, tea.Batch(
			common.Toast(msg.toast),
			func() tea.Msg { return messages.SessionChangedMsg{LoggedIn: false} },
			common.Navigate("/login"),
		)

	case imageSavedMsg:
		m.busy = false
		if msg.err != nil {
			m.imageErr = common.ErrorText(msg.err)
			return m, common.ErrorToast(msg.err)
		}
		return m, common.OpenFile(msg.path)

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch m.mode {
		case modeView:
			return m.updateView(msg)
		case modeConfirmDelete, modeConfirmLogout:
			return m.updateConfirm(msg)
		default:
			return m.updateForm(msg)
		}
	}

	if len(m.inputs) > 0 {
		var cmd tea.Cmd
		m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateView(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "n":
		name := ""
		if m.member != nil {
			name = m.member.Name
		}
		return m.openForm(modeNickname, field("new nickname", name, false))
	case "p":
		return m.openForm(modePassword,
			field("current password", "", true),
			field("new password", "", true),
			field("confirm password", "", true))
	case "i":
		return m.openForm(modeImage, field("image path", "", false))
	case "o":
		if m.member == nil || (m.member.ProfileImageObjectKey == "" && m.member.ProfileImageURL == "") {
			return m, common.Toast("No profile image set")
		}
		m.busy = true
		m.imageErr = ""
		return m, fetchProfileImage(m.deps, *m.member)
	case "x":
		m.mode = modeConfirmLogout
		return m, nil
	case "D":
		m.mode = modeConfirmDelete
		return m, nil
	case "r":
		m.loading = true
		return m, loadProfile(m.deps, true)
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (Model, tea.Cmd) {
	kind := m.mode
	m.mode = modeView
	if s := msg.String(); s != "y" && s != "Y" {
		return m, nil
	}
	m.busy = true
	if kind == modeConfirmDelete {
		return m, deleteAccount(m.deps)
	}
	return m, logout(m.deps)
}

func (m Model) updateForm(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeView
		m.inputs = nil
		m.err = ""
		return m, nil
	case "tab", "down":
		m.focused = (m.focused + 1) % len(m.inputs)
		cmd := m.updateFocus()
		return m, cmd
	case "shift+tab", "up":
		m.focused = (m.focused + len(m.inputs) - 1) % len(m.inputs)
		cmd := m.updateFocus()
		return m, cmd
	case "enter":
		if m.focused < len(m.inputs)-1 {
			m.focused++
			cmd := m.updateFocus()
			return m, cmd
		}
		return m.submit()
	case "ctrl+s":
		return m.submit()
	}
	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	deps := m.deps
	switch m.mode {
	case modeNickname:
		form := validate.NicknameForm{Name: m.inputs[0].Value()}
		if err := validate.Struct(&form); err != nil {
			m.err = common.ErrorText(err)
			return m, nil
		}
		if m.member != nil && form.Name == m.member.Name {
			m.err = "That is already your nickname"
			return m, nil
		}
		m.busy = true
		return m, updateName(deps, form.Name)

	case modePassword:
		form := validate.PasswordChangeForm{
			OldPassword:     m.inputs[0].Value(),
			NewPassword:     m.inputs[1].Value(),
			PasswordConfirm: m.inputs[2].Value(),
		}
		if err := validate.Struct(&form); err != nil {
			m.err = common.ErrorText(err)
			return m, nil
		}
		if form.OldPassword == form.NewPassword {
			m.err = "The new password must differ from the current one"
			return m, nil
		}
		m.busy = true
		return m, updatePassword(deps, form.OldPassword, form.NewPassword)

	case modeImage:
		img, err := validate.ImageFile(m.inputs[0].Value())
		if err != nil {
			m.err = common.ErrorText(err)
			return m, nil
		}
		m.busy = true
		return m, updateImage(deps, img)
	}
	return m, nil
}

func field(placeholder, value string, secret bool) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	ti.Width = 40
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	ti.SetValue(value)
	return ti
}

func (m Model) openForm(md mode, inputs ...textinput.Model) (Model, tea.Cmd) {
	m.mode = md
	m.inputs = inputs
	m.focused = 0
	m.err = ""
	m.SetSize(m.width, m.height)
	cmd := m.updateFocus()
	return m, cmd
}

func (m *Model) updateFocus() tea.Cmd {
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == m.focused {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(common.TitleStyle.Render("My page"))
	sb.WriteString("\n")

	if m.member == nil {
		if m.loading {
			sb.WriteString("Loading profile...")
		} else {
			sb.WriteString(common.MetaStyle.Render("Profile unavailable. Press r to retry."))
		}
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, sb.String())
	}

	email := m.member.Email
	if email == "" {
		email = "no email on file"
	}
	image := "none"
	if m.member.ProfileImageObjectKey != "" || m.member.ProfileImageURL != "" {
		image = "set (o to open)"
	}
	sb.WriteString(labelStyle.Render("nickname") + valueStyle.Render(m.member.Name) + "\n")
	sb.WriteString(labelStyle.Render("email") + valueStyle.Render(email) + "\n")
	sb.WriteString(labelStyle.Render("profile image") + valueStyle.Render(image) + "\n")
	if m.imageErr != "" {
		sb.WriteString(common.ErrorStyle.Render(m.imageErr) + "\n")
	}
	sb.WriteString("\n")

	switch m.mode {
	case modeView:
		for _, a := range [][2]string{
			{"n", "change nickname"},
			{"p", "change password"},
			{"i", "change profile image"},
			{"x", "log out"},
			{"D", "delete account"},
		} {
			sb.WriteString(keyStyle.Render(a[0]) + "  " + a[1] + "\n")
		}
	case modeConfirmDelete:
		sb.WriteString(warnStyle.Render("Delete your account? You can restore it later from the recover page. (y/N)") + "\n")
	case modeConfirmLogout:
		sb.WriteString(warnStyle.Render("Log out? (y/N)") + "\n")
	default:
		for i, in := range m.inputs {
			sb.WriteString(labelStyle.Render(in.Placeholder) + in.View())
			if i < len(m.inputs)-1 {
				sb.WriteString("\n")
			}
		}
		sb.WriteString("\n\n")
		if m.err != "" {
			sb.WriteString(common.ErrorStyle.Render(m.err) + "\n")
		}
		if m.busy {
			sb.WriteString("Saving...")
		} else {
			sb.WriteString(common.HintStyle.Render("enter: save  tab: next field  esc: cancel"))
		}
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, sb.String())
}
