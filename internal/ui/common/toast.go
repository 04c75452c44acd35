package common

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kaboocam/kaboocam/internal/api"
	"github.com/kaboocam/kaboocam/internal/ui/messages"
	"github.com/kaboocam/kaboocam/internal/validate"
)

// Toast shows an informational line in the status bar.
func Toast(text string) tea.Cmd {
	return func() tea.Msg { return messages.ToastMsg{Text: text} }
}

// ErrorToast shows err in the status bar.
func ErrorToast(err error) tea.Cmd {
	text := ErrorText(err)
	return func() tea.Msg { return messages.ToastMsg{Text: text, IsError: true} }
}

// ErrorText turns err into the line a user should read. Backend and
// validation messages are shown without the wrapping call context.
func ErrorText(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, api.ErrUnauthorized) {
		return api.ErrUnauthorized.Error()
	}
	if fe := validate.First(err); fe != nil {
		return fe.Message
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var upErr *api.UploadError
	if errors.As(err, &upErr) {
		return upErr.Error()
	}
	return err.Error()
}

// Navigate returns a command that switches to the page at path.
func Navigate(path string) tea.Cmd {
	return func() tea.Msg { return messages.NavigateMsg{Path: path} }
}
