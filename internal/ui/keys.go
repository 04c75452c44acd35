package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the bindings the root model handles before a page sees the
// key.
type KeyMap struct {
	Quit      key.Binding
	ForceQuit key.Binding
	Back      key.Binding
	Help      key.Binding
	Home      key.Binding
	Board     key.Binding
	MyPage    key.Binding
	Login     key.Binding
	Activity  key.Binding
}

var Keys = KeyMap{
	Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Home:      key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "home")),
	Board:     key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "board")),
	MyPage:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "my page")),
	Login:     key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log in")),
	Activity:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "new posts")),
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Home, k.Board, k.MyPage, k.Activity, k.Login, k.Back, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Home, k.Board, k.MyPage, k.Activity},
		{k.Login, k.Back, k.Help, k.Quit, k.ForceQuit},
	}
}
