package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines keybindings for the upload page
type KeyMap struct {
	Browse  key.Binding
	Submit  key.Binding
	Reset   key.Binding
	Remove  key.Binding
	Refresh key.Binding
	Cancel  key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Browse: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter/space", "browse"),
		),
		Submit: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "verify"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "remove file"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "check status"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close browser"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Browse, k.Submit, k.Reset, k.Remove, k.Refresh, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Browse, k.Cancel, k.Remove},
		{k.Submit, k.Reset, k.Refresh},
		{k.Quit},
	}
}
