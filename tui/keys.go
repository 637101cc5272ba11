package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the search box.
type KeyMap struct {
	Hide key.Binding
	Show key.Binding
	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Hide: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "hide results"),
	),
	Show: key.NewBinding(
		key.WithKeys("tab", "enter"),
		key.WithHelp("tab/enter", "show results"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}
