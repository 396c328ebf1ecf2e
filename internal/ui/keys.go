package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the bindings the root model handles before a view sees them.
type KeyMap struct {
	Quit      key.Binding
	ForceQuit key.Binding
	Back      key.Binding
	Login     key.Binding
	Profile   key.Binding
}

var Keys = KeyMap{
	Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Login:     key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "login")),
	Profile:   key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "profile")),
}
