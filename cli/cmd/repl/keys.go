package repl

import "github.com/charmbracelet/bubbles/key"

// keyMap binds the REPL actions to keys.
type keyMap struct {
	Interrupt    key.Binding
	EOF          key.Binding
	Submit       key.Binding
	Next         key.Binding
	Prev         key.Binding
	Older        key.Binding
	Newer        key.Binding
	OlderInMode  key.Binding
	NewerInMode  key.Binding
	OlderCommand key.Binding
	NewerCommand key.Binding
	Toggle       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Interrupt: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "clear the line, or exit when it is empty"),
		),
		EOF: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "exit on an empty line"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "run the line, or accept the selected candidate"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "select the next candidate"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "select the previous candidate"),
		),
		Older: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "older history entry of either mode"),
		),
		Newer: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "newer history entry of either mode"),
		),
		OlderInMode: key.NewBinding(
			key.WithKeys("shift+up"),
			key.WithHelp("shift+up", "older history entry of this mode"),
		),
		NewerInMode: key.NewBinding(
			key.WithKeys("shift+down"),
			key.WithHelp("shift+down", "newer history entry of this mode"),
		),
		OlderCommand: key.NewBinding(
			key.WithKeys("alt+up"),
			key.WithHelp("alt+up", "older command, restoring the line past the end"),
		),
		NewerCommand: key.NewBinding(
			key.WithKeys("alt+down"),
			key.WithHelp("alt+down", "newer command, restoring the line past the end"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel selection, or toggle command mode"),
		),
	}
}

// bindings lists every binding in help order.
func (k keyMap) bindings() []key.Binding {
	return []key.Binding{
		k.Submit, k.Next, k.Prev, k.Toggle,
		k.Older, k.Newer, k.OlderInMode, k.NewerInMode,
		k.OlderCommand, k.NewerCommand,
		k.Interrupt, k.EOF,
	}
}
