package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds all TUI key bindings.
type keyMap struct {
	Goal    key.Binding
	Script  key.Binding
	Confirm key.Binding
	Discard key.Binding
	Up      key.Binding
	Down    key.Binding
	Add     key.Binding
	Undo    key.Binding
	Redo    key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Goal: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "goal"),
	),
	Script: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "script"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "apply"),
	),
	Discard: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n", "discard"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "browse up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "browse down"),
	),
	Add: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add cube"),
	),
	Undo: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "undo"),
	),
	Redo: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "redo"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// keyBarText renders the context-sensitive key hint string.
func keyBarText(mode uiMode) string {
	switch mode {
	case modePrompt:
		return keyStyle.Render("Enter") + keyDescStyle.Render(":submit") + "  " +
			keyStyle.Render("Esc") + keyDescStyle.Render(":cancel")
	case modeReview:
		return keyStyle.Render("y") + keyDescStyle.Render(":apply") + "  " +
			keyStyle.Render("n") + keyDescStyle.Render(":discard") + "  " +
			keyStyle.Render("q") + keyDescStyle.Render(":quit")
	}
	return keyStyle.Render("g") + keyDescStyle.Render(":goal") + "  " +
		keyStyle.Render("s") + keyDescStyle.Render(":script") + "  " +
		keyStyle.Render("a") + keyDescStyle.Render(":add cube") + "  " +
		keyStyle.Render("↑↓") + keyDescStyle.Render(":select") + "  " +
		keyStyle.Render("u") + keyDescStyle.Render(":undo") + "  " +
		keyStyle.Render("r") + keyDescStyle.Render(":redo") + "  " +
		keyStyle.Render("q") + keyDescStyle.Render(":quit")
}
