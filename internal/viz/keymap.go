package viz

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	StartStop key.Binding
	Step      key.Binding
	Mode      key.Binding
	Reset     key.Binding
	NextParam key.Binding
	Increase  key.Binding
	Decrease  key.Binding
	Theme     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		StartStop: key.NewBinding(
			key.WithKeys("s", " "),
			key.WithHelp("s", "start/stop"),
		),
		Step: key.NewBinding(
			key.WithKeys("n", "enter"),
			key.WithHelp("n", "next step"),
		),
		Mode: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "step mode"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		NextParam: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "select param"),
		),
		Increase: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "increase"),
		),
		Decrease: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "decrease"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.StartStop, k.Step, k.Reset, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.StartStop, k.Step, k.Mode, k.Reset},
		{k.NextParam, k.Increase, k.Decrease},
		{k.Theme, k.Help, k.Quit},
	}
}
