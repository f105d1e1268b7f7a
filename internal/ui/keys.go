package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	Select   key.Binding
	Back     key.Binding

	Search    key.Binding
	Project   key.Binding
	Namespace key.Binding
	Status    key.Binding
	Refresh   key.Binding

	Restart key.Binding
	Sync    key.Binding
	Confirm key.Binding
	Cancel  key.Binding

	NextField key.Binding
	PrevField key.Binding

	Logout    key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("[", "left"),
		key.WithHelp("[", "prev page"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("]", "right"),
		key.WithHelp("]", "next page"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Project: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "project"),
	),
	Namespace: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "namespace"),
	),
	Status: key.NewBinding(
		key.WithKeys("h"),
		key.WithHelp("h", "status"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Restart: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "restart"),
	),
	Sync: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "sync"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n", "cancel"),
	),
	NextField: key.NewBinding(
		key.WithKeys("tab", "down"),
	),
	PrevField: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
	),
	Logout: key.NewBinding(
		key.WithKeys("L"),
		key.WithHelp("L", "logout"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
	),
}

func (k KeyMap) targetsHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Refresh, k.Logout, k.Quit}
}

func (k KeyMap) appsHelp() []key.Binding {
	return []key.Binding{k.Search, k.Project, k.Namespace, k.Status, k.PrevPage, k.NextPage, k.Refresh, k.Restart, k.Sync, k.Back}
}

func (k KeyMap) runsHelp() []key.Binding {
	return []key.Binding{k.Search, k.Status, k.PrevPage, k.NextPage, k.Select, k.Refresh, k.Back}
}
