package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	left    key.Binding
	right   key.Binding
	enter   key.Binding
	back    key.Binding
	tab     key.Binding
	search  key.Binding
	sort    key.Binding
	reverse key.Binding
	actions key.Binding
	refresh key.Binding
	logout  key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
		right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		tab:     key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
		search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		sort:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		reverse: key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "toggle direction")),
		actions: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "actions")),
		refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		logout:  key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "sign out")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.left, k.right},
		{k.search, k.sort, k.reverse, k.actions, k.enter},
		{k.back, k.refresh, k.logout, k.quit},
	}
}

// tableHelp is the binding set shown under a table screen.
func (k keyMap) tableHelp() []key.Binding {
	return []key.Binding{k.search, k.sort, k.left, k.right, k.actions, k.back, k.quit}
}
