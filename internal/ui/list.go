package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
)

var (
	_ list.Item = screenItem{}
)

// screenItem wraps a [screen] to implement [list.Item] on the role home.
type screenItem struct {
	screen screen
	failed bool
}

func (i screenItem) FilterValue() string { return i.screen.Title() }
func (i screenItem) Title() string       { return i.screen.Title() }
func (i screenItem) Description() string {
	switch {
	case i.failed:
		return "could not load, press enter to retry"
	case !i.screen.Loaded():
		return "not loaded yet"
	case i.screen.Count() == 1:
		return "1 record"
	default:
		return fmt.Sprintf("%d records", i.screen.Count())
	}
}

// screenItems builds the home menu entries for screens. failed names the dashboard sections that did not load.
func screenItems(screens []screen, failed map[string]bool) []list.Item {
	items := make([]list.Item, len(screens))
	for i, s := range screens {
		items[i] = screenItem{screen: s, failed: failed[s.Name()]}
	}
	return items
}
