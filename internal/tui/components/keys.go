package components

import "github.com/charmbracelet/bubbles/key"

// ListKeyMap defines key bindings for list navigation inside modals and
// the journal
type ListKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Home     key.Binding
	End      key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Escape   key.Binding
	Enter    key.Binding
}

// DefaultListKeyMap returns the default list key bindings
func DefaultListKeyMap() ListKeyMap {
	return ListKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓", "down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("home", "go to top"),
		),
		End: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("end", "go to bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "page down"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
	}
}

// ListKeys is the shared list key bindings instance
var ListKeys = DefaultListKeyMap()

// moveCursor applies a navigation key to cursor over n rows. page is the
// jump size for PgUp/PgDn. Returns the new cursor and whether the key was
// a navigation key.
func moveCursor(k string, cursor, n, page int) (int, bool) {
	if n == 0 {
		return 0, false
	}
	page = max(page, 1)
	switch {
	case matches(k, ListKeys.Up):
		cursor--
	case matches(k, ListKeys.Down):
		cursor++
	case matches(k, ListKeys.Home):
		cursor = 0
	case matches(k, ListKeys.End):
		cursor = n - 1
	case matches(k, ListKeys.PageUp):
		cursor -= page
	case matches(k, ListKeys.PageDown):
		cursor += page
	default:
		return cursor, false
	}
	return min(max(cursor, 0), n-1), true
}

func matches(k string, b key.Binding) bool {
	for _, bk := range b.Keys() {
		if bk == k {
			return true
		}
	}
	return false
}
