package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Deck
	SwipeLeft  key.Binding
	SwipeRight key.Binding
	SwipeUp    key.Binding
	SwipeDown  key.Binding
	NextTab    key.Binding
	PrevTab    key.Binding
	Refresh    key.Binding

	// Journal
	Up       key.Binding
	Down     key.Binding
	Filter   key.Binding
	Surprise key.Binding
	Rate     key.Binding

	// Views
	Discover key.Binding
	Journal  key.Binding
	Stats    key.Binding
	NextView key.Binding

	// Actions
	Details      key.Binding
	GlobalSearch key.Binding
	Quit         key.Binding
	Help         key.Binding
	Escape       key.Binding
	Logout       key.Binding

	// Confirmations
	Confirm key.Binding
	Deny    key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Deck
		SwipeLeft: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "skip"),
		),
		SwipeRight: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "journal"),
		),
		SwipeUp: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "priority"),
		),
		SwipeDown: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "watch later"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev tab"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),

		// Journal
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Surprise: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "surprise me"),
		),
		Rate: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rate"),
		),

		// Views
		Discover: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "discover"),
		),
		Journal: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "journal"),
		),
		Stats: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "stats"),
		),
		NextView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next view"),
		),

		// Actions
		Details: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "details"),
		),
		GlobalSearch: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "search"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel/clear"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "logout"),
		),

		// Confirmations
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n/esc", "cancel"),
		),
	}
}

// Keys is the global key bindings instance
var Keys = DefaultKeyMap()
