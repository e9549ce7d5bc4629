package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/swipetrack/internal/tui/styles"
)

// SyncStatus is the cloud sync indicator state
type SyncStatus int

const (
	SyncLocal SyncStatus = iota // no remote configured
	SyncIdle
	SyncSyncing
	SyncSynced
	SyncError
)

// SyncState renders the status line indicator
type SyncState struct {
	Status   SyncStatus
	Username string
	Spinner  string // current spinner frame while syncing
}

// View renders "● username · synced" style text
func (s SyncState) View() string {
	user := styles.AccentStyle.Render("● " + s.Username)
	var state string
	switch s.Status {
	case SyncLocal:
		state = styles.DimStyle.Render("local only")
	case SyncSyncing:
		state = styles.SpinnerStyle.Render(s.Spinner + " syncing")
	case SyncSynced:
		state = styles.SuccessStyle.Render("✓ synced")
	case SyncError:
		state = styles.ErrorStyle.Render("! sync failed")
	default:
		state = styles.DimStyle.Render("connected")
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, user, styles.DimStyle.Render(" · "), state)
}
