package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/swipetrack/internal/gesture"
	"github.com/mmcdole/swipetrack/internal/tui/components"
	"github.com/mmcdole/swipetrack/internal/tui/styles"
)

// Layout limits
const (
	MinCardWidth  = 30
	MaxDragShift  = 12 // columns the card may travel while dragged
	JournalMargin = 2
)

// cardLayout holds the card size and resting position
type cardLayout struct {
	width  int
	height int
	left   int // columns from the left edge at rest
}

// calculateCardLayout sizes the card to the content area
func (m Model) calculateCardLayout() cardLayout {
	contentHeight := max(m.Height-ChromeHeight-2, components.CardMinHeight)
	width := min(components.CardWidth, max(m.Width-4, MinCardWidth))
	return cardLayout{
		width:  width,
		height: min(contentHeight, components.CardMinHeight+6),
		left:   max((m.Width-width)/2, 0),
	}
}

// dragShift converts the live drag offset to a column shift
func (m Model) dragShift() int {
	cellW := m.cfg.UI.CellWidth
	if cellW <= 0 {
		cellW = gesture.DefaultCellWidth
	}
	shift := int(m.tracker.Offset().X / cellW)
	return min(max(shift, -MaxDragShift), MaxDragShift)
}

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}
	m.Login.SetSize(m.Width, m.Height)
	m.SearchModal.SetSize(m.Width, m.Height)
	m.DetailsModal.SetSize(m.Width, m.Height)
	m.FilterInput.Width = max(m.Width-JournalMargin*2-10, 10)
}

// renderTabs renders a row of tabs with the active one highlighted
func renderTabs(labels []string, active int) string {
	tabs := make([]string, len(labels))
	for i, label := range labels {
		if i == active {
			tabs[i] = styles.ActiveTabStyle.Render(label)
		} else {
			tabs[i] = styles.InactiveTabStyle.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// joinEnds lays out left and right on one line of the given width
func joinEnds(left, right string, width int) string {
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}
