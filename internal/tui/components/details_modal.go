package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/mmcdole/swipetrack/internal/domain"
	"github.com/mmcdole/swipetrack/internal/tui/styles"
)

// DetailsAction is the action chosen in the details modal
type DetailsAction int

const (
	DetailsNone DetailsAction = iota
	DetailsWatched
	DetailsBacklog
	DetailsRate
	DetailsOpen
)

// DetailsModal shows full metadata for a candidate or collection entry
type DetailsModal struct {
	visible bool
	item    domain.MediaItem
	entry   *domain.CollectionItem // set when the item is in the collection
	width   int
	height  int
}

// NewDetailsModal creates a hidden details modal
func NewDetailsModal() DetailsModal {
	return DetailsModal{}
}

// Show opens the modal. entry may be nil.
func (d *DetailsModal) Show(item domain.MediaItem, entry *domain.CollectionItem) {
	d.visible = true
	d.item = item
	d.entry = entry
}

// Hide dismisses the modal
func (d *DetailsModal) Hide() {
	d.visible = false
	d.entry = nil
}

// IsVisible returns whether the modal is shown
func (d DetailsModal) IsVisible() bool {
	return d.visible
}

// Item returns the displayed item
func (d DetailsModal) Item() domain.MediaItem {
	return d.item
}

// SetSize updates the component dimensions
func (d *DetailsModal) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// Update handles input events, returns (modal, action)
func (d DetailsModal) Update(msg tea.Msg) (DetailsModal, DetailsAction) {
	if !d.visible {
		return d, DetailsNone
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, DetailsNone
	}
	switch keyMsg.String() {
	case "esc", "q":
		d.Hide()
	case "w":
		d.Hide()
		return d, DetailsWatched
	case "b":
		d.Hide()
		return d, DetailsBacklog
	case "r":
		d.Hide()
		return d, DetailsRate
	case "o", "enter":
		return d, DetailsOpen
	}
	return d, DetailsNone
}

// View renders the details modal
func (d DetailsModal) View() string {
	if !d.visible {
		return ""
	}

	modalWidth := min(max(d.width*2/3, 44), 76)
	inner := modalWidth - 4

	var lines []string
	lines = append(lines, styles.TitleStyle.Render(styles.Truncate(d.item.Title, inner)))
	lines = append(lines, styles.SubtitleStyle.Render(d.item.Subtitle()))

	if d.item.Rating != nil {
		lines = append(lines, styles.StarStyle.Render(fmt.Sprintf("★ %.1f / 10", *d.item.Rating)))
	}

	if d.entry != nil {
		state := styles.BadgeStyle.Render(strings.ToUpper(d.entry.Status.String()))
		if d.entry.Priority {
			state += " " + styles.DimBadgeStyle.Render("PRIORITY")
		}
		lines = append(lines, "", state+"  "+styles.DimStyle.Render("added "+humanize.Time(d.entry.DateAdded)))
		if d.entry.UserRating > 0 {
			lines = append(lines, styles.RenderStars(d.entry.UserRating))
		}
		if len(d.entry.Tags) > 0 {
			lines = append(lines, styles.AccentStyle.Render(strings.Join(d.entry.Tags, " · ")))
		}
	}

	lines = append(lines, "", styles.DimStyle.Render("SYNOPSIS"))
	desc := d.item.Description
	if desc == "" {
		desc = domain.NoDescription
	}
	lines = append(lines, lipgloss.NewStyle().Width(inner).Foreground(styles.LightGray).Render(desc))

	if len(d.item.Genres) > 0 {
		lines = append(lines, "", styles.DimStyle.Render("GENRES"))
		badges := make([]string, len(d.item.Genres))
		for i, g := range d.item.Genres {
			badges[i] = styles.DimBadgeStyle.Render(g)
		}
		lines = append(lines, lipgloss.NewStyle().Width(inner).Render(strings.Join(badges, " ")))
	}

	help := []string{
		styles.HelpKeyStyle.Render("o") + styles.HelpDescStyle.Render(" watch page"),
		styles.HelpKeyStyle.Render("w") + styles.HelpDescStyle.Render(" completed"),
		styles.HelpKeyStyle.Render("b") + styles.HelpDescStyle.Render(" save for later"),
		styles.HelpKeyStyle.Render("r") + styles.HelpDescStyle.Render(" rate"),
		styles.HelpKeyStyle.Render("esc") + styles.HelpDescStyle.Render(" close"),
	}
	lines = append(lines, "", strings.Join(help, "  "))

	modal := styles.ModalStyle.Width(modalWidth).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(d.width, d.height, lipgloss.Center, lipgloss.Center, modal)
}
