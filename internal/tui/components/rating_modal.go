package components

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/swipetrack/internal/domain"
	"github.com/mmcdole/swipetrack/internal/tui/styles"
)

// RatingModal collects a 1-5 star rating and tags for an item
type RatingModal struct {
	visible  bool
	item     domain.MediaItem
	rating   int
	selected map[string]bool
	cursor   int // index into domain.Tags
}

// NewRatingModal creates a hidden rating modal
func NewRatingModal() RatingModal {
	return RatingModal{selected: make(map[string]bool)}
}

// Show opens the modal for item with no rating and no tags
func (m *RatingModal) Show(item domain.MediaItem) {
	m.visible = true
	m.item = item
	m.rating = 0
	m.selected = make(map[string]bool)
	m.cursor = 0
}

// Hide dismisses the modal
func (m *RatingModal) Hide() {
	m.visible = false
}

// IsVisible returns whether the modal is shown
func (m RatingModal) IsVisible() bool {
	return m.visible
}

// Item returns the item being rated
func (m RatingModal) Item() domain.MediaItem {
	return m.item
}

// Rating returns the chosen star count
func (m RatingModal) Rating() int {
	return m.rating
}

// Tags returns the selected tags in display order
func (m RatingModal) Tags() []string {
	tags := make([]string, 0, len(m.selected))
	for _, t := range domain.Tags {
		if m.selected[t] {
			tags = append(tags, t)
		}
	}
	return tags
}

// CanConfirm reports whether a rating was chosen
func (m RatingModal) CanConfirm() bool {
	return m.rating > 0
}

// Update handles input events, returns (modal, submitted)
func (m RatingModal) Update(msg tea.Msg) (RatingModal, bool) {
	if !m.visible {
		return m, false
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, false
	}

	switch k := keyMsg.String(); k {
	case "esc":
		m.Hide()
	case "enter":
		if m.CanConfirm() {
			m.Hide()
			return m, true
		}
	case "1", "2", "3", "4", "5":
		m.rating, _ = strconv.Atoi(k)
	case "0":
		m.rating = 0
	case "left", "h", "-":
		m.rating = max(m.rating-1, 0)
	case "right", "l", "+":
		m.rating = min(m.rating+1, domain.MaxUserRating)
	case "up", "k", "shift+tab":
		m.cursor = (m.cursor - 1 + len(domain.Tags)) % len(domain.Tags)
	case "down", "j", "tab":
		m.cursor = (m.cursor + 1) % len(domain.Tags)
	case " ", "x":
		tag := domain.Tags[m.cursor]
		m.selected[tag] = !m.selected[tag]
	}
	return m, false
}

// View renders the rating modal
func (m RatingModal) View() string {
	if !m.visible {
		return ""
	}

	const modalWidth = 40

	var tags []string
	for i, t := range domain.Tags {
		mark := "[ ]"
		if m.selected[t] {
			mark = "[x]"
		}
		line := mark + " " + t
		if i == m.cursor {
			tags = append(tags, styles.HighlightStyle.Render(line))
		} else {
			tags = append(tags, styles.SubtitleStyle.Render(" "+line))
		}
	}

	confirm := styles.DimStyle.Render("pick a rating to confirm")
	if m.CanConfirm() {
		confirm = styles.HelpKeyStyle.Render("enter") + styles.HelpDescStyle.Render(" confirm")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render(styles.Truncate("Rate "+m.item.Title, modalWidth)),
		styles.RenderStars(m.rating)+styles.DimStyle.Render("  1-5 / ←→"),
		"",
		styles.DimStyle.Render("TAGS  ↑↓ move · space toggle"),
		strings.Join(tags, "\n"),
		"",
		confirm+styles.HelpDescStyle.Render("  esc cancel"),
	)

	return styles.ModalStyle.Width(modalWidth + 4).Render(content)
}
