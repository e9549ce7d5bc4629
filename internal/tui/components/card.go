package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/swipetrack/internal/domain"
	"github.com/mmcdole/swipetrack/internal/tui/styles"
)

// Card sizing
const (
	CardWidth     = 44
	CardMinHeight = 12
)

// Card renders the top deck candidate
type Card struct {
	Item     domain.MediaItem
	Width    int
	Height   int
	Shift    int              // horizontal drag offset in columns
	Preview  domain.Direction // pending decision while dragging, "" for none
	Dragging bool
}

// View renders the card with its drag overlay
func (c Card) View() string {
	width := c.Width
	if width <= 0 {
		width = CardWidth
	}
	inner := width - 4

	typeBadge := lipgloss.NewStyle().
		Foreground(styles.White).
		Background(styles.TypeColor(c.Item.Type)).
		Padding(0, 1).
		Render(strings.ToUpper(c.Item.Type.Label()))

	lines := []string{typeBadge, ""}
	lines = append(lines, styles.TitleStyle.Render(styles.Truncate(c.Item.Title, inner)))
	lines = append(lines, styles.SubtitleStyle.Render(styles.Truncate(c.Item.Subtitle(), inner)))

	if rating := c.Item.ExternalRating(); rating > 0 {
		lines = append(lines, styles.StarStyle.Render(fmt.Sprintf("★ %.1f", rating)))
	}
	if len(c.Item.Genres) > 0 {
		lines = append(lines, styles.DimStyle.Render(styles.Truncate(strings.Join(c.Item.Genres, " · "), inner)))
	}
	lines = append(lines, "")
	lines = append(lines, wrap(c.Item.Description, inner, 5)...)

	if c.Preview != "" {
		overlay := lipgloss.NewStyle().
			Foreground(styles.White).
			Background(styles.DirectionColor(c.Preview)).
			Bold(true).
			Padding(0, 1).
			Render(strings.ToUpper(c.Preview.Label()))
		lines = append([]string{overlay, ""}, lines...)
	}

	border := styles.InactiveBorder
	if c.Dragging {
		border = styles.ActiveBorder
	}
	if c.Preview != "" {
		border = border.BorderForeground(styles.DirectionColor(c.Preview))
	}
	card := border.
		Width(width-2).
		Height(max(c.Height-2, CardMinHeight)).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))

	if c.Shift > 0 {
		card = lipgloss.NewStyle().MarginLeft(c.Shift).Render(card)
	}
	return card
}

// wrap breaks text into at most maxLines lines of width runes
func wrap(text string, width, maxLines int) []string {
	if width <= 0 || text == "" {
		return nil
	}
	var lines []string
	var cur strings.Builder
	truncated := false
	for _, word := range strings.Fields(text) {
		if cur.Len() > 0 && len([]rune(cur.String()))+1+len([]rune(word)) > width {
			lines = append(lines, cur.String())
			cur.Reset()
			if len(lines) == maxLines {
				truncated = true
				break
			}
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	if cur.Len() > 0 && len(lines) < maxLines {
		lines = append(lines, cur.String())
	}
	if truncated {
		lines[maxLines-1] = styles.Truncate(lines[maxLines-1]+" ...", width)
	}
	for i := range lines {
		lines[i] = styles.SubtitleStyle.Render(lines[i])
	}
	return lines
}
