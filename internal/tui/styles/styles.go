package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/swipetrack/internal/domain"
)

// Color palette
var (
	Brand      = lipgloss.Color("#6366F1")
	SlateDark  = lipgloss.Color("#0F172A")
	SlateLight = lipgloss.Color("#334155")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#10B981")
	Red        = lipgloss.Color("#EF4444")
	Pink       = lipgloss.Color("#EC4899")
	Yellow     = lipgloss.Color("#EAB308")
	Blue       = lipgloss.Color("#3B82F6")
)

// Borders
var (
	ActiveBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Brand)

	InactiveBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DimGray)
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Brand)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	StarStyle = lipgloss.NewStyle().
			Foreground(Yellow)

	HighlightStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(Brand).
			Padding(0, 1)
)

// List item styles
var (
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(White).
				Background(SlateLight).
				Padding(0, 1)

	NormalItemStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Padding(0, 1)
)

// Tab styles
var (
	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(Brand).
			Bold(true).
			Padding(0, 1)

	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(LightGray).
				Padding(0, 1)
)

// Modal styles
var (
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Brand).
			Padding(1, 2).
			Background(SlateDark)

	ModalTitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true).
			MarginBottom(1)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(Brand)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Progress bar styles
var (
	ProgressFullStyle = lipgloss.NewStyle().
				Foreground(Brand)

	ProgressEmptyStyle = lipgloss.NewStyle().
				Foreground(DimGray)
)

// Badge styles
var (
	BadgeStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(Brand).
			Padding(0, 1)

	DimBadgeStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Background(SlateLight).
			Padding(0, 1)
)

// Spinner style
var (
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Brand)
)

// Filter styles
var (
	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(Brand).
				Bold(true)

	MatchHighlightStyle = lipgloss.NewStyle().
				Foreground(Brand).
				Bold(true)
)

// TypeColor returns the accent color for a media type
func TypeColor(t domain.MediaType) lipgloss.Color {
	switch t {
	case domain.MediaTypeGame:
		return Green
	case domain.MediaTypeSeries:
		return Pink
	default:
		return Brand
	}
}

// DirectionColor returns the overlay color for a swipe direction
func DirectionColor(d domain.Direction) lipgloss.Color {
	switch d {
	case domain.DirectionLeft:
		return Red
	case domain.DirectionRight:
		return Green
	case domain.DirectionUp:
		return Yellow
	default:
		return Blue
	}
}

// Helper functions

// Truncate truncates a string to the given width with ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

// Pad pads a string to the given width
func Pad(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}

// RenderProgressBar renders a progress bar
func RenderProgressBar(percent float64, width int, color lipgloss.Color) string {
	if width < 3 {
		return ""
	}

	filled := int(float64(width) * percent / 100)
	filled = min(max(filled, 0), width)

	full := ProgressFullStyle.Foreground(color)
	var b strings.Builder
	b.WriteString(full.Render(strings.Repeat("█", filled)))
	b.WriteString(ProgressEmptyStyle.Render(strings.Repeat("░", width-filled)))
	return b.String()
}

// RenderStars renders a 0-5 rating as filled and empty stars
func RenderStars(rating int) string {
	rating = domain.ClampRating(rating)
	return StarStyle.Render(strings.Repeat("★", rating)) +
		DimStyle.Render(strings.Repeat("☆", domain.MaxUserRating-rating))
}

// RenderListRow renders a complete list row with uniform background when selected.
// parts is a slice of {text, fgColor} pairs. Use nil for default foreground.
func RenderListRow(parts []RowPart, selected bool, width int) string {
	bg := SlateLight
	defaultFg := LightGray
	selectedFg := White

	var result strings.Builder
	visibleLen := 0

	for _, part := range parts {
		style := lipgloss.NewStyle()
		if part.Foreground != nil {
			style = style.Foreground(*part.Foreground)
		} else if selected {
			style = style.Foreground(selectedFg)
		} else {
			style = style.Foreground(defaultFg)
		}
		if selected {
			style = style.Background(bg)
		}
		if len(part.Highlight) > 0 {
			result.WriteString(renderHighlighted(part.Text, part.Highlight, style))
		} else {
			result.WriteString(style.Render(part.Text))
		}
		visibleLen += lipgloss.Width(part.Text)
	}

	// Subtract 2 for left/right margin
	if paddingNeeded := width - visibleLen - 2; paddingNeeded > 0 {
		padStyle := lipgloss.NewStyle()
		if selected {
			padStyle = padStyle.Background(bg)
		}
		result.WriteString(padStyle.Render(strings.Repeat(" ", paddingNeeded)))
	}

	marginStyle := lipgloss.NewStyle()
	if selected {
		marginStyle = marginStyle.Background(bg)
	}
	margin := marginStyle.Render(" ")

	return margin + result.String() + margin
}

// RowPart represents a part of a row with optional foreground color
type RowPart struct {
	Text       string
	Foreground *lipgloss.Color
	Highlight  []int // rune positions drawn with MatchHighlightStyle
}

// renderHighlighted renders text with the runes at positions in highlight
// drawn in the match style over base
func renderHighlighted(text string, highlight []int, base lipgloss.Style) string {
	marked := make(map[int]bool, len(highlight))
	for _, i := range highlight {
		marked[i] = true
	}
	hl := MatchHighlightStyle.Inherit(base)

	var out, run strings.Builder
	runMarked := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if runMarked {
			out.WriteString(hl.Render(run.String()))
		} else {
			out.WriteString(base.Render(run.String()))
		}
		run.Reset()
	}
	for i, r := range []rune(text) {
		if marked[i] != runMarked {
			flush()
			runMarked = marked[i]
		}
		run.WriteRune(r)
	}
	flush()
	return out.String()
}
