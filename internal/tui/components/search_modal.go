package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/swipetrack/internal/domain"
	"github.com/mmcdole/swipetrack/internal/search"
	"github.com/mmcdole/swipetrack/internal/tui/styles"
)

// SearchAction is what the caller should do after a search modal update
type SearchAction int

const (
	SearchNone SearchAction = iota
	SearchQueryChanged
	SearchSelected
)

// SearchModal is the unified search dialog
type SearchModal struct {
	input     textinput.Model
	results   []domain.MediaItem
	cursor    int
	visible   bool
	width     int
	height    int
	loading   bool
	prevQuery string
}

// NewSearchModal creates a new search modal
func NewSearchModal() SearchModal {
	ti := textinput.New()
	ti.Placeholder = "Movies, series, games..."
	ti.CharLimit = 100
	ti.Width = 40
	ti.Prompt = "/ "
	ti.PromptStyle = styles.AccentStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return SearchModal{
		input: ti,
	}
}

// Show makes the modal visible and focuses the input
func (o *SearchModal) Show() {
	o.visible = true
	o.input.Focus()
	o.input.SetValue("")
	o.results = nil
	o.cursor = 0
	o.loading = false
	o.prevQuery = ""
}

// Hide hides the modal
func (o *SearchModal) Hide() {
	o.visible = false
	o.loading = false
	o.input.Blur()
}

// IsVisible returns true if the modal is visible
func (o SearchModal) IsVisible() bool {
	return o.visible
}

// SetResults sets the search results
func (o *SearchModal) SetResults(results []domain.MediaItem) {
	o.results = results
	o.cursor = 0
	o.loading = false
}

// SetLoading sets the loading state
func (o *SearchModal) SetLoading(loading bool) {
	o.loading = loading
}

// Loading reports whether a search is pending
func (o SearchModal) Loading() bool {
	return o.loading
}

// SetSize updates the component dimensions
func (o *SearchModal) SetSize(width, height int) {
	o.width = width
	o.height = height
	o.input.Width = max(width*2/3-10, 20)
}

// Query returns the current search query
func (o SearchModal) Query() string {
	return o.input.Value()
}

// Results returns the current results
func (o SearchModal) Results() []domain.MediaItem {
	return o.results
}

// SelectedResult returns the selected search result
func (o SearchModal) SelectedResult() (domain.MediaItem, bool) {
	if len(o.results) == 0 || o.cursor >= len(o.results) {
		return domain.MediaItem{}, false
	}
	return o.results[o.cursor], true
}

// Update handles messages
func (o SearchModal) Update(msg tea.Msg) (SearchModal, tea.Cmd, SearchAction) {
	if !o.visible {
		return o, nil, SearchNone
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		k := keyMsg.String()
		switch {
		case k == "esc":
			o.Hide()
			return o, nil, SearchNone
		case k == "enter":
			if len(o.results) > 0 {
				return o, nil, SearchSelected
			}
			return o, nil, SearchNone
		}
		if cursor, moved := moveCursor(k, o.cursor, len(o.results), 5); moved {
			o.cursor = cursor
			return o, nil, SearchNone
		}
	}

	var cmd tea.Cmd
	o.input, cmd = o.input.Update(msg)

	if current := o.input.Value(); current != o.prevQuery {
		o.prevQuery = current
		o.loading = len([]rune(strings.TrimSpace(current))) >= search.MinQueryLength
		if !o.loading {
			o.results = nil
			o.cursor = 0
		}
		return o, cmd, SearchQueryChanged
	}
	return o, cmd, SearchNone
}

// View renders the component
func (o SearchModal) View() string {
	if !o.visible {
		return ""
	}

	modalWidth := min(max(o.width*2/3, 40), 80)
	maxResults := 10

	var b strings.Builder
	b.WriteString(o.input.View())
	b.WriteString("\n\n")

	query := strings.TrimSpace(o.input.Value())
	switch {
	case o.loading:
		b.WriteString(styles.SpinnerStyle.Render("Searching..."))
	case len(o.results) == 0 && len([]rune(query)) >= search.MinQueryLength:
		b.WriteString(styles.DimStyle.Render("No results"))
	case len(o.results) == 0:
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("Type at least %d characters", search.MinQueryLength)))
	default:
		o.renderResults(&b, modalWidth, maxResults)
	}

	content := lipgloss.NewStyle().
		Width(modalWidth - 4).
		Render(b.String())

	modal := styles.ModalStyle.
		Width(modalWidth).
		Render(content)

	return lipgloss.Place(o.width, o.height, lipgloss.Center, lipgloss.Center, modal)
}

func (o SearchModal) renderResults(b *strings.Builder, modalWidth, maxResults int) {
	start := 0
	if o.cursor >= maxResults {
		start = o.cursor - maxResults + 1
	}
	end := min(start+maxResults, len(o.results))

	for i := start; i < end; i++ {
		result := o.results[i]

		badge := lipgloss.NewStyle().
			Foreground(styles.White).
			Background(styles.TypeColor(result.Type)).
			Padding(0, 1).
			Render(strings.ToUpper(result.Type.Label()[:3]))

		title := result.Title
		if result.Year > 0 {
			title = fmt.Sprintf("%s (%d)", title, result.Year)
		}
		title = styles.Truncate(title, modalWidth-15)

		style := styles.NormalItemStyle
		if i == o.cursor {
			style = styles.SelectedItemStyle
		}
		b.WriteString(badge + " " + style.Render(title) + "\n")
	}

	if rest := len(o.results) - end; rest > 0 {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("... and %d more", rest)))
	}
}
