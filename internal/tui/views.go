package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/mmcdole/swipetrack/internal/collection"
	"github.com/mmcdole/swipetrack/internal/domain"
	"github.com/mmcdole/swipetrack/internal/gesture"
	"github.com/mmcdole/swipetrack/internal/search"
	"github.com/mmcdole/swipetrack/internal/stats"
	"github.com/mmcdole/swipetrack/internal/tui/components"
	"github.com/mmcdole/swipetrack/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	switch m.State {
	case StateLogin:
		return m.Login.View()
	case StateHelp:
		return m.renderHelp()
	case StateConfirmLogout:
		return m.renderLogoutConfirmation()
	}

	contentHeight := max(m.Height-ChromeHeight, 1)
	var content string
	switch m.Screen {
	case ViewDiscover:
		content = m.renderDiscover(contentHeight)
	case ViewJournal:
		content = m.renderJournal(contentHeight)
	case ViewStats:
		content = m.renderStats(contentHeight)
	}
	content = lipgloss.NewStyle().Height(contentHeight).MaxHeight(contentHeight).Render(content)

	view := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		content,
		m.renderFooter(),
	)

	// Overlay modals, topmost last
	if m.SearchModal.IsVisible() {
		view = m.SearchModal.View()
	}
	if m.DetailsModal.IsVisible() {
		view = m.DetailsModal.View()
	}
	if m.RatingModal.IsVisible() {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.RatingModal.View())
	}
	return view
}

// renderHeader renders the view tabs and the sync indicator
func (m Model) renderHeader() string {
	left := styles.TitleStyle.Render("SwipeTrack") + "  " + renderTabs(viewNames, int(m.Screen))
	var right string
	if m.Session != nil {
		right = components.SyncState{
			Status:   m.SyncStatus,
			Username: m.Session.Username(),
			Spinner:  spinnerFrame(m.SpinnerFrame),
		}.View()
	}
	return joinEnds(left, right, m.Width) + "\n"
}

func (m Model) renderDiscover(height int) string {
	if m.Session == nil {
		return ""
	}
	d := m.Session.Deck()

	labels := make([]string, len(domain.DeckKinds))
	active := 0
	for i, k := range domain.DeckKinds {
		labels[i] = k.Label()
		if k == d.Kind() {
			active = i
		}
	}
	tabs := lipgloss.PlaceHorizontal(m.Width, lipgloss.Center, renderTabs(labels, active))

	item, ok := d.Peek()
	if !ok {
		// Before the first batch lands the deck is neither loading nor empty
		msg := spinnerFrame(m.SpinnerFrame) + styles.DimStyle.Render(" Finding something to watch...")
		if d.Empty() {
			msg = styles.SubtitleStyle.Render("No more cards") + "\n" +
				styles.DimStyle.Render("press ") + styles.AccentStyle.Render("r") + styles.DimStyle.Render(" to refresh")
		}
		body := lipgloss.Place(m.Width, max(height-2, 1), lipgloss.Center, lipgloss.Center, msg)
		return lipgloss.JoinVertical(lipgloss.Left, tabs, "", body)
	}

	layout := m.calculateCardLayout()
	preview, _ := gesture.Preview(m.tracker.Offset())
	card := components.Card{
		Item:     item,
		Width:    layout.width,
		Height:   layout.height,
		Shift:    max(layout.left+m.dragShift(), 0),
		Preview:  preview,
		Dragging: m.tracker.Active(),
	}

	hints := []string{
		styles.HelpKeyStyle.Render("←") + styles.HelpDescStyle.Render(" skip"),
		styles.HelpKeyStyle.Render("→") + styles.HelpDescStyle.Render(" journal"),
		styles.HelpKeyStyle.Render("↑") + styles.HelpDescStyle.Render(" priority"),
		styles.HelpKeyStyle.Render("↓") + styles.HelpDescStyle.Render(" later"),
		styles.HelpKeyStyle.Render("enter") + styles.HelpDescStyle.Render(" details"),
	}
	footer := lipgloss.PlaceHorizontal(m.Width, lipgloss.Center, strings.Join(hints, "  "))

	remaining := styles.DimStyle.Render(fmt.Sprintf("%d in deck", d.Len()))
	if d.Loading() {
		remaining = spinnerFrame(m.SpinnerFrame) + " " + remaining
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		tabs,
		"",
		card.View(),
		lipgloss.PlaceHorizontal(m.Width, lipgloss.Center, remaining),
		footer,
	)
}

func (m Model) renderJournal(height int) string {
	if m.Session == nil {
		return ""
	}

	labels := make([]string, len(collection.Filters))
	active := 0
	for i, f := range collection.Filters {
		labels[i] = filterLabels[f]
		if f == m.JournalFilter {
			active = i
		}
	}
	header := renderTabs(labels, active)
	if m.canSurprise() {
		header = joinEnds(header, styles.AccentStyle.Render("s")+styles.DimStyle.Render(" surprise me"), m.Width-JournalMargin)
	} else if m.Shuffling {
		header = joinEnds(header, spinnerFrame(m.SpinnerFrame)+styles.DimStyle.Render(" shuffling..."), m.Width-JournalMargin)
	}

	var filterLine string
	if m.Filtering || m.FilterInput.Value() != "" {
		filterLine = m.FilterInput.View()
	}

	items := m.journalItems()
	if len(items) == 0 {
		empty := styles.DimStyle.Render("Nothing here yet. Swipe right on Discover to start your journal.")
		if m.FilterInput.Value() != "" {
			empty = styles.DimStyle.Render("No entries match the filter")
		}
		return lipgloss.JoinVertical(lipgloss.Left, header, filterLine, "", empty)
	}

	rowsHeight := max(height-4, 1)
	cursor := min(m.JournalCursor, len(items)-1)
	start := 0
	if cursor >= rowsHeight {
		start = cursor - rowsHeight + 1
	}
	end := min(start+rowsHeight, len(items))

	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, renderJournalRow(items[i], i == cursor, m.Width-JournalMargin))
	}

	count := styles.DimStyle.Render(fmt.Sprintf("%d of %d", cursor+1, len(items)))
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		filterLine,
		strings.Join(rows, "\n"),
		count,
	)
}

var filterLabels = map[collection.Filter]string{
	collection.FilterAll:      "All",
	collection.FilterPriority: "Priority",
	collection.FilterWatched:  "Watched",
	collection.FilterBacklog:  "Backlog",
	collection.FilterUnrated:  "Unrated",
}

// renderJournalRow renders one collection entry, highlighting the title
// characters the filter matched
func renderJournalRow(match search.Match, selected bool, width int) string {
	item := match.Item
	typeColor := styles.TypeColor(item.Type)
	statusColor := styles.LightGray
	if item.Status == domain.StatusWatched {
		statusColor = styles.Green
	}

	marker := "  "
	if item.Priority {
		marker = "↑ "
	}
	rating := strings.Repeat("★", item.UserRating) + strings.Repeat("☆", domain.MaxUserRating-item.UserRating)
	if item.IsUnrated() {
		rating = "     "
	}
	added := humanize.Time(item.DateAdded)

	fixed := 2 + 8 + 10 + 6 + 16
	titleWidth := max(width-fixed, 10)

	yellow := styles.Yellow
	dim := styles.DimGray
	return styles.RenderListRow([]styles.RowPart{
		{Text: marker, Foreground: &yellow},
		{Text: styles.Pad(styles.Truncate(item.Title, titleWidth), titleWidth), Highlight: runeIndexes(strings.ToLower(item.Title), match.MatchedIndexes)},
		{Text: styles.Pad(item.Type.Label(), 8), Foreground: &typeColor},
		{Text: styles.Pad(item.Status.String(), 10), Foreground: &statusColor},
		{Text: rating + " ", Foreground: &yellow},
		{Text: styles.Pad(added, 16), Foreground: &dim},
	}, selected, width)
}

func (m Model) renderStats(height int) string {
	if m.Session == nil {
		return ""
	}
	s := stats.Compute(m.Session.Collection().Items())
	width := min(m.Width-4, 72)

	avg := "–"
	if s.Rated > 0 {
		avg = fmt.Sprintf("%.1f", s.AverageRating)
	}
	tiles := lipgloss.JoinHorizontal(lipgloss.Top,
		statTile("WATCHED", fmt.Sprintf("%d", s.Watched)),
		statTile("HOURS", s.FormattedHours()),
		statTile("AVG RATING", avg),
		statTile("BACKLOG", fmt.Sprintf("%d", s.StatusCounts[domain.StatusBacklog])),
	)

	lines := []string{tiles, "", styles.DimStyle.Render("TIME BY TYPE")}
	barWidth := max(width-30, 10)
	for _, split := range s.Split {
		label := styles.Pad(split.Type.Label(), 8)
		lines = append(lines, fmt.Sprintf("%s %s %3d%%  %s",
			label,
			styles.RenderProgressBar(float64(split.Percent), barWidth, styles.TypeColor(split.Type)),
			split.Percent,
			styles.DimStyle.Render(fmt.Sprintf("%d · %s", split.Count, domain.FormatHours(split.Hours))),
		))
	}

	if top := s.TopGenres(5); len(top) > 0 {
		lines = append(lines, "", styles.DimStyle.Render("TOP GENRES"))
		most := top[0].Count
		for _, g := range top {
			pct := float64(g.Count) / float64(most) * 100
			lines = append(lines, fmt.Sprintf("%s %s %d",
				styles.Pad(styles.Truncate(g.Genre, 14), 14),
				styles.RenderProgressBar(pct, barWidth, styles.Brand),
				g.Count,
			))
		}
	}

	if len(s.Recent) > 0 && height > 20 {
		lines = append(lines, "", styles.DimStyle.Render("RECENTLY ADDED"))
		for _, it := range s.Recent {
			lines = append(lines, styles.SubtitleStyle.Render(styles.Truncate(it.Title, width-20))+
				"  "+styles.DimStyle.Render(humanize.Time(it.DateAdded)))
		}
	}

	if s.Total == 0 {
		lines = []string{styles.DimStyle.Render("No entries yet. Your stats will appear here.")}
	}

	return lipgloss.NewStyle().MarginLeft(2).Render(strings.Join(lines, "\n"))
}

func statTile(label, value string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.SlateLight).
		Padding(0, 2).
		MarginRight(1).
		Render(styles.DimStyle.Render(label) + "\n" + styles.TitleStyle.Render(value))
}

// renderFooter renders a single-line minimal footer
func (m Model) renderFooter() string {
	var left string
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.DimStyle.Render(m.StatusMsg)
		}
	}

	var hints []key.Binding
	switch m.Screen {
	case ViewDiscover:
		hints = []key.Binding{Keys.NextTab, Keys.Refresh, Keys.GlobalSearch}
	case ViewJournal:
		hints = []key.Binding{Keys.NextTab, Keys.Filter, Keys.Rate}
	default:
		hints = []key.Binding{Keys.NextView, Keys.GlobalSearch}
	}
	hints = append(hints, Keys.Help)

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = styles.AccentStyle.Render(h.Help().Key) + styles.DimStyle.Render(" "+h.Help().Desc)
	}
	return joinEnds(left, strings.Join(parts, "  "), m.Width)
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	help := `
DISCOVER                        JOURNAL
  h/←        Skip                 j/k    Up/down
  l/→        Add as watched       [/]    Switch filter
  k/↑        Priority backlog     /      Filter by title
  j/↓        Watch later          r      Rate
  [/]        Switch deck          s      Surprise me
  r          Refresh deck         Enter  Details
  Enter      Details
  drag       Swipe with mouse

VIEWS                           OTHER
  1/2/3      Discover/Journal/Stats  f    Search everything
  Tab        Next view               L    Logout
                                     q    Quit
                                     ?    This help

Press ? or esc to return...
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}

// renderLogoutConfirmation renders the logout confirmation modal
func (m Model) renderLogoutConfirmation() string {
	modal := `
              Log Out?

  Your journal stays on this device
  and in the cloud.

        [Y] Yes      [N] No
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(modal))
}

// spinnerFrame renders a loading spinner frame
func spinnerFrame(frame int) string {
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return styles.SpinnerStyle.Render(frames[frame%len(frames)])
}

// runeIndexes converts byte offsets into s to rune positions
func runeIndexes(s string, byteIdx []int) []int {
	if len(byteIdx) == 0 {
		return nil
	}
	want := make(map[int]bool, len(byteIdx))
	for _, b := range byteIdx {
		want[b] = true
	}
	out := make([]int, 0, len(byteIdx))
	pos := 0
	for b := range s {
		if want[b] {
			out = append(out, pos)
		}
		pos++
	}
	return out
}
