package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/swipetrack/internal/tui/styles"
)

// Login is the username prompt shown when no session is saved
type Login struct {
	input      textinput.Model
	spinner    spinner.Model
	submitting bool
	errMsg     string
	width      int
	height     int
}

// NewLogin creates a focused login screen
func NewLogin() Login {
	ti := textinput.New()
	ti.Placeholder = "Enter username..."
	ti.CharLimit = 50
	ti.Width = 30
	ti.Prompt = ""
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	return Login{input: ti, spinner: sp}
}

// Reset clears the input for a fresh login
func (l *Login) Reset() {
	l.input.SetValue("")
	l.input.Focus()
	l.submitting = false
	l.errMsg = ""
}

// SetSize updates the component dimensions
func (l *Login) SetSize(width, height int) {
	l.width = width
	l.height = height
}

// SetError shows err and re-enables input
func (l *Login) SetError(err error) {
	l.submitting = false
	l.errMsg = err.Error()
	l.input.Focus()
}

// Submitting reports whether a login is in progress
func (l Login) Submitting() bool {
	return l.submitting
}

// Value returns the trimmed username
func (l Login) Value() string {
	return strings.TrimSpace(l.input.Value())
}

// Update handles input events, returns (login, cmd, submitted).
// Blank usernames are not submitted.
func (l Login) Update(msg tea.Msg) (Login, tea.Cmd, bool) {
	if l.submitting {
		var cmd tea.Cmd
		l.spinner, cmd = l.spinner.Update(msg)
		return l, cmd, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "enter" {
		if l.Value() == "" {
			return l, nil, false
		}
		l.submitting = true
		l.errMsg = ""
		l.input.Blur()
		return l, l.spinner.Tick, true
	}

	var cmd tea.Cmd
	l.input, cmd = l.input.Update(msg)
	return l, cmd, false
}

// View renders the login screen
func (l Login) View() string {
	const boxWidth = 36

	status := styles.DimStyle.Render("enter to continue · ctrl+c to quit")
	if l.submitting {
		status = l.spinner.View() + styles.SubtitleStyle.Render(" Signing in...")
	} else if l.errMsg != "" {
		status = styles.ErrorStyle.Render(l.errMsg)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("SwipeTrack"),
		styles.SubtitleStyle.Render("Your personal media journal"),
		"",
		l.input.View(),
		"",
		status,
	)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Brand).
		Padding(1, 2).
		Width(boxWidth).
		Render(content)

	return lipgloss.Place(l.width, l.height, lipgloss.Center, lipgloss.Center, box)
}
