package adapter

import (
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

// Launcher opens web pages (the "watch" link of a title) in a browser
type Launcher struct {
	command  string // configured browser command, empty for system default
	watchURL string
	logger   *slog.Logger

	// start runs a command without waiting for it
	start func(name string, args ...string) error
	// lookPath reports whether a command exists in PATH
	lookPath func(name string) (string, error)
}

// candidateOpeners defines the opener commands tried on each platform, in order
var candidateOpeners = map[string][][]string{
	"darwin":  {{"open"}},
	"windows": {{"cmd", "/c", "start", ""}},
	"linux":   {{"xdg-open"}, {"sensible-browser"}, {"x-www-browser"}, {"gio", "open"}},
}

// NewLauncher creates a Launcher. watchURL is the search page titles are
// appended to.
func NewLauncher(command, watchURL string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command:  command,
		watchURL: watchURL,
		logger:   logger,
		start: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
		lookPath: exec.LookPath,
	}
}

// WatchLink builds the watch page URL for a title
func (l *Launcher) WatchLink(title string) string {
	if l.watchURL == "" {
		return ""
	}
	sep := "?"
	if strings.Contains(l.watchURL, "?") {
		sep = "&"
	}
	return l.watchURL + sep + "q=" + url.QueryEscape(title)
}

// OpenWatchPage opens the watch page for a title
func (l *Launcher) OpenWatchPage(title string) error {
	link := l.WatchLink(title)
	if link == "" {
		return fmt.Errorf("no watch url configured")
	}
	return l.Open(link)
}

// Open opens a URL in the configured browser or the system default
func (l *Launcher) Open(target string) error {
	// Tier 1: User configured a specific browser
	if l.command != "" {
		l.logger.Info("using configured browser", "command", l.command, "url", target)
		return l.start(l.command, target)
	}

	// Tier 2: Platform opener chain
	candidates, ok := candidateOpeners[runtime.GOOS]
	if !ok {
		candidates = candidateOpeners["linux"] // default
	}
	for _, opener := range candidates {
		if _, err := l.lookPath(opener[0]); err != nil {
			l.logger.Debug("opener not available", "command", opener[0], "error", err)
			continue
		}
		args := append(append([]string{}, opener[1:]...), target)
		if err := l.start(opener[0], args...); err != nil {
			l.logger.Debug("opener failed", "command", opener[0], "error", err)
			continue
		}
		l.logger.Info("opened url", "command", opener[0], "url", target)
		return nil
	}

	return fmt.Errorf("no browser opener found for %s", runtime.GOOS)
}
