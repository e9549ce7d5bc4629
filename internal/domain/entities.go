package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Placeholder values used by provider adapters when a source omits data
const (
	PlaceholderPoster = "https://placehold.co/600x900/1e293b/ffffff?text=No+Image"
	NoDescription     = "No description available."
)

// MediaType distinguishes content types
type MediaType string

const (
	MediaTypeMovie  MediaType = "movie"
	MediaTypeSeries MediaType = "series"
	MediaTypeGame   MediaType = "game"
)

// MediaTypes lists every media type in display order
var MediaTypes = []MediaType{MediaTypeMovie, MediaTypeSeries, MediaTypeGame}

// ParseMediaType validates a media type string
func ParseMediaType(s string) (MediaType, error) {
	switch t := MediaType(strings.ToLower(strings.TrimSpace(s))); t {
	case MediaTypeMovie, MediaTypeSeries, MediaTypeGame:
		return t, nil
	default:
		return "", fmt.Errorf("unknown media type %q", s)
	}
}

// Label returns a capitalized display label
func (t MediaType) Label() string {
	switch t {
	case MediaTypeMovie:
		return "Movie"
	case MediaTypeSeries:
		return "Series"
	case MediaTypeGame:
		return "Game"
	default:
		return "Unknown"
	}
}

// MediaItem is a provider-sourced candidate. Treated as immutable: pass by value.
type MediaItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Year        int       `json:"year"`
	Type        MediaType `json:"type"`
	Poster      string    `json:"poster"`
	Genres      []string  `json:"genre"`
	Description string    `json:"description"`
	Rating      *float64  `json:"rating,omitempty"`  // External rating, 0-10
	Runtime     string    `json:"runtime,omitempty"` // "120 min", "60h", ...
}

// RuntimeHours returns the runtime converted to hours (0 when unknown)
func (m MediaItem) RuntimeHours() float64 {
	return ParseDurationHours(m.Runtime)
}

// ExternalRating returns the external rating, 0 when unknown
func (m MediaItem) ExternalRating() float64 {
	if m.Rating == nil {
		return 0
	}
	return *m.Rating
}

// Subtitle returns secondary info for display (e.g., "2024 · Movie · 166 min")
func (m MediaItem) Subtitle() string {
	parts := make([]string, 0, 3)
	if m.Year > 0 {
		parts = append(parts, fmt.Sprintf("%d", m.Year))
	}
	parts = append(parts, m.Type.Label())
	if m.Runtime != "" {
		parts = append(parts, m.Runtime)
	}
	return strings.Join(parts, " · ")
}

// Status is the triage state of a collection entry
type Status string

const (
	StatusWatched Status = "watched"
	StatusPlaying Status = "playing"
	StatusBacklog Status = "backlog"
	StatusDropped Status = "dropped"
)

// Statuses lists every status value
var Statuses = []Status{StatusWatched, StatusPlaying, StatusBacklog, StatusDropped}

// ParseStatus validates a status string
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusWatched, StatusPlaying, StatusBacklog, StatusDropped:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// String returns a human-readable representation of the status
func (s Status) String() string {
	switch s {
	case StatusWatched:
		return "Watched"
	case StatusPlaying:
		return "Playing"
	case StatusBacklog:
		return "Backlog"
	case StatusDropped:
		return "Dropped"
	default:
		return "Unknown"
	}
}

// MaxUserRating is the top of the 0-5 user rating scale
const MaxUserRating = 5

// CollectionItem is a triaged MediaItem owned by the user
type CollectionItem struct {
	MediaItem
	UserRating int       // 0-5, 0 = unrated
	DateAdded  time.Time // Set at creation
	Status     Status
	Tags       []string
	Priority   bool
}

// Details carries the user-supplied fields for a new collection entry
type Details struct {
	Status     Status
	Priority   bool
	UserRating int
	Tags       []string
}

// NewCollectionItem builds a collection entry from a candidate
func NewCollectionItem(item MediaItem, d Details, now time.Time) CollectionItem {
	return CollectionItem{
		MediaItem:  item,
		UserRating: ClampRating(d.UserRating),
		DateAdded:  now,
		Status:     d.Status,
		Tags:       NormalizeTags(d.Tags),
		Priority:   d.Priority,
	}
}

// IsUnrated reports whether the item was watched but never rated
func (c CollectionItem) IsUnrated() bool {
	return c.Status == StatusWatched && c.UserRating == 0
}

// HasTag reports whether the entry carries the tag
func (c CollectionItem) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ClampRating bounds a user rating to 0-5
func ClampRating(r int) int {
	switch {
	case r < 0:
		return 0
	case r > MaxUserRating:
		return MaxUserRating
	default:
		return r
	}
}

// NormalizeTags trims, drops blanks and dedupes while keeping first-seen order
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// collectionItemJSON is the wire shape shared by the local mirror and the
// remote record payload. dateAdded is unix milliseconds.
type collectionItemJSON struct {
	MediaItem
	UserRating int      `json:"userRating"`
	DateAdded  int64    `json:"dateAdded"`
	Status     Status   `json:"status"`
	Tags       []string `json:"tags"`
	Priority   bool     `json:"priority"`
}

// MarshalJSON implements json.Marshaler
func (c CollectionItem) MarshalJSON() ([]byte, error) {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	item := c.MediaItem
	if item.Genres == nil {
		item.Genres = []string{}
	}
	return json.Marshal(collectionItemJSON{
		MediaItem:  item,
		UserRating: c.UserRating,
		DateAdded:  c.DateAdded.UnixMilli(),
		Status:     c.Status,
		Tags:       tags,
		Priority:   c.Priority,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Unknown statuses fall back to backlog.
func (c *CollectionItem) UnmarshalJSON(data []byte) error {
	var raw collectionItemJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	status, err := ParseStatus(string(raw.Status))
	if err != nil {
		status = StatusBacklog
	}
	if raw.Genres == nil {
		raw.Genres = []string{}
	}
	*c = CollectionItem{
		MediaItem:  raw.MediaItem,
		UserRating: ClampRating(raw.UserRating),
		DateAdded:  time.UnixMilli(raw.DateAdded),
		Status:     status,
		Tags:       NormalizeTags(raw.Tags),
		Priority:   raw.Priority,
	}
	return nil
}

// DeckKind selects which candidates the deck draws from
type DeckKind string

const (
	DeckAll    DeckKind = "all"
	DeckMovie  DeckKind = "movie"
	DeckSeries DeckKind = "series"
	DeckGame   DeckKind = "game"
)

// DeckKinds lists the deck tabs in display order
var DeckKinds = []DeckKind{DeckAll, DeckMovie, DeckSeries, DeckGame}

// ParseDeckKind validates a deck kind string
func ParseDeckKind(s string) (DeckKind, error) {
	switch k := DeckKind(strings.ToLower(strings.TrimSpace(s))); k {
	case DeckAll, DeckMovie, DeckSeries, DeckGame:
		return k, nil
	default:
		return "", fmt.Errorf("unknown deck kind %q", s)
	}
}

// Label returns the tab label for the deck kind
func (k DeckKind) Label() string {
	if k == DeckAll {
		return "Featured"
	}
	return MediaType(k).Label()
}

// Direction is a discrete swipe decision
type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
)

// Details returns the collection details a swipe direction implies.
// ok is false for left (discard).
func (d Direction) Details() (Details, bool) {
	switch d {
	case DirectionRight:
		return Details{Status: StatusWatched}, true
	case DirectionDown:
		return Details{Status: StatusBacklog, Priority: false}, true
	case DirectionUp:
		return Details{Status: StatusBacklog, Priority: true}, true
	default:
		return Details{}, false
	}
}

// Label returns the overlay label shown while dragging
func (d Direction) Label() string {
	switch d {
	case DirectionLeft:
		return "Skip"
	case DirectionRight:
		return "Journal"
	case DirectionUp:
		return "Priority"
	case DirectionDown:
		return "Watch Later"
	default:
		return ""
	}
}

// Tags offered by the rating dialog
var Tags = []string{
	"Mind-blowing", "Cozy", "Nostalgia", "Masterpiece", "Disappointing", "Grind", "Binge-worthy",
}
