package omdb

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/mmcdole/swipetrack/internal/domain"
)

// notAvailable is OMDb's marker for a missing field
const notAvailable = "N/A"

// SearchResultDescription is shown for records that came from a search
// listing rather than a detail lookup
const SearchResultDescription = "Search result"

// MapTitle converts a detail record to a domain media item
func MapTitle(d TitleDetail, mediaType domain.MediaType) domain.MediaItem {
	item := domain.MediaItem{
		ID:          d.IMDbID,
		Title:       d.Title,
		Year:        parseYear(d.Year),
		Type:        mediaType,
		Poster:      mapPoster(d.Poster),
		Genres:      splitGenres(d.Genre),
		Description: d.Plot,
		Rating:      parseRating(d.IMDbRating),
	}
	if item.Description == "" || item.Description == notAvailable {
		item.Description = domain.NoDescription
	}
	if d.Runtime != notAvailable {
		item.Runtime = strings.TrimSpace(d.Runtime)
	}
	return item
}

// MapSearchResults converts short search records. They carry no genres,
// plot, rating or runtime.
func MapSearchResults(results []SearchItem, mediaType domain.MediaType) []domain.MediaItem {
	items := make([]domain.MediaItem, 0, len(results))
	for _, r := range results {
		if r.IMDbID == "" {
			continue
		}
		items = append(items, domain.MediaItem{
			ID:          r.IMDbID,
			Title:       r.Title,
			Year:        parseYear(r.Year),
			Type:        mediaType,
			Poster:      mapPoster(r.Poster),
			Genres:      []string{},
			Description: SearchResultDescription,
		})
	}
	return items
}

func mapPoster(p string) string {
	if p == "" || p == notAvailable {
		return domain.PlaceholderPoster
	}
	return p
}

// splitGenres splits "Action, Adventure" into its parts
func splitGenres(g string) []string {
	genres := []string{}
	if g == "" || g == notAvailable {
		return genres
	}
	for _, part := range strings.Split(g, ",") {
		if part = strings.TrimSpace(part); part != "" {
			genres = append(genres, part)
		}
	}
	return genres
}

// parseYear reads the leading digits, so "2011–2019" yields 2011
func parseYear(y string) int {
	end := strings.IndexFunc(y, func(r rune) bool { return !unicode.IsDigit(r) })
	if end < 0 {
		end = len(y)
	}
	n, err := strconv.Atoi(y[:end])
	if err != nil {
		return 0
	}
	return n
}

// parseRating returns nil for missing or unparseable ratings
func parseRating(r string) *float64 {
	if r == "" || r == notAvailable {
		return nil
	}
	v, err := strconv.ParseFloat(r, 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}
