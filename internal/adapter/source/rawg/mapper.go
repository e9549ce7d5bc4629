package rawg

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mmcdole/swipetrack/internal/domain"
)

// GameDescription is shown for games, whose listing carries no summary
const GameDescription = "Tap card to view details (External Source)"

// MapGames converts a listing page to domain media items
func MapGames(games []Game) []domain.MediaItem {
	items := make([]domain.MediaItem, 0, len(games))
	for _, g := range games {
		items = append(items, MapGame(g))
	}
	return items
}

// MapGame converts one game. The 0-5 rating is rescaled to 0-10.
func MapGame(g Game) domain.MediaItem {
	item := domain.MediaItem{
		ID:          strconv.Itoa(g.ID),
		Title:       g.Name,
		Year:        parseYear(g.Released),
		Type:        domain.MediaTypeGame,
		Poster:      g.BackgroundImage,
		Genres:      make([]string, 0, len(g.Genres)),
		Description: GameDescription,
	}
	if item.Poster == "" {
		item.Poster = domain.PlaceholderPoster
	}
	for _, genre := range g.Genres {
		if genre.Name != "" {
			item.Genres = append(item.Genres, genre.Name)
		}
	}
	if g.Rating > 0 {
		r := math.Round(g.Rating*20) / 10
		item.Rating = &r
	}
	if g.Playtime > 0 {
		item.Runtime = fmt.Sprintf("%dh", g.Playtime)
	}
	return item
}

// parseYear reads the year out of "2013-09-17"
func parseYear(released string) int {
	y, _, _ := strings.Cut(released, "-")
	n, err := strconv.Atoi(y)
	if err != nil {
		return 0
	}
	return n
}
