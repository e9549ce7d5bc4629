package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sourcegraph/conc"

	"github.com/mmcdole/swipetrack/internal/domain"
)

const (
	// MinQueryLength is the shortest query that reaches the providers
	MinQueryLength = 3

	// GamePageSize caps game results per unified search
	GamePageSize = 5
)

// Service runs unified searches across the title and game providers
type Service struct {
	titles domain.TitleRepository
	games  domain.GameRepository
	logger *slog.Logger
}

// NewService creates a new search service. Either repository may be nil.
func NewService(titles domain.TitleRepository, games domain.GameRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		titles: titles,
		games:  games,
		logger: logger,
	}
}

// Search queries movies, series and games concurrently and returns them
// concatenated in that order. A failing provider contributes nothing.
func (s *Service) Search(ctx context.Context, query string) []domain.MediaItem {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinQueryLength {
		return nil
	}

	var movies, series, games []domain.MediaItem
	var wg conc.WaitGroup
	if s.titles != nil {
		wg.Go(func() { movies = s.searchTitles(ctx, query, domain.MediaTypeMovie) })
		wg.Go(func() { series = s.searchTitles(ctx, query, domain.MediaTypeSeries) })
	}
	if s.games != nil {
		wg.Go(func() { games = s.searchGames(ctx, query) })
	}
	wg.Wait()

	results := make([]domain.MediaItem, 0, len(movies)+len(series)+len(games))
	results = append(results, movies...)
	results = append(results, series...)
	results = append(results, games...)

	s.logger.Debug("unified search complete", "query", query,
		"movies", len(movies), "series", len(series), "games", len(games))
	return results
}

func (s *Service) searchTitles(ctx context.Context, query string, mediaType domain.MediaType) []domain.MediaItem {
	items, err := s.titles.SearchTitles(ctx, query, mediaType, 1)
	if err != nil {
		s.logger.Warn("title search failed", "query", query, "type", mediaType, "error", err)
		return nil
	}
	return items
}

func (s *Service) searchGames(ctx context.Context, query string) []domain.MediaItem {
	items, err := s.games.SearchGames(ctx, query, GamePageSize)
	if err != nil {
		s.logger.Warn("game search failed", "query", query, "error", err)
		return nil
	}
	return items
}
