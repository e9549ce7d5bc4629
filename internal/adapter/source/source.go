package source

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/iter"

	"github.com/mmcdole/swipetrack/internal/adapter"
	"github.com/mmcdole/swipetrack/internal/adapter/source/omdb"
	"github.com/mmcdole/swipetrack/internal/adapter/source/rawg"
	"github.com/mmcdole/swipetrack/internal/domain"
)

// DiscoveryKeywords seed movie and series discovery. OMDb has no browse
// endpoint, so a deck page is a keyword search.
var DiscoveryKeywords = []string{
	"star", "love", "dark", "avengers", "one", "game", "spider", "batman", "breaking", "office", "dragon",
}

// DefaultDetailLimit is how many search hits get a detail lookup per page
const DefaultDetailLimit = 3

// Catalog implements domain.CandidateSource over OMDb and RAWG
type Catalog struct {
	titles      domain.TitleRepository
	games       domain.GameRepository
	detailLimit int
	pageSize    int
	intn        func(n int) int
	logger      *slog.Logger
}

var _ domain.CandidateSource = (*Catalog)(nil)

// NewCatalog creates a catalog. detailLimit and pageSize fall back to
// their defaults when non-positive.
func NewCatalog(titles domain.TitleRepository, games domain.GameRepository, detailLimit, pageSize int, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	if detailLimit <= 0 {
		detailLimit = DefaultDetailLimit
	}
	if pageSize <= 0 {
		pageSize = rawg.DefaultPageSize
	}
	return &Catalog{
		titles:      titles,
		games:       games,
		detailLimit: detailLimit,
		pageSize:    pageSize,
		intn:        rand.IntN,
		logger:      logger,
	}
}

// NewCatalogFromConfig wires the OMDb and RAWG clients from the application config
func NewCatalogFromConfig(cfg *adapter.Config, logger *slog.Logger) *Catalog {
	titles := omdb.NewClient(cfg.Providers.OMDb.BaseURL, cfg.Providers.OMDb.APIKey, logger)
	games := rawg.NewClient(cfg.Providers.RAWG.BaseURL, cfg.Providers.RAWG.APIKey, logger)
	return NewCatalog(titles, games, cfg.Providers.OMDb.DetailLimit, cfg.Providers.RAWG.PageSize, logger)
}

// Titles exposes the movie/series repository (used by unified search)
func (c *Catalog) Titles() domain.TitleRepository { return c.titles }

// Games exposes the game repository (used by unified search)
func (c *Catalog) Games() domain.GameRepository { return c.games }

// FetchBatch returns one page of candidates for a deck kind
func (c *Catalog) FetchBatch(ctx context.Context, kind domain.DeckKind, page int) ([]domain.MediaItem, error) {
	switch kind {
	case domain.DeckMovie:
		return c.discoverTitles(ctx, domain.MediaTypeMovie, page)
	case domain.DeckSeries:
		return c.discoverTitles(ctx, domain.MediaTypeSeries, page)
	case domain.DeckGame:
		return c.games.ListGames(ctx, page, c.pageSize)
	case domain.DeckAll:
		return c.fetchMixed(ctx, page)
	default:
		return nil, fmt.Errorf("unknown deck kind: %s", kind)
	}
}

// keyword picks the discovery keyword for a page
func (c *Catalog) keyword(page int) string {
	n := len(DiscoveryKeywords)
	idx := ((page-1)%n + c.intn(n)) % n
	if idx < 0 {
		idx += n
	}
	return DiscoveryKeywords[idx]
}

// discoverTitles searches a keyword and looks up details for the first
// hits concurrently. A failed lookup drops only that title.
func (c *Catalog) discoverTitles(ctx context.Context, mediaType domain.MediaType, page int) ([]domain.MediaItem, error) {
	keyword := c.keyword(page)
	hits, err := c.titles.SearchTitles(ctx, keyword, mediaType, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s titles: %w", mediaType, err)
	}
	if len(hits) > c.detailLimit {
		hits = hits[:c.detailLimit]
	}

	details := iter.Map(hits, func(hit *domain.MediaItem) *domain.MediaItem {
		item, err := c.titles.GetTitle(ctx, hit.ID, mediaType)
		if err != nil {
			c.logger.Warn("failed to fetch title details", "error", err, "itemID", hit.ID)
			return nil
		}
		return item
	})

	items := make([]domain.MediaItem, 0, len(details))
	for _, d := range details {
		if d != nil {
			items = append(items, *d)
		}
	}
	c.logger.Debug("discovered titles", "type", mediaType, "keyword", keyword, "page", page, "count", len(items))
	return items, nil
}

// fetchMixed loads movies and games side by side and shuffles them
// together. Either side failing contributes nothing.
func (c *Catalog) fetchMixed(ctx context.Context, page int) ([]domain.MediaItem, error) {
	var movies, games []domain.MediaItem
	var wg conc.WaitGroup
	wg.Go(func() {
		items, err := c.discoverTitles(ctx, domain.MediaTypeMovie, page)
		if err != nil {
			c.logger.Warn("movie half of mixed deck failed", "error", err, "page", page)
			return
		}
		movies = items
	})
	wg.Go(func() {
		items, err := c.games.ListGames(ctx, page, c.pageSize)
		if err != nil {
			c.logger.Warn("game half of mixed deck failed", "error", err, "page", page)
			return
		}
		games = items
	})
	wg.Wait()

	items := make([]domain.MediaItem, 0, len(movies)+len(games))
	items = append(items, movies...)
	items = append(items, games...)
	rand.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
	return items, nil
}
