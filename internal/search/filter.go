package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	sfuzzy "github.com/sahilm/fuzzy"

	"github.com/mmcdole/swipetrack/internal/domain"
)

// FilterIndex adapts collection entries to sahilm/fuzzy's Source
type FilterIndex []domain.CollectionItem

// String returns the lowercased title at i
func (f FilterIndex) String(i int) string {
	return strings.ToLower(f[i].Title)
}

// Len returns the number of entries
func (f FilterIndex) Len() int {
	return len(f)
}

// Match is a filtered collection entry with the title positions that matched
type Match struct {
	Item           domain.CollectionItem
	MatchedIndexes []int
	Score          int
}

// FilterCollection returns entries whose title fuzzily matches query,
// best match first. An empty query returns every entry unranked.
func FilterCollection(items []domain.CollectionItem, query string) []Match {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		out := make([]Match, len(items))
		for i, it := range items {
			out[i] = Match{Item: it}
		}
		return out
	}

	matches := sfuzzy.FindFrom(query, FilterIndex(items))
	out := make([]Match, len(matches))
	for i, m := range matches {
		out[i] = Match{
			Item:           items[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return out
}

// Rank orders results by title closeness to query: exact, then prefix,
// then substring, then Levenshtein distance. Items that do not fuzzily
// match keep their relative order after the matches.
func Rank(items []domain.MediaItem, query string) []domain.MediaItem {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || len(items) < 2 {
		return items
	}

	type ranked struct {
		item  domain.MediaItem
		score int
	}
	out := make([]ranked, len(items))
	for i, it := range items {
		out[i] = ranked{item: it, score: matchScore(strings.ToLower(it.Title), query)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].score < out[j].score
	})

	results := make([]domain.MediaItem, len(out))
	for i, r := range out {
		results[i] = r.item
	}
	return results
}

// matchScore is lower for a better match
func matchScore(title, query string) int {
	switch {
	case title == query:
		return 0
	case strings.HasPrefix(title, query):
		return 10
	case strings.Contains(title, query):
		return 50
	}
	if d := fuzzy.RankMatchNormalizedFold(query, title); d >= 0 {
		return 100 + d
	}
	return 1000 + fuzzy.LevenshteinDistance(query, title)
}
