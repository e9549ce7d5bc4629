// Package stats computes the journal analytics shown in the stats view
// and by the stats command.
package stats

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mmcdole/swipetrack/internal/collection"
	"github.com/mmcdole/swipetrack/internal/domain"
)

// RecentLimit is how many entries the recent list holds
const RecentLimit = 5

// TypeSplit is the watched share of one media type
type TypeSplit struct {
	Type    domain.MediaType
	Count   int
	Hours   float64
	Percent int // share of total hours, 0 when no hours are logged
}

// GenreCount is one row of the genre distribution
type GenreCount struct {
	Genre string
	Count int
}

// Summary aggregates a collection
type Summary struct {
	Total          int
	Watched        int
	TotalHours     float64
	AverageRating  float64 // one decimal, out of 5
	Rated          int
	Split          []TypeSplit // movie, series, game
	Genres         []GenreCount
	StatusCounts   map[domain.Status]int
	PriorityQueued int // priority entries still in the backlog
	Recent         []domain.CollectionItem
}

// Compute builds a summary. Counts, hours and ratings consider watched
// entries only; genres, statuses and the recent list cover everything.
func Compute(items []domain.CollectionItem) Summary {
	s := Summary{
		Total:        len(items),
		StatusCounts: make(map[domain.Status]int, len(domain.Statuses)),
	}
	for _, st := range domain.Statuses {
		s.StatusCounts[st] = 0
	}

	counts := make(map[domain.MediaType]int, len(domain.MediaTypes))
	hours := make(map[domain.MediaType]float64, len(domain.MediaTypes))
	ratingSum := 0

	for _, it := range items {
		s.StatusCounts[it.Status]++
		if it.Status == domain.StatusBacklog && it.Priority {
			s.PriorityQueued++
		}
		if it.Status != domain.StatusWatched {
			continue
		}
		s.Watched++
		h := it.RuntimeHours()
		counts[it.Type]++
		hours[it.Type] += h
		s.TotalHours += h
		ratingSum += it.UserRating
		if it.UserRating > 0 {
			s.Rated++
		}
	}

	if s.Watched > 0 {
		s.AverageRating = math.Round(float64(ratingSum)/float64(max(s.Rated, 1))*10) / 10
	}

	for _, t := range domain.MediaTypes {
		split := TypeSplit{Type: t, Count: counts[t], Hours: hours[t]}
		if s.TotalHours > 0 {
			split.Percent = int(math.Round(hours[t] / s.TotalHours * 100))
		}
		s.Split = append(s.Split, split)
	}

	s.Genres = genreDistribution(items)

	recent := make([]domain.CollectionItem, len(items))
	copy(recent, items)
	collection.SortByDateAdded(recent)
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	s.Recent = recent

	return s
}

// genreDistribution merges genres case-insensitively, most frequent first
func genreDistribution(items []domain.CollectionItem) []GenreCount {
	caser := cases.Title(language.English)
	byKey := make(map[string]*GenreCount)
	for _, it := range items {
		for _, g := range it.Genres {
			key := strings.ToLower(strings.TrimSpace(g))
			if key == "" {
				continue
			}
			gc, ok := byKey[key]
			if !ok {
				gc = &GenreCount{Genre: caser.String(key)}
				byKey[key] = gc
			}
			gc.Count++
		}
	}

	out := make([]GenreCount, 0, len(byKey))
	for _, gc := range byKey {
		out = append(out, *gc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Genre < out[j].Genre
	})
	return out
}

// TopGenres returns at most n genres
func (s Summary) TopGenres(n int) []GenreCount {
	if n < len(s.Genres) {
		return s.Genres[:n]
	}
	return s.Genres
}

// FormattedHours renders the total hours logged
func (s Summary) FormattedHours() string {
	return domain.FormatHours(s.TotalHours)
}
