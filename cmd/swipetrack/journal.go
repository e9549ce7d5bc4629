package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/mmcdole/swipetrack/internal/collection"
	"github.com/mmcdole/swipetrack/internal/domain"
	"github.com/mmcdole/swipetrack/internal/search"
	"github.com/mmcdole/swipetrack/internal/stats"
)

const commandTimeout = 45 * time.Second

// signalContext cancels on interrupt or after the command timeout
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show journal statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, cancel := signalContext(cmd.Context())
			defer cancel()

			s, err := ctx.openSession(runCtx, offline)
			if err != nil {
				return err
			}
			defer s.Close()

			writeStats(cmd.OutOrStdout(), stats.Compute(s.Collection().Items()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Use only the local mirror")
	return cmd
}

func writeStats(out io.Writer, sum stats.Summary) {
	avg := "-"
	if sum.Rated > 0 {
		avg = fmt.Sprintf("%.1f / 5", sum.AverageRating)
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Entries", "Watched", "Hours", "Avg rating", "Priority queued"},
		[][]string{{
			humanize.Comma(int64(sum.Total)),
			humanize.Comma(int64(sum.Watched)),
			sum.FormattedHours(),
			avg,
			strconv.Itoa(sum.PriorityQueued),
		}},
		[]text.Align{text.AlignRight, text.AlignRight, text.AlignRight, text.AlignRight, text.AlignRight},
	))

	rows := make([][]string, 0, len(sum.Split))
	for _, split := range sum.Split {
		rows = append(rows, []string{
			split.Type.Label(),
			strconv.Itoa(split.Count),
			domain.FormatHours(split.Hours),
			fmt.Sprintf("%d%%", split.Percent),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Type", "Watched", "Hours", "Share"},
		rows,
		[]text.Align{text.AlignLeft, text.AlignRight, text.AlignRight, text.AlignRight},
	))

	if genres := sum.TopGenres(5); len(genres) > 0 {
		rows = rows[:0]
		for _, g := range genres {
			rows = append(rows, []string{g.Genre, strconv.Itoa(g.Count)})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Genre", "Entries"},
			rows,
			[]text.Align{text.AlignLeft, text.AlignRight},
		))
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var (
		filter    string
		query     string
		mediaType string
		tag       string
		offline   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := collection.ParseFilter(filter)
			if err != nil {
				return err
			}
			var only domain.MediaType
			if mediaType != "" {
				if only, err = domain.ParseMediaType(mediaType); err != nil {
					return err
				}
			}

			runCtx, cancel := signalContext(cmd.Context())
			defer cancel()

			s, err := ctx.openSession(runCtx, offline)
			if err != nil {
				return err
			}
			defer s.Close()

			items := narrowEntries(s.Collection().Filter(f, ""), only, strings.TrimSpace(tag))
			if q := strings.TrimSpace(query); q != "" {
				matches := search.FilterCollection(items, q)
				ranked := make([]domain.CollectionItem, len(matches))
				for i, m := range matches {
					ranked[i] = m.Item
				}
				items = ranked
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No entries")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderEntries(items, time.Now()))
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", string(collection.FilterAll), "Journal tab: all, priority, watched, backlog, unrated")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Fuzzy match on title")
	cmd.Flags().StringVar(&mediaType, "type", "", "Only movie, series or game entries")
	cmd.Flags().StringVar(&tag, "tag", "", "Only entries carrying this tag")
	cmd.Flags().BoolVar(&offline, "offline", false, "Use only the local mirror")
	return cmd
}

// narrowEntries keeps entries of mediaType carrying tag. Empty values match
// everything.
func narrowEntries(items []domain.CollectionItem, mediaType domain.MediaType, tag string) []domain.CollectionItem {
	if mediaType == "" && tag == "" {
		return items
	}
	out := items[:0:0]
	for _, it := range items {
		if mediaType != "" && it.Type != mediaType {
			continue
		}
		if tag != "" && !it.HasTag(tag) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func renderEntries(items []domain.CollectionItem, now time.Time) string {
	rows := make([][]string, len(items))
	for i, item := range items {
		rating := "-"
		if !item.IsUnrated() {
			rating = strings.Repeat("★", item.UserRating)
		}
		flag := ""
		if item.Priority {
			flag = "!"
		}
		rows[i] = []string{
			flag,
			item.Title,
			item.Type.Label(),
			item.Status.String(),
			rating,
			strings.Join(item.Tags, ", "),
			humanize.RelTime(item.DateAdded, now, "ago", "from now"),
		}
	}
	return renderTable(
		[]string{"", "Title", "Type", "Status", "Rating", "Tags", "Added"},
		rows,
		[]text.Align{text.AlignLeft, text.AlignLeft, text.AlignLeft, text.AlignLeft, text.AlignLeft, text.AlignLeft, text.AlignRight},
	)
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search movies, series and games",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			runCtx, cancel := signalContext(cmd.Context())
			defer cancel()

			s, err := ctx.openSession(runCtx, true)
			if err != nil {
				return err
			}
			defer s.Close()

			results := search.Rank(s.Search().Search(runCtx, query), query)
			if len(results) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No results for %q\n", query)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderResults(results, s.Collection().Has))
			return nil
		},
	}
}

func renderResults(items []domain.MediaItem, inJournal func(string) bool) string {
	rows := make([][]string, len(items))
	for i, item := range items {
		rating := "-"
		if r := item.ExternalRating(); r > 0 {
			rating = fmt.Sprintf("%.1f", r)
		}
		saved := ""
		if inJournal(item.ID) {
			saved = "✓"
		}
		year := ""
		if item.Year > 0 {
			year = strconv.Itoa(item.Year)
		}
		rows[i] = []string{saved, item.Title, year, item.Type.Label(), rating}
	}
	return renderTable(
		[]string{"", "Title", "Year", "Type", "Rating"},
		rows,
		[]text.Align{text.AlignLeft, text.AlignLeft, text.AlignRight, text.AlignLeft, text.AlignRight},
	)
}
