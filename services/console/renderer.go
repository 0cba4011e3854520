package console

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"onair/models"
	"onair/services/schedule"
)

// Renderer writes a schedule to a terminal as a colorized table, grouped by
// network, with multiple episodes of one show collapsed into a single row.
type Renderer struct {
	out        io.Writer
	sortByTime bool

	heading *color.Color
	time    *color.Color
	episode *color.Color
	muted   *color.Color
}

// NewRenderer creates a console renderer. When sortByTime is false, rows are
// ordered by show name instead of air time.
func NewRenderer(out io.Writer, sortByTime bool) *Renderer {
	return &Renderer{
		out:        out,
		sortByTime: sortByTime,
		heading:    color.New(color.FgCyan, color.Bold),
		time:       color.New(color.FgYellow),
		episode:    color.New(color.FgGreen),
		muted:      color.New(color.Faint),
	}
}

// Render prints the full schedule. Networks appear alphabetically; rows
// within a network follow the configured sort.
func (r *Renderer) Render(shows []models.Show) error {
	if len(shows) == 0 {
		_, err := fmt.Fprintln(r.out, "No shows found.")
		return err
	}

	groups := schedule.GroupByNetwork(shows)
	networks := make([]string, 0, len(groups))
	for network := range groups {
		networks = append(networks, network)
	}
	sort.Strings(networks)

	for _, network := range networks {
		if _, err := r.heading.Fprintf(r.out, "%s\n", network); err != nil {
			return err
		}

		rows := collapseEpisodes(groups[network])
		if r.sortByTime {
			rows = sortRowsByTime(rows)
		} else {
			sort.Slice(rows, func(i, j int) bool { return rows[i].name < rows[j].name })
		}

		tw := tabwriter.NewWriter(r.out, 2, 4, 2, ' ', 0)
		for _, row := range rows {
			airtime := row.airtime
			if airtime == "" {
				airtime = "TBA"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n",
				r.time.Sprint(airtime),
				r.episode.Sprint(row.episodes),
				row.name,
				r.muted.Sprint(row.details),
			)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(r.out)
	}

	_, err := r.muted.Fprintf(r.out, "%d shows\n", len(shows))
	return err
}

// row is one rendered line: either a single episode or a collapsed range of
// episodes of the same show.
type row struct {
	airtime  string
	episodes string
	name     string
	details  string
}

// collapseEpisodes folds multiple episodes of one show into a single row
// carrying an episode range such as "S01E01-03".
func collapseEpisodes(shows []models.Show) []row {
	byShow := schedule.GroupByShowID(shows)

	// Iterate the input rather than the map so output order is stable.
	seen := make(map[int]bool)
	rows := make([]row, 0, len(byShow))
	for _, show := range shows {
		if seen[show.ShowID] {
			continue
		}
		seen[show.ShowID] = true
		episodes := byShow[show.ShowID]
		rows = append(rows, row{
			airtime:  episodes[0].Airtime,
			episodes: EpisodeRange(episodes),
			name:     displayName(episodes[0]),
			details:  details(episodes[0]),
		})
	}
	return rows
}

// EpisodeRange formats one or more episodes of a show as a compact code:
// "S01E03" for a single episode, "S01E01-03" for a same-season run, and
// "S01E10-S02E01" when the run crosses seasons.
func EpisodeRange(episodes []models.Show) string {
	sorted := make([]models.Show, len(episodes))
	copy(sorted, episodes)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Season != sorted[j].Season {
			return sorted[i].Season < sorted[j].Season
		}
		return sorted[i].Number < sorted[j].Number
	})

	first, last := sorted[0], sorted[len(sorted)-1]
	if len(sorted) == 1 {
		return episodeCode(first)
	}
	if first.Season == last.Season {
		return fmt.Sprintf("S%02dE%02d-%02d", first.Season, first.Number, last.Number)
	}
	return episodeCode(first) + "-" + episodeCode(last)
}

func episodeCode(s models.Show) string {
	return fmt.Sprintf("S%02dE%02d", s.Season, s.Number)
}

func displayName(s models.Show) string {
	if s.Name == "" {
		return "(untitled)"
	}
	return s.Name
}

func details(s models.Show) string {
	parts := []string{}
	if s.Type != "" && s.Type != models.UnknownType {
		parts = append(parts, s.Type)
	}
	if len(s.Genres) > 0 {
		parts = append(parts, strings.Join(s.Genres, ", "))
	}
	return strings.Join(parts, " · ")
}

func sortRowsByTime(rows []row) []row {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if (a.airtime == "") != (b.airtime == "") {
			return a.airtime != ""
		}
		if a.airtime != b.airtime {
			return lessAirtime(a.airtime, b.airtime)
		}
		return a.name < b.name
	})
	return rows
}

// lessAirtime compares two non-empty HH:MM strings numerically.
func lessAirtime(a, b string) bool {
	ah, am := splitAirtime(a)
	bh, bm := splitAirtime(b)
	if ah != bh {
		return ah < bh
	}
	return am < bm
}

func splitAirtime(s string) (hour, minute int) {
	fmt.Sscanf(s, "%d:%d", &hour, &minute)
	return hour, minute
}
