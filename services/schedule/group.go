package schedule

import (
	"sort"
	"strconv"
	"strings"

	"onair/models"
)

// GroupByNetwork buckets shows under their normalized network name: country
// suffixes are stripped for the key ("Hulu (JP)" and "Hulu" share one group)
// while each show keeps its original display string. Shows with an empty
// network land under UnknownNetwork.
func GroupByNetwork(shows []models.Show) models.NetworkGroups {
	groups := make(models.NetworkGroups)
	for _, show := range shows {
		key := models.NetworkKey(show.Network)
		groups[key] = append(groups[key], show)
	}
	return groups
}

// GroupByShowID buckets episodes of the same show together so renderers can
// collapse them into a single entry. Order within a bucket follows input
// order.
func GroupByShowID(shows []models.Show) map[int][]models.Show {
	groups := make(map[int][]models.Show)
	for _, show := range shows {
		groups[show.ShowID] = append(groups[show.ShowID], show)
	}
	return groups
}

// SortByTime returns a new slice ordered by air time: timed shows first,
// ascending by hour then minute (numeric, so "9:05" sorts before "10:00"),
// with name as the tie breaker. Shows without an air time follow, ordered by
// name. The comparison is a total order, so sorting is idempotent.
func SortByTime(shows []models.Show) []models.Show {
	sorted := make([]models.Show, len(shows))
	copy(sorted, shows)
	sort.Slice(sorted, func(i, j int) bool {
		return lessByTime(sorted[i], sorted[j])
	})
	return sorted
}

// SortByName returns a new slice ordered by episode title.
func SortByName(shows []models.Show) []models.Show {
	sorted := make([]models.Show, len(shows))
	copy(sorted, shows)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return lessByTime(sorted[i], sorted[j])
	})
	return sorted
}

func lessByTime(a, b models.Show) bool {
	ah, am, aok := parseAirtime(a.Airtime)
	bh, bm, bok := parseAirtime(b.Airtime)
	if aok != bok {
		return aok // announced air times sort before "to be announced"
	}
	if aok {
		if ah != bh {
			return ah < bh
		}
		if am != bm {
			return am < bm
		}
	}
	return a.Name < b.Name
}

// parseAirtime splits an "HH:MM" string into integer hour and minute.
// Empty or malformed values report ok=false and are treated as unannounced.
func parseAirtime(s string) (hour, minute int, ok bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return hour, minute, true
}
