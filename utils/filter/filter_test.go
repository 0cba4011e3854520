package filter_test

import (
	"reflect"
	"testing"

	"onair/models"
	"onair/utils/filter"
)

func sample() []models.Show {
	return []models.Show{
		{ID: 1, Name: "Drama Hour", Type: "Scripted", Network: "NBC (US)", Language: "English", Genres: []string{"Drama"}},
		{ID: 2, Name: "Anime Night", Type: "Animation", Network: "Hulu (JP)", Language: "Japanese", Genres: []string{"Anime", "Action"}},
		{ID: 3, Name: "Quiz Time", Type: "Game Show", Network: "ITV (GB)", Language: "English", Genres: []string{}},
		{ID: 4, Name: "Mystery", Type: "Scripted", Network: "Hulu", Language: "", Genres: []string{"Crime", "Drama"}},
	}
}

func ids(shows []models.Show) []int {
	out := make([]int, len(shows))
	for i, s := range shows {
		out[i] = s.ID
	}
	return out
}

func TestEmptyCriteriaAreIdentity(t *testing.T) {
	shows := sample()

	if got := filter.ByType(shows, nil); !reflect.DeepEqual(got, shows) {
		t.Errorf("ByType with no criteria changed the input")
	}
	if got := filter.ByNetwork(shows, []string{}); !reflect.DeepEqual(got, shows) {
		t.Errorf("ByNetwork with no criteria changed the input")
	}
	if got := filter.ByGenre(shows, nil); !reflect.DeepEqual(got, shows) {
		t.Errorf("ByGenre with no criteria changed the input")
	}
	if got := filter.ByLanguage(shows, nil); !reflect.DeepEqual(got, shows) {
		t.Errorf("ByLanguage with no criteria changed the input")
	}
}

func TestByTypeExactMatch(t *testing.T) {
	got := filter.ByType(sample(), []string{"Scripted"})
	if !reflect.DeepEqual(ids(got), []int{1, 4}) {
		t.Errorf("ids = %v, want [1 4]", ids(got))
	}

	// Type matching is case-sensitive.
	if got := filter.ByType(sample(), []string{"scripted"}); len(got) != 0 {
		t.Errorf("lowercase criterion matched %d shows, want 0", len(got))
	}
}

func TestByNetworkIgnoresCountrySuffix(t *testing.T) {
	got := filter.ByNetwork(sample(), []string{"Hulu"})
	if !reflect.DeepEqual(ids(got), []int{2, 4}) {
		t.Errorf("ids = %v, want [2 4]: 'Hulu (JP)' and 'Hulu' both match", ids(got))
	}

	// The criterion may itself carry a suffix.
	got = filter.ByNetwork(sample(), []string{"NBC (US)"})
	if !reflect.DeepEqual(ids(got), []int{1}) {
		t.Errorf("ids = %v, want [1]", ids(got))
	}
}

func TestByNetworkFoldsDiacritics(t *testing.T) {
	shows := []models.Show{
		{ID: 1, Network: "Télé-Québec"},
		{ID: 2, Network: "CBC"},
	}
	got := filter.ByNetwork(shows, []string{"Tele-Quebec"})
	if !reflect.DeepEqual(ids(got), []int{1}) {
		t.Errorf("ids = %v, want [1] via ASCII folding", ids(got))
	}
}

func TestByGenreAnyOf(t *testing.T) {
	got := filter.ByGenre(sample(), []string{"Drama", "Anime"})
	if !reflect.DeepEqual(ids(got), []int{1, 2, 4}) {
		t.Errorf("ids = %v, want [1 2 4]", ids(got))
	}

	// Shows with no genres never match a non-empty criterion.
	got = filter.ByGenre(sample(), []string{"Comedy"})
	if len(got) != 0 {
		t.Errorf("matched %d shows, want 0", len(got))
	}
}

func TestByLanguageCaseInsensitive(t *testing.T) {
	got := filter.ByLanguage(sample(), []string{"english"})
	if !reflect.DeepEqual(ids(got), []int{1, 3}) {
		t.Errorf("ids = %v, want [1 3]", ids(got))
	}

	// An empty language never matches.
	got = filter.ByLanguage(sample(), []string{""})
	if len(got) != 0 {
		t.Errorf("empty-language show matched empty criterion, want none")
	}
}

func TestFiltersCommute(t *testing.T) {
	shows := sample()
	types := []string{"Scripted", "Animation"}
	networks := []string{"Hulu"}
	genres := []string{"Drama", "Anime"}

	ab := filter.ByGenre(filter.ByNetwork(filter.ByType(shows, types), networks), genres)
	ba := filter.ByType(filter.ByNetwork(filter.ByGenre(shows, genres), networks), types)

	if !reflect.DeepEqual(ids(ab), ids(ba)) {
		t.Errorf("filter order changed the result: %v vs %v", ids(ab), ids(ba))
	}
}

func TestFiltersAreMonotonic(t *testing.T) {
	shows := sample()
	filtered := filter.ByType(shows, []string{"Scripted"})
	if len(filtered) > len(shows) {
		t.Fatalf("filter grew the slice: %d > %d", len(filtered), len(shows))
	}
	again := filter.ByType(filtered, []string{"Scripted"})
	if !reflect.DeepEqual(ids(again), ids(filtered)) {
		t.Errorf("re-applying the same filter changed the result")
	}
}
