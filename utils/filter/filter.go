package filter

import (
	"strings"

	"github.com/mozillazg/go-unidecode"

	"onair/models"
)

// The four schedule filters are pure and combine with logical AND when
// applied in sequence. An empty criteria list is the identity: callers can
// always pass whatever the user supplied without special-casing.
//
// Matching policy: type and genre compare case-sensitively, language
// case-insensitively, and network after display normalization (country
// suffix stripped, diacritics folded) so "Hulu (JP)" matches a "Hulu"
// criterion.

// ByType keeps shows whose type exactly equals one of the requested types.
func ByType(shows []models.Show, types []string) []models.Show {
	if len(types) == 0 {
		return shows
	}
	return keep(shows, func(s models.Show) bool {
		for _, t := range types {
			if s.Type == t {
				return true
			}
		}
		return false
	})
}

// ByNetwork keeps shows whose network matches one of the requested names
// after normalization on both sides.
func ByNetwork(shows []models.Show, networks []string) []models.Show {
	if len(networks) == 0 {
		return shows
	}
	wanted := make([]string, len(networks))
	for i, n := range networks {
		wanted[i] = foldNetwork(n)
	}
	return keep(shows, func(s models.Show) bool {
		name := foldNetwork(s.Network)
		for _, w := range wanted {
			if name == w {
				return true
			}
		}
		return false
	})
}

// ByGenre keeps shows carrying at least one of the requested genres
// (OR semantics across the criteria).
func ByGenre(shows []models.Show, genres []string) []models.Show {
	if len(genres) == 0 {
		return shows
	}
	return keep(shows, func(s models.Show) bool {
		for _, have := range s.Genres {
			for _, want := range genres {
				if have == want {
					return true
				}
			}
		}
		return false
	})
}

// ByLanguage keeps shows whose language equals one of the requested values,
// compared case-insensitively. Shows without a language never match.
func ByLanguage(shows []models.Show, languages []string) []models.Show {
	if len(languages) == 0 {
		return shows
	}
	return keep(shows, func(s models.Show) bool {
		if s.Language == "" {
			return false
		}
		have := strings.ToLower(s.Language)
		for _, want := range languages {
			if have == strings.ToLower(want) {
				return true
			}
		}
		return false
	})
}

func keep(shows []models.Show, match func(models.Show) bool) []models.Show {
	filtered := make([]models.Show, 0, len(shows))
	for _, s := range shows {
		if match(s) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// foldNetwork reduces a network string to its comparable form: country
// suffix stripped, diacritics transliterated to ASCII, whitespace trimmed.
func foldNetwork(network string) string {
	return strings.TrimSpace(unidecode.Unidecode(models.NetworkKey(network)))
}
