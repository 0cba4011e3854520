package schedule

import (
	"strconv"
	"strings"

	"onair/models"
)

// variant identifies which of the upstream payload shapes a raw item has.
// The network endpoint nests show details under "show"; the web endpoint
// nests them under "_embedded.show". Anything else is treated as bare show
// details so minimal synthetic items still normalize.
type variant int

const (
	variantBare variant = iota
	variantNetwork
	variantWeb
)

// classifyItem resolves the variant of a raw item and returns the map
// holding its show details.
func classifyItem(item map[string]any) (variant, map[string]any) {
	// Live TVMaze payloads use "_embedded"; accept "embedded" as well since
	// older dumps carry the key without the underscore.
	for _, key := range []string{"_embedded", "embedded"} {
		if embedded, ok := item[key].(map[string]any); ok {
			if show, ok := embedded["show"].(map[string]any); ok {
				return variantWeb, show
			}
		}
	}
	if show, ok := item["show"].(map[string]any); ok {
		return variantNetwork, show
	}
	return variantBare, item
}

// Normalize converts a single raw schedule item of untrusted shape into a
// canonical Show. It never fails loudly: a value that is not a JSON object
// yields nil, and every missing or wrong-typed field inside an object is
// absorbed into a default.
func Normalize(raw any) *models.Show {
	item, ok := raw.(map[string]any)
	if !ok {
		return nil
	}

	_, details := classifyItem(item)

	id := coerceInt(details["id"])
	if id == 0 {
		id = coerceInt(item["id"])
	}

	show := &models.Show{
		ID:       id,
		ShowID:   id,
		Name:     stringField(item, "name"),
		Season:   coerceInt(item["season"]),
		Number:   coerceInt(item["number"]),
		Airtime:  stringField(item, "airtime"),
		Network:  displayNetwork(details),
		Type:     stringField(details, "type"),
		Language: stringField(details, "language"),
		Genres:   stringSlice(details["genres"]),
		Summary:  stringField(item, "summary"),
	}
	if show.Type == "" {
		show.Type = models.UnknownType
	}
	if show.Summary == "" {
		show.Summary = stringField(details, "summary")
	}
	return show
}

// displayNetwork builds the human-readable network string. The extractors
// are tried in order: a network object with a usable name wins over a web
// channel, and the sentinel is the final fallback. A usable name is a
// non-empty string; a number or nested object under "name" counts as absent.
func displayNetwork(details map[string]any) string {
	for _, key := range []string{"network", "webChannel"} {
		obj, ok := details[key].(map[string]any)
		if !ok {
			continue
		}
		name, ok := obj["name"].(string)
		if !ok || name == "" {
			continue
		}
		if code := countryCode(obj); code != "" {
			return name + " (" + code + ")"
		}
		return name
	}
	return models.UnknownNetwork
}

func countryCode(obj map[string]any) string {
	country, ok := obj["country"].(map[string]any)
	if !ok {
		return ""
	}
	code, _ := country["code"].(string)
	return code
}

// coerceInt turns a decoded JSON value into an integer. Finite numbers pass
// through unchanged, including negative and very large values; numeric
// strings parse like a leading-digits parseInt ("-1" is -1, "12abc" is 12);
// everything else is 0.
func coerceInt(v any) int {
	switch x := v.(type) {
	case float64:
		return int(x)
	case int:
		return x
	case string:
		return parseLeadingInt(x)
	}
	return 0
}

// parseLeadingInt parses an optional sign followed by leading decimal digits
// and ignores any trailing garbage. Strings with no leading digits yield 0.
func parseLeadingInt(s string) int {
	s = strings.TrimSpace(s)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	j := i
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j == i {
		return 0
	}
	n, err := strconv.Atoi(s[:j])
	if err != nil {
		return 0
	}
	return n
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// stringSlice extracts a genre list, preserving insertion order and skipping
// non-string entries. The result is never nil.
func stringSlice(v any) []string {
	out := []string{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
