package models

import (
	"regexp"
	"strings"
)

const (
	// UnknownNetwork is the display string used when an upstream item has no
	// usable network or web channel.
	UnknownNetwork = "Unknown Network"

	// UnknownType is the sentinel used when an upstream show has no type.
	UnknownType = "unknown"
)

// Show is the canonical representation of a single schedule entry (one
// episode airing), regardless of which TVMaze endpoint produced it.
type Show struct {
	ID       int      `json:"id"`                 // show identifier (not the episode's)
	ShowID   int      `json:"showId"`             // grouping key for multi-episode collapsing
	Name     string   `json:"name"`               // episode title, may be empty
	Season   int      `json:"season"`
	Number   int      `json:"number"`
	Airtime  string   `json:"airtime,omitempty"`  // HH:MM 24-hour; empty means "time to be announced"
	Network  string   `json:"network"`            // "Name (CC)" or "Name", never empty
	Type     string   `json:"type"`
	Language string   `json:"language,omitempty"`
	Genres   []string `json:"genres"`             // insertion order, never nil
	Summary  string   `json:"summary,omitempty"`  // may contain upstream markup
}

// NetworkGroups maps a display network name (country suffix stripped) to the
// ordered list of shows airing on that network.
type NetworkGroups map[string][]Show

// ScheduleResponse is the API response for the schedule endpoint.
type ScheduleResponse struct {
	Items   []Show        `json:"items,omitempty"`
	Groups  NetworkGroups `json:"groups,omitempty"`
	Total   int           `json:"total"`
	Date    string        `json:"date"`
	Country string        `json:"country,omitempty"`
	Source  string        `json:"source"`
}

// ScheduleStatus reports the state of the schedule service.
type ScheduleStatus struct {
	LastFetchAt   string `json:"lastFetchAt,omitempty"`
	LastFetchMs   int64  `json:"lastFetchMs"`
	LastItemCount int    `json:"lastItemCount"`
	LastDropped   int    `json:"lastDropped"`
	LastError     string `json:"lastError,omitempty"`
}

// countrySuffix matches a trailing parenthesized 2-letter country code,
// e.g. the " (JP)" in "Hulu (JP)".
var countrySuffix = regexp.MustCompile(`\s*\([A-Za-z]{2}\)$`)

// NetworkKey normalizes a network display string for grouping and for network
// filter matching: the country-code suffix is stripped and surrounding
// whitespace trimmed. Empty input maps to UnknownNetwork so that shows with a
// missing network land in one group.
func NetworkKey(network string) string {
	key := strings.TrimSpace(countrySuffix.ReplaceAllString(network, ""))
	if key == "" {
		return UnknownNetwork
	}
	return key
}
