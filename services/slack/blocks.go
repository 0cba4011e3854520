package slack

import (
	"fmt"
	"sort"
	"strings"

	"onair/models"
	"onair/services/schedule"
)

// Block Kit payload types. Only the small subset the schedule message needs
// is modeled; incoming webhooks ignore unknown fields anyway.

type textObject struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

type block struct {
	Type     string        `json:"type"`
	Text     *textObject   `json:"text,omitempty"`
	Elements []*textObject `json:"elements,omitempty"`
}

// Message is an incoming-webhook payload: a fallback text line for
// notifications plus the rendered blocks.
type Message struct {
	Text   string  `json:"text"`
	Blocks []block `json:"blocks"`
}

// Slack rejects messages over 50 blocks; keep headroom for header and footer.
const maxNetworkBlocks = 45

// BuildScheduleMessage renders a day's schedule as a Block Kit message:
// a header with the date, one section per network listing its shows, and a
// context footer with the totals.
func BuildScheduleMessage(date string, shows []models.Show) Message {
	if len(shows) == 0 {
		return Message{
			Text: fmt.Sprintf("TV schedule for %s: nothing found", date),
			Blocks: []block{
				{Type: "header", Text: &textObject{Type: "plain_text", Text: fmt.Sprintf("TV Schedule · %s", date), Emoji: true}},
				{Type: "section", Text: &textObject{Type: "mrkdwn", Text: "No shows matched today's schedule."}},
			},
		}
	}

	groups := schedule.GroupByNetwork(shows)
	networks := make([]string, 0, len(groups))
	for network := range groups {
		networks = append(networks, network)
	}
	sort.Strings(networks)

	blocks := []block{
		{Type: "header", Text: &textObject{Type: "plain_text", Text: fmt.Sprintf("TV Schedule · %s", date), Emoji: true}},
	}
	truncated := 0
	for _, network := range networks {
		if len(blocks) >= maxNetworkBlocks {
			truncated += len(groups[network])
			continue
		}
		blocks = append(blocks, block{
			Type: "section",
			Text: &textObject{Type: "mrkdwn", Text: networkSection(network, groups[network])},
		})
	}

	footer := fmt.Sprintf("%d shows across %d networks", len(shows), len(networks))
	if truncated > 0 {
		footer += fmt.Sprintf(" (%d shows omitted, message limit)", truncated)
	}
	blocks = append(blocks, block{
		Type:     "context",
		Elements: []*textObject{{Type: "mrkdwn", Text: footer}},
	})

	return Message{
		Text:   fmt.Sprintf("TV schedule for %s: %d shows", date, len(shows)),
		Blocks: blocks,
	}
}

// networkSection renders one network's shows as a mrkdwn section, collapsing
// multi-episode drops into a single line with an episode range.
func networkSection(network string, shows []models.Show) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n", network)

	ordered := schedule.SortByTime(shows)
	byShow := schedule.GroupByShowID(ordered)
	seen := make(map[int]bool)
	for _, show := range ordered {
		if seen[show.ShowID] {
			continue
		}
		seen[show.ShowID] = true

		episodes := byShow[show.ShowID]
		airtime := episodes[0].Airtime
		if airtime == "" {
			airtime = "TBA"
		}
		fmt.Fprintf(&b, "• `%s` %s — %s\n", airtime, episodeRange(episodes), episodes[0].Name)
	}
	return strings.TrimRight(b.String(), "\n")
}

func episodeRange(episodes []models.Show) string {
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
		return fmt.Sprintf("S%02dE%02d", first.Season, first.Number)
	}
	if first.Season == last.Season {
		return fmt.Sprintf("S%02dE%02d-%02d", first.Season, first.Number, last.Number)
	}
	return fmt.Sprintf("S%02dE%02d-S%02dE%02d", first.Season, first.Number, last.Season, last.Number)
}
