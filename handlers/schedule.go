package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"onair/config"
	"onair/models"
	"onair/services/schedule"
)

// ScheduleHandler serves the TV schedule API endpoints.
type ScheduleHandler struct {
	configManager   *config.Manager
	scheduleService *schedule.Service
}

// NewScheduleHandler creates a new schedule handler.
func NewScheduleHandler(configManager *config.Manager, scheduleService *schedule.Service) *ScheduleHandler {
	return &ScheduleHandler{
		configManager:   configManager,
		scheduleService: scheduleService,
	}
}

// GetSchedule fetches and returns the schedule for a date.
// GET /api/schedule?date=YYYY-MM-DD&country=XX&types=...&networks=...&genres=...&languages=...&source=...&sort=time|name&group=true
func (h *ScheduleHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	date := q.Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": "Invalid date, expected YYYY-MM-DD: " + date,
		})
		return
	}

	settings, err := h.configManager.Load()
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": "Failed to load settings: " + err.Error(),
		})
		return
	}

	opts := schedule.Options{
		Date:      date,
		Country:   settings.TVMaze.Country,
		Types:     settings.Filters.Types,
		Networks:  settings.Filters.Networks,
		Genres:    settings.Filters.Genres,
		Languages: settings.Filters.Languages,
		Source:    schedule.ParseSource(settings.Filters.Source),
	}
	if v := q.Get("country"); v != "" {
		opts.Country = v
	}
	if v, ok := q["types"]; ok {
		opts.Types = queryList(v)
	}
	if v, ok := q["networks"]; ok {
		opts.Networks = queryList(v)
	}
	if v, ok := q["genres"]; ok {
		opts.Genres = queryList(v)
	}
	if v, ok := q["languages"]; ok {
		opts.Languages = queryList(v)
	}
	if v := q.Get("source"); v != "" {
		opts.Source = schedule.ParseSource(v)
	}

	shows, err := h.scheduleService.FetchShows(r.Context(), opts)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": "Failed to fetch schedule: " + err.Error(),
		})
		return
	}

	switch q.Get("sort") {
	case "name":
		shows = schedule.SortByName(shows)
	case "", "time":
		shows = schedule.SortByTime(shows)
	}

	resp := models.ScheduleResponse{
		Items:   shows,
		Total:   len(shows),
		Date:    opts.Date,
		Country: opts.Country,
		Source:  string(opts.Source),
	}
	if q.Get("group") == "true" {
		resp.Groups = schedule.GroupByNetwork(shows)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetStatus reports the outcome of the most recent fetch.
// GET /api/schedule/status
func (h *ScheduleHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.scheduleService.Status())
}

// queryList flattens repeated and comma-separated query values into one
// criteria list. An explicitly empty parameter yields an empty list, which
// disables the corresponding configured default.
func queryList(values []string) []string {
	out := []string{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
