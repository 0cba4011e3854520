package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"

	"onair/config"
	"onair/handlers"
	"onair/models"
	"onair/services/schedule"
)

type stubFetcher struct {
	networkItems []any
	webItems     []any
}

func (s *stubFetcher) Schedule(ctx context.Context, date, country string) ([]any, error) {
	return s.networkItems, nil
}

func (s *stubFetcher) WebSchedule(ctx context.Context, date string) ([]any, error) {
	return s.webItems, nil
}

func scheduleItem(showID int, name, network, airtime string) map[string]any {
	return map[string]any{
		"id":      float64(showID),
		"name":    name,
		"airtime": airtime,
		"show": map[string]any{
			"id":      float64(showID),
			"name":    name,
			"type":    "Scripted",
			"network": map[string]any{"name": network},
		},
	}
}

func newScheduleRouter(t *testing.T, fetcher schedule.Fetcher) *mux.Router {
	t.Helper()

	cfgManager := config.NewManager(filepath.Join(t.TempDir(), "settings.json"))
	if _, err := cfgManager.Load(); err != nil {
		t.Fatalf("load settings: %v", err)
	}

	h := handlers.NewScheduleHandler(cfgManager, schedule.NewService(fetcher))
	r := mux.NewRouter()
	r.HandleFunc("/api/schedule", h.GetSchedule).Methods(http.MethodGet)
	r.HandleFunc("/api/schedule/status", h.GetStatus).Methods(http.MethodGet)
	return r
}

func TestGetScheduleReturnsItems(t *testing.T) {
	router := newScheduleRouter(t, &stubFetcher{
		networkItems: []any{
			scheduleItem(1, "Evening Drama", "NBC", "21:00"),
			scheduleItem(2, "Morning Quiz", "ABC", "09:00"),
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/schedule?date=2026-08-28", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp models.ScheduleResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 2 || len(resp.Items) != 2 {
		t.Fatalf("total = %d, items = %d", resp.Total, len(resp.Items))
	}
	// Default sort is by air time.
	if resp.Items[0].Name != "Morning Quiz" {
		t.Errorf("first item = %q, want time-sorted order", resp.Items[0].Name)
	}
	if resp.Date != "2026-08-28" {
		t.Errorf("date = %q", resp.Date)
	}
}

func TestGetScheduleRejectsBadDate(t *testing.T) {
	router := newScheduleRouter(t, &stubFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/api/schedule?date=28-08-2026", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetScheduleAppliesQueryFilters(t *testing.T) {
	router := newScheduleRouter(t, &stubFetcher{
		networkItems: []any{
			scheduleItem(1, "Keep", "NBC", "20:00"),
			scheduleItem(2, "Drop", "CBS", "20:00"),
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/schedule?date=2026-08-28&networks=NBC", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp models.ScheduleResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 || resp.Items[0].Name != "Keep" {
		t.Errorf("filter not applied: %+v", resp.Items)
	}
}

func TestGetScheduleGroups(t *testing.T) {
	router := newScheduleRouter(t, &stubFetcher{
		networkItems: []any{
			scheduleItem(1, "A", "NBC", "20:00"),
			scheduleItem(2, "B", "NBC", "21:00"),
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/schedule?date=2026-08-28&group=true", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp models.ScheduleResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Groups) != 1 || len(resp.Groups["NBC"]) != 2 {
		t.Errorf("groups = %+v", resp.Groups)
	}
}

func TestGetStatusAfterFetch(t *testing.T) {
	router := newScheduleRouter(t, &stubFetcher{
		networkItems: []any{scheduleItem(1, "A", "NBC", "20:00")},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/schedule?date=2026-08-28", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/schedule/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var status models.ScheduleStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.LastItemCount != 1 {
		t.Errorf("LastItemCount = %d, want 1", status.LastItemCount)
	}
	if status.LastFetchAt == "" {
		t.Errorf("LastFetchAt empty after a fetch")
	}
}
