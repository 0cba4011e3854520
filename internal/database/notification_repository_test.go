package database_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"onair/internal/database"
	"onair/models"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func notification(id string, sentAt time.Time) models.Notification {
	return models.Notification{
		ID:           id,
		TaskID:       "task-1",
		TaskName:     "Daily schedule",
		ScheduleDate: "2026-08-28",
		ShowCount:    12,
		Status:       models.NotificationStatusSent,
		SentAt:       sentAt,
	}
}

func TestRecordAndListRecent(t *testing.T) {
	repo := database.NewNotificationRepository(openTestDB(t))
	ctx := context.Background()

	base := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if err := repo.Record(ctx, notification(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Record(%s): %v", id, err)
		}
	}

	got, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d notifications, want 3", len(got))
	}
	// Newest first.
	if got[0].ID != "c" || got[2].ID != "a" {
		t.Errorf("order = [%s %s %s], want newest first", got[0].ID, got[1].ID, got[2].ID)
	}
	if got[0].ShowCount != 12 || got[0].Status != models.NotificationStatusSent {
		t.Errorf("fields lost in round trip: %+v", got[0])
	}
}

func TestListRecentHonorsLimit(t *testing.T) {
	repo := database.NewNotificationRepository(openTestDB(t))
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		n := notification(string(rune('a'+i)), base.Add(time.Duration(i)*time.Second))
		if err := repo.Record(ctx, n); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d notifications, want 2", len(got))
	}
}

func TestRecordErrorStatus(t *testing.T) {
	repo := database.NewNotificationRepository(openTestDB(t))
	ctx := context.Background()

	n := notification("failed", time.Now().UTC())
	n.Status = models.NotificationStatusError
	n.Error = "webhook returned 500"
	if err := repo.Record(ctx, n); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := repo.ListRecent(ctx, 1)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if got[0].Status != models.NotificationStatusError || got[0].Error == "" {
		t.Errorf("error status lost: %+v", got[0])
	}
}

func TestPruneKeepsNewest(t *testing.T) {
	repo := database.NewNotificationRepository(openTestDB(t))
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 10; i++ {
		n := notification(string(rune('a'+i)), base.Add(time.Duration(i)*time.Second))
		if err := repo.Record(ctx, n); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	if err := repo.Prune(ctx, 3); err != nil {
		t.Fatalf("Prune: %v", err)
	}

	got, err := repo.ListRecent(ctx, 100)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d notifications after prune, want 3", len(got))
	}
	if got[0].ID != "j" {
		t.Errorf("newest = %s, want j", got[0].ID)
	}
}
