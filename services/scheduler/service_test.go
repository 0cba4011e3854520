package scheduler_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"onair/config"
	"onair/models"
	"onair/services/schedule"
	"onair/services/scheduler"
	"onair/services/slack"
)

type stubFetcher struct {
	items []any
}

func (s *stubFetcher) Schedule(ctx context.Context, date, country string) ([]any, error) {
	return s.items, nil
}

func (s *stubFetcher) WebSchedule(ctx context.Context, date string) ([]any, error) {
	return nil, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []slack.Message
	err  error
}

func (f *fakeNotifier) Send(ctx context.Context, msg slack.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeRecorder struct {
	mu       sync.Mutex
	recorded []models.Notification
}

func (f *fakeRecorder) Record(ctx context.Context, n models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, n)
	return nil
}

func (f *fakeRecorder) last() (models.Notification, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.recorded) == 0 {
		return models.Notification{}, false
	}
	return f.recorded[len(f.recorded)-1], true
}

func newManagerWithTask(t *testing.T, task config.ScheduledTask) *config.Manager {
	t.Helper()

	m := config.NewManager(filepath.Join(t.TempDir(), "settings.json"))
	settings, err := m.Load()
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	settings.ScheduledTasks.Tasks = []config.ScheduledTask{task}
	if err := m.Save(settings); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	return m
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached within deadline")
}

func scheduleTask() config.ScheduledTask {
	return config.ScheduledTask{
		ID:        "task-1",
		Type:      config.ScheduledTaskTypeSlackSchedule,
		Name:      "Daily digest",
		Enabled:   true,
		Frequency: config.ScheduledTaskFrequencyDaily,
		Config:    map[string]string{"date": "2026-08-28"},
		CreatedAt: time.Now().UTC(),
	}
}

func fetcherItems() []any {
	return []any{
		map[string]any{
			"id":      float64(1),
			"name":    "Pilot",
			"airtime": "20:00",
			"show": map[string]any{
				"id":      float64(100),
				"name":    "Test Drama",
				"type":    "Scripted",
				"network": map[string]any{"name": "NBC"},
			},
		},
	}
}

func TestRunTaskNowSendsNotification(t *testing.T) {
	m := newManagerWithTask(t, scheduleTask())
	notifier := &fakeNotifier{}
	recorder := &fakeRecorder{}
	svc := scheduler.NewService(m, schedule.NewService(&stubFetcher{items: fetcherItems()}), notifier, recorder)

	if err := svc.RunTaskNow("task-1"); err != nil {
		t.Fatalf("RunTaskNow: %v", err)
	}

	waitFor(t, func() bool { return notifier.count() == 1 })

	n, ok := recorder.last()
	if !ok {
		t.Fatal("no notification recorded")
	}
	if n.Status != models.NotificationStatusSent {
		t.Errorf("status = %q, want sent", n.Status)
	}
	if n.TaskID != "task-1" || n.ScheduleDate != "2026-08-28" || n.ShowCount != 1 {
		t.Errorf("notification fields = %+v", n)
	}

	// Task status is persisted back to the settings file.
	waitFor(t, func() bool {
		settings, err := m.Load()
		if err != nil {
			return false
		}
		task := settings.ScheduledTasks.Tasks[0]
		return task.LastStatus == config.ScheduledTaskStatusSuccess && task.LastRunAt != nil
	})
}

func TestRunTaskNowRecordsSendFailure(t *testing.T) {
	m := newManagerWithTask(t, scheduleTask())
	notifier := &fakeNotifier{err: errors.New("webhook down")}
	recorder := &fakeRecorder{}
	svc := scheduler.NewService(m, schedule.NewService(&stubFetcher{items: fetcherItems()}), notifier, recorder)

	if err := svc.RunTaskNow("task-1"); err != nil {
		t.Fatalf("RunTaskNow: %v", err)
	}

	waitFor(t, func() bool {
		n, ok := recorder.last()
		return ok && n.Status == models.NotificationStatusError
	})

	waitFor(t, func() bool {
		settings, err := m.Load()
		if err != nil {
			return false
		}
		task := settings.ScheduledTasks.Tasks[0]
		return task.LastStatus == config.ScheduledTaskStatusError && task.LastError != ""
	})
}

func TestRunTaskNowUnknownTask(t *testing.T) {
	m := newManagerWithTask(t, scheduleTask())
	svc := scheduler.NewService(m, schedule.NewService(&stubFetcher{}), &fakeNotifier{}, nil)

	if err := svc.RunTaskNow("missing"); err == nil {
		t.Fatal("expected error for unknown task")
	}
}

func TestStartRunsDueTaskAndStops(t *testing.T) {
	m := newManagerWithTask(t, scheduleTask())
	notifier := &fakeNotifier{}
	svc := scheduler.NewService(m, schedule.NewService(&stubFetcher{items: fetcherItems()}), notifier, nil)

	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// The task has never run, so the startup check fires it immediately.
	waitFor(t, func() bool { return notifier.count() >= 1 })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := svc.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestGetTaskStatus(t *testing.T) {
	m := newManagerWithTask(t, scheduleTask())
	svc := scheduler.NewService(m, schedule.NewService(&stubFetcher{}), &fakeNotifier{}, nil)

	tasks := svc.GetTaskStatus()
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks))
	}
	if tasks[0].ID != "task-1" {
		t.Errorf("task ID = %q", tasks[0].ID)
	}
}
