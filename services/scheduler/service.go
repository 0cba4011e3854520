package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"onair/config"
	"onair/models"
	"onair/services/schedule"
	"onair/services/slack"
)

// Notifier delivers a rendered schedule message. Implemented by the slack
// client; test doubles stand in for it.
type Notifier interface {
	Send(ctx context.Context, msg slack.Message) error
}

// NotificationRecorder persists a record of each delivery attempt.
type NotificationRecorder interface {
	Record(ctx context.Context, n models.Notification) error
}

// Service manages scheduled task execution.
type Service struct {
	configManager *config.Manager
	schedule      *schedule.Service
	notifier      Notifier
	history       NotificationRecorder

	// Runtime state
	mu      sync.RWMutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// Task state tracking (in-memory, not persisted)
	taskRunning map[string]bool
	taskMu      sync.RWMutex
}

// NewService creates a new scheduler service. history may be nil when the
// notification database is disabled.
func NewService(
	configManager *config.Manager,
	scheduleService *schedule.Service,
	notifier Notifier,
	history NotificationRecorder,
) *Service {
	return &Service{
		configManager: configManager,
		schedule:      scheduleService,
		notifier:      notifier,
		history:       history,
		taskRunning:   make(map[string]bool),
	}
}

// Start begins the scheduler background loop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true

	s.wg.Add(1)
	go s.schedulerLoop()

	log.Println("[scheduler] Scheduler service started")
	return nil
}

// Stop gracefully stops the scheduler.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.cancel()

	// Wait for all tasks to complete with timeout
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[scheduler] Scheduler service stopped gracefully")
	case <-ctx.Done():
		log.Println("[scheduler] Scheduler service stopped (timeout)")
	}

	s.running = false
	return nil
}

// schedulerLoop is the main background loop that checks for tasks to run.
func (s *Service) schedulerLoop() {
	defer s.wg.Done()

	settings, err := s.configManager.Load()
	if err != nil {
		log.Printf("[scheduler] Failed to load settings: %v", err)
		return
	}

	checkInterval := time.Duration(settings.ScheduledTasks.CheckIntervalSeconds) * time.Second
	if checkInterval < time.Second {
		checkInterval = 60 * time.Second
	}

	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	// Run check immediately on start
	s.checkAndRunTasks()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.checkAndRunTasks()
		}
	}
}

// checkAndRunTasks checks all enabled tasks and runs those that are due.
func (s *Service) checkAndRunTasks() {
	settings, err := s.configManager.Load()
	if err != nil {
		log.Printf("[scheduler] Failed to load settings: %v", err)
		return
	}

	for _, task := range settings.ScheduledTasks.Tasks {
		if !task.Enabled {
			continue
		}

		if s.shouldRun(task) {
			// Run task in goroutine to not block other tasks
			s.wg.Add(1)
			go func(t config.ScheduledTask) {
				defer s.wg.Done()
				s.executeTask(t)
			}(task)
		}
	}
}

// shouldRun checks if a task is due to run.
func (s *Service) shouldRun(task config.ScheduledTask) bool {
	s.taskMu.RLock()
	if s.taskRunning[task.ID] {
		s.taskMu.RUnlock()
		return false
	}
	s.taskMu.RUnlock()

	// Never run before
	if task.LastRunAt == nil {
		return true
	}

	interval := s.getInterval(task.Frequency)
	return time.Since(*task.LastRunAt) >= interval
}

// getInterval returns the duration for a given frequency.
func (s *Service) getInterval(freq config.ScheduledTaskFrequency) time.Duration {
	switch freq {
	case config.ScheduledTaskFrequency15Min:
		return 15 * time.Minute
	case config.ScheduledTaskFrequency30Min:
		return 30 * time.Minute
	case config.ScheduledTaskFrequencyHourly:
		return 1 * time.Hour
	case config.ScheduledTaskFrequency6Hours:
		return 6 * time.Hour
	case config.ScheduledTaskFrequency12Hours:
		return 12 * time.Hour
	case config.ScheduledTaskFrequencyDaily:
		return 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// executeTask runs a task and updates its status.
func (s *Service) executeTask(task config.ScheduledTask) {
	s.taskMu.Lock()
	s.taskRunning[task.ID] = true
	s.taskMu.Unlock()

	defer func() {
		s.taskMu.Lock()
		delete(s.taskRunning, task.ID)
		s.taskMu.Unlock()
	}()

	log.Printf("[scheduler] Executing task: %s (%s)", task.Name, task.Type)

	var err error
	var showCount int

	switch task.Type {
	case config.ScheduledTaskTypeSlackSchedule:
		showCount, err = s.executeSlackSchedule(task)
	default:
		log.Printf("[scheduler] Unknown task type: %s", task.Type)
		return
	}

	s.updateTaskStatus(task.ID, err, showCount)
}

// updateTaskStatus updates a task's status in the settings file.
func (s *Service) updateTaskStatus(taskID string, err error, showCount int) {
	settings, loadErr := s.configManager.Load()
	if loadErr != nil {
		log.Printf("[scheduler] Failed to load settings to update task status: %v", loadErr)
		return
	}

	now := time.Now().UTC()
	for i := range settings.ScheduledTasks.Tasks {
		if settings.ScheduledTasks.Tasks[i].ID == taskID {
			settings.ScheduledTasks.Tasks[i].LastRunAt = &now
			settings.ScheduledTasks.Tasks[i].ShowCount = showCount

			if err != nil {
				settings.ScheduledTasks.Tasks[i].LastStatus = config.ScheduledTaskStatusError
				settings.ScheduledTasks.Tasks[i].LastError = err.Error()
				log.Printf("[scheduler] Task %s failed: %v", taskID, err)
			} else {
				settings.ScheduledTasks.Tasks[i].LastStatus = config.ScheduledTaskStatusSuccess
				settings.ScheduledTasks.Tasks[i].LastError = ""
				log.Printf("[scheduler] Task %s completed successfully, %d shows", taskID, showCount)
			}
			break
		}
	}

	if saveErr := s.configManager.Save(settings); saveErr != nil {
		log.Printf("[scheduler] Failed to save task status: %v", saveErr)
	}
}

// RunTaskNow triggers immediate execution of a task.
func (s *Service) RunTaskNow(taskID string) error {
	settings, err := s.configManager.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	for _, task := range settings.ScheduledTasks.Tasks {
		if task.ID == taskID {
			s.taskMu.RLock()
			if s.taskRunning[taskID] {
				s.taskMu.RUnlock()
				return errors.New("task is already running")
			}
			s.taskMu.RUnlock()

			s.wg.Add(1)
			go func(t config.ScheduledTask) {
				defer s.wg.Done()
				s.executeTask(t)
			}(task)
			return nil
		}
	}

	return errors.New("task not found")
}

// GetTaskStatus returns all tasks with their current status.
// Running tasks have their status overridden to "running".
func (s *Service) GetTaskStatus() []config.ScheduledTask {
	settings, err := s.configManager.Load()
	if err != nil {
		return nil
	}

	s.taskMu.RLock()
	defer s.taskMu.RUnlock()

	tasks := make([]config.ScheduledTask, len(settings.ScheduledTasks.Tasks))
	for i, task := range settings.ScheduledTasks.Tasks {
		tasks[i] = task
		if s.taskRunning[task.ID] {
			tasks[i].LastStatus = config.ScheduledTaskStatusRunning
		}
	}

	return tasks
}

// IsTaskRunning checks if a specific task is currently running.
func (s *Service) IsTaskRunning(taskID string) bool {
	s.taskMu.RLock()
	defer s.taskMu.RUnlock()
	return s.taskRunning[taskID]
}

// executeSlackSchedule fetches the day's schedule with the task's filters and
// posts it to Slack. The task config overrides the global filter defaults;
// absent keys fall back to them.
func (s *Service) executeSlackSchedule(task config.ScheduledTask) (int, error) {
	settings, err := s.configManager.Load()
	if err != nil {
		return 0, fmt.Errorf("load settings: %w", err)
	}
	if s.notifier == nil {
		return 0, errors.New("slack notifier not configured")
	}

	opts := taskOptions(task, settings)

	base := s.ctx
	if base == nil {
		base = context.Background()
	}
	ctx, cancel := context.WithTimeout(base, 2*time.Minute)
	defer cancel()

	shows, err := s.schedule.FetchShows(ctx, opts)
	if err != nil {
		s.recordNotification(task, opts.Date, 0, err)
		return 0, fmt.Errorf("fetch schedule: %w", err)
	}

	msg := slack.BuildScheduleMessage(opts.Date, shows)
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.recordNotification(task, opts.Date, len(shows), err)
		return len(shows), fmt.Errorf("send notification: %w", err)
	}

	s.recordNotification(task, opts.Date, len(shows), nil)
	return len(shows), nil
}

// taskOptions merges a task's config over the global filter defaults.
func taskOptions(task config.ScheduledTask, settings config.Settings) schedule.Options {
	opts := schedule.Options{
		Date:      task.Config["date"],
		Country:   settings.TVMaze.Country,
		Types:     settings.Filters.Types,
		Networks:  settings.Filters.Networks,
		Genres:    settings.Filters.Genres,
		Languages: settings.Filters.Languages,
		Source:    schedule.ParseSource(settings.Filters.Source),
	}

	if v := task.Config["country"]; v != "" {
		opts.Country = v
	}
	if v, ok := task.Config["types"]; ok {
		opts.Types = splitList(v)
	}
	if v, ok := task.Config["networks"]; ok {
		opts.Networks = splitList(v)
	}
	if v, ok := task.Config["genres"]; ok {
		opts.Genres = splitList(v)
	}
	if v, ok := task.Config["languages"]; ok {
		opts.Languages = splitList(v)
	}
	if v, ok := task.Config["source"]; ok {
		opts.Source = schedule.ParseSource(v)
	}
	return opts
}

// splitList parses a comma-separated task config value. An empty value means
// no filtering, overriding any global default.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *Service) recordNotification(task config.ScheduledTask, date string, showCount int, sendErr error) {
	if s.history == nil {
		return
	}

	n := models.Notification{
		ID:           uuid.NewString(),
		TaskID:       task.ID,
		TaskName:     task.Name,
		ScheduleDate: date,
		ShowCount:    showCount,
		Status:       models.NotificationStatusSent,
		SentAt:       time.Now().UTC(),
	}
	if sendErr != nil {
		n.Status = models.NotificationStatusError
		n.Error = sendErr.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.history.Record(ctx, n); err != nil {
		log.Printf("[scheduler] Failed to record notification: %v", err)
	}
}
