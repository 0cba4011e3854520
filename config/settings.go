package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server         ServerSettings         `json:"server"`
	TVMaze         TVMazeSettings         `json:"tvmaze"`
	Filters        FilterSettings         `json:"filters"`
	Output         OutputSettings         `json:"output"`
	Slack          SlackSettings          `json:"slack"`
	Database       DatabaseSettings       `json:"database"`
	Log            LogConfig              `json:"log"`
	ScheduledTasks ScheduledTasksSettings `json:"scheduledTasks"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// TVMazeSettings configures the upstream schedule API.
type TVMazeSettings struct {
	BaseURL        string `json:"baseUrl"`
	Country        string `json:"country"`        // ISO 3166-1 alpha-2, used for the network schedule
	TimeoutSeconds int    `json:"timeoutSeconds"` // per-request HTTP timeout
}

// FilterSettings holds the default schedule filters applied when a request
// (or a task) supplies none of its own. Empty lists filter nothing.
type FilterSettings struct {
	Types     []string `json:"types"`
	Networks  []string `json:"networks"`
	Genres    []string `json:"genres"`
	Languages []string `json:"languages"`
	Source    string   `json:"source"` // network | web | all
}

// OutputSettings controls rendering defaults shared by the console and
// Slack surfaces.
type OutputSettings struct {
	SortByTime bool `json:"sortByTime"`
}

// SlackSettings configures the incoming-webhook integration.
type SlackSettings struct {
	WebhookURL string `json:"webhookUrl"`
	Enabled    bool   `json:"enabled"`
}

// DatabaseSettings defines where the notification history database lives.
type DatabaseSettings struct {
	Path string `json:"path"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	File       string `json:"file"`
	Level      string `json:"level"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

// ScheduledTaskType defines the type of scheduled task.
type ScheduledTaskType string

const (
	ScheduledTaskTypeSlackSchedule ScheduledTaskType = "slack_schedule"
)

// ScheduledTaskFrequency defines how often a task runs.
type ScheduledTaskFrequency string

const (
	ScheduledTaskFrequency15Min   ScheduledTaskFrequency = "15min"
	ScheduledTaskFrequency30Min   ScheduledTaskFrequency = "30min"
	ScheduledTaskFrequencyHourly  ScheduledTaskFrequency = "hourly"
	ScheduledTaskFrequency6Hours  ScheduledTaskFrequency = "6hours"
	ScheduledTaskFrequency12Hours ScheduledTaskFrequency = "12hours"
	ScheduledTaskFrequencyDaily   ScheduledTaskFrequency = "daily"
)

// ScheduledTaskStatus represents the last run status.
type ScheduledTaskStatus string

const (
	ScheduledTaskStatusPending ScheduledTaskStatus = "pending"
	ScheduledTaskStatusRunning ScheduledTaskStatus = "running"
	ScheduledTaskStatusSuccess ScheduledTaskStatus = "success"
	ScheduledTaskStatusError   ScheduledTaskStatus = "error"
)

// ScheduledTask represents a single scheduled task configuration.
type ScheduledTask struct {
	ID         string                 `json:"id"`
	Type       ScheduledTaskType      `json:"type"`
	Name       string                 `json:"name"`
	Enabled    bool                   `json:"enabled"`
	Frequency  ScheduledTaskFrequency `json:"frequency"`
	Config     map[string]string      `json:"config"` // Task-specific config (e.g. types, networks, source)
	LastRunAt  *time.Time             `json:"lastRunAt,omitempty"`
	LastStatus ScheduledTaskStatus    `json:"lastStatus"`
	LastError  string                 `json:"lastError,omitempty"`
	ShowCount  int                    `json:"showCount,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
}

// ScheduledTasksSettings contains all scheduled task configurations.
type ScheduledTasksSettings struct {
	Tasks                []ScheduledTask `json:"tasks"`
	CheckIntervalSeconds int             `json:"checkIntervalSeconds"` // How often scheduler checks for due tasks (default: 60)
}

// DefaultSettings returns sane defaults for a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{Host: "0.0.0.0", Port: 8484},
		TVMaze: TVMazeSettings{
			BaseURL:        "https://api.tvmaze.com",
			Country:        "US",
			TimeoutSeconds: 15,
		},
		Filters: FilterSettings{
			Types:     []string{},
			Networks:  []string{},
			Genres:    []string{},
			Languages: []string{},
			Source:    "all",
		},
		Output: OutputSettings{SortByTime: true},
		Slack:  SlackSettings{WebhookURL: "", Enabled: false},
		Database: DatabaseSettings{
			Path: "cache/onair.db",
		},
		Log: LogConfig{
			File:       "cache/logs/onair.log",
			Level:      "info",
			MaxSize:    50, // 50 MB per file
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   true,
		},
		ScheduledTasks: ScheduledTasksSettings{
			Tasks:                []ScheduledTask{},
			CheckIntervalSeconds: 60,
		},
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

// EnsureDir ensures the parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Load reads settings.json from disk or creates defaults if missing.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}
	f, err := os.Open(m.path)
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()

	var s Settings
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return Settings{}, err
	}

	// Backfill defaults for settings introduced after the config was written.
	if strings.TrimSpace(s.TVMaze.BaseURL) == "" {
		s.TVMaze.BaseURL = "https://api.tvmaze.com"
	}
	if strings.TrimSpace(s.TVMaze.Country) == "" {
		s.TVMaze.Country = "US"
	}
	if s.TVMaze.TimeoutSeconds == 0 {
		s.TVMaze.TimeoutSeconds = 15
	}

	if strings.TrimSpace(s.Filters.Source) == "" {
		s.Filters.Source = "all"
	}
	if s.Filters.Types == nil {
		s.Filters.Types = []string{}
	}
	if s.Filters.Networks == nil {
		s.Filters.Networks = []string{}
	}
	if s.Filters.Genres == nil {
		s.Filters.Genres = []string{}
	}
	if s.Filters.Languages == nil {
		s.Filters.Languages = []string{}
	}

	if strings.TrimSpace(s.Database.Path) == "" {
		s.Database.Path = "cache/onair.db"
	}

	if strings.TrimSpace(s.Log.File) == "" {
		s.Log.File = "cache/logs/onair.log"
	}
	if s.Log.MaxSize == 0 {
		s.Log.MaxSize = 50
	}
	if s.Log.MaxBackups == 0 {
		s.Log.MaxBackups = 3
	}
	if s.Log.MaxAge == 0 {
		s.Log.MaxAge = 7
	}

	if s.ScheduledTasks.CheckIntervalSeconds == 0 {
		s.ScheduledTasks.CheckIntervalSeconds = 60
	}
	if s.ScheduledTasks.Tasks == nil {
		s.ScheduledTasks.Tasks = []ScheduledTask{}
	}

	return s, nil
}

// Save writes the provided settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, m.path)
}
