package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"gopkg.in/natefinch/lumberjack.v2"

	"onair/api"
	"onair/config"
	"onair/handlers"
	"onair/internal/database"
	"onair/services/console"
	"onair/services/schedule"
	"onair/services/scheduler"
	"onair/services/slack"
	"onair/services/tvmaze"
)

const version = "1.2.0"

func main() {
	var (
		serveMode    = flag.Bool("serve", false, "run the HTTP server and task scheduler instead of a one-shot fetch")
		portOverride = flag.Int("port", 0, "override server port from config")
		date         = flag.String("date", "", "schedule date (YYYY-MM-DD, default today)")
		country      = flag.String("country", "", "country code for the network schedule (default from config)")
		types        = flag.String("types", "", "comma-separated show types to keep")
		networks     = flag.String("networks", "", "comma-separated networks to keep")
		genres       = flag.String("genres", "", "comma-separated genres to keep")
		languages    = flag.String("languages", "", "comma-separated languages to keep")
		source       = flag.String("source", "", "schedule source: network, web or all (default from config)")
		sortMode     = flag.String("sort", "", "row order: time or name")
		output       = flag.String("output", "console", "one-shot output: console or slack")
	)
	flag.Parse()

	// Determine config path (env or default)
	configPath := os.Getenv("ONAIR_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("cache", "settings.json")
	}

	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			// One-shot runs keep stdout clean for the rendered schedule.
			if *serveMode {
				log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
			} else {
				log.SetOutput(fileWriter)
			}
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	// Wire up the schedule pipeline
	client := tvmaze.NewClient(settings.TVMaze.BaseURL, time.Duration(settings.TVMaze.TimeoutSeconds)*time.Second)
	scheduleService := schedule.NewService(client)

	if *serveMode {
		runServer(cfgManager, settings, scheduleService)
		return
	}

	// One-shot mode: fetch, render, exit
	opts := schedule.Options{
		Date:      *date,
		Country:   settings.TVMaze.Country,
		Types:     settings.Filters.Types,
		Networks:  settings.Filters.Networks,
		Genres:    settings.Filters.Genres,
		Languages: settings.Filters.Languages,
		Source:    schedule.ParseSource(settings.Filters.Source),
	}
	if *country != "" {
		opts.Country = *country
	}
	if *types != "" {
		opts.Types = splitFlag(*types)
	}
	if *networks != "" {
		opts.Networks = splitFlag(*networks)
	}
	if *genres != "" {
		opts.Genres = splitFlag(*genres)
	}
	if *languages != "" {
		opts.Languages = splitFlag(*languages)
	}
	if *source != "" {
		opts.Source = schedule.ParseSource(*source)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	shows, err := scheduleService.FetchShows(ctx, opts)
	if err != nil {
		log.Fatalf("failed to fetch schedule: %v", err)
	}

	displayDate := opts.Date
	if displayDate == "" {
		displayDate = time.Now().Format("2006-01-02")
	}

	switch *output {
	case "slack":
		if settings.Slack.WebhookURL == "" {
			log.Fatal("slack output requested but no webhook URL configured")
		}
		msg := slack.BuildScheduleMessage(displayDate, shows)
		if err := slack.NewClient(settings.Slack.WebhookURL).Send(ctx, msg); err != nil {
			log.Fatalf("failed to send slack message: %v", err)
		}
		fmt.Printf("Posted %d shows to Slack for %s\n", len(shows), displayDate)
	default:
		sortByTime := settings.Output.SortByTime
		if *sortMode != "" {
			sortByTime = *sortMode == "time"
		}
		renderer := console.NewRenderer(os.Stdout, sortByTime)
		if err := renderer.Render(shows); err != nil {
			log.Fatalf("failed to render schedule: %v", err)
		}
	}
}

// runServer starts the HTTP API and the background task scheduler, blocking
// until a shutdown signal arrives.
func runServer(cfgManager *config.Manager, settings config.Settings, scheduleService *schedule.Service) {
	fmt.Println("🚀 onair server starting...")

	// Notification history database
	var notificationRepo *database.NotificationRepository
	db, err := database.Open(settings.Database.Path)
	if err != nil {
		log.Printf("Warning: notification history disabled: %v", err)
	} else {
		defer db.Close()
		notificationRepo = database.NewNotificationRepository(db)
	}

	// Slack notifier for scheduled tasks
	var notifier scheduler.Notifier
	if settings.Slack.WebhookURL != "" {
		notifier = slack.NewClient(settings.Slack.WebhookURL)
	} else {
		fmt.Println("⚠️  No Slack webhook configured; scheduled tasks will fail until one is set.")
	}

	// Task scheduler
	var history scheduler.NotificationRecorder
	if notificationRepo != nil {
		history = notificationRepo
	}
	schedulerService := scheduler.NewService(cfgManager, scheduleService, notifier, history)
	if err := schedulerService.Start(context.Background()); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}

	// HTTP API
	r := mux.NewRouter()
	api.Register(
		r,
		handlers.NewScheduleHandler(cfgManager, scheduleService),
		handlers.NewScheduledTasksHandler(cfgManager, schedulerService),
		handlers.NewNotificationsHandler(notificationRepo),
		handlers.NewHealthHandler(version),
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute, // schedule fetches can be slow upstream
		IdleTimeout:  120 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("🛑 Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := schedulerService.Stop(shutdownCtx); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}

func splitFlag(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
