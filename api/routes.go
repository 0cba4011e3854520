package api

import (
	"net/http"
	"runtime"
	"strconv"

	"github.com/gorilla/mux"

	"onair/handlers"
)

func itoa(i int) string      { return strconv.Itoa(i) }
func itoa64(i uint64) string { return strconv.FormatUint(i, 10) }

// localhostOnlyMiddleware restricts access to localhost requests only
func localhostOnlyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		// Strip port if present
		for i := len(host) - 1; i >= 0; i-- {
			if host[i] == ':' {
				host = host[:i]
				break
			}
		}
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			http.Error(w, "Debug endpoints only accessible from localhost", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleOptions handles OPTIONS requests for CORS preflight
func handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Register mounts API endpoints onto the provided router.
func Register(
	r *mux.Router,
	scheduleHandler *handlers.ScheduleHandler,
	tasksHandler *handlers.ScheduledTasksHandler,
	notificationsHandler *handlers.NotificationsHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)

	// Schedule endpoints
	api.HandleFunc("/schedule", scheduleHandler.GetSchedule).Methods(http.MethodGet)
	api.HandleFunc("/schedule", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/schedule/status", scheduleHandler.GetStatus).Methods(http.MethodGet)
	api.HandleFunc("/schedule/status", handleOptions).Methods(http.MethodOptions)

	// Scheduled task management
	api.HandleFunc("/tasks", tasksHandler.ListTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks", tasksHandler.CreateTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/tasks/{taskID}", tasksHandler.UpdateTask).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{taskID}", tasksHandler.DeleteTask).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{taskID}", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/tasks/{taskID}/run", tasksHandler.RunTaskNow).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{taskID}/run", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/tasks/{taskID}/toggle", tasksHandler.ToggleTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{taskID}/toggle", handleOptions).Methods(http.MethodOptions)

	// Notification history
	api.HandleFunc("/notifications", notificationsHandler.ListNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications", handleOptions).Methods(http.MethodOptions)

	// Health
	api.HandleFunc("/health", healthHandler.GetHealth).Methods(http.MethodGet, http.MethodOptions)

	// Runtime stats endpoint (localhost only, no auth required for debugging)
	runtimeRouter := api.PathPrefix("/debug/runtime").Subrouter()
	runtimeRouter.Use(localhostOnlyMiddleware)
	runtimeRouter.HandleFunc("", func(w http.ResponseWriter, r *http.Request) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{` +
			`"goroutines":` + itoa(runtime.NumGoroutine()) + `,` +
			`"heapAlloc":` + itoa64(m.HeapAlloc) + `,` +
			`"heapSys":` + itoa64(m.HeapSys) + `,` +
			`"heapObjects":` + itoa64(m.HeapObjects) + `,` +
			`"numGC":` + itoa(int(m.NumGC)) + `,` +
			`"numCPU":` + itoa(runtime.NumCPU()) +
			`}`))
	}).Methods(http.MethodGet)
}
