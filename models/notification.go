package models

import "time"

// Notification statuses persisted with each delivery record.
const (
	NotificationStatusSent  = "sent"
	NotificationStatusError = "error"
)

// Notification records one Slack delivery attempt made by the scheduler.
type Notification struct {
	ID           string    `json:"id"`
	TaskID       string    `json:"taskId"`
	TaskName     string    `json:"taskName"`
	ScheduleDate string    `json:"scheduleDate"` // YYYY-MM-DD the schedule was fetched for
	ShowCount    int       `json:"showCount"`
	Status       string    `json:"status"`
	Error        string    `json:"error,omitempty"`
	SentAt       time.Time `json:"sentAt"`
}
