package database

import (
	"context"
	"fmt"

	"onair/models"
)

// NotificationRepository stores the delivery history of scheduled
// notifications.
type NotificationRepository struct {
	db *DB
}

// NewNotificationRepository creates a repository backed by the given database.
func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Record inserts one delivery attempt.
func (r *NotificationRepository) Record(ctx context.Context, n models.Notification) error {
	_, err := r.db.Conn().ExecContext(ctx, `
		INSERT INTO notifications (id, task_id, task_name, schedule_date, show_count, status, error, sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.TaskID, n.TaskName, n.ScheduleDate, n.ShowCount, n.Status, n.Error, n.SentAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListRecent returns the most recent notifications, newest first.
func (r *NotificationRepository) ListRecent(ctx context.Context, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT id, task_id, task_name, schedule_date, show_count, status, error, sent_at
		FROM notifications
		ORDER BY sent_at DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0, limit)
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.TaskID, &n.TaskName, &n.ScheduleDate, &n.ShowCount, &n.Status, &n.Error, &n.SentAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// Prune deletes notifications older than the newest keep rows.
func (r *NotificationRepository) Prune(ctx context.Context, keep int) error {
	if keep <= 0 {
		return nil
	}
	_, err := r.db.Conn().ExecContext(ctx, `
		DELETE FROM notifications
		WHERE id NOT IN (
			SELECT id FROM notifications ORDER BY sent_at DESC LIMIT ?
		)`, keep,
	)
	if err != nil {
		return fmt.Errorf("prune notifications: %w", err)
	}
	return nil
}
