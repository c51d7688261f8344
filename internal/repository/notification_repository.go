package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	"github.com/toolindex/toolindex-api/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, params CreateNotificationParams) (models.Notification, error)
	ListRecent(ctx context.Context, limit int) ([]models.Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkRead(ctx context.Context, notificationID string) (models.Notification, error)
	MarkAllRead(ctx context.Context) (int64, error)
}

type notificationRepository struct {
	db *sql.DB
}

type CreateNotificationParams struct {
	Type    models.NotificationType
	Message string
	ToolID  *string
}

func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

const notificationColumns = `id, notification_type, message, tool_id, is_read, created_at, read_at`

func (r *notificationRepository) Create(ctx context.Context, params CreateNotificationParams) (models.Notification, error) {
	query := `
		INSERT INTO directory.notifications (notification_type, message, tool_id, is_read)
		VALUES ($1, $2, $3, FALSE)
		RETURNING ` + notificationColumns

	var toolID interface{}
	if params.ToolID != nil && strings.TrimSpace(*params.ToolID) != "" {
		toolID = strings.TrimSpace(*params.ToolID)
	}

	row := r.db.QueryRowContext(ctx, query, params.Type, params.Message, toolID)
	notif, err := scanNotification(row)
	if err != nil {
		return models.Notification{}, errors.Wrap(err, "insert notification")
	}
	return notif, nil
}

func (r *notificationRepository) ListRecent(ctx context.Context, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT ` + notificationColumns + `
		FROM directory.notifications
		ORDER BY created_at DESC
		LIMIT $1
	`

	var notifications []models.Notification
	err := withReadRetry(ctx, func() error {
		rows, err := r.db.QueryContext(ctx, query, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		notifications = notifications[:0]
		for rows.Next() {
			notif, err := scanNotification(rows)
			if err != nil {
				return err
			}
			notifications = append(notifications, notif)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, errors.Wrap(err, "list notifications")
	}
	return notifications, nil
}

// UnreadCount counts unread rows over the whole table, not a page.
func (r *notificationRepository) UnreadCount(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM directory.notifications WHERE is_read = FALSE`

	var count int
	err := withReadRetry(ctx, func() error {
		return r.db.QueryRowContext(ctx, query).Scan(&count)
	})
	if err != nil {
		return 0, errors.Wrap(err, "count unread notifications")
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, notificationID string) (models.Notification, error) {
	query := `
		UPDATE directory.notifications
		SET is_read = TRUE, read_at = NOW()
		WHERE id = $1
		RETURNING ` + notificationColumns

	notif, err := scanNotification(r.db.QueryRowContext(ctx, query, strings.TrimSpace(notificationID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Notification{}, ErrNotFound
		}
		return models.Notification{}, errors.Wrap(err, "mark notification read")
	}
	return notif, nil
}

// MarkAllRead flips is_read only; read_at is stamped by single-item marks.
func (r *notificationRepository) MarkAllRead(ctx context.Context) (int64, error) {
	const query = `UPDATE directory.notifications SET is_read = TRUE WHERE is_read = FALSE`

	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, errors.Wrap(err, "mark all notifications read")
	}
	return res.RowsAffected()
}

func scanNotification(scanner interface {
	Scan(dest ...interface{}) error
}) (models.Notification, error) {
	var (
		notif  models.Notification
		toolID sql.NullString
		readAt sql.NullTime
	)

	if err := scanner.Scan(
		&notif.ID,
		&notif.Type,
		&notif.Message,
		&toolID,
		&notif.IsRead,
		&notif.CreatedAt,
		&readAt,
	); err != nil {
		return models.Notification{}, err
	}

	if toolID.Valid {
		val := toolID.String
		notif.ToolID = &val
	}
	if readAt.Valid {
		t := readAt.Time
		notif.ReadAt = &t
	}

	return notif, nil
}
