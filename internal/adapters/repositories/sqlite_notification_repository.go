package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"freight-order-service/internal/domain"
	"time"
)

type SqliteNotificationRepository struct{ DB *sql.DB }

func NewSqliteNotificationRepository(db *sql.DB) *SqliteNotificationRepository {
	return &SqliteNotificationRepository{DB: db}
}

func (r *SqliteNotificationRepository) CreateNotification(ctx context.Context, n *domain.Notification) error {
	if r.DB == nil {
		return errors.New("sqlite notification repository: DB is nil")
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.Type == "" {
		n.Type = domain.NotifyInfo
	}

	res, err := r.DB.ExecContext(ctx, `
	INSERT INTO notifications (user_id, title, message, type, read, created_at)
	VALUES (?, ?, ?, ?, ?, ?);
	`, n.UserID, n.Title, n.Message, string(n.Type), boolInt(n.Read), timeArg(&n.CreatedAt))
	if err != nil {
		return fmt.Errorf("create notification for user %d: %w", n.UserID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create notification: last insert id: %w", err)
	}
	n.ID = id
	return nil
}

// Return the user's notifications, newest first.
func (r *SqliteNotificationRepository) ListNotifications(ctx context.Context, userID int64) ([]domain.Notification, error) {
	if r.DB == nil {
		return nil, errors.New("sqlite notification repository: DB is nil")
	}

	rows, err := r.DB.QueryContext(ctx, `
	SELECT id, user_id, title, message, type, read, created_at
	FROM notifications WHERE user_id = ?
	ORDER BY created_at DESC, id DESC;
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications for user %d: %w", userID, err)
	}
	defer rows.Close()

	out := make([]domain.Notification, 0, 8)
	for rows.Next() {
		var n domain.Notification
		var typ string
		var read int
		var created sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &typ, &read, &created); err != nil {
			return nil, fmt.Errorf("list notifications: scan row: %w", err)
		}
		n.Type = domain.NotificationType(typ)
		n.Read = read != 0
		if t := parseTime(created); t != nil {
			n.CreatedAt = *t
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notifications: row iteration: %w", err)
	}
	return out, nil
}

// Mark one of the user's notifications read. Another user's id is ErrNotFound.
func (r *SqliteNotificationRepository) MarkRead(ctx context.Context, userID, id int64) error {
	if r.DB == nil {
		return errors.New("sqlite notification repository: DB is nil")
	}

	res, err := r.DB.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?;`, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification %d read: %w", id, err)
	}
	return requireRow(res, fmt.Sprintf("mark notification %d read", id))
}
