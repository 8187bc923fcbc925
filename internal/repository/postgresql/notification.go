package postgresql

import (
	"context"
	"fmt"

	"github.com/kintai-hq/kintai-backend-go/internal/domain/notification"
	"github.com/kintai-hq/kintai-backend-go/internal/pkg/database"
)

type notificationRepository struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) notification.NotificationRepository {
	return &notificationRepository{db: db}
}

// Create implements notification.NotificationRepository.
func (r *notificationRepository) Create(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO notifications (recipient_id, sender_id, type, title, message, data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		n.RecipientID,
		n.SenderID,
		n.Type,
		n.Title,
		n.Message,
		n.Data,
	).Scan(&n.ID, &n.CreatedAt)

	if err != nil {
		return notification.Notification{}, fmt.Errorf("failed to create notification: %w", err)
	}

	return n, nil
}

// ListByRecipient implements notification.NotificationRepository.
func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]notification.Notification, error) {
	q := GetQuerier(ctx, r.db)

	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, recipient_id, sender_id, type, title, message, data, is_read, read_at, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := q.Query(ctx, query, recipientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []notification.Notification
	for rows.Next() {
		var n notification.Notification
		err := rows.Scan(
			&n.ID, &n.RecipientID, &n.SenderID, &n.Type, &n.Title, &n.Message,
			&n.Data, &n.IsRead, &n.ReadAt, &n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// MarkRead implements notification.NotificationRepository.
func (r *notificationRepository) MarkRead(ctx context.Context, id string, recipientID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE notifications
		SET is_read = TRUE,
			read_at = NOW()
		WHERE id = $1
		  AND recipient_id = $2
	`

	if _, err := q.Exec(ctx, query, id, recipientID); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	return nil
}
