package notification

import "context"

// NotificationRepository defines data access methods for notifications.
type NotificationRepository interface {
	// Create inserts a notification
	Create(ctx context.Context, notification Notification) (Notification, error)

	// ListByRecipient retrieves notifications for an employee, newest first
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]Notification, error)

	// MarkRead marks a notification as read
	MarkRead(ctx context.Context, id string, recipientID string) error
}
