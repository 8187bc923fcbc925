package notification

import (
	"context"

	"github.com/kintai-hq/kintai-backend-go/internal/domain/user"
)

// CreateNotificationRequest carries one notification to deliver.
type CreateNotificationRequest struct {
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
}

// Service delivers notifications after workflow transitions. Delivery is
// best-effort: implementations log failures and never propagate them, so
// a failed notification can never fail the transition that triggered it.
type Service interface {
	// QueueNotification stores an in-app notification and sends any
	// configured email. Always returns nil.
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error

	// ListMyNotifications retrieves the actor's notifications, newest first
	ListMyNotifications(ctx context.Context, actor user.Actor, limit int) ([]NotificationResponse, error)

	// MarkRead marks one of the actor's notifications as read
	MarkRead(ctx context.Context, actor user.Actor, id string) error
}
