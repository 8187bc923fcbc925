package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kintai-hq/kintai-backend-go/internal/domain/employee"
	"github.com/kintai-hq/kintai-backend-go/internal/domain/notification"
	"github.com/kintai-hq/kintai-backend-go/internal/domain/user"
	"github.com/kintai-hq/kintai-backend-go/internal/pkg/email"
)

// mailedTypes are the notification types that also go out by email.
var mailedTypes = map[notification.NotificationType]bool{
	notification.TypeMonthApproved: true,
	notification.TypeMonthReturned: true,
	notification.TypeGoalCompleted: true,
}

type NotificationServiceImpl struct {
	notification.NotificationRepository
	employee.EmployeeRepository
	mailer *email.Service
	logger *slog.Logger
}

// NewNotificationService creates the best-effort notification fan-out.
// mailer may be nil when SMTP is not configured.
func NewNotificationService(
	notificationRepo notification.NotificationRepository,
	employeeRepo employee.EmployeeRepository,
	mailer *email.Service,
	logger *slog.Logger,
) notification.Service {
	return &NotificationServiceImpl{
		NotificationRepository: notificationRepo,
		EmployeeRepository:     employeeRepo,
		mailer:                 mailer,
		logger:                 logger,
	}
}

// QueueNotification implements notification.Service. Failures are logged
// and swallowed so notification delivery can never fail the workflow
// transition that triggered it.
func (s *NotificationServiceImpl) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	record := notification.Notification{
		RecipientID: req.RecipientID,
		SenderID:    req.SenderID,
		Type:        req.Type,
		Title:       req.Title,
		Message:     req.Message,
		Data:        req.Data,
	}

	if _, err := s.NotificationRepository.Create(ctx, record); err != nil {
		s.logger.Error("failed to store notification",
			slog.String("recipient_id", req.RecipientID),
			slog.String("type", string(req.Type)),
			slog.Any("error", err),
		)
	}

	s.sendEmail(ctx, req)

	return nil
}

// ListMyNotifications implements notification.Service.
func (s *NotificationServiceImpl) ListMyNotifications(ctx context.Context, actor user.Actor, limit int) ([]notification.NotificationResponse, error) {
	notifications, err := s.NotificationRepository.ListByRecipient(ctx, actor.EmployeeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	responses := make([]notification.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		responses = append(responses, notification.NewNotificationResponse(n))
	}

	return responses, nil
}

// MarkRead implements notification.Service.
func (s *NotificationServiceImpl) MarkRead(ctx context.Context, actor user.Actor, id string) error {
	if err := s.NotificationRepository.MarkRead(ctx, id, actor.EmployeeID); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (s *NotificationServiceImpl) sendEmail(ctx context.Context, req notification.CreateNotificationRequest) {
	if s.mailer == nil || !mailedTypes[req.Type] {
		return
	}

	recipient, err := s.EmployeeRepository.GetByID(ctx, req.RecipientID)
	if err != nil {
		s.logger.Error("failed to resolve notification recipient",
			slog.String("recipient_id", req.RecipientID),
			slog.Any("error", err),
		)
		return
	}

	if err := s.mailer.SendNotification(recipient.Email, recipient.FullName, req.Title, req.Message); err != nil {
		s.logger.Error("failed to send notification email",
			slog.String("recipient_id", req.RecipientID),
			slog.String("type", string(req.Type)),
			slog.Any("error", err),
		)
	}
}
