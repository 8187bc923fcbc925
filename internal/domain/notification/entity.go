package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeMonthRequestFiled NotificationType = "month_request_filed"
	TypeMonthApproved     NotificationType = "month_approved"
	TypeMonthReturned     NotificationType = "month_returned"
	TypeMonthRejected     NotificationType = "month_rejected"
	TypeGoalSubmitted     NotificationType = "goal_submitted"
	TypeGoalEvaluated     NotificationType = "goal_evaluated"
	TypeGoalApproved      NotificationType = "goal_approved"
	TypeGoalRejected      NotificationType = "goal_rejected"
	TypeGoalCompleted     NotificationType = "goal_completed"
	TypeMarkedAbsent      NotificationType = "marked_absent"
)

// Notification represents a notification entity
type Notification struct {
	ID          string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}
