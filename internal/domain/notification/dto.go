package notification

import "time"

type NotificationResponse struct {
	ID        string                 `json:"id"`
	SenderID  *string                `json:"sender_id,omitempty"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	IsRead    bool                   `json:"is_read"`
	ReadAt    *string                `json:"read_at,omitempty"`
	CreatedAt string                 `json:"created_at"`
}

// NewNotificationResponse converts a Notification entity to its response form.
func NewNotificationResponse(n Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID,
		SenderID:  n.SenderID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
	if n.ReadAt != nil {
		s := n.ReadAt.Format(time.RFC3339)
		resp.ReadAt = &s
	}
	return resp
}
