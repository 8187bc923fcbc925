package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kintai-hq/kintai-backend-go/internal/domain/notification"
	"github.com/kintai-hq/kintai-backend-go/internal/handler/http/response"
)

type NotificationHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	MarkRead(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	notificationService notification.Service
}

func NewNotificationHandler(notificationService notification.Service) NotificationHandler {
	return &notificationHandlerImpl{
		notificationService: notificationService,
	}
}

// List implements NotificationHandler.
func (h *notificationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.notificationService.ListMyNotifications(r.Context(), actor, intQuery(r, "limit"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// MarkRead implements NotificationHandler.
func (h *notificationHandlerImpl) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Notification marked read", nil)
}
