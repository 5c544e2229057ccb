package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yellowpin/yellowpin-backend/internal/logger"
	"github.com/yellowpin/yellowpin-backend/internal/requestdata"
	"github.com/yellowpin/yellowpin-backend/internal/services"
)

type NotificationHandler struct {
	log           *logger.Logger
	notifications services.NotificationService
}

func NewNotificationHandler(log *logger.Logger, notifications services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		log:           log.With("handler", "NotificationHandler"),
		notifications: notifications,
	}
}

// GET /api/notifications/unread
func (nh *NotificationHandler) GetUnread(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	summary, err := nh.notifications.Summarize(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, summary)
}
