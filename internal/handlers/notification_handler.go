package handlers

import (
	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification requests
type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
}

func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	views, err := h.notifications.ListForReceiver(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respondOK(c, views)
}
