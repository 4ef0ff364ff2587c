package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-console/internal/service"
	apperrors "github.com/spec-kit/support-console/pkg/util"
)

// NotificationsHandler serves the agent notification feed.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notifications *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// List GET /notifications?after=<seq>.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	var after uint64
	if raw := c.Query("after"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return apperrors.NewValidationError("invalid cursor", map[string]any{"after": raw})
		}
		after = v
	}
	items := h.notifications.Since(after)
	if items == nil {
		items = []service.Notification{}
	}
	return c.JSON(fiber.Map{"data": items})
}
