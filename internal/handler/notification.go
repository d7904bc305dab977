package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bibliodesk/library-service/pkg/auth"
)

func (h *Handler) ListMyNotifications(c echo.Context) error {
	id := auth.FromContext(c.Request().Context())
	items, err := h.notificationSvc.ListForIdentity(c.Request().Context(), id.Email)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListMyUnreadNotifications(c echo.Context) error {
	id := auth.FromContext(c.Request().Context())
	items, err := h.notificationSvc.ListUnreadForIdentity(c.Request().Context(), id.Email)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) MarkNotificationRead(c echo.Context) error {
	notifID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	id := auth.FromContext(c.Request().Context())
	n, err := h.notificationSvc.MarkRead(c.Request().Context(), notifID, id.Email)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) DeleteNotification(c echo.Context) error {
	notifID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	id := auth.FromContext(c.Request().Context())
	if err := h.notificationSvc.Delete(c.Request().Context(), notifID, id.Email); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// OverdueAlert is the manual staff broadcast about loans overdue by
// more than a week.
func (h *Handler) OverdueAlert(c echo.Context) error {
	if err := h.notificationSvc.NotifyLibrariansAboutOverdueBeyondOneWeek(c.Request().Context()); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
