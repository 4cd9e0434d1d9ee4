package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/muednote/internal/domain"
)

// ListSessions lists sessions, optionally for one device.
// GET /v1/sessions
func (h *Handler) ListSessions(c echo.Context) error {
	limit := 50
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			limit = val
		}
	}
	deviceID := c.QueryParam("device_id")

	sessions, err := h.service.ListSessions(c.Request().Context(), deviceID, limit)
	if err != nil {
		return errorJSON(c, err)
	}
	if sessions == nil {
		sessions = []domain.Session{}
	}

	return c.JSON(http.StatusOK, domain.SessionsResponse{Sessions: sessions})
}

// GetSession retrieves a session by ID.
// GET /v1/sessions/:session_id
func (h *Handler) GetSession(c echo.Context) error {
	session, err := h.service.GetSession(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, session)
}
