package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/muednote/internal/domain"
)

// ProcessFragment runs intake for one fragment.
// POST /v1/fragments
func (h *Handler) ProcessFragment(c echo.Context) error {
	var fragment domain.Fragment
	if err := c.Bind(&fragment); err != nil {
		return c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: "invalid request body"})
	}

	processed, err := h.service.ProcessFragment(c.Request().Context(), fragment)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, processed)
}

// FetchMessages returns the most recent messages, newest first.
// GET /v1/messages
func (h *Handler) FetchMessages(c echo.Context) error {
	messages, err := h.service.FetchMessages(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	if messages == nil {
		messages = []domain.Message{}
	}

	return c.JSON(http.StatusOK, domain.MessagesResponse{Messages: messages})
}

// DeleteMessage removes a message. Unknown IDs are not an error.
// DELETE /v1/messages/:message_id
func (h *Handler) DeleteMessage(c echo.Context) error {
	if err := h.service.DeleteMessage(c.Request().Context(), c.Param("message_id")); err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, domain.AckResponse{OK: true})
}
