package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ToggleVisibility flips the main window.
// POST /v1/windows/main/toggle
func (h *Handler) ToggleVisibility(c echo.Context) error {
	state, err := h.service.ToggleVisibility()
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, state)
}

// ShowOverlay shows the overlay window.
// POST /v1/windows/overlay/show
func (h *Handler) ShowOverlay(c echo.Context) error {
	state, err := h.service.ShowOverlay()
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, state)
}

// HideOverlay hides the overlay window.
// POST /v1/windows/overlay/hide
func (h *Handler) HideOverlay(c echo.Context) error {
	state, err := h.service.HideOverlay()
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, state)
}
