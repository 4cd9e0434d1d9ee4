package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/muednote/internal/domain"
)

// EmitSignal pushes a signal to connected frontends, as a global hotkey would.
// POST /v1/signals/:name
func (h *Handler) EmitSignal(c echo.Context) error {
	resp, err := h.service.EmitSignal(domain.Signal(c.Param("name")))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Shortcuts lists the hotkey bindings.
// GET /v1/shortcuts
func (h *Handler) Shortcuts(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.ShortcutsResponse{Shortcuts: h.service.Shortcuts()})
}
