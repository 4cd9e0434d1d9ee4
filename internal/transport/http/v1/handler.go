// Package v1 provides the HTTP handlers for the muednote command API.
package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/muednote/internal/domain"
	"github.com/xiaot623/gogo/muednote/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Capture
	e.POST("/v1/fragments", h.ProcessFragment)
	e.GET("/v1/messages", h.FetchMessages)
	e.DELETE("/v1/messages/:message_id", h.DeleteMessage)

	// Sessions
	e.GET("/v1/sessions", h.ListSessions)
	e.GET("/v1/sessions/:session_id", h.GetSession)

	// Windows
	e.POST("/v1/windows/main/toggle", h.ToggleVisibility)
	e.POST("/v1/windows/overlay/show", h.ShowOverlay)
	e.POST("/v1/windows/overlay/hide", h.HideOverlay)

	// Signals
	e.POST("/v1/signals/:name", h.EmitSignal)
	e.GET("/v1/shortcuts", h.Shortcuts)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	if err := h.service.Health(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// errorJSON writes err as {"error": "..."} with a status derived from its kind.
func errorJSON(c echo.Context, err error) error {
	return c.JSON(statusFor(err), domain.ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrUnknownSignal):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrFragmentRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
