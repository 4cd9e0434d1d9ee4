// Package http provides the HTTP server for muednote.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/xiaot623/gogo/muednote/internal/service"
	v1 "github.com/xiaot623/gogo/muednote/internal/transport/http/v1"
	"github.com/xiaot623/gogo/muednote/internal/ws"
)

// NewServer creates the HTTP server carrying the command API and the
// frontend event stream.
func NewServer(svc *service.Service, wsServer *ws.Server) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	v1Handler := v1.NewHandler(svc)

	// Register Routes
	v1Handler.RegisterRoutes(e)
	if wsServer != nil {
		e.GET("/v1/events", wsServer.HandleWebSocket)
	}

	return e
}
