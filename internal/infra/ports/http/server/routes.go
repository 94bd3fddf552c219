package server

import (
	"github.com/labstack/echo/v4"

	"github.com/mockmate/interviewroom/internal/application/config"
	"github.com/mockmate/interviewroom/internal/infra/ports/http/handlers"
	"github.com/mockmate/interviewroom/internal/infra/ports/http/middleware"
)

func New(
	cfg *config.Config,
	interviewHandler *handlers.InterviewHandler,
	wsHandler *handlers.WebSocketHandler,
) *echo.Echo {
	e := echo.New()

	e.HideBanner = true

	e.Use(middleware.SlogLogger())
	e.Use(middleware.PrometheusMiddleware())

	api := e.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.POST("/interviews", interviewHandler.Create)
			v1.GET("/interviews/:id", interviewHandler.Get)
			v1.POST("/interviews/:id/join", interviewHandler.Join)
			v1.POST("/interviews/:id/complete", interviewHandler.Complete)

			v1.GET("/ws", wsHandler.Handle, middleware.RoomTokenMiddleware(cfg.JWTSecret))
		}
	}

	return e
}
