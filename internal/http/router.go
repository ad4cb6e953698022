package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "persona/backend/internal/docs"
	"persona/backend/internal/handler"
	"persona/backend/internal/metrics"
	"persona/backend/internal/service"
)

func NewRouter(
	chatHandler *handler.ChatHandler,
	adminHandler *handler.AdminHandler,
	authHandler *handler.AuthHandler,
	authService service.AuthService,
	staticDir string,
	enableSwagger bool,
	ipExtractor echo.IPExtractor,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	if ipExtractor == nil {
		ipExtractor = echo.ExtractIPDirect()
	}
	e.IPExtractor = ipExtractor

	e.Use(middleware.Recover())
	e.Use(RequestLoggerMiddleware())

	if enableSwagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := e.Group("/api")
	chatHandler.RegisterRoutes(api)
	authHandler.RegisterPublicRoutes(api)

	admin := api.Group("", JWTAuthMiddleware(authService))
	adminHandler.RegisterRoutes(admin)
	authHandler.RegisterProtectedRoutes(admin)

	registerStatic(e, staticDir)
	return e
}
