package http

import (
	"log/slog"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"persona/backend/internal/handler"
	"persona/backend/internal/service"
	"persona/backend/pkg/logger"
)

const AuthCookieName = handler.AuthCookieName

// JWTAuthMiddleware accepts a bearer token or the admin cookie.
func JWTAuthMiddleware(auth service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				if cookie, err := c.Cookie(AuthCookieName); err == nil {
					token = cookie.Value
				}
			}
			if token == "" {
				return handler.Error(c, nethttp.StatusUnauthorized, "authentication required")
			}

			ok, err := auth.ValidateToken(token)
			if err != nil || !ok {
				return handler.Error(c, nethttp.StatusUnauthorized, "invalid token")
			}
			return next(c)
		}
	}
}

func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequestLoggerMiddleware logs one line per request, at a level that follows
// the response status.
func RequestLoggerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			level := slog.LevelDebug
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}
			if !logger.Enabled(level) {
				return nil
			}

			req := c.Request()
			logger.L().Log(req.Context(), level, "http request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", status,
				"remote", c.RealIP(),
				"duration", time.Since(start),
			)
			return nil
		}
	}
}
