package http

import "github.com/labstack/echo/v4"

func RegisterStatic(e *echo.Echo, dir string) {
	registerStatic(e, dir)
}

var BearerToken = bearerToken
