package handler

import (
	"context"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"persona/backend/internal/identity"
	"persona/backend/internal/model"
)

// HeaderClientToken carries the persistent client token.
const HeaderClientToken = "X-Client-Token"

const maxListLimit = 1000

// DeviceResolver derives coarse device and locale data of a caller.
type DeviceResolver interface {
	Lookup(ctx context.Context, addr, userAgent string) model.DeviceInfo
}

// requestContext collects what the quota engine needs from the request. The
// header token wins over one supplied in the body.
func requestContext(c echo.Context, devices DeviceResolver, bodyToken string) identity.RequestContext {
	req := c.Request()
	token := strings.TrimSpace(req.Header.Get(HeaderClientToken))
	if token == "" {
		token = strings.TrimSpace(bodyToken)
	}

	addr := c.RealIP()
	var device model.DeviceInfo
	if devices != nil {
		device = devices.Lookup(req.Context(), addr, req.UserAgent())
	} else {
		device = identity.ParseUserAgent(req.UserAgent())
	}
	return identity.RequestContext{Addr: addr, Token: token, Device: device}
}

// parseLimitParam reads an optional positive limit query parameter.
func parseLimitParam(c echo.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 || limit > maxListLimit {
		return 0, strconv.ErrRange
	}
	return limit, nil
}
