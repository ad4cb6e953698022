package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"persona/backend/internal/ratelimit"
	"persona/backend/internal/service"
	"persona/backend/pkg/logger"
)

const (
	HeaderDailyLimit      = "X-RateLimit-Daily-Limit"
	HeaderDailyRemaining  = "X-RateLimit-Daily-Remaining"
	HeaderHourlyLimit     = "X-RateLimit-Hourly-Limit"
	HeaderHourlyRemaining = "X-RateLimit-Hourly-Remaining"
)

type errorResponse struct {
	Error string `json:"error"`
}

type quotaErrorResponse struct {
	Error   string `json:"error"`
	Window  string `json:"window"`
	ResetAt string `json:"resetAt"`
}

type quotaResponse struct {
	DailyLimit      int    `json:"dailyLimit"`
	DailyRemaining  int    `json:"dailyRemaining"`
	HourlyLimit     int    `json:"hourlyLimit"`
	HourlyRemaining int    `json:"hourlyRemaining"`
	DailyResetAt    string `json:"dailyResetAt,omitempty"`
	HourlyResetAt   string `json:"hourlyResetAt,omitempty"`
}

func Error(c echo.Context, status int, message string) error {
	return c.JSON(status, errorResponse{Error: message})
}

func writeServiceError(c echo.Context, err error) error {
	var quotaErr *service.QuotaExceededError
	switch {
	case errors.As(err, &quotaErr):
		return writeQuotaExceeded(c, quotaErr.Decision)
	case errors.Is(err, service.ErrInvalid):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "resource not found"})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, errorResponse{Error: "conflict"})
	case errors.Is(err, service.ErrQuotaExceeded):
		return c.JSON(http.StatusTooManyRequests, errorResponse{Error: "quota exceeded"})
	case errors.Is(err, service.ErrUpstreamUnavailable):
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "assistant unavailable"})
	default:
		logger.Error("request failed", "path", c.Path(), "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// writeQuotaExceeded answers 429 with the limiting window and when it resets.
func writeQuotaExceeded(c echo.Context, d ratelimit.Decision) error {
	resetAt := d.ResetAt()
	if !resetAt.IsZero() {
		c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(resetAt, time.Now())))
	}
	return c.JSON(http.StatusTooManyRequests, quotaErrorResponse{
		Error:   "quota exceeded",
		Window:  string(d.LimitingWindow),
		ResetAt: formatTime(resetAt),
	})
}

func retryAfterSeconds(resetAt, now time.Time) int {
	seconds := int(math.Ceil(resetAt.Sub(now).Seconds()))
	if seconds < 1 {
		return 1
	}
	return seconds
}

func setQuotaHeaders(c echo.Context, h ratelimit.Headers) {
	header := c.Response().Header()
	header.Set(HeaderDailyLimit, strconv.Itoa(h.DailyLimit))
	header.Set(HeaderDailyRemaining, strconv.Itoa(h.DailyRemaining))
	header.Set(HeaderHourlyLimit, strconv.Itoa(h.HourlyLimit))
	header.Set(HeaderHourlyRemaining, strconv.Itoa(h.HourlyRemaining))
}

func toQuotaResponse(h ratelimit.Headers) quotaResponse {
	return quotaResponse{
		DailyLimit:      h.DailyLimit,
		DailyRemaining:  h.DailyRemaining,
		HourlyLimit:     h.HourlyLimit,
		HourlyRemaining: h.HourlyRemaining,
		DailyResetAt:    formatTime(h.DailyResetAt),
		HourlyResetAt:   formatTime(h.HourlyResetAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func idPtrToString(id *int64) *string {
	if id == nil {
		return nil
	}
	s := strconv.FormatInt(*id, 10)
	return &s
}
