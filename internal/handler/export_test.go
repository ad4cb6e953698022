package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"persona/backend/internal/identity"
)

// Export for testing
type ChatResponse = chatResponse
type QuotaResponse = quotaResponse
type QuotaErrorResponse = quotaErrorResponse
type UsageResponse = usageResponse
type UserResponse = userResponse
type QuestionResponse = questionResponse
type HealthResponse = healthResponse
type AuthResponseDTO = authResponse

var WriteServiceError = writeServiceError
var IDPtrToString = idPtrToString
var FormatTime = formatTime
var ParseLimitParam = parseLimitParam

func RetryAfterSeconds(resetAt, now time.Time) int {
	return retryAfterSeconds(resetAt, now)
}

func RequestContext(c echo.Context, devices DeviceResolver, bodyToken string) identity.RequestContext {
	return requestContext(c, devices, bodyToken)
}
