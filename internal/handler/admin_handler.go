package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"persona/backend/internal/model"
	"persona/backend/internal/service"
)

type AdminHandler struct {
	service service.AdminService
}

type usageRecordResponse struct {
	Identifier    string `json:"identifier"`
	Kind          string `json:"kind"`
	DailyCount    int    `json:"dailyCount"`
	HourlyCount   int    `json:"hourlyCount"`
	DailyResetAt  string `json:"dailyResetAt"`
	HourlyResetAt string `json:"hourlyResetAt"`
	UpdatedAt     string `json:"updatedAt,omitempty"`
}

type usageResponse struct {
	Backend  string                `json:"backend"`
	Degraded bool                  `json:"degraded"`
	Records  []usageRecordResponse `json:"records"`
}

type userResponse struct {
	ID            string  `json:"id"`
	Name          *string `json:"name,omitempty"`
	Email         *string `json:"email,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	FirstSeenAddr string  `json:"firstSeenAddr"`
	LastSeenAddr  string  `json:"lastSeenAddr"`
	Browser       string  `json:"browser,omitempty"`
	OS            string  `json:"os,omitempty"`
	Country       string  `json:"country,omitempty"`
	City          string  `json:"city,omitempty"`
	MessageCount  int     `json:"messageCount"`
	Sessions      int     `json:"sessions"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

type questionResponse struct {
	ID        string  `json:"id"`
	UserID    *string `json:"userId,omitempty"`
	Question  string  `json:"question"`
	CreatedAt string  `json:"createdAt"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Backend   string `json:"backend"`
	Degraded  bool   `json:"degraded"`
	Database  string `json:"database"`
	Provider  string `json:"provider"`
	CheckedAt string `json:"checkedAt"`
}

func NewAdminHandler(service service.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/admin/usage", h.Usage)
	g.GET("/admin/users", h.Users)
	g.GET("/admin/questions", h.Questions)
	g.GET("/admin/health", h.Health)
}

// Usage godoc
//
//	@Summary	Rate limit counters, busiest first
//	@Tags		admin
//	@Produce	json
//	@Param		limit	query		int	false	"Maximum records"
//	@Success	200		{object}	usageResponse
//	@Security	BearerAuth
//	@Router		/admin/usage [get]
func (h *AdminHandler) Usage(c echo.Context) error {
	limit, err := parseLimitParam(c, "limit")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	report, err := h.service.Usage(c.Request().Context(), limit)
	if err != nil {
		return writeServiceError(c, err)
	}
	records := make([]usageRecordResponse, 0, len(report.Records))
	for _, record := range report.Records {
		records = append(records, toUsageRecordResponse(record))
	}
	return c.JSON(http.StatusOK, usageResponse{
		Backend:  report.Backend,
		Degraded: report.Degraded,
		Records:  records,
	})
}

// Users godoc
//
//	@Summary	Visitor profiles, most recently active first
//	@Tags		admin
//	@Produce	json
//	@Param		limit	query	int	false	"Maximum users"
//	@Success	200		{array}	userResponse
//	@Security	BearerAuth
//	@Router		/admin/users [get]
func (h *AdminHandler) Users(c echo.Context) error {
	limit, err := parseLimitParam(c, "limit")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	users, err := h.service.Users(c.Request().Context(), limit)
	if err != nil {
		return writeServiceError(c, err)
	}
	response := make([]userResponse, 0, len(users))
	for _, user := range users {
		response = append(response, toUserResponse(user))
	}
	return c.JSON(http.StatusOK, response)
}

// Questions godoc
//
//	@Summary	Questions the persona could not answer
//	@Tags		admin
//	@Produce	json
//	@Param		limit	query	int	false	"Maximum questions"
//	@Success	200		{array}	questionResponse
//	@Security	BearerAuth
//	@Router		/admin/questions [get]
func (h *AdminHandler) Questions(c echo.Context) error {
	limit, err := parseLimitParam(c, "limit")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	questions, err := h.service.Questions(c.Request().Context(), limit)
	if err != nil {
		return writeServiceError(c, err)
	}
	response := make([]questionResponse, 0, len(questions))
	for _, q := range questions {
		response = append(response, questionResponse{
			ID:        strconv.FormatInt(q.ID, 10),
			UserID:    idPtrToString(q.UserID),
			Question:  q.Question,
			CreatedAt: formatTime(q.CreatedAt),
		})
	}
	return c.JSON(http.StatusOK, response)
}

// Health godoc
//
//	@Summary	Dependency health
//	@Tags		admin
//	@Produce	json
//	@Success	200	{object}	healthResponse
//	@Failure	503	{object}	healthResponse
//	@Security	BearerAuth
//	@Router		/admin/health [get]
func (h *AdminHandler) Health(c echo.Context) error {
	report := h.service.Health(c.Request().Context())
	status := http.StatusOK
	if report.Database != "ok" {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, healthResponse{
		Status:    report.Status,
		Backend:   report.Backend,
		Degraded:  report.Degraded,
		Database:  report.Database,
		Provider:  report.Provider,
		CheckedAt: formatTime(report.CheckedAt),
	})
}

func toUsageRecordResponse(record model.RateLimitRecord) usageRecordResponse {
	return usageRecordResponse{
		Identifier:    record.Identifier,
		Kind:          string(record.Kind),
		DailyCount:    record.DailyCount,
		HourlyCount:   record.HourlyCount,
		DailyResetAt:  formatTime(record.DailyResetAt),
		HourlyResetAt: formatTime(record.HourlyResetAt),
		UpdatedAt:     formatTime(record.UpdatedAt),
	}
}

func toUserResponse(user service.UserSummary) userResponse {
	return userResponse{
		ID:            strconv.FormatInt(user.ID, 10),
		Name:          user.Name,
		Email:         user.Email,
		Notes:         user.Notes,
		FirstSeenAddr: user.FirstSeenAddr,
		LastSeenAddr:  user.LastSeenAddr,
		Browser:       user.Device.Browser,
		OS:            user.Device.OS,
		Country:       user.Device.Country,
		City:          user.Device.City,
		MessageCount:  user.MessageCount,
		Sessions:      user.Sessions,
		CreatedAt:     formatTime(user.CreatedAt),
		UpdatedAt:     formatTime(user.UpdatedAt),
	}
}
