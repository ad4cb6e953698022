package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"persona/backend/internal/service"
)

type ChatHandler struct {
	service service.ChatService
	devices DeviceResolver
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
}

type chatResponse struct {
	Reply     string        `json:"reply"`
	SessionID string        `json:"sessionId"`
	Token     string        `json:"token"`
	Quota     quotaResponse `json:"quota"`
}

func NewChatHandler(service service.ChatService, devices DeviceResolver) *ChatHandler {
	return &ChatHandler{service: service, devices: devices}
}

func (h *ChatHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/chat", h.Chat)
	g.GET("/chat/status", h.Status)
}

// Chat godoc
//
//	@Summary		Send a message to the persona
//	@Tags			chat
//	@Accept			json
//	@Produce		json
//	@Param			X-Client-Token	header		string		false	"Client token"
//	@Param			request			body		chatRequest	true	"Message"
//	@Success		200				{object}	chatResponse
//	@Failure		400				{object}	errorResponse
//	@Failure		429				{object}	quotaErrorResponse
//	@Failure		503				{object}	errorResponse
//	@Router			/chat [post]
func (h *ChatHandler) Chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}

	result, err := h.service.Chat(c.Request().Context(), service.ChatRequest{
		Context:   requestContext(c, h.devices, req.Token),
		SessionID: req.SessionID,
		Message:   req.Message,
	})
	if err != nil {
		return writeServiceError(c, err)
	}

	setQuotaHeaders(c, result.Quota)
	c.Response().Header().Set(HeaderClientToken, result.Token)
	return c.JSON(http.StatusOK, chatResponse{
		Reply:     result.Reply,
		SessionID: result.SessionID,
		Token:     result.Token,
		Quota:     toQuotaResponse(result.Quota),
	})
}

// Status godoc
//
//	@Summary		Remaining quota of the caller
//	@Tags			chat
//	@Produce		json
//	@Param			X-Client-Token	header		string	false	"Client token"
//	@Success		200				{object}	quotaResponse
//	@Router			/chat/status [get]
func (h *ChatHandler) Status(c echo.Context) error {
	headers, err := h.service.Status(c.Request().Context(), requestContext(c, h.devices, c.QueryParam("token")))
	if err != nil {
		return writeServiceError(c, err)
	}
	setQuotaHeaders(c, headers)
	return c.JSON(http.StatusOK, toQuotaResponse(headers))
}
