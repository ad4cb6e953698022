package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"persona/backend/internal/service"
)

// AuthCookieName is the cookie carrying the admin token.
const AuthCookieName = "persona_auth"

type AuthHandler struct {
	service service.AuthService
}

type loginRequest struct {
	Password string `json:"password"`
}

type authResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) RegisterPublicRoutes(g *echo.Group) {
	g.POST("/admin/login", h.Login)
}

func (h *AuthHandler) RegisterProtectedRoutes(g *echo.Group) {
	g.POST("/admin/logout", h.Logout)
}

// Login godoc
//
//	@Summary	Exchange the admin password for a token
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Param		request	body		loginRequest	true	"Password"
//	@Success	200		{object}	authResponse
//	@Failure	401		{object}	errorResponse
//	@Router		/admin/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}

	resp, err := h.service.Login(c.Request().Context(), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordRequired):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "password is required"})
		case errors.Is(err, service.ErrInvalidPassword):
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid password"})
		case errors.Is(err, service.ErrAdminDisabled):
			return c.JSON(http.StatusForbidden, errorResponse{Error: "admin login is disabled"})
		}
		return writeServiceError(c, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     AuthCookieName,
		Value:    resp.Token,
		Path:     "/",
		Expires:  resp.ExpiresAt,
		HttpOnly: true,
		Secure:   c.Scheme() == "https",
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, authResponse{Token: resp.Token, ExpiresAt: formatTime(resp.ExpiresAt)})
}

// Logout godoc
//
//	@Summary	Clear the admin cookie
//	@Tags		admin
//	@Success	204
//	@Security	BearerAuth
//	@Router		/admin/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
	return c.NoContent(http.StatusNoContent)
}
