package handlers

import (
	"net/http"

	"catalog-console/internal/access"
	"catalog-console/internal/models"
	"catalog-console/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth    *services.AuthService
	session *access.Session
}

func NewAuthHandler(auth *services.AuthService, session *access.Session) *AuthHandler {
	return &AuthHandler{auth: auth, session: session}
}

// Login accepts JSON or form credentials.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid login request",
			Message: err.Error(),
		})
		return
	}

	if _, err := h.auth.Login(c.Request.Context(), req.Username, req.Password); err != nil {
		respondError(c, "login failed", err)
		return
	}
	c.JSON(http.StatusOK, h.sessionResponse())
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context()); err != nil {
		respondError(c, "logout failed", err)
		return
	}
	c.JSON(http.StatusOK, h.sessionResponse())
}

func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessionResponse())
}

func (h *AuthHandler) sessionResponse() models.SessionResponse {
	role := h.session.Role()
	perms := make(map[string]bool, len(access.AllPermissions))
	for p, ok := range access.Permissions(role) {
		perms[string(p)] = ok
	}
	return models.SessionResponse{
		Authenticated: h.session.Authenticated(),
		Role:          string(role),
		Permissions:   perms,
	}
}
