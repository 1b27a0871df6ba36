package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/engineers4hire/jobdesk/internal/auth"
	"github.com/engineers4hire/jobdesk/internal/dtos"
)

// AuthHandler exposes the session lifecycle to the presentation layer.
type AuthHandler struct {
	Session *auth.Session
}

func NewAuthHandler(session *auth.Session) *AuthHandler {
	return &AuthHandler{Session: session}
}

// Login is the POST /auth/login endpoint for an explicit user login.
func (h *AuthHandler) Login(c *gin.Context) {
	if err := h.Session.Login(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Login failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.status()})
}

// Logout is the POST /auth/logout endpoint. Notes are not touched.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Session.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Status is the GET /auth/status endpoint.
func (h *AuthHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.status())
}

func (h *AuthHandler) status() dtos.AuthStatus {
	return dtos.AuthStatus{
		State:           string(h.Session.State()),
		IsAuthenticated: h.Session.IsAuthenticated(),
		IsLoading:       h.Session.IsLoading(),
		Notice:          h.Session.Notice(),
	}
}
