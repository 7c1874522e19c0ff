package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cairn/research-portal/portal-backend/pkg/security"
)

// Handler handles wallet session requests
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers auth routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/connect", h.connect)
		auth.POST("/disconnect", h.disconnect)
		auth.PUT("/role", h.setRole)
		auth.GET("/me", h.me)
	}
}

func (h *Handler) fail(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, security.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, ErrWalletUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": connectFailedMessage})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func requireSession(c *gin.Context) (string, bool) {
	id := c.GetString("session_id")
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wallet not connected"})
		return "", false
	}
	return id, true
}

// connect handles POST /api/v1/auth/connect
func (h *Handler) connect(c *gin.Context) {
	var req ConnectRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.service.Connect(c.Request.Context(), req.Role)
	if err != nil {
		h.fail(c, "Failed to connect wallet", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// disconnect handles POST /api/v1/auth/disconnect
func (h *Handler) disconnect(c *gin.Context) {
	id, ok := requireSession(c)
	if !ok {
		return
	}
	if err := h.service.Disconnect(c.Request.Context(), id); err != nil {
		h.fail(c, "Failed to disconnect wallet", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Wallet disconnected."})
}

// setRole handles PUT /api/v1/auth/role
func (h *Handler) setRole(c *gin.Context) {
	id, ok := requireSession(c)
	if !ok {
		return
	}
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, token, err := h.service.SetRole(c.Request.Context(), id, req.Role)
	if err != nil {
		h.fail(c, "Failed to switch role", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session, "token": token})
}

// me handles GET /api/v1/auth/me
func (h *Handler) me(c *gin.Context) {
	id, ok := requireSession(c)
	if !ok {
		return
	}
	me, err := h.service.Me(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "Failed to load session", err)
		return
	}
	c.JSON(http.StatusOK, me)
}
