package notifications

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ConnectionHandler upgrades a request into a live toast stream for wallet
type ConnectionHandler interface {
	HandleConnection(w http.ResponseWriter, r *http.Request, wallet string) error
}

// Handler serves toast listing, dismissal and the websocket stream
type Handler struct {
	service *Service
	conns   ConnectionHandler
	logger  *zap.Logger
}

func NewHandler(service *Service, conns ConnectionHandler, logger *zap.Logger) *Handler {
	return &Handler{service: service, conns: conns, logger: logger}
}

// RegisterRoutes registers notification routes. The group must run the
// session middleware.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/notifications")
	{
		notifications.GET("", h.listToasts)
		notifications.DELETE("/:id", h.dismissToast)
		if h.conns != nil {
			notifications.GET("/ws", h.stream)
		}
	}
}

// listToasts handles GET /api/v1/notifications
func (h *Handler) listToasts(c *gin.Context) {
	wallet := c.GetString("wallet")
	c.JSON(http.StatusOK, gin.H{"toasts": h.service.List(c.Request.Context(), wallet)})
}

// dismissToast handles DELETE /api/v1/notifications/:id
func (h *Handler) dismissToast(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid toast ID"})
		return
	}

	if err := h.service.Dismiss(c.Request.Context(), c.GetString("wallet"), id); err != nil {
		if errors.Is(err, ErrToastNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// stream handles GET /api/v1/notifications/ws
func (h *Handler) stream(c *gin.Context) {
	if err := h.conns.HandleConnection(c.Writer, c.Request, c.GetString("wallet")); err != nil {
		h.logger.Warn("Failed to open toast stream", zap.Error(err))
	}
}
