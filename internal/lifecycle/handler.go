package lifecycle

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler exposes the maintenance jobs
type Handler struct {
	manager *Manager
	logger  *zap.Logger
}

func NewHandler(manager *Manager, logger *zap.Logger) *Handler {
	return &Handler{manager: manager, logger: logger}
}

// RegisterRoutes registers lifecycle routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	lifecycle := router.Group("/lifecycle")
	{
		lifecycle.GET("/jobs", h.jobs)
		lifecycle.POST("/run", h.run)
	}
}

// jobs handles GET /api/v1/lifecycle/jobs
func (h *Handler) jobs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": h.manager.Status()})
}

// run handles POST /api/v1/lifecycle/run
func (h *Handler) run(c *gin.Context) {
	results := h.manager.RunNow(c.Request.Context())
	h.logger.Info("Lifecycle run triggered", zap.Int("tasks", len(results)))
	c.JSON(http.StatusOK, gin.H{"jobs": results})
}
