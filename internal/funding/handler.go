package funding

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cairn/research-portal/portal-backend/internal/projects"
)

// Handler handles HTTP requests for funding
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers funding routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	funding := router.Group("/funding")
	{
		funding.POST("/projects/:id", h.instantFund)
		funding.GET("/history", h.history)
		funding.GET("/metrics", h.funderMetrics)
		funding.GET("/scientist", h.scientistFunding)
		funding.GET("/export", h.export)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidFormat), errors.Is(err, projects.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, projects.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, projects.ErrClosed), errors.Is(err, projects.ErrInvalidTransition):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(c *gin.Context, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(msg, zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func requireWallet(c *gin.Context) (string, bool) {
	wallet := c.GetString("wallet")
	if wallet == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wallet not connected"})
		return "", false
	}
	return wallet, true
}

// historyFilter reads ?project= and ?funder=; funder=me selects the caller
func historyFilter(c *gin.Context) Filter {
	filter := Filter{ProjectID: c.Query("project"), FunderWallet: c.Query("funder")}
	if filter.FunderWallet == "me" {
		filter.FunderWallet = c.GetString("wallet")
	}
	return filter
}

// instantFund handles POST /api/v1/funding/projects/:id
func (h *Handler) instantFund(c *gin.Context) {
	wallet, ok := requireWallet(c)
	if !ok {
		return
	}
	var req FundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.InstantFund(c.Request.Context(), wallet, c.Param("id"), req.Amount)
	if err != nil {
		h.fail(c, "Failed to fund project", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// history handles GET /api/v1/funding/history
func (h *Handler) history(c *gin.Context) {
	filter := historyFilter(c)
	if c.Query("funder") == "me" && filter.FunderWallet == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wallet not connected"})
		return
	}
	events, err := h.service.History(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, "Failed to list funding history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": events})
}

// funderMetrics handles GET /api/v1/funding/metrics
func (h *Handler) funderMetrics(c *gin.Context) {
	wallet, ok := requireWallet(c)
	if !ok {
		return
	}
	metrics, err := h.service.FunderMetrics(c.Request.Context(), wallet)
	if err != nil {
		h.fail(c, "Failed to compute funder metrics", err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// scientistFunding handles GET /api/v1/funding/scientist
func (h *Handler) scientistFunding(c *gin.Context) {
	wallet, ok := requireWallet(c)
	if !ok {
		return
	}
	rows, err := h.service.ScientistFunding(c.Request.Context(), wallet)
	if err != nil {
		h.fail(c, "Failed to load scientist funding", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": rows})
}

// export handles GET /api/v1/funding/export?format=csv|xlsx
func (h *Handler) export(c *gin.Context) {
	format := Format(c.DefaultQuery("format", string(FormatCSV)))
	filter := historyFilter(c)

	var buf bytes.Buffer
	if err := h.service.Export(c.Request.Context(), filter, format, &buf); err != nil {
		h.fail(c, "Failed to export funding history", err)
		return
	}

	filename := "funding-history-" + time.Now().UTC().Format("20060102") + "." + string(format)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
