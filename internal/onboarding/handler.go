package onboarding

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles identity onboarding requests
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers onboarding routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	onboarding := router.Group("/onboarding")
	{
		onboarding.GET("", h.status)
		onboarding.POST("/verify", h.verify)
		onboarding.POST("/complete", h.complete)
	}
}

func (h *Handler) fail(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, ErrInvalidWallet):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotVerified), errors.Is(err, ErrVerificationBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": failedMessage})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func requireWallet(c *gin.Context) (string, bool) {
	wallet := c.GetString("wallet")
	if wallet == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wallet not connected"})
		return "", false
	}
	return wallet, true
}

// status handles GET /api/v1/onboarding
func (h *Handler) status(c *gin.Context) {
	wallet, ok := requireWallet(c)
	if !ok {
		return
	}
	progress, err := h.service.Status(c.Request.Context(), wallet)
	if err != nil {
		h.fail(c, "Failed to load onboarding status", err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// verify handles POST /api/v1/onboarding/verify
func (h *Handler) verify(c *gin.Context) {
	wallet, ok := requireWallet(c)
	if !ok {
		return
	}
	progress, err := h.service.Verify(c.Request.Context(), wallet)
	if err != nil {
		h.fail(c, "Failed to verify identity", err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// complete handles POST /api/v1/onboarding/complete
func (h *Handler) complete(c *gin.Context) {
	wallet, ok := requireWallet(c)
	if !ok {
		return
	}
	progress, err := h.service.Complete(c.Request.Context(), wallet)
	if err != nil {
		h.fail(c, "Failed to complete onboarding", err)
		return
	}
	c.JSON(http.StatusOK, progress)
}
