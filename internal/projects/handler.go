package projects

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cairn/research-portal/portal-backend/pkg/storage"
)

// Handler handles HTTP requests for projects
type Handler struct {
	service      *Service
	creations    *CreationWorkflow
	certificates *Certificates
	uploads      *Uploads
	logger       *zap.Logger
}

// NewHandler creates a new projects handler
func NewHandler(service *Service, creations *CreationWorkflow, certificates *Certificates, uploads *Uploads, logger *zap.Logger) *Handler {
	return &Handler{
		service:      service,
		creations:    creations,
		certificates: certificates,
		uploads:      uploads,
		logger:       logger,
	}
}

// RegisterRoutes registers all project routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.GET("", h.listProjects)
		projects.POST("", h.createProject)
		projects.GET("/discover", h.discover)
		projects.GET("/action-required", h.actionRequired)
		projects.GET("/search", h.search)
		projects.GET("/activity", h.activity)
		projects.GET("/contributions", h.myContributions)
		projects.GET("/disputes", h.myDisputes)
		projects.GET("/metrics", h.metrics)
		projects.GET("/eligibility", h.eligibility)

		projects.POST("/creations", h.startCreation)
		projects.GET("/creations/:creationId", h.getCreation)
		projects.POST("/creations/:creationId/retry", h.retryCreation)

		projects.GET("/:id", h.getProject)
		projects.GET("/:id/certificate", h.certificate)
		projects.POST("/:id/outputs", h.addOutputs)
		projects.POST("/:id/uploads", h.upload)
		projects.POST("/:id/reproducibilities", h.submitPoR)
		projects.POST("/:id/reproducibilities/:repId/dispute", h.dispute)
	}
}

// RegisterFileRoutes serves uploaded files when objects are kept in process
func (h *Handler) RegisterFileRoutes(router gin.IRoutes) {
	router.GET("/files/:bucket/*key", h.serveFile)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrPoRNotFound),
		errors.Is(err, ErrCreationNotFound), errors.Is(err, ErrNoCertificate):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrNotEligible):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrClosed), errors.Is(err, ErrCreationBusy):
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

// requireWallet aborts with 401 unless a session wallet is present
func requireWallet(c *gin.Context) (string, bool) {
	wallet := c.GetString("wallet")
	if wallet == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wallet not connected"})
		return "", false
	}
	return wallet, true
}

func queryInt(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
		return 0, false
	}
	return v, true
}

// listProjects handles GET /api/v1/projects
func (h *Handler) listProjects(c *gin.Context) {
	viewer := c.GetString("wallet")
	filter := ListFilter{
		Owner:      c.Query("owner"),
		Domain:     ResearchDomain(c.Query("domain")),
		Tag:        c.Query("tag"),
		Text:       c.Query("q"),
		Sort:       SortKey(c.Query("sort")),
		Descending: strings.EqualFold(c.Query("order"), "desc"),
		VisibleTo:  &viewer,
	}
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			filter.Statuses = append(filter.Statuses, ProjectStatus(strings.TrimSpace(s)))
		}
	}
	var ok bool
	if filter.Limit, ok = queryInt(c, "limit"); !ok {
		return
	}
	if filter.Offset, ok = queryInt(c, "offset"); !ok {
		return
	}

	projects, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, "Failed to list projects", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects, "count": len(projects)})
}

// getProject handles GET /api/v1/projects/:id
func (h *Handler) getProject(c *gin.Context) {
	project, err := h.service.GetVisible(c.Request.Context(), c.GetString("wallet"), c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to get project", err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// createProject handles POST /api/v1/projects
func (h *Handler) createProject(c *gin.Context) {
	wallet, ok := requireWallet(c)
	if !ok {
		return
	}
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.CreateProject(c.Request.Context(), wallet, req)
	if err != nil {
		h.fail(c, "Failed to create project", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// discover handles GET /api/v1/projects/discover?sort=newest
func (h *Handler) discover(c *gin.Context) {
	projects, err := h.service.Discover(c.Request.Context(), c.GetString("wallet"), SortKey(c.Query("sort")))
	if err != nil {
		h.fail(c, "Failed to discover projects", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// actionRequired handles GET /api/v1/projects/action-required
func (h *Handler) actionRequired(c *gin.Context) {
	wallet, ok := requireWallet(c)
	if !ok {
		return
	}
	projects, err := h.service.ActionRequired(c.Request.Context(), wallet)
	if err != nil {
		h.fail(c, "Failed to list drafts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// search handles GET /api/v1/projects/search?q=
func (h *Handler) search(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	projects, err := h.service.Search(c.Request.Context(), c.GetString("wallet"), c.Query("q"), limit)
	if err != nil {
		h.fail(c, "Failed to search projects", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// activity handles GET /api/v1/projects/activity
func (h *Handler) activity(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	feed, err := h.service.ActivityFeed(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, "Failed to load activity", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": feed})
}

func (h *Handler) myContributions(c *gin.Context) {
	wallet, ok := requireWallet(c)
	if !ok {
		return
	}
	contributions, err := h.service.MyContributions(c.Request.Context(), wallet)
	if err != nil {
		h.fail(c, "Failed to list contributions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contributions": contributions})
}

func (h *Handler) myDisputes(c *gin.Context) {
	wallet, ok := requireWallet(c)
	if !ok {
		return
	}
	disputes, err := h.service.MyDisputes(c.Request.Context(), wallet)
	if err != nil {
		h.fail(c, "Failed to list disputes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"disputes": disputes})
}

// metrics handles GET /api/v1/projects/metrics
func (h *Handler) metrics(c *gin.Context) {
	wallet, ok := requireWallet(c)
	if !ok {
		return
	}
	metrics, err := h.service.ScientistMetrics(c.Request.Context(), wallet)
	if err != nil {
		h.fail(c, "Failed to compute metrics", err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

func (h *Handler) eligibility(c *gin.Context) {
	wallet, ok := requireWallet(c)
	if !ok {
		return
	}
	eligibility, err := h.service.CheckEligibility(c.Request.Context(), wallet)
	if err != nil {
		h.fail(c, "Failed to check eligibility", err)
		return
	}
	c.JSON(http.StatusOK, eligibility)
}

// startCreation handles POST /api/v1/projects/creations
func (h *Handler) startCreation(c *gin.Context) {
	wallet, ok := requireWallet(c)
	if !ok {
		return
	}
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	creation, err := h.creations.StartCreation(c.Request.Context(), wallet, req)
	if err != nil {
		h.fail(c, "Failed to start project creation", err)
		return
	}
	c.JSON(http.StatusAccepted, creation)
}

// getCreation handles GET /api/v1/projects/creations/:creationId
func (h *Handler) getCreation(c *gin.Context) {
	wallet, ok := requireWallet(c)
	if !ok {
		return
	}
	creation, err := h.creations.GetCreation(c.Request.Context(), wallet, c.Param("creationId"))
	if err != nil {
		h.fail(c, "Failed to get project creation", err)
		return
	}
	c.JSON(http.StatusOK, creation)
}

// retryCreation handles POST /api/v1/projects/creations/:creationId/retry
func (h *Handler) retryCreation(c *gin.Context) {
	wallet, ok := requireWallet(c)
	if !ok {
		return
	}
	creation, err := h.creations.RetryCreation(c.Request.Context(), wallet, c.Param("creationId"))
	if err != nil {
		h.fail(c, "Failed to retry project creation", err)
		return
	}
	c.JSON(http.StatusAccepted, creation)
}

// addOutputs handles POST /api/v1/projects/:id/outputs
func (h *Handler) addOutputs(c *gin.Context) {
	wallet, ok := requireWallet(c)
	if !ok {
		return
	}
	var req AddOutputsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.AddOutputs(c.Request.Context(), wallet, c.Param("id"), req)
	if err != nil {
		h.fail(c, "Failed to add outputs", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// upload handles POST /api/v1/projects/:id/uploads (multipart field "file")
func (h *Handler) upload(c *gin.Context) {
	wallet, ok := requireWallet(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize+(1<<20))
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	data, err := h.uploads.Upload(c.Request.Context(), wallet, c.Param("id"), fileHeader.Filename, file)
	if err != nil {
		h.fail(c, "Failed to upload output file", err)
		return
	}
	c.JSON(http.StatusCreated, data)
}

// submitPoR handles POST /api/v1/projects/:id/reproducibilities
func (h *Handler) submitPoR(c *gin.Context) {
	wallet, ok := requireWallet(c)
	if !ok {
		return
	}
	var req SubmitPoRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.SubmitPoR(c.Request.Context(), wallet, c.Param("id"), req)
	if err != nil {
		h.fail(c, "Failed to submit reproducibility", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// dispute handles POST /api/v1/projects/:id/reproducibilities/:repId/dispute
func (h *Handler) dispute(c *gin.Context) {
	wallet, ok := requireWallet(c)
	if !ok {
		return
	}
	result, err := h.service.Dispute(c.Request.Context(), wallet, c.Param("id"), c.Param("repId"))
	if err != nil {
		h.fail(c, "Failed to dispute reproducibility", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// certificate handles GET /api/v1/projects/:id/certificate
func (h *Handler) certificate(c *gin.Context) {
	doc, err := h.certificates.Render(c.Request.Context(), c.GetString("wallet"), c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to render certificate", err)
		return
	}
	data, err := io.ReadAll(doc)
	if err != nil {
		h.fail(c, "Failed to read certificate", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+c.Param("id")+`-certificate.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// serveFile handles GET /files/:bucket/*key
func (h *Handler) serveFile(c *gin.Context) {
	body, err := h.uploads.Open(c.Request.Context(), c.Param("bucket"), c.Param("key"))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to open file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer body.Close()
	c.DataFromReader(http.StatusOK, -1, "application/octet-stream", body, nil)
}
