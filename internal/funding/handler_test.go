package funding

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cairn/research-portal/portal-backend/internal/profiles"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handler := NewHandler(newSeededService(t), zap.NewNop())

	router := gin.New()
	api := router.Group("/api/v1", func(c *gin.Context) {
		if wallet := c.GetHeader("X-Wallet"); wallet != "" {
			c.Set("wallet", wallet)
		}
	})
	handler.RegisterRoutes(api)
	return router
}

func do(router *gin.Engine, method, path, wallet, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if wallet != "" {
		req.Header.Set("X-Wallet", wallet)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerInstantFund(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, http.MethodPost, "/api/v1/funding/projects/proj-005", "", `{"amount": 100}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(router, http.MethodPost, "/api/v1/funding/projects/proj-005", profiles.WalletFunderTwo, `{"amount": 12.5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPost, "/api/v1/funding/projects/proj-003", profiles.WalletFunderTwo, `{"amount": 100}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(router, http.MethodPost, "/api/v1/funding/projects/proj-404", profiles.WalletFunderTwo, `{"amount": 100}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(router, http.MethodPost, "/api/v1/funding/projects/proj-005", profiles.WalletFunderTwo, `{"amount": 1000}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var result FundResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, `Successfully funded $1,000 to "Open Source 3D-Printed Robotic Hand"!`, result.Message)
	assert.Equal(t, 36000.0, result.Project.FundingPool)
}

func TestHandlerHistory(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, http.MethodGet, "/api/v1/funding/history?funder=me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(router, http.MethodGet, "/api/v1/funding/history?funder=me", profiles.MockWallet, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		History []FundingEvent `json:"history"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.History, 2)
	assert.Equal(t, "fh-8", body.History[0].ID)

	rec = do(router, http.MethodGet, "/api/v1/funding/history?project=proj-010", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.History, 2)
}

func TestHandlerMetricsAndScientist(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, http.MethodGet, "/api/v1/funding/metrics", profiles.MockWallet, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var metrics FunderMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metrics))
	assert.Equal(t, 30000.0, metrics.TotalDeployed)

	rec = do(router, http.MethodGet, "/api/v1/funding/scientist", profiles.MockWallet, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Projects []ProjectFunding `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Projects, 2)
	assert.Equal(t, "proj-010", body.Projects[0].ProjectID)
}

func TestHandlerExport(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, http.MethodGet, "/api/v1/funding/export", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, FormatCSV.ContentType(), rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "ID,Date,"))

	rec = do(router, http.MethodGet, "/api/v1/funding/export?format=xlsx", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, FormatXLSX.ContentType(), rec.Header().Get("Content-Type"))

	rec = do(router, http.MethodGet, "/api/v1/funding/export?format=pdf", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
