package projects

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cairn/research-portal/portal-backend/internal/profiles"
	"cairn/research-portal/portal-backend/pkg/pdf"
	"cairn/research-portal/portal-backend/pkg/storage"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := newFixture(t, Settings{})
	ipfs := storage.NewIPFSClient()

	creations := NewCreationWorkflow(f.svc, ipfs, CreationSettings{StepDelays: []time.Duration{time.Millisecond}}, zap.NewNop())
	t.Cleanup(creations.Close)
	uploads := NewUploads(f.svc, storage.NewMemoryS3Client("http://files.test/files"), ipfs, "cairn-outputs", zap.NewNop())
	handler := NewHandler(f.svc, creations, NewCertificates(f.svc, pdf.NewGenerator()), uploads, zap.NewNop())

	router := gin.New()
	api := router.Group("/api/v1", func(c *gin.Context) {
		if wallet := c.GetHeader("X-Wallet"); wallet != "" {
			c.Set("wallet", wallet)
		}
	})
	handler.RegisterRoutes(api)
	handler.RegisterFileRoutes(router)
	return router
}

func doJSON(router *gin.Engine, method, path, wallet string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if wallet != "" {
		req.Header.Set("X-Wallet", wallet)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerDraftVisibility(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/api/v1/projects/proj-003", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(router, http.MethodGet, "/api/v1/projects/proj-003", profiles.MockWallet, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var p Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, StatusDraft, p.Status)

	rec = doJSON(router, http.MethodGet, "/api/v1/projects?status=Draft", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Projects []Project `json:"projects"`
		Count    int       `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Zero(t, list.Count)

	rec = doJSON(router, http.MethodGet, "/api/v1/projects?limit=-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerErrorMapping(t *testing.T) {
	router := newTestRouter(t)
	outputs := AddOutputsRequest{Outputs: []OutputInput{{Type: OutputCode, Description: "x"}}}

	rec := doJSON(router, http.MethodPost, "/api/v1/projects/proj-003/outputs", "", outputs)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(router, http.MethodPost, "/api/v1/projects/proj-003/outputs", profiles.WalletAlice, outputs)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(router, http.MethodPost, "/api/v1/projects/proj-004/outputs", profiles.MockWallet, outputs)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(router, http.MethodPost, "/api/v1/projects", profiles.MockWallet, CreateProjectRequest{Title: "t", Description: "d"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(router, http.MethodPost, "/api/v1/projects/proj-001/reproducibilities/rep-1/dispute", profiles.MockWallet, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(router, http.MethodPost, "/api/v1/projects/proj-004/reproducibilities", profiles.WalletAlice, SubmitPoRRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(router, http.MethodGet, "/api/v1/projects/proj-404", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerActivateDraft(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/api/v1/projects/proj-003/outputs", profiles.MockWallet,
		AddOutputsRequest{Outputs: []OutputInput{{Type: OutputDocument, Description: "Assembly guide"}}})
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Project Project `json:"project"`
		Message string  `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, StatusActive, result.Project.Status)
	assert.Equal(t, "Project activated! It is now publicly visible.", result.Message)

	rec = doJSON(router, http.MethodGet, "/api/v1/projects/proj-003", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlerCreationWizard(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/api/v1/projects/creations", profiles.WalletBob,
		CreateProjectRequest{Title: "Soft Gripper", Description: "Pneumatic fingers", Domain: DomainHardware})
	require.Equal(t, http.StatusAccepted, rec.Code)
	var c Creation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))

	require.Eventually(t, func() bool {
		rec := doJSON(router, http.MethodGet, "/api/v1/projects/creations/"+c.ID, profiles.WalletBob, nil)
		var current Creation
		if rec.Code != http.StatusOK || json.Unmarshal(rec.Body.Bytes(), &current) != nil {
			return false
		}
		return current.Status == CreationSuccess
	}, 2*time.Second, 5*time.Millisecond)

	rec = doJSON(router, http.MethodPost, "/api/v1/projects/creations/"+c.ID+"/retry", profiles.WalletBob, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandlerCertificate(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/api/v1/projects/proj-008/certificate", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = doJSON(router, http.MethodGet, "/api/v1/projects/proj-009/certificate", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerUploadAndServe(t *testing.T) {
	router := newTestRouter(t)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "run_log.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("step 1 ok\nstep 2 ok\n"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/proj-004/uploads", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("X-Wallet", profiles.MockWallet)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var data OutputData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	assert.Equal(t, "run_log.txt", data.FileName)
	assert.NotEmpty(t, data.IPFSCID)
	require.True(t, strings.HasPrefix(data.URL, "http://files.test/files/cairn-outputs/projects/proj-004/"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, strings.TrimPrefix(data.URL, "http://files.test"), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "step 1 ok\nstep 2 ok\n", rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/other-bucket/x", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
