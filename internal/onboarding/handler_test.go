package onboarding

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cairn/research-portal/portal-backend/internal/profiles"
)

func TestHandlerOnboardingFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newFixture(t)
	f.verifier.On("Verify", mock.Anything, profiles.MockWallet).
		Return(&VerificationResult{Success: true, Message: verifiedMessage}, nil)

	router := gin.New()
	api := router.Group("/api/v1", func(c *gin.Context) {
		if wallet := c.GetHeader("X-Wallet"); wallet != "" {
			c.Set("wallet", wallet)
		}
	})
	NewHandler(f.svc, zap.NewNop()).RegisterRoutes(api)

	call := func(method, path, wallet string) (*httptest.ResponseRecorder, Progress) {
		req := httptest.NewRequest(method, path, nil)
		if wallet != "" {
			req.Header.Set("X-Wallet", wallet)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		var p Progress
		_ = json.Unmarshal(rec.Body.Bytes(), &p)
		return rec, p
	}

	rec, _ := call(http.MethodGet, "/api/v1/onboarding", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, p := call(http.MethodGet, "/api/v1/onboarding", profiles.MockWallet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, p.Required)
	assert.Equal(t, StepIntro, p.Step)

	rec, _ = call(http.MethodPost, "/api/v1/onboarding/complete", profiles.MockWallet)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, p = call(http.MethodPost, "/api/v1/onboarding/verify", profiles.MockWallet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StepSuccess, p.Step)

	rec, p = call(http.MethodPost, "/api/v1/onboarding/complete", profiles.MockWallet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, p.Required)
}
