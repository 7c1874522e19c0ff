package lifecycle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandlerRunAndList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m, err := NewManager("@hourly", []Task{
		{Name: "finalize-reproducibilities", Run: func(context.Context) (int, error) { return 2, nil }},
	}, zap.NewNop())
	require.NoError(t, err)

	router := gin.New()
	NewHandler(m, zap.NewNop()).RegisterRoutes(router.Group("/api/v1"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/lifecycle/run", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/lifecycle/jobs", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Jobs []JobStatus `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Jobs, 1)
	assert.Equal(t, 2, body.Jobs[0].LastCount)
	assert.Equal(t, 1, body.Jobs[0].Runs)
}
