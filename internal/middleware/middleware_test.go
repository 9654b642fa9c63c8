package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-events-console/internal/service"
)

func TestConfirmationMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name   string
		target string
		header string
		query  string
		want   bool
	}{
		{name: "header", target: "7", header: "7", want: true},
		{name: "query", target: "7", query: "7", want: true},
		{name: "mismatch", target: "7", header: "8", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var ok bool
			var err error
			r := gin.New()
			r.Use(Confirmation())
			r.DELETE("/events/:id", func(c *gin.Context) {
				ok, err = service.ContextConfirmer{}.Confirm(c.Request.Context(), service.ConfirmationRequest{Target: tc.target})
				c.Status(http.StatusNoContent)
			})
			url := "/events/7"
			if tc.query != "" {
				url += "?confirm=" + tc.query
			}
			req := httptest.NewRequest(http.MethodDelete, url, nil)
			if tc.header != "" {
				req.Header.Set(ConfirmDeleteHeader, tc.header)
			}
			r.ServeHTTP(httptest.NewRecorder(), req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}

	_, err := service.ContextConfirmer{}.Confirm(context.Background(), service.ConfirmationRequest{Target: "7"})
	assert.Error(t, err)
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	SetCacheHit(c, true)
	MergeMeta(c, map[string]interface{}{"loading": false})
	meta := ExtractMeta(c)
	assert.Equal(t, true, meta["cache_hit"])
	assert.Equal(t, false, meta["loading"])
}

func TestMetricsMiddlewareRecords(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, uint64(1), metrics.Snapshot().RequestsTotal)
}
