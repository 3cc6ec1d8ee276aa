package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestMetrics_Middleware(t *testing.T) {
	m := New("social")
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/users/:userId", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, id := range []string{"u1", "u2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/"+id, nil))
		require.Equal(t, http.StatusNoContent, w.Code)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/users/:userId", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.HTTPRequestsInFlight))
}

func TestMetrics_ObserveGraphOp(t *testing.T) {
	m := New("social")

	m.ObserveGraphOp("follow", "ok")
	m.ObserveGraphOp("follow", "ok")
	m.ObserveGraphOp("unfollow", "compensated")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GraphOpsTotal.WithLabelValues("follow", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GraphOpsTotal.WithLabelValues("unfollow", "compensated")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New("social")
	m.ObserveGraphOp("follow", "ok")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `social_graph_operations_total{op="follow",outcome="ok"} 1`))
}
