package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"inquiry-backend/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserverCounts(t *testing.T) {
	a := &domain.Attempt{ID: "a1"}
	before := testutil.ToFloat64(transitions.WithLabelValues("idle", "submitting"))

	Observer{}.OnTransition(a, domain.StateIdle, domain.StateSubmitting)
	Observer{}.OnFailure(a, domain.Failure{Kind: domain.FailureDispatch})

	assert.Equal(t, before+1, testutil.ToFloat64(transitions.WithLabelValues("idle", "submitting")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(failures.WithLabelValues(string(domain.FailureDispatch))), 1.0)
}

func TestHTTPMetricsUsesRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	RegisterDefault()
	RegisterDefault()

	r := gin.New()
	r.Use(HTTPMetrics())
	r.GET("/v1/inquiries/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/inquiries/abc", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, testutil.CollectAndCount(reqDuration, "http_request_duration_seconds"))
}
