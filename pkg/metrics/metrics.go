package metrics

import (
	"net/http"
	"strconv"
	"time"

	"inquiry-backend/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var reqDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests.",
		Buckets: []float64{0.01, 0.1, 0.3, 1.2, 5},
	},
	[]string{"path", "method", "status"},
)

var transitions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inquiry_transitions_total",
		Help: "Submission state changes, by source and target state.",
	},
	[]string{"from", "to"},
)

var failures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inquiry_failures_total",
		Help: "Failed submission steps, by failure kind.",
	},
	[]string{"kind"},
)

// RegisterDefault registers the runtime collectors and the inquiry metrics. Call once at startup.
func RegisterDefault() {
	mustRegister("Go collector", collectors.NewGoCollector())
	mustRegister("process collector", collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mustRegister("HTTP request histogram", reqDuration)
	mustRegister("transition counter", transitions)
	mustRegister("failure counter", failures)
}

func mustRegister(name string, c prometheus.Collector) {
	if err := prometheus.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return
		}
		panic("metrics: failed to register " + name + ": " + err.Error())
	}
}

// HTTPMetrics records request durations labeled by the gin route pattern
func HTTPMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			// unmatched routes share one label
			path = "unmatched"
		}
		status := c.Writer.Status()
		if status < 100 || status > 599 {
			status = http.StatusInternalServerError
		}

		reqDuration.WithLabelValues(path, c.Request.Method, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// Observer counts sequencer events
type Observer struct{}

func (Observer) OnTransition(a *domain.Attempt, from, to domain.SubmissionState) {
	transitions.WithLabelValues(string(from), string(to)).Inc()
}

func (Observer) OnFailure(a *domain.Attempt, f domain.Failure) {
	failures.WithLabelValues(string(f.Kind)).Inc()
}
