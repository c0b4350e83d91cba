package metrics

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fieldgate",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fieldgate",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fieldgate",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	authAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fieldgate",
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Total number of login and registration attempts.",
		},
		[]string{"operation", "outcome"},
	)

	commandPublishes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fieldgate",
			Subsystem: "robots",
			Name:      "commands_total",
			Help:      "Total number of robot commands published.",
		},
		[]string{"command", "outcome"},
	)

	telemetryIngested = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fieldgate",
			Subsystem: "telemetry",
			Name:      "readings_ingested_total",
			Help:      "Total number of sensor readings accepted.",
		},
	)

	activeStreams = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fieldgate",
			Subsystem: "robots",
			Name:      "active_streams",
			Help:      "Current number of open robot event streams.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		authAttempts,
		commandPublishes,
		telemetryIngested,
		activeStreams,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordAuthAttempt records a login or registration outcome.
func RecordAuthAttempt(operation string, success bool) {
	authAttempts.WithLabelValues(operation, outcome(success)).Inc()
}

// RecordCommand records a robot command publication outcome.
func RecordCommand(command string, success bool) {
	if command == "" {
		command = "unknown"
	}
	commandPublishes.WithLabelValues(command, outcome(success)).Inc()
}

// RecordTelemetryIngested counts an accepted sensor reading.
func RecordTelemetryIngested() {
	telemetryIngested.Inc()
}

// StreamOpened increments the open stream gauge.
func StreamOpened() { activeStreams.Inc() }

// StreamClosed decrements the open stream gauge.
func StreamClosed() { activeStreams.Dec() }

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Hijack keeps websocket upgrades working through the wrapper.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return hj.Hijack()
}

// canonicalPath collapses resource ids so the path label stays low-cardinality.
// /api/robots/robot_123/telemetry becomes /api/robots/:id/telemetry.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if parts[0] != "api" {
		return "/" + parts[0]
	}
	if len(parts) < 2 {
		return "/api"
	}
	resource := parts[1]
	if resource == "auth" || len(parts) == 2 {
		return "/" + strings.Join(parts, "/")
	}
	out := []string{"api", resource, ":id"}
	if len(parts) > 3 {
		out = append(out, parts[3])
	}
	return "/" + strings.Join(out, "/")
}
