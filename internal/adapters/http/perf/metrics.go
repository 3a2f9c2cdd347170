package perf

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "followup"

// Generation failure reasons used as label values.
const (
	ReasonNoPeople         = "no_people"
	ReasonNoMembers        = "no_members"
	ReasonNoMemberProfiles = "no_member_profiles"
	ReasonAlreadyGenerated = "already_generated"
	ReasonStore            = "store"
)

// Metrics records request, query, and domain counters to a Prometheus
// registry. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requestDuration      *prometheus.HistogramVec
	queryDuration        *prometheus.HistogramVec
	assignmentsGenerated prometheus.Counter
	attendanceMarked     prometheus.Counter
	generationFailures   *prometheus.CounterVec
}

// New registers all metrics on a fresh registry together with the Go and
// process collectors.
// POST: Returns Metrics whose Handler serves the registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return newWithRegistry(reg)
}

func newWithRegistry(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{registry: reg}

	m.requestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and status code",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)
	m.queryDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "db_query_duration_seconds",
			Help:      "database call latency by operation",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"op"},
	)
	m.assignmentsGenerated = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "assignments_generated_total",
			Help:      "weekly assignments created by the generator",
		},
	)
	m.attendanceMarked = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "attendance_marked_total",
			Help:      "attendance records written",
		},
	)
	m.generationFailures = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "generation_failures_total",
			Help:      "assignment generation runs that aborted, by reason",
		},
		[]string{"reason"},
	)
	return m
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(d.Seconds())
}

// ObserveQuery records one database call.
func (m *Metrics) ObserveQuery(op string, d time.Duration) {
	if m == nil {
		return
	}
	m.queryDuration.WithLabelValues(op).Observe(d.Seconds())
}

// AssignmentsGenerated adds n created assignments.
func (m *Metrics) AssignmentsGenerated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.assignmentsGenerated.Add(float64(n))
}

// AttendanceMarked counts one attendance record.
func (m *Metrics) AttendanceMarked() {
	if m == nil {
		return
	}
	m.attendanceMarked.Inc()
}

// GenerationFailed counts an aborted generation run.
func (m *Metrics) GenerationFailed(reason string) {
	if m == nil {
		return
	}
	m.generationFailures.WithLabelValues(reason).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
