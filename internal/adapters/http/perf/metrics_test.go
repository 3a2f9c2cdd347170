package perf

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestMetrics_Counters verifies the domain counters accumulate.
func TestMetrics_Counters(t *testing.T) {
	m := newWithRegistry(prometheus.NewRegistry())

	m.AssignmentsGenerated(7)
	m.AssignmentsGenerated(0)
	m.AttendanceMarked()
	m.AttendanceMarked()
	m.GenerationFailed(ReasonNoPeople)

	if got := testutil.ToFloat64(m.assignmentsGenerated); got != 7 {
		t.Errorf("assignments_generated_total = %v, want 7", got)
	}
	if got := testutil.ToFloat64(m.attendanceMarked); got != 2 {
		t.Errorf("attendance_marked_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.generationFailures.WithLabelValues(ReasonNoPeople)); got != 1 {
		t.Errorf("generation_failures_total{no_people} = %v, want 1", got)
	}
}

// TestMetrics_Histograms verifies request and query observations are labelled.
func TestMetrics_Histograms(t *testing.T) {
	m := newWithRegistry(prometheus.NewRegistry())
	m.ObserveRequest(http.MethodGet, http.StatusOK, 3*time.Millisecond)
	m.ObserveRequest(http.MethodPost, http.StatusConflict, time.Millisecond)
	m.ObserveQuery("QueryContext", time.Millisecond)

	if n := testutil.CollectAndCount(m.requestDuration); n != 2 {
		t.Errorf("request series = %d, want 2", n)
	}
	if n := testutil.CollectAndCount(m.queryDuration); n != 1 {
		t.Errorf("query series = %d, want 1", n)
	}
}

// TestMetrics_Handler verifies the exposition endpoint serves our metrics.
func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.AttendanceMarked()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "followup_attendance_marked_total 1") {
		t.Errorf("metrics body missing attendance counter:\n%s", rec.Body.String())
	}
}

// TestMetrics_NilIsNoop verifies a nil *Metrics can be used freely.
func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("GET", 200, time.Millisecond)
	m.ObserveQuery("op", time.Millisecond)
	m.AssignmentsGenerated(3)
	m.AttendanceMarked()
	m.GenerationFailed(ReasonStore)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("nil handler status = %d, want 404", rec.Code)
	}
}
