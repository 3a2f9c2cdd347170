package web

import (
	"context"
	"net/http"
	"time"

	"followup/internal/adapters/http/middleware"
	"followup/internal/adapters/http/perf"
	"followup/internal/adapters/storage"
	accountStore "followup/internal/adapters/storage/account"
	assignmentStore "followup/internal/adapters/storage/assignment"
	attendanceStore "followup/internal/adapters/storage/attendance"
	memberStore "followup/internal/adapters/storage/member"
	personStore "followup/internal/adapters/storage/person"
	profileStore "followup/internal/adapters/storage/profile"
	"followup/internal/config"
)

// Pinger reports database reachability for the health check.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Stores holds all storage dependencies.
type Stores struct {
	Accounts    accountStore.Store
	Profiles    profileStore.Store
	Members     memberStore.Store
	People      personStore.Store
	Attendance  attendanceStore.Store
	Assignments assignmentStore.Store
	DB          Pinger
}

// NewStores builds every SQLite store on one connection pool.
func NewStores(db *storage.TimedDB) *Stores {
	return &Stores{
		Accounts:    accountStore.NewSQLiteStore(db),
		Profiles:    profileStore.NewSQLiteStore(db),
		Members:     memberStore.NewSQLiteStore(db),
		People:      personStore.NewSQLiteStore(db),
		Attendance:  attendanceStore.NewSQLiteStore(db),
		Assignments: assignmentStore.NewSQLiteStore(db),
		DB:          db,
	}
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// Runtime settings and metrics (set by NewMux)
var (
	appConfig config.Config
	metrics   *perf.Metrics
)

// NewMux wires HTTP handlers for the app. Background work started here stops
// when ctx is done.
func NewMux(ctx context.Context, s *Stores, cfg config.Config, m *perf.Metrics) http.Handler {
	stores = s
	appConfig = cfg
	metrics = m
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = cfg.IsProduction()

	mux := http.NewServeMux()
	registerRoutes(mux)

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(ctx, cfg.RateLimit, time.Second)

	// Apply middleware: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(cfg.CSRFKey, cfg.IsProduction()),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(m, cfg.SlowRequest),
	)
}

func registerRoutes(mux *http.ServeMux) {
	admin := middleware.RequireAdmin
	member := middleware.RequireMember

	// Public
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("POST /api/register", handleRegister)
	mux.HandleFunc("POST /api/login", handleLogin)
	mux.HandleFunc("POST /api/logout", handleLogout)

	// Any signed-in account, including pending sign-ups
	mux.Handle("GET /api/me", middleware.RequireAuth(http.HandlerFunc(handleMe)))
	mux.Handle("POST /api/me/password", middleware.RequireAuth(http.HandlerFunc(handleChangePassword)))

	// Admin
	mux.Handle("GET /api/people", admin(http.HandlerFunc(handleListPeople)))
	mux.Handle("POST /api/people", admin(http.HandlerFunc(handleCreatePerson)))
	mux.Handle("PUT /api/people/{id}", admin(http.HandlerFunc(handleUpdatePerson)))
	mux.Handle("DELETE /api/people/{id}", admin(http.HandlerFunc(handleDeletePerson)))
	mux.Handle("POST /api/people/{id}/attendance", admin(http.HandlerFunc(handleMarkAttendance)))
	mux.Handle("GET /api/people/{id}/attendance", admin(http.HandlerFunc(handleAttendanceHistory)))
	mux.Handle("GET /api/stats", admin(http.HandlerFunc(handleStats)))
	mux.Handle("POST /api/assignments/generate", admin(http.HandlerFunc(handleGenerateAssignments)))
	mux.Handle("GET /api/assignments", admin(http.HandlerFunc(handleWeekAssignments)))
	mux.Handle("GET /api/members", admin(http.HandlerFunc(handleListMembers)))
	mux.Handle("POST /api/members/{id}/approve", admin(http.HandlerFunc(handleApproveMember)))
	mux.Handle("POST /api/members/{id}/reject", admin(http.HandlerFunc(handleRejectMember)))

	// Approved members
	mux.Handle("GET /api/my/assignments", member(http.HandlerFunc(handleMyAssignments)))
	mux.Handle("POST /api/my/assignments/{id}/complete", member(http.HandlerFunc(handleCompleteAssignment)))
	mux.Handle("POST /api/my/assignments/{id}/undo", member(http.HandlerFunc(handleUndoAssignment)))
}
