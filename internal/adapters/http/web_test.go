package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"followup/internal/adapters/http/middleware"
	"followup/internal/adapters/http/perf"
	"followup/internal/adapters/storage"
	"followup/internal/application/orchestrators"
	"followup/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fixedTime is a Thursday; with a Saturday anchor the week starts 2026-10-10.
var fixedTime = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-password-1"
	memberPass    = "member-password-1"
)

// testApp is a mux over a fresh in-memory database with a seeded admin.
type testApp struct {
	t       *testing.T
	handler http.Handler
	now     time.Time
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	db, err := storage.OpenAndMigrate(ctx, storage.MemoryPath)
	if err != nil {
		cancel()
		t.Fatalf("open db: %v", err)
	}
	tdb := storage.NewTimedDB(db, nil, 0)
	t.Cleanup(func() {
		cancel()
		tdb.Close()
	})

	cfg := config.Config{
		Env:              config.EnvDevelopment,
		CSRFKey:          bytes.Repeat([]byte{7}, 32),
		WeekStartDay:     time.Saturday,
		AssignmentPolicy: config.PolicyStrict,
		UndoGrace:        time.Minute,
		SlowRequest:      time.Second,
		RateLimit:        10000,
	}
	app := &testApp{t: t, now: fixedTime}
	s := NewStores(tdb)
	app.handler = NewMux(ctx, s, cfg, perf.New())

	prevNow := timeNow
	timeNow = func() time.Time { return app.now }
	t.Cleanup(func() { timeNow = prevNow })

	_, err = orchestrators.ExecuteCreateAdmin(ctx, orchestrators.CreateAccountInput{
		Email:    adminEmail,
		Password: adminPassword,
		Name:     "Admin",
		Gender:   "male",
	}, orchestrators.CreateAccountDeps{MemberStore: s.Members, Now: timeNow, GenerateID: generateID})
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return app
}

// do sends a JSON request, attaching the session cookie when token is set.
func (a *testApp) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	a.t.Helper()
	var r io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.1:40000"
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	}
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

// login signs in and returns the session token.
func (a *testApp) login(email, password string) string {
	a.t.Helper()
	rr := a.do(http.MethodPost, "/api/login", map[string]string{"email": email, "password": password}, "")
	if rr.Code != http.StatusOK {
		a.t.Fatalf("login %s: status %d body %s", email, rr.Code, rr.Body.String())
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c.Value
		}
	}
	a.t.Fatal("login set no session cookie")
	return ""
}

// registerMember signs up, approves, and logs in a member.
func (a *testApp) registerMember(adminToken, email, name, gender string) (id, token string) {
	a.t.Helper()
	rr := a.do(http.MethodPost, "/api/register", map[string]string{
		"email": email, "password": memberPass, "name": name, "gender": gender,
	}, "")
	if rr.Code != http.StatusCreated {
		a.t.Fatalf("register: status %d body %s", rr.Code, rr.Body.String())
	}
	var reg map[string]string
	decode(a.t, rr, &reg)
	id = reg["account_id"]

	if rr := a.do(http.MethodPost, "/api/members/"+id+"/approve", nil, adminToken); rr.Code != http.StatusOK {
		a.t.Fatalf("approve: status %d body %s", rr.Code, rr.Body.String())
	}
	return id, a.login(email, memberPass)
}

func (a *testApp) addPerson(adminToken, name, phone, gender string) string {
	a.t.Helper()
	rr := a.do(http.MethodPost, "/api/people", map[string]string{"name": name, "phone": phone, "gender": gender}, adminToken)
	if rr.Code != http.StatusCreated {
		a.t.Fatalf("add person: status %d body %s", rr.Code, rr.Body.String())
	}
	var p personResponse
	decode(a.t, rr, &p)
	return p.ID
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	rr := app.do(http.MethodGet, "/healthz", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}

func TestAuthorization(t *testing.T) {
	app := newTestApp(t)
	admin := app.login(adminEmail, adminPassword)
	_, member := app.registerMember(admin, "m@example.com", "Mina", "male")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"anonymous admin route", http.MethodGet, "/api/people", "", http.StatusUnauthorized},
		{"member on admin route", http.MethodGet, "/api/people", member, http.StatusForbidden},
		{"admin on member route", http.MethodGet, "/api/my/assignments", admin, http.StatusForbidden},
		{"anonymous me", http.MethodGet, "/api/me", "", http.StatusUnauthorized},
		{"member me", http.MethodGet, "/api/me", member, http.StatusOK},
		{"admin stats", http.MethodGet, "/api/stats", admin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := app.do(tt.method, tt.path, nil, tt.token); rr.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	app := newTestApp(t)
	rr := app.do(http.MethodPost, "/api/login", map[string]string{"email": adminEmail, "password": "nope-nope-nope"}, "")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestRegister_PendingUntilApproved(t *testing.T) {
	app := newTestApp(t)
	admin := app.login(adminEmail, adminPassword)

	rr := app.do(http.MethodPost, "/api/register", map[string]string{
		"email": "p@example.com", "password": memberPass, "name": "Pola", "gender": "female",
	}, "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rr.Code, rr.Body.String())
	}
	var reg map[string]string
	decode(t, rr, &reg)

	pending := app.login("p@example.com", memberPass)
	if rr := app.do(http.MethodGet, "/api/my/assignments", nil, pending); rr.Code != http.StatusForbidden {
		t.Fatalf("pending my assignments = %d, want 403", rr.Code)
	}

	var members struct {
		Pending []struct {
			AccountID string `json:"account_id"`
		} `json:"pending"`
	}
	decode(t, app.do(http.MethodGet, "/api/members", nil, admin), &members)
	if len(members.Pending) != 1 || members.Pending[0].AccountID != reg["account_id"] {
		t.Fatalf("pending = %+v", members.Pending)
	}

	if rr := app.do(http.MethodPost, "/api/members/"+reg["account_id"]+"/approve", nil, admin); rr.Code != http.StatusOK {
		t.Fatalf("approve = %d", rr.Code)
	}
	// Existing session picks up the new role.
	if rr := app.do(http.MethodGet, "/api/my/assignments", nil, pending); rr.Code != http.StatusOK {
		t.Errorf("approved my assignments = %d, want 200", rr.Code)
	}
	if rr := app.do(http.MethodPost, "/api/members/"+reg["account_id"]+"/approve", nil, admin); rr.Code != http.StatusConflict {
		t.Errorf("second approve = %d, want 409", rr.Code)
	}
}

func TestRegister_Validation(t *testing.T) {
	app := newTestApp(t)
	rr := app.do(http.MethodPost, "/api/register", map[string]string{
		"email": "not-an-email", "password": "short", "name": " ", "gender": "other",
	}, "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	var body errorResponse
	decode(t, rr, &body)
	for _, f := range []string{"email", "password", "name", "gender"} {
		if body.Fields[f] == "" {
			t.Errorf("missing field error for %s: %+v", f, body.Fields)
		}
	}

	rr = app.do(http.MethodPost, "/api/register", map[string]string{
		"email": adminEmail, "password": memberPass, "name": "Dup", "gender": "male",
	}, "")
	if rr.Code != http.StatusConflict {
		t.Errorf("duplicate email status = %d, want 409", rr.Code)
	}
}

func TestRejectAdmin(t *testing.T) {
	app := newTestApp(t)
	admin := app.login(adminEmail, adminPassword)
	var me accountResponse
	decode(t, app.do(http.MethodGet, "/api/me", nil, admin), &me)

	if rr := app.do(http.MethodPost, "/api/members/"+me.AccountID+"/reject", nil, admin); rr.Code != http.StatusForbidden {
		t.Errorf("reject admin = %d, want 403", rr.Code)
	}
}

func TestPeople_CRUDAndAttendance(t *testing.T) {
	app := newTestApp(t)
	admin := app.login(adminEmail, adminPassword)

	rr := app.do(http.MethodPost, "/api/people", map[string]string{"name": "", "phone": "12345", "gender": "x"}, admin)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid create = %d, want 400", rr.Code)
	}

	rr = app.do(http.MethodPost, "/api/people", map[string]string{"name": "  mariam   adel ", "phone": "01012345678", "gender": "female"}, admin)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create = %d, body %s", rr.Code, rr.Body.String())
	}
	var p personResponse
	decode(t, rr, &p)
	if p.Name != "Mariam Adel" {
		t.Errorf("name = %q, want normalized %q", p.Name, "Mariam Adel")
	}
	if p.WhatsAppURL != "https://wa.me/201012345678" {
		t.Errorf("whatsapp = %q", p.WhatsAppURL)
	}

	rr = app.do(http.MethodPut, "/api/people/"+p.ID, map[string]string{"name": "Mariam Adel", "phone": "+201012345679", "gender": "female"}, admin)
	if rr.Code != http.StatusOK {
		t.Fatalf("update = %d, body %s", rr.Code, rr.Body.String())
	}

	if rr := app.do(http.MethodPost, "/api/people/"+p.ID+"/attendance", nil, admin); rr.Code != http.StatusCreated {
		t.Fatalf("attendance = %d, body %s", rr.Code, rr.Body.String())
	}
	if rr := app.do(http.MethodPost, "/api/people/"+p.ID+"/attendance", nil, admin); rr.Code != http.StatusConflict {
		t.Errorf("second attendance = %d, want 409", rr.Code)
	}

	var list struct {
		People []personResponse `json:"people"`
		Page   struct {
			Total int `json:"total"`
		} `json:"page"`
	}
	decode(t, app.do(http.MethodGet, "/api/people?q=mariam&gender=female", nil, admin), &list)
	if list.Page.Total != 1 || len(list.People) != 1 {
		t.Fatalf("list = %+v", list)
	}
	if list.People[0].LastAttendanceDate != "2026-10-15" {
		t.Errorf("last attendance = %q, want 2026-10-15", list.People[0].LastAttendanceDate)
	}
	if list.People[0].Phone != "+201012345679" {
		t.Errorf("phone = %q", list.People[0].Phone)
	}

	app.now = app.now.AddDate(0, 0, 7)
	if rr := app.do(http.MethodPost, "/api/people/"+p.ID+"/attendance", nil, admin); rr.Code != http.StatusCreated {
		t.Fatalf("next week attendance = %d, body %s", rr.Code, rr.Body.String())
	}
	var history struct {
		Name               string   `json:"name"`
		LastAttendanceDate string   `json:"last_attendance_date"`
		Dates              []string `json:"dates"`
	}
	decode(t, app.do(http.MethodGet, "/api/people/"+p.ID+"/attendance", nil, admin), &history)
	if history.LastAttendanceDate != "2026-10-22" || len(history.Dates) != 2 || history.Dates[0] != "2026-10-22" || history.Dates[1] != "2026-10-15" {
		t.Errorf("history = %+v", history)
	}
	decode(t, app.do(http.MethodGet, "/api/people/"+p.ID+"/attendance?limit=1", nil, admin), &history)
	if len(history.Dates) != 1 {
		t.Errorf("limited history = %v, want 1 date", history.Dates)
	}

	if rr := app.do(http.MethodDelete, "/api/people/"+p.ID, nil, admin); rr.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", rr.Code)
	}
	if rr := app.do(http.MethodDelete, "/api/people/"+p.ID, nil, admin); rr.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", rr.Code)
	}
	if rr := app.do(http.MethodGet, "/api/people/"+p.ID+"/attendance", nil, admin); rr.Code != http.StatusNotFound {
		t.Errorf("history of deleted person = %d, want 404", rr.Code)
	}
}

func TestStats(t *testing.T) {
	app := newTestApp(t)
	admin := app.login(adminEmail, adminPassword)
	app.registerMember(admin, "m@example.com", "Mina", "male")
	seen := app.addPerson(admin, "Seen", "01000000001", "male")
	app.addPerson(admin, "Never", "01000000002", "female")
	app.do(http.MethodPost, "/api/people/"+seen+"/attendance", nil, admin)

	var stats map[string]any
	decode(t, app.do(http.MethodGet, "/api/stats", nil, admin), &stats)
	want := map[string]float64{
		"total":             2,
		"male":              1,
		"female":            1,
		"present_this_week": 1,
		"absent_this_week":  1,
		"never_attended":    1,
		"approved_members":  1,
		"pending_requests":  0,
	}
	for k, v := range want {
		if stats[k] != v {
			t.Errorf("%s = %v, want %v", k, stats[k], v)
		}
	}
	if stats["week_start"] != "2026-10-10" {
		t.Errorf("week_start = %v", stats["week_start"])
	}
}

func TestAssignments_GenerateCompleteUndo(t *testing.T) {
	app := newTestApp(t)
	admin := app.login(adminEmail, adminPassword)

	if rr := app.do(http.MethodPost, "/api/assignments/generate", nil, admin); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("generate with no people = %d, want 422", rr.Code)
	}

	app.addPerson(admin, "Youssef", "01000000001", "male")
	app.addPerson(admin, "Sara", "01000000002", "female")
	_, mina := app.registerMember(admin, "mina@example.com", "Mina", "male")
	app.registerMember(admin, "marina@example.com", "Marina", "female")

	rr := app.do(http.MethodPost, "/api/assignments/generate", nil, admin)
	if rr.Code != http.StatusCreated {
		t.Fatalf("generate = %d, body %s", rr.Code, rr.Body.String())
	}
	var gen orchestrators.GenerateAssignmentsResult
	decode(t, rr, &gen)
	if gen.WeekStart != "2026-10-10" || gen.Created != 2 {
		t.Errorf("generate result = %+v", gen)
	}

	if rr := app.do(http.MethodPost, "/api/assignments/generate", nil, admin); rr.Code != http.StatusConflict {
		t.Errorf("second generate = %d, want 409", rr.Code)
	}
	if rr := app.do(http.MethodPost, "/api/assignments/generate", map[string]any{"week_start": "2026-10-14"}, admin); rr.Code != http.StatusConflict {
		t.Errorf("mid-week generate for a generated week = %d, want 409", rr.Code)
	}
	rr = app.do(http.MethodPost, "/api/assignments/generate", map[string]any{"replace": true}, admin)
	if rr.Code != http.StatusCreated {
		t.Fatalf("replace generate = %d, body %s", rr.Code, rr.Body.String())
	}
	decode(t, rr, &gen)
	if gen.Replaced != 2 {
		t.Errorf("replaced = %d, want 2", gen.Replaced)
	}

	var mine struct {
		Assignments []struct {
			ID         string `json:"id"`
			PersonName string `json:"person_name"`
		} `json:"assignments"`
		Remaining int `json:"remaining"`
	}
	decode(t, app.do(http.MethodGet, "/api/my/assignments", nil, mina), &mine)
	if len(mine.Assignments) != 1 || mine.Assignments[0].PersonName != "Youssef" {
		t.Fatalf("mina's assignments = %+v", mine)
	}
	id := mine.Assignments[0].ID

	if rr := app.do(http.MethodPost, "/api/my/assignments/"+id+"/complete", nil, mina); rr.Code != http.StatusOK {
		t.Fatalf("complete = %d, body %s", rr.Code, rr.Body.String())
	}
	if rr := app.do(http.MethodPost, "/api/my/assignments/"+id+"/complete", nil, mina); rr.Code != http.StatusConflict {
		t.Errorf("second complete = %d, want 409", rr.Code)
	}
	if rr := app.do(http.MethodPost, "/api/my/assignments/"+id+"/undo", nil, mina); rr.Code != http.StatusOK {
		t.Fatalf("undo = %d, body %s", rr.Code, rr.Body.String())
	}

	app.do(http.MethodPost, "/api/my/assignments/"+id+"/complete", nil, mina)
	app.now = app.now.Add(2 * time.Minute)
	if rr := app.do(http.MethodPost, "/api/my/assignments/"+id+"/undo", nil, mina); rr.Code != http.StatusConflict {
		t.Errorf("late undo = %d, want 409", rr.Code)
	}

	var week struct {
		WeekStart string `json:"week_start"`
		Total     int    `json:"total"`
		Completed int    `json:"completed"`
	}
	for _, day := range []string{"2026-10-10", "2026-10-14"} {
		decode(t, app.do(http.MethodGet, "/api/assignments?week="+day, nil, admin), &week)
		if week.WeekStart != "2026-10-10" || week.Total != 2 || week.Completed != 1 {
			t.Errorf("week of %s = %+v, want 2026-10-10 total 2 completed 1", day, week)
		}
	}
	if rr := app.do(http.MethodGet, "/api/assignments?week=last-week", nil, admin); rr.Code != http.StatusBadRequest {
		t.Errorf("bad week = %d, want 400", rr.Code)
	}
}

func TestAssignments_NotOwner(t *testing.T) {
	app := newTestApp(t)
	admin := app.login(adminEmail, adminPassword)
	app.addPerson(admin, "Youssef", "01000000001", "male")
	_, mina := app.registerMember(admin, "mina@example.com", "Mina", "male")
	_, other := app.registerMember(admin, "other@example.com", "Other", "female")

	app.do(http.MethodPost, "/api/assignments/generate", nil, admin)
	var mine struct {
		Assignments []struct {
			ID string `json:"id"`
		} `json:"assignments"`
	}
	decode(t, app.do(http.MethodGet, "/api/my/assignments", nil, mina), &mine)
	if len(mine.Assignments) != 1 {
		t.Fatalf("assignments = %+v", mine)
	}

	if rr := app.do(http.MethodPost, "/api/my/assignments/"+mine.Assignments[0].ID+"/complete", nil, other); rr.Code != http.StatusForbidden {
		t.Errorf("complete by other = %d, want 403", rr.Code)
	}
	if rr := app.do(http.MethodPost, "/api/my/assignments/missing/complete", nil, mina); rr.Code != http.StatusNotFound {
		t.Errorf("complete missing = %d, want 404", rr.Code)
	}
}

func TestChangePasswordAndLogout(t *testing.T) {
	app := newTestApp(t)
	admin := app.login(adminEmail, adminPassword)

	rr := app.do(http.MethodPost, "/api/me/password", map[string]string{
		"current_password": "wrong-password-x", "new_password": "brand-new-password",
	}, admin)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("wrong current = %d, want 400", rr.Code)
	}
	rr = app.do(http.MethodPost, "/api/me/password", map[string]string{
		"current_password": adminPassword, "new_password": "brand-new-password",
	}, admin)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("change password = %d, body %s", rr.Code, rr.Body.String())
	}

	if rr := app.do(http.MethodPost, "/api/logout", nil, admin); rr.Code != http.StatusNoContent {
		t.Fatalf("logout = %d", rr.Code)
	}
	if rr := app.do(http.MethodGet, "/api/me", nil, admin); rr.Code != http.StatusUnauthorized {
		t.Errorf("me after logout = %d, want 401", rr.Code)
	}
	app.login(adminEmail, "brand-new-password")
}

func TestStrictDecode_UnknownField(t *testing.T) {
	app := newTestApp(t)
	rr := app.do(http.MethodPost, "/api/login", map[string]string{"email": adminEmail, "password": adminPassword, "role": "admin"}, "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestCSRF_FormPostRejected(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader("email=a&password=b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	app.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rr.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t)
	app.do(http.MethodGet, "/healthz", nil, "")
	rr := app.do(http.MethodGet, "/metrics", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "followup_http_request_duration_seconds") {
		t.Error("request histogram missing from /metrics")
	}
}
