package web

import (
	"net/http"
	"strconv"

	"followup/internal/adapters/http/middleware"
	"followup/internal/application/orchestrators"
	"followup/internal/application/projections"
	"followup/internal/domain/contact"
)

// personResponse is a saved person with its chat link.
type personResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Phone              string `json:"phone"`
	Gender             string `json:"gender"`
	LastAttendanceDate string `json:"last_attendance_date,omitempty"`
	WhatsAppURL        string `json:"whatsapp_url"`
}

// handleListPeople serves the paginated, searchable roster.
// Query: page, per_page, sort (name|created_at|last_attendance_date), q, gender.
func handleListPeople(w http.ResponseWriter, r *http.Request) {
	params := projections.ParsePeopleQuery(r.URL.Query())
	result, err := projections.QueryGetPeople(r.Context(), params, stores.People)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	savePerson(w, r, "", http.StatusCreated)
}

func handleUpdatePerson(w http.ResponseWriter, r *http.Request) {
	savePerson(w, r, r.PathValue("id"), http.StatusOK)
}

func savePerson(w http.ResponseWriter, r *http.Request, id string, status int) {
	var input orchestrators.SavePersonInput
	if !decodeBody(w, r, &input, false) {
		return
	}
	input.ID = id
	p, err := orchestrators.ExecuteSavePerson(r.Context(), input, orchestrators.SavePersonDeps{
		PersonStore: stores.People,
		Now:         timeNow,
		GenerateID:  generateID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, personResponse{
		ID:                 p.ID,
		Name:               p.Name,
		Phone:              p.Phone,
		Gender:             p.Gender,
		LastAttendanceDate: p.LastAttendanceDate,
		WhatsAppURL:        contact.WhatsAppURL(p.Phone),
	})
}

func handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	if err := orchestrators.ExecuteDeletePerson(r.Context(), r.PathValue("id"), stores.People); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMarkAttendance records that the person attended today.
func handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	rec, err := orchestrators.ExecuteMarkAttendance(r.Context(), orchestrators.MarkAttendanceInput{
		PersonID:   r.PathValue("id"),
		RecordedBy: sess.AccountID,
	}, orchestrators.MarkAttendanceDeps{
		AttendanceStore: stores.Attendance,
		Metrics:         metrics,
		Now:             timeNow,
		GenerateID:      generateID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"id":        rec.ID,
		"person_id": rec.PersonID,
		"date":      rec.Date,
	})
}

// handleAttendanceHistory lists the dates a person attended, newest first.
// Query: limit (default 12, max 100).
func handleAttendanceHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	result, err := projections.QueryGetPersonAttendance(r.Context(), r.PathValue("id"), limit, projections.GetPersonAttendanceDeps{
		PersonStore:     stores.People,
		AttendanceStore: stores.Attendance,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := projections.QueryGetAttendanceStats(r.Context(), projections.GetAttendanceStatsDeps{
		PersonStore:     stores.People,
		AttendanceStore: stores.Attendance,
		MemberStore:     stores.Members,
		WeekStartDay:    appConfig.WeekStartDay,
		Now:             timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
