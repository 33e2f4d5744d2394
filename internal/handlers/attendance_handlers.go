package handlers

import (
	"encoding/csv"
	"net/http"

	"github.com/absentia-hq/absentia/internal/domain"
)

func (h *Handlers) ClockIn(w http.ResponseWriter, r *http.Request) {
	var req domain.ClockInRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	rec, err := h.attendance.ClockIn(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":         true,
		"attendance": rec,
	})
}

func (h *Handlers) ClockOut(w http.ResponseWriter, r *http.Request) {
	var req domain.ClockOutRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	rec, err := h.attendance.ClockOut(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":         true,
		"attendance": rec,
	})
}

func (h *Handlers) TodayStatus(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	status, err := h.attendance.TodayStatus(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":            true,
		"hasClockedIn":  status.HasClockedIn,
		"hasClockedOut": status.HasClockedOut,
	})
}

func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := h.attendance.List(r.Context(), q.Get("email"), q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"data": rows,
	})
}

// Export streams the grouped attendance list as CSV. Sits behind RequireJWT.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := h.attendance.List(r.Context(), q.Get("email"), q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance.csv"`)

	cw := csv.NewWriter(w)
	cw.Write([]string{"email", "date", "clock_in", "clock_in_comment", "clock_out", "clock_out_comment"})
	for _, row := range rows {
		cw.Write([]string{
			row.Email,
			row.Date,
			deref(row.ClockIn),
			deref(row.ClockInComment),
			deref(row.ClockOut),
			deref(row.ClockOutComment),
		})
	}
	cw.Flush()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
