package domain

import (
	"strings"
	"time"
)

type RecordType string

const (
	ClockIn  RecordType = "IN"
	ClockOut RecordType = "OUT"
)

func ParseRecordType(s string) (RecordType, bool) {
	switch RecordType(s) {
	case ClockIn, ClockOut:
		return RecordType(s), true
	default:
		return "", false
	}
}

type Attendance struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	Type      RecordType `json:"type"`
	Comment   string     `json:"comment"`
	Timestamp time.Time  `json:"timestamp"`
	Notes     *string    `json:"notes,omitempty"`
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type ClockInRequest struct {
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	Timestamp string   `json:"timestamp,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

func (r *ClockInRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *ClockInRequest) Validate() error {
	if r.Email == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	if r.Password == "" {
		return &ValidationError{Field: "password", Message: "password is required"}
	}
	if r.Timestamp != "" {
		if _, err := time.Parse(time.RFC3339, r.Timestamp); err != nil {
			return &ValidationError{Field: "timestamp", Message: "timestamp must be RFC3339"}
		}
	}
	return nil
}

// At returns the requested instant, or now when the request carries none.
func (r *ClockInRequest) At(now time.Time) time.Time {
	if r.Timestamp == "" {
		return now
	}
	ts, err := time.Parse(time.RFC3339, r.Timestamp)
	if err != nil {
		return now
	}
	return ts.In(now.Location())
}

type ClockOutRequest struct {
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	Notes     string   `json:"notes,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

func (r *ClockOutRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Notes = strings.TrimSpace(r.Notes)
}

func (r *ClockOutRequest) Validate() error {
	if r.Email == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	if r.Password == "" {
		return &ValidationError{Field: "password", Message: "password is required"}
	}
	if r.Timestamp != "" {
		if _, err := time.Parse(time.RFC3339, r.Timestamp); err != nil {
			return &ValidationError{Field: "timestamp", Message: "timestamp must be RFC3339"}
		}
	}
	return nil
}

func (r *ClockOutRequest) At(now time.Time) time.Time {
	if r.Timestamp == "" {
		return now
	}
	ts, err := time.Parse(time.RFC3339, r.Timestamp)
	if err != nil {
		return now
	}
	return ts.In(now.Location())
}

// DaySummary is one grouped row of the attendance list: the earliest clock-in
// and latest clock-out of one (email, calendar day) pair.
type DaySummary struct {
	Email           string  `json:"email"`
	Date            string  `json:"date"`
	ClockIn         *string `json:"clockIn"`
	ClockInComment  *string `json:"clockInComment"`
	ClockOut        *string `json:"clockOut"`
	ClockOutComment *string `json:"clockOutComment"`
}

type TodayStatus struct {
	HasClockedIn  bool `json:"hasClockedIn"`
	HasClockedOut bool `json:"hasClockedOut"`
}

type ListFilter struct {
	Email     string
	StartDate *time.Time
	EndDate   *time.Time
}

// DayWindow returns the inclusive instant range [00:00:00.000, 23:59:59.999]
// of the calendar day containing ts, in ts's location.
func DayWindow(ts time.Time) (time.Time, time.Time) {
	y, m, d := ts.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
	end := time.Date(y, m, d, 23, 59, 59, 999_000_000, ts.Location())
	return start, end
}
