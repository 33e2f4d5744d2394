package service

import (
	"sort"
	"time"

	"github.com/absentia-hq/absentia/internal/domain"
)

// GroupByDay folds raw attendance rows into one summary row per
// (email, calendar day): the earliest clock-in and the latest clock-out win,
// with the first-seen record kept on exact ties. Rows come back sorted by day
// descending, then email ascending.
func GroupByDay(records []domain.Attendance) []domain.DaySummary {
	type entry struct {
		summary domain.DaySummary
		inAt    *time.Time
		outAt   *time.Time
	}

	grouped := make(map[string]*entry)

	for _, rec := range records {
		day := rec.Timestamp.Local().Format("2006-01-02")
		key := rec.Email + "|" + day

		e, ok := grouped[key]
		if !ok {
			e = &entry{summary: domain.DaySummary{Email: rec.Email, Date: day}}
			grouped[key] = e
		}

		ts := rec.Timestamp
		iso := ts.Format(time.RFC3339)
		comment := rec.Comment

		switch rec.Type {
		case domain.ClockIn:
			if e.inAt == nil || ts.Before(*e.inAt) {
				e.inAt = &ts
				e.summary.ClockIn = &iso
				e.summary.ClockInComment = &comment
			}
		case domain.ClockOut:
			if e.outAt == nil || ts.After(*e.outAt) {
				e.outAt = &ts
				e.summary.ClockOut = &iso
				e.summary.ClockOutComment = &comment
			}
		}
	}

	out := make([]domain.DaySummary, 0, len(grouped))
	for _, e := range grouped {
		out = append(out, e.summary)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Email < out[j].Email
	})

	return out
}
