package domain

import "time"

// ShiftWindow holds the expected work hours that clock comments are derived
// against. Boundaries are on-the-hour, compared at millisecond precision.
type ShiftWindow struct {
	StartHour int
	EndHour   int
}

var DefaultShift = ShiftWindow{StartHour: 8, EndHour: 17}

// Comment derives the attendance comment for a clock event. Exactly on the
// boundary counts as on time; everything else is early or late relative to it.
func (s ShiftWindow) Comment(typ RecordType, ts time.Time) string {
	y, m, d := ts.Date()

	if typ == ClockIn {
		shiftStart := time.Date(y, m, d, s.StartHour, 0, 0, 0, ts.Location())
		if ts.Equal(shiftStart) {
			return "Datang tepat waktu"
		}
		if ts.Before(shiftStart) {
			return "Datang lebih cepat"
		}
		return "Datang terlambat"
	}

	shiftEnd := time.Date(y, m, d, s.EndHour, 0, 0, 0, ts.Location())
	if ts.Equal(shiftEnd) {
		return "Pulang tepat waktu"
	}
	if ts.Before(shiftEnd) {
		return "Pulang lebih cepat"
	}
	return "Pulang lembur"
}
