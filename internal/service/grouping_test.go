package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absentia-hq/absentia/internal/domain"
)

func rec(email string, typ domain.RecordType, ts time.Time, comment string) domain.Attendance {
	return domain.Attendance{Email: email, Type: typ, Timestamp: ts, Comment: comment}
}

func TestGroupByDayEarliestInLatestOut(t *testing.T) {
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.Local)

	rows := GroupByDay([]domain.Attendance{
		rec("a@x.com", domain.ClockIn, day.Add(9*time.Hour), "late"),
		rec("a@x.com", domain.ClockIn, day.Add(8*time.Hour), "first"),
		rec("a@x.com", domain.ClockOut, day.Add(17*time.Hour), "early out"),
		rec("a@x.com", domain.ClockOut, day.Add(18*time.Hour), "overtime"),
	})

	require.Len(t, rows, 1)
	assert.Equal(t, day.Add(8*time.Hour).Format(time.RFC3339), *rows[0].ClockIn)
	assert.Equal(t, "first", *rows[0].ClockInComment)
	assert.Equal(t, day.Add(18*time.Hour).Format(time.RFC3339), *rows[0].ClockOut)
	assert.Equal(t, "overtime", *rows[0].ClockOutComment)
}

func TestGroupByDayTieKeepsFirstSeen(t *testing.T) {
	ts := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.Local)

	rows := GroupByDay([]domain.Attendance{
		rec("a@x.com", domain.ClockIn, ts, "seen first"),
		rec("a@x.com", domain.ClockIn, ts, "seen second"),
	})

	require.Len(t, rows, 1)
	assert.Equal(t, "seen first", *rows[0].ClockInComment)
}

func TestGroupByDaySortOrder(t *testing.T) {
	day1 := time.Date(2025, time.March, 9, 8, 0, 0, 0, time.Local)
	day2 := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.Local)

	rows := GroupByDay([]domain.Attendance{
		rec("b@x.com", domain.ClockIn, day1, ""),
		rec("a@x.com", domain.ClockIn, day2, ""),
		rec("b@x.com", domain.ClockIn, day2, ""),
	})

	require.Len(t, rows, 3)
	assert.Equal(t, "2025-03-10", rows[0].Date)
	assert.Equal(t, "a@x.com", rows[0].Email)
	assert.Equal(t, "2025-03-10", rows[1].Date)
	assert.Equal(t, "b@x.com", rows[1].Email)
	assert.Equal(t, "2025-03-09", rows[2].Date)
}

func TestGroupByDayMissingHalf(t *testing.T) {
	ts := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.Local)

	rows := GroupByDay([]domain.Attendance{rec("a@x.com", domain.ClockIn, ts, "in only")})
	require.Len(t, rows, 1)
	assert.NotNil(t, rows[0].ClockIn)
	assert.Nil(t, rows[0].ClockOut)
	assert.Nil(t, rows[0].ClockOutComment)
}
