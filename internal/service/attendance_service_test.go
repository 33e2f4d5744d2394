package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absentia-hq/absentia/internal/domain"
	"github.com/absentia-hq/absentia/pkg/events"
)

// memRepo is an in-memory stand-in for the postgres repository.
type memRepo struct {
	nextID  int64
	records []domain.Attendance
}

func (m *memRepo) Create(_ context.Context, rec *domain.Attendance) (*domain.Attendance, error) {
	m.nextID++
	stored := *rec
	stored.ID = m.nextID
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.records = append(m.records, stored)
	return &stored, nil
}

func (m *memRepo) FindFirstInWindow(_ context.Context, email string, typ domain.RecordType, from, to time.Time) (*domain.Attendance, error) {
	var best *domain.Attendance
	for i := range m.records {
		r := m.records[i]
		if r.Email != email || r.Type != typ || r.Timestamp.Before(from) || r.Timestamp.After(to) {
			continue
		}
		if best == nil || r.Timestamp.Before(best.Timestamp) {
			best = &m.records[i]
		}
	}
	if best == nil {
		return nil, nil
	}
	out := *best
	return &out, nil
}

func (m *memRepo) ListInWindow(_ context.Context, email string, from, to time.Time) ([]domain.Attendance, error) {
	var out []domain.Attendance
	for _, r := range m.records {
		if r.Email == email && !r.Timestamp.Before(from) && !r.Timestamp.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRepo) Update(_ context.Context, id int64, ts time.Time, comment string, notes *string, lat, lon *float64) (*domain.Attendance, error) {
	for i := range m.records {
		if m.records[i].ID != id {
			continue
		}
		m.records[i].Timestamp = ts
		m.records[i].Comment = comment
		m.records[i].Notes = notes
		m.records[i].Latitude = lat
		m.records[i].Longitude = lon
		m.records[i].UpdatedAt = time.Now()
		out := m.records[i]
		return &out, nil
	}
	return nil, errors.New("record not found")
}

func (m *memRepo) List(_ context.Context, filter domain.ListFilter) ([]domain.Attendance, error) {
	var out []domain.Attendance
	for _, r := range m.records {
		if filter.Email != "" && r.Email != filter.Email {
			continue
		}
		if filter.StartDate != nil && r.Timestamp.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && r.Timestamp.After(*filter.EndDate) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

type stubSwiper struct {
	calls int
	err   error
	last  string
}

func (s *stubSwiper) Swipe(_ context.Context, email, password, comment string, at time.Time) error {
	s.calls++
	s.last = comment
	return s.err
}

type stubPublisher struct {
	subjects []string
}

func (p *stubPublisher) Publish(_ context.Context, subject string, _ interface{}) error {
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *stubPublisher) Close() error { return nil }

func newTestService(repo *memRepo, swiper *stubSwiper, pub *stubPublisher, now time.Time) *attendanceService {
	svc := NewAttendanceService(repo, swiper, pub, domain.DefaultShift).(*attendanceService)
	svc.now = func() time.Time { return now }
	return svc
}

var testNow = time.Date(2025, time.March, 10, 8, 16, 0, 0, time.Local)

func clockInReq() *domain.ClockInRequest {
	return &domain.ClockInRequest{Email: "alice@example.com", Password: "pw"}
}

func clockOutReq() *domain.ClockOutRequest {
	return &domain.ClockOutRequest{Email: "alice@example.com", Password: "pw"}
}

func TestClockInCreatesRecord(t *testing.T) {
	repo := &memRepo{}
	swiper := &stubSwiper{}
	pub := &stubPublisher{}
	svc := newTestService(repo, swiper, pub, testNow)

	rec, err := svc.ClockIn(context.Background(), clockInReq())
	require.NoError(t, err)

	assert.Equal(t, domain.ClockIn, rec.Type)
	assert.Equal(t, "Datang terlambat", rec.Comment)
	assert.Equal(t, 1, swiper.calls)
	assert.Equal(t, []string{events.AttendanceClockedIn}, pub.subjects)
}

func TestClockInTwiceSameDayRejected(t *testing.T) {
	repo := &memRepo{}
	svc := newTestService(repo, &stubSwiper{}, &stubPublisher{}, testNow)

	_, err := svc.ClockIn(context.Background(), clockInReq())
	require.NoError(t, err)

	_, err = svc.ClockIn(context.Background(), clockInReq())
	assert.ErrorIs(t, err, domain.ErrAlreadyClockedIn)
	assert.Len(t, repo.records, 1)
}

func TestClockInNextDayAllowed(t *testing.T) {
	repo := &memRepo{}
	svc := newTestService(repo, &stubSwiper{}, &stubPublisher{}, testNow)

	_, err := svc.ClockIn(context.Background(), clockInReq())
	require.NoError(t, err)

	svc.now = func() time.Time { return testNow.AddDate(0, 0, 1) }
	_, err = svc.ClockIn(context.Background(), clockInReq())
	require.NoError(t, err)
	assert.Len(t, repo.records, 2)
}

func TestClockInSwipeFailureStillSucceeds(t *testing.T) {
	repo := &memRepo{}
	swiper := &stubSwiper{err: errors.New("portal down")}
	svc := newTestService(repo, swiper, &stubPublisher{}, testNow)

	rec, err := svc.ClockIn(context.Background(), clockInReq())
	require.NoError(t, err)
	assert.NotZero(t, rec.ID, "local record is the source of truth")
}

func TestClockOutRequiresPriorClockIn(t *testing.T) {
	svc := newTestService(&memRepo{}, &stubSwiper{}, &stubPublisher{}, testNow)

	_, err := svc.ClockOut(context.Background(), clockOutReq())
	assert.ErrorIs(t, err, domain.ErrNotClockedInYet)
}

func TestClockOutTwiceUpdatesInPlace(t *testing.T) {
	repo := &memRepo{}
	pub := &stubPublisher{}
	svc := newTestService(repo, &stubSwiper{}, pub, testNow)

	_, err := svc.ClockIn(context.Background(), clockInReq())
	require.NoError(t, err)

	svc.now = func() time.Time {
		return time.Date(2025, time.March, 10, 16, 30, 0, 0, time.Local)
	}
	first, err := svc.ClockOut(context.Background(), clockOutReq())
	require.NoError(t, err)
	assert.Equal(t, "Pulang lebih cepat", first.Comment)

	svc.now = func() time.Time {
		return time.Date(2025, time.March, 10, 17, 15, 0, 0, time.Local)
	}
	req := clockOutReq()
	req.Notes = "lanjut meeting"
	second, err := svc.ClockOut(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "same row corrected in place")
	assert.Equal(t, "Pulang lembur", second.Comment)
	require.NotNil(t, second.Notes)
	assert.Equal(t, "lanjut meeting", *second.Notes)
	assert.Len(t, repo.records, 2, "one IN and one OUT row")
	assert.Equal(t, []string{
		events.AttendanceClockedIn,
		events.AttendanceClockedOut,
		events.AttendanceClockedOut,
	}, pub.subjects)
}

func TestTodayStatusIdempotent(t *testing.T) {
	svc := newTestService(&memRepo{}, &stubSwiper{}, &stubPublisher{}, testNow)

	_, err := svc.ClockIn(context.Background(), clockInReq())
	require.NoError(t, err)

	first, err := svc.TodayStatus(context.Background(), "alice@example.com")
	require.NoError(t, err)
	second, err := svc.TodayStatus(context.Background(), "alice@example.com")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, first.HasClockedIn)
	assert.False(t, first.HasClockedOut)
}

func TestListRoundTrip(t *testing.T) {
	svc := newTestService(&memRepo{}, &stubSwiper{}, &stubPublisher{}, testNow)

	in, err := svc.ClockIn(context.Background(), clockInReq())
	require.NoError(t, err)

	svc.now = func() time.Time {
		return time.Date(2025, time.March, 10, 17, 15, 0, 0, time.Local)
	}
	out, err := svc.ClockOut(context.Background(), clockOutReq())
	require.NoError(t, err)

	day := testNow.Format("2006-01-02")
	rows, err := svc.List(context.Background(), "alice@example.com", day, day)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "alice@example.com", row.Email)
	assert.Equal(t, day, row.Date)
	require.NotNil(t, row.ClockIn)
	assert.Equal(t, in.Timestamp.Format(time.RFC3339), *row.ClockIn)
	require.NotNil(t, row.ClockOut)
	assert.Equal(t, out.Timestamp.Format(time.RFC3339), *row.ClockOut)
}

func TestListRejectsBadDates(t *testing.T) {
	svc := newTestService(&memRepo{}, &stubSwiper{}, &stubPublisher{}, testNow)

	_, err := svc.List(context.Background(), "", "not-a-date", "")
	assert.True(t, domain.IsValidation(err))
}

func TestClockInValidation(t *testing.T) {
	svc := newTestService(&memRepo{}, &stubSwiper{}, &stubPublisher{}, testNow)

	_, err := svc.ClockIn(context.Background(), &domain.ClockInRequest{Password: "pw"})
	assert.True(t, domain.IsValidation(err))

	_, err = svc.ClockIn(context.Background(), &domain.ClockInRequest{Email: "a@b.c"})
	assert.True(t, domain.IsValidation(err))
}
