package service

import (
	"context"
	"fmt"
	"time"

	"github.com/absentia-hq/absentia/internal/domain"
	"github.com/absentia-hq/absentia/internal/repo/postgres"
	"github.com/absentia-hq/absentia/pkg/events"
	"github.com/absentia-hq/absentia/pkg/logger"
)

// Swiper mirrors one clock event into the remote HR portal.
type Swiper interface {
	Swipe(ctx context.Context, email, password, comment string, at time.Time) error
}

type AttendanceService interface {
	ClockIn(ctx context.Context, req *domain.ClockInRequest) (*domain.Attendance, error)
	ClockOut(ctx context.Context, req *domain.ClockOutRequest) (*domain.Attendance, error)
	TodayStatus(ctx context.Context, email string) (*domain.TodayStatus, error)
	List(ctx context.Context, email, startDate, endDate string) ([]domain.DaySummary, error)
}

type attendanceService struct {
	repo     postgres.AttendanceRepository
	swiper   Swiper
	eventBus events.Publisher
	shift    domain.ShiftWindow
	now      func() time.Time
}

func NewAttendanceService(
	repo postgres.AttendanceRepository,
	swiper Swiper,
	eventBus events.Publisher,
	shift domain.ShiftWindow,
) AttendanceService {
	return &attendanceService{
		repo:     repo,
		swiper:   swiper,
		eventBus: eventBus,
		shift:    shift,
		now:      time.Now,
	}
}

func (s *attendanceService) ClockIn(ctx context.Context, req *domain.ClockInRequest) (*domain.Attendance, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ts := req.At(s.now())
	start, end := domain.DayWindow(ts)

	// The existence check and the insert below are not one transaction, so
	// two concurrent clock-ins can both pass the check and create duplicate
	// IN rows for the day.
	existing, err := s.repo.FindFirstInWindow(ctx, req.Email, domain.ClockIn, start, end)
	if err != nil {
		return nil, fmt.Errorf("check existing clock in: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrAlreadyClockedIn
	}

	rec, err := s.repo.Create(ctx, &domain.Attendance{
		Email:     req.Email,
		Type:      domain.ClockIn,
		Comment:   s.shift.Comment(domain.ClockIn, ts),
		Timestamp: ts,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		return nil, fmt.Errorf("create clock in record: %w", err)
	}

	s.sideEffects(ctx, rec, req.Password)
	return rec, nil
}

func (s *attendanceService) ClockOut(ctx context.Context, req *domain.ClockOutRequest) (*domain.Attendance, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ts := req.At(s.now())
	start, end := domain.DayWindow(ts)

	notes := optional(req.Notes)

	existingOut, err := s.repo.FindFirstInWindow(ctx, req.Email, domain.ClockOut, start, end)
	if err != nil {
		return nil, fmt.Errorf("check existing clock out: %w", err)
	}

	// A second clock-out the same day corrects the first one in place
	// instead of being rejected.
	if existingOut != nil {
		comment := s.shift.Comment(domain.ClockOut, ts)
		rec, err := s.repo.Update(ctx, existingOut.ID, ts, comment, notes, req.Latitude, req.Longitude)
		if err != nil {
			return nil, fmt.Errorf("update clock out record: %w", err)
		}

		s.sideEffects(ctx, rec, req.Password)
		return rec, nil
	}

	existingIn, err := s.repo.FindFirstInWindow(ctx, req.Email, domain.ClockIn, start, end)
	if err != nil {
		return nil, fmt.Errorf("check prior clock in: %w", err)
	}
	if existingIn == nil {
		return nil, domain.ErrNotClockedInYet
	}

	rec, err := s.repo.Create(ctx, &domain.Attendance{
		Email:     req.Email,
		Type:      domain.ClockOut,
		Comment:   s.shift.Comment(domain.ClockOut, ts),
		Timestamp: ts,
		Notes:     notes,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		return nil, fmt.Errorf("create clock out record: %w", err)
	}

	s.sideEffects(ctx, rec, req.Password)
	return rec, nil
}

// sideEffects runs everything that happens after the record is committed: the
// remote swipe mirror and the notification event. Both are best effort; the
// persisted record stays the source of truth and their failures are only
// logged.
func (s *attendanceService) sideEffects(ctx context.Context, rec *domain.Attendance, password string) {
	if s.swiper != nil && password != "" {
		if err := s.swiper.Swipe(ctx, rec.Email, password, rec.Comment, rec.Timestamp); err != nil {
			logger.ErrorContext(ctx, "Remote swipe failed", "email", rec.Email, "type", rec.Type, "error", err)
		}
	}

	if s.eventBus == nil {
		return
	}

	subject := events.AttendanceClockedIn
	if rec.Type == domain.ClockOut {
		subject = events.AttendanceClockedOut
	}

	ev := events.ClockedEvent{
		RecordID:  rec.ID,
		Email:     rec.Email,
		Type:      string(rec.Type),
		Comment:   rec.Comment,
		Timestamp: rec.Timestamp,
		Latitude:  rec.Latitude,
		Longitude: rec.Longitude,
	}
	if rec.Notes != nil {
		ev.Notes = *rec.Notes
	}

	if err := s.eventBus.Publish(ctx, subject, ev); err != nil {
		logger.ErrorContext(ctx, "Failed to publish attendance event", "subject", subject, "error", err)
	}
}

func (s *attendanceService) TodayStatus(ctx context.Context, email string) (*domain.TodayStatus, error) {
	if email == "" {
		return nil, &domain.ValidationError{Field: "email", Message: "email is required"}
	}

	start, end := domain.DayWindow(s.now())
	records, err := s.repo.ListInWindow(ctx, email, start, end)
	if err != nil {
		return nil, fmt.Errorf("list today's records: %w", err)
	}

	status := &domain.TodayStatus{}
	for _, rec := range records {
		switch rec.Type {
		case domain.ClockIn:
			status.HasClockedIn = true
		case domain.ClockOut:
			status.HasClockedOut = true
		}
	}
	return status, nil
}

func (s *attendanceService) List(ctx context.Context, email, startDate, endDate string) ([]domain.DaySummary, error) {
	filter := domain.ListFilter{Email: email}

	if startDate != "" {
		start, err := parseDate(startDate)
		if err != nil {
			return nil, &domain.ValidationError{Field: "startDate", Message: "startDate must be YYYY-MM-DD"}
		}
		filter.StartDate = &start
	}
	if endDate != "" {
		end, err := parseDate(endDate)
		if err != nil {
			return nil, &domain.ValidationError{Field: "endDate", Message: "endDate must be YYYY-MM-DD"}
		}
		_, endOfDay := domain.DayWindow(end)
		filter.EndDate = &endOfDay
	}

	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}

	return GroupByDay(records), nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
