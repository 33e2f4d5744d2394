package postgres

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/absentia-hq/absentia/internal/domain"
)

type AttendanceRepository interface {
	Create(ctx context.Context, rec *domain.Attendance) (*domain.Attendance, error)
	FindFirstInWindow(ctx context.Context, email string, typ domain.RecordType, from, to time.Time) (*domain.Attendance, error)
	ListInWindow(ctx context.Context, email string, from, to time.Time) ([]domain.Attendance, error)
	Update(ctx context.Context, id int64, ts time.Time, comment string, notes *string, lat, lon *float64) (*domain.Attendance, error)
	List(ctx context.Context, filter domain.ListFilter) ([]domain.Attendance, error)
}

type attendanceRepository struct {
	pool *pgxpool.Pool
}

func NewAttendanceRepository(pool *pgxpool.Pool) AttendanceRepository {
	return &attendanceRepository{pool: pool}
}

const attendanceCols = `id, email, type, comment, "timestamp", notes, latitude, longitude, created_at, updated_at`

func scanAttendance(row pgx.Row) (*domain.Attendance, error) {
	var a domain.Attendance
	err := row.Scan(
		&a.ID, &a.Email, &a.Type, &a.Comment, &a.Timestamp,
		&a.Notes, &a.Latitude, &a.Longitude,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attendanceRepository) Create(ctx context.Context, rec *domain.Attendance) (*domain.Attendance, error) {
	const q = `INSERT INTO attendance (email, type, comment, "timestamp", notes, latitude, longitude)
	VALUES ($1,$2,$3,$4,$5,$6,$7)
	RETURNING ` + attendanceCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanAttendance(r.pool.QueryRow(ctx, q,
		rec.Email, rec.Type, rec.Comment, rec.Timestamp,
		rec.Notes, rec.Latitude, rec.Longitude,
	))
}

func (r *attendanceRepository) FindFirstInWindow(ctx context.Context, email string, typ domain.RecordType, from, to time.Time) (*domain.Attendance, error) {
	const q = `SELECT ` + attendanceCols + ` FROM attendance
	WHERE email=$1 AND type=$2 AND "timestamp" BETWEEN $3 AND $4
	ORDER BY "timestamp" ASC
	LIMIT 1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rec, err := scanAttendance(r.pool.QueryRow(ctx, q, email, typ, from, to))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

func (r *attendanceRepository) ListInWindow(ctx context.Context, email string, from, to time.Time) ([]domain.Attendance, error) {
	const q = `SELECT ` + attendanceCols + ` FROM attendance
	WHERE email=$1 AND "timestamp" BETWEEN $2 AND $3
	ORDER BY "timestamp" ASC`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, email, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAttendance(rows)
}

func (r *attendanceRepository) Update(ctx context.Context, id int64, ts time.Time, comment string, notes *string, lat, lon *float64) (*domain.Attendance, error) {
	const q = `UPDATE attendance
	SET "timestamp"=$2, comment=$3, notes=$4, latitude=$5, longitude=$6, updated_at=now()
	WHERE id=$1
	RETURNING ` + attendanceCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanAttendance(r.pool.QueryRow(ctx, q, id, ts, comment, notes, lat, lon))
}

func (r *attendanceRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Attendance, error) {
	q := `SELECT ` + attendanceCols + ` FROM attendance WHERE 1=1`
	args := []interface{}{}

	if filter.Email != "" {
		args = append(args, filter.Email)
		q += ` AND email=$1`
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		q += ` AND "timestamp" >= $` + strconv.Itoa(len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		q += ` AND "timestamp" <= $` + strconv.Itoa(len(args))
	}
	q += ` ORDER BY "timestamp" DESC`

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAttendance(rows)
}

func collectAttendance(rows pgx.Rows) ([]domain.Attendance, error) {
	var out []domain.Attendance
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}
