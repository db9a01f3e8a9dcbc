package repository

import (
	"context"

	"github.com/stemsi/tuition-backend/internal/calendar"
	"github.com/stemsi/tuition-backend/internal/database"
	"github.com/stemsi/tuition-backend/internal/model"
)

const attendanceColumns = `a.id, a.student_id, a.date, a.status, a.created_at, a.updated_at`

// AttendanceRepository handles attendance record data access.
type AttendanceRepository struct {
	db *database.DB
}

// NewAttendanceRepository creates a new AttendanceRepository.
func NewAttendanceRepository(db *database.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) list(ctx context.Context, sql string, args ...any) ([]model.AttendanceRecord, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.AttendanceRecord
	for rows.Next() {
		var a model.AttendanceRecord
		if err := rows.Scan(&a.ID, &a.StudentID, &a.Date, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, a)
	}
	return records, rows.Err()
}

// GetByID retrieves a record by ID.
func (r *AttendanceRepository) GetByID(ctx context.Context, id int) (*model.AttendanceRecord, error) {
	a := &model.AttendanceRecord{}
	err := r.db.QueryRow(ctx, `SELECT `+attendanceColumns+` FROM attendance_records a WHERE a.id = $1`, id).
		Scan(&a.ID, &a.StudentID, &a.Date, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

// ListByStudent returns a student's records, newest first.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID int) ([]model.AttendanceRecord, error) {
	return r.list(ctx,
		`SELECT `+attendanceColumns+` FROM attendance_records a
		 WHERE a.student_id = $1 ORDER BY a.date DESC, a.id`, studentID)
}

// ListByDateRange returns records between from and to inclusive. A zero
// bound is open.
func (r *AttendanceRepository) ListByDateRange(ctx context.Context, from, to calendar.Date) ([]model.AttendanceRecord, error) {
	return r.list(ctx,
		`SELECT `+attendanceColumns+` FROM attendance_records a
		 WHERE ($1::date IS NULL OR a.date >= $1) AND ($2::date IS NULL OR a.date <= $2)
		 ORDER BY a.date DESC, a.id`, from, to)
}

// ListByClassAndDate returns the records of a class's students on one day.
func (r *AttendanceRepository) ListByClassAndDate(ctx context.Context, classID int, day calendar.Date) ([]model.AttendanceRecord, error) {
	return r.list(ctx,
		`SELECT `+attendanceColumns+` FROM attendance_records a
		 JOIN students s ON s.id = a.student_id
		 WHERE s.class_id = $1 AND a.date = $2
		 ORDER BY a.id`, classID, day)
}

// Create inserts a record. Duplicates for the same student and day are allowed.
func (r *AttendanceRepository) Create(ctx context.Context, a *model.AttendanceRecord) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO attendance_records (student_id, date, status)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		a.StudentID, a.Date, a.Status,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return mapError(err)
}

// Update modifies a record.
func (r *AttendanceRepository) Update(ctx context.Context, a *model.AttendanceRecord) error {
	return requireRow(r.db.Exec(ctx,
		`UPDATE attendance_records SET student_id = $1, date = $2, status = $3, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $4`,
		a.StudentID, a.Date, a.Status, a.ID,
	))
}

// Delete removes a record.
func (r *AttendanceRepository) Delete(ctx context.Context, id int) error {
	return requireRow(r.db.Exec(ctx, `DELETE FROM attendance_records WHERE id = $1`, id))
}
