package repository

import (
	"context"
	"strings"

	"github.com/stemsi/tuition-backend/internal/database"
	"github.com/stemsi/tuition-backend/internal/model"
)

const studentColumns = `id, name, unique_code, phone, class_id, registration_date, payment_cycle_type, status,
	suspend_date, suspend_reason, restart_date, last_active_date, suspend_history, created_at, updated_at`

// StudentRepository handles student data access.
type StudentRepository struct {
	db *database.DB
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(db *database.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func scanStudent(row rowScanner, s *model.Student) error {
	err := row.Scan(&s.ID, &s.Name, &s.UniqueCode, &s.Phone, &s.ClassID, &s.RegistrationDate, &s.PaymentCycleType,
		&s.Status, &s.SuspendDate, &s.SuspendReason, &s.RestartDate, &s.LastActiveDate, &s.SuspendHistory,
		&s.CreatedAt, &s.UpdatedAt)
	if err == nil && s.SuspendHistory == nil {
		s.SuspendHistory = []model.SuspendPeriod{}
	}
	return err
}

// GetByID retrieves a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	s := &model.Student{}
	if err := scanStudent(r.db.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id), s); err != nil {
		return nil, mapError(err)
	}
	return s, nil
}

// GetByCode retrieves a student by their unique code, case-insensitively.
func (r *StudentRepository) GetByCode(ctx context.Context, code string) (*model.Student, error) {
	s := &model.Student{}
	err := scanStudent(r.db.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE UPPER(unique_code) = UPPER($1)`, strings.TrimSpace(code)), s)
	if err != nil {
		return nil, mapError(err)
	}
	return s, nil
}

// List retrieves students matching the filter, ordered by name.
func (r *StudentRepository) List(ctx context.Context, f model.StudentFilter) ([]model.Student, error) {
	var search *string
	if q := strings.TrimSpace(f.Search); q != "" {
		pattern := "%" + q + "%"
		search = &pattern
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+studentColumns+` FROM students
		 WHERE ($1::int IS NULL OR class_id = $1)
		   AND ($2::text IS NULL OR status = $2)
		   AND ($3::text IS NULL OR name ILIKE $3 OR unique_code ILIKE $3 OR phone ILIKE $3)
		 ORDER BY name, id`,
		f.ClassID, f.Status, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := scanStudent(rows, &s); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	if s.Status == "" {
		s.Status = model.StudentActive
	}
	if s.SuspendHistory == nil {
		s.SuspendHistory = []model.SuspendPeriod{}
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO students (name, unique_code, phone, class_id, registration_date, payment_cycle_type, status, suspend_history)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		s.Name, s.UniqueCode, s.Phone, s.ClassID, s.RegistrationDate, s.PaymentCycleType, s.Status, s.SuspendHistory,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return mapError(err)
}

// Update modifies a student's details, leaving lifecycle fields untouched.
func (r *StudentRepository) Update(ctx context.Context, s *model.Student) error {
	return requireRow(r.db.Exec(ctx,
		`UPDATE students SET name = $1, unique_code = $2, phone = $3, class_id = $4, registration_date = $5,
		 payment_cycle_type = $6, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $7`,
		s.Name, s.UniqueCode, s.Phone, s.ClassID, s.RegistrationDate, s.PaymentCycleType, s.ID,
	))
}

// UpdateLifecycle writes the status and suspension fields of a student.
func (r *StudentRepository) UpdateLifecycle(ctx context.Context, s *model.Student) error {
	return updateLifecycle(ctx, r.db, s)
}

func updateLifecycle(ctx context.Context, q database.Querier, s *model.Student) error {
	if s.SuspendHistory == nil {
		s.SuspendHistory = []model.SuspendPeriod{}
	}
	return requireRow(q.Exec(ctx,
		`UPDATE students SET status = $1, suspend_date = $2, suspend_reason = $3, restart_date = $4,
		 last_active_date = $5, suspend_history = $6, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $7`,
		s.Status, s.SuspendDate, s.SuspendReason, s.RestartDate, s.LastActiveDate, s.SuspendHistory, s.ID,
	))
}

// Delete removes a student. Attendance and payments cascade.
func (r *StudentRepository) Delete(ctx context.Context, id int) error {
	return requireRow(r.db.Exec(ctx, `DELETE FROM students WHERE id = $1`, id))
}

// CountByClass returns the number of students per class with the given status.
func (r *StudentRepository) CountByClass(ctx context.Context, status model.StudentStatus) (map[int]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT class_id, COUNT(*) FROM students
		 WHERE class_id IS NOT NULL AND status = $1
		 GROUP BY class_id`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var classID, n int
		if err := rows.Scan(&classID, &n); err != nil {
			return nil, err
		}
		counts[classID] = n
	}
	return counts, rows.Err()
}
