package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/tuition-backend/internal/database"
	"github.com/stemsi/tuition-backend/internal/model"
)

const paymentColumns = `id, student_id, amount, payment_date, valid_from, valid_to, status,
	planned_sessions, actual_sessions, adjustment_reason, notes, created_at, updated_at`

// PaymentRepository handles payment record data access.
type PaymentRepository struct {
	db *database.DB
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(db *database.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func scanPayment(row rowScanner, p *model.PaymentRecord) error {
	return row.Scan(&p.ID, &p.StudentID, &p.Amount, &p.PaymentDate, &p.ValidFrom, &p.ValidTo, &p.Status,
		&p.PlannedSessions, &p.ActualSessions, &p.AdjustmentReason, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PaymentRepository) list(ctx context.Context, sql string, args ...any) ([]model.PaymentRecord, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []model.PaymentRecord
	for rows.Next() {
		var p model.PaymentRecord
		if err := scanPayment(rows, &p); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id int) (*model.PaymentRecord, error) {
	p := &model.PaymentRecord{}
	if err := scanPayment(r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payment_records WHERE id = $1`, id), p); err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

// ListByStudent returns a student's payments, latest coverage first.
func (r *PaymentRepository) ListByStudent(ctx context.Context, studentID int) ([]model.PaymentRecord, error) {
	return r.list(ctx,
		`SELECT `+paymentColumns+` FROM payment_records
		 WHERE student_id = $1 ORDER BY valid_to DESC, payment_date DESC, id DESC`, studentID)
}

// ListByStudents returns the payments of several students grouped by student.
func (r *PaymentRepository) ListByStudents(ctx context.Context, studentIDs []int) (map[int][]model.PaymentRecord, error) {
	grouped := make(map[int][]model.PaymentRecord, len(studentIDs))
	if len(studentIDs) == 0 {
		return grouped, nil
	}
	payments, err := r.list(ctx,
		`SELECT `+paymentColumns+` FROM payment_records
		 WHERE student_id = ANY($1) ORDER BY valid_to DESC, payment_date DESC, id DESC`, studentIDs)
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		grouped[p.StudentID] = append(grouped[p.StudentID], p)
	}
	return grouped, nil
}

// ListAll returns every payment, most recent payment date first.
func (r *PaymentRepository) ListAll(ctx context.Context) ([]model.PaymentRecord, error) {
	return r.list(ctx, `SELECT `+paymentColumns+` FROM payment_records ORDER BY payment_date DESC, id DESC`)
}

// Create inserts a payment.
func (r *PaymentRepository) Create(ctx context.Context, p *model.PaymentRecord) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO payment_records (student_id, amount, payment_date, valid_from, valid_to, status,
		 planned_sessions, actual_sessions, adjustment_reason, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		p.StudentID, p.Amount, p.PaymentDate, p.ValidFrom, p.ValidTo, p.Status,
		p.PlannedSessions, p.ActualSessions, p.AdjustmentReason, p.Notes,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapError(err)
}

// Update writes every mutable column of a payment.
func (r *PaymentRepository) Update(ctx context.Context, p *model.PaymentRecord) error {
	return updatePayment(ctx, r.db, p)
}

func updatePayment(ctx context.Context, q database.Querier, p *model.PaymentRecord) error {
	return requireRow(q.Exec(ctx,
		`UPDATE payment_records SET amount = $1, payment_date = $2, valid_from = $3, valid_to = $4, status = $5,
		 planned_sessions = $6, actual_sessions = $7, adjustment_reason = $8, notes = $9,
		 updated_at = CURRENT_TIMESTAMP
		 WHERE id = $10`,
		p.Amount, p.PaymentDate, p.ValidFrom, p.ValidTo, p.Status,
		p.PlannedSessions, p.ActualSessions, p.AdjustmentReason, p.Notes, p.ID,
	))
}

// Delete removes a payment.
func (r *PaymentRepository) Delete(ctx context.Context, id int) error {
	return requireRow(r.db.Exec(ctx, `DELETE FROM payment_records WHERE id = $1`, id))
}

// ApplyProration stores a prorated payment and, when student is non-nil, the
// student's lifecycle change in a single transaction. Either both writes land
// or neither does.
func (r *PaymentRepository) ApplyProration(ctx context.Context, payment *model.PaymentRecord, student *model.Student) error {
	return r.db.InTx(ctx, func(tx pgx.Tx) error {
		if err := updatePayment(ctx, tx, payment); err != nil {
			return fmt.Errorf("update payment %d: %w", payment.ID, err)
		}
		if student == nil {
			return nil
		}
		if err := updateLifecycle(ctx, tx, student); err != nil {
			return fmt.Errorf("update student %d: %w", student.ID, err)
		}
		return nil
	})
}
