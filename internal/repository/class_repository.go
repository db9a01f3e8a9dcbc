package repository

import (
	"context"
	"errors"

	"github.com/stemsi/tuition-backend/internal/calendar"
	"github.com/stemsi/tuition-backend/internal/database"
	"github.com/stemsi/tuition-backend/internal/model"
)

const classColumns = `id, name, base_fee, schedule_days, location, payment_cycle_type, status,
	closed_date, closed_reason, created_at, updated_at`

// ClassRepository handles class offering data access.
type ClassRepository struct {
	db *database.DB
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(db *database.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClass(row rowScanner, c *model.ClassOffering) error {
	return row.Scan(&c.ID, &c.Name, &c.BaseFee, &c.ScheduleDays, &c.Location, &c.PaymentCycleType, &c.Status,
		&c.ClosedDate, &c.ClosedReason, &c.CreatedAt, &c.UpdatedAt)
}

// GetByID retrieves a class by its ID.
func (r *ClassRepository) GetByID(ctx context.Context, id int) (*model.ClassOffering, error) {
	c := &model.ClassOffering{}
	err := scanClass(r.db.QueryRow(ctx, `SELECT `+classColumns+` FROM classes WHERE id = $1`, id), c)
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

// List retrieves classes, optionally only those with the given status.
// Ordering for display is applied by the caller.
func (r *ClassRepository) List(ctx context.Context, status *model.ClassStatus) ([]model.ClassOffering, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+classColumns+` FROM classes
		 WHERE ($1::text IS NULL OR status = $1)
		 ORDER BY id`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []model.ClassOffering
	for rows.Next() {
		var c model.ClassOffering
		if err := scanClass(rows, &c); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// Create inserts a new class.
func (r *ClassRepository) Create(ctx context.Context, c *model.ClassOffering) error {
	if c.Status == "" {
		c.Status = model.ClassActive
	}
	if c.ScheduleDays == nil {
		c.ScheduleDays = []string{}
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO classes (name, base_fee, schedule_days, location, payment_cycle_type, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.BaseFee, c.ScheduleDays, c.Location, c.PaymentCycleType, c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapError(err)
}

// Update modifies the editable fields of a class. Status is changed through
// Close and Reopen.
func (r *ClassRepository) Update(ctx context.Context, c *model.ClassOffering) error {
	if c.ScheduleDays == nil {
		c.ScheduleDays = []string{}
	}
	return requireRow(r.db.Exec(ctx,
		`UPDATE classes SET name = $1, base_fee = $2, schedule_days = $3, location = $4,
		 payment_cycle_type = $5, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $6`,
		c.Name, c.BaseFee, c.ScheduleDays, c.Location, c.PaymentCycleType, c.ID,
	))
}

// Close marks a class closed from the given day.
func (r *ClassRepository) Close(ctx context.Context, id int, on calendar.Date, reason string) error {
	return requireRow(r.db.Exec(ctx,
		`UPDATE classes SET status = $1, closed_date = $2, closed_reason = $3, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $4`,
		model.ClassClosed, on, reason, id,
	))
}

// Reopen clears the closure of a class.
func (r *ClassRepository) Reopen(ctx context.Context, id int) error {
	return requireRow(r.db.Exec(ctx,
		`UPDATE classes SET status = $1, closed_date = NULL, closed_reason = NULL, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $2`,
		model.ClassActive, id,
	))
}

// Delete removes a class by its ID. Students keep a RESTRICT reference to
// their class, so a class with students cannot be deleted.
func (r *ClassRepository) Delete(ctx context.Context, id int) error {
	err := requireRow(r.db.Exec(ctx, `DELETE FROM classes WHERE id = $1`, id))
	if errors.Is(err, ErrUnknownReference) {
		return ErrClassHasStudents
	}
	return err
}
