package repository

import (
	"context"

	"github.com/stemsi/tuition-backend/internal/calendar"
	"github.com/stemsi/tuition-backend/internal/database"
	"github.com/stemsi/tuition-backend/internal/model"
)

// DashboardRepository handles admin dashboard aggregates.
type DashboardRepository struct {
	db *database.DB
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(db *database.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// SummaryCounts are the headline numbers of the dashboard.
type SummaryCounts struct {
	TotalStudents  int `json:"total_students"`
	ActiveStudents int `json:"active_students"`
	ActiveClasses  int `json:"active_classes"`
	ClosedClasses  int `json:"closed_classes"`
}

// GetSummaryCounts retrieves the high-level metrics for the dashboard.
func (r *DashboardRepository) GetSummaryCounts(ctx context.Context) (SummaryCounts, error) {
	var c SummaryCounts
	err := r.db.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM students),
			(SELECT COUNT(*) FROM students WHERE status = $1),
			(SELECT COUNT(*) FROM classes WHERE status = $2),
			(SELECT COUNT(*) FROM classes WHERE status = $3)`,
		model.StudentActive, model.ClassActive, model.ClassClosed,
	).Scan(&c.TotalStudents, &c.ActiveStudents, &c.ActiveClasses, &c.ClosedClasses)
	return c, err
}

// MonthlyRevenue is the sum of payment amounts collected in one month.
type MonthlyRevenue struct {
	Month    string `json:"month"`
	Amount   int64  `json:"amount"`
	Payments int    `json:"payments"`
}

// GetMonthlyRevenue sums payments by payment month from since onwards.
func (r *DashboardRepository) GetMonthlyRevenue(ctx context.Context, since calendar.Date) ([]MonthlyRevenue, error) {
	rows, err := r.db.Query(ctx,
		`SELECT TO_CHAR(payment_date, 'YYYY-MM') AS month, COALESCE(SUM(amount), 0)::bigint, COUNT(*)
		 FROM payment_records
		 WHERE payment_date >= $1
		 GROUP BY month
		 ORDER BY month ASC`, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var months []MonthlyRevenue
	for rows.Next() {
		var m MonthlyRevenue
		if err := rows.Scan(&m.Month, &m.Amount, &m.Payments); err != nil {
			return nil, err
		}
		months = append(months, m)
	}
	return months, rows.Err()
}
