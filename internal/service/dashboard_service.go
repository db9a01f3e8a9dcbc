package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/stemsi/tuition-backend/internal/calendar"
	"github.com/stemsi/tuition-backend/internal/logger"
	"github.com/stemsi/tuition-backend/internal/model"
	"github.com/stemsi/tuition-backend/internal/repository"
)

// revenueMonths is how many months of revenue the dashboard charts,
// including the current one.
const revenueMonths = 6

// DashboardData consolidates all metrics for the admin dashboard.
type DashboardData struct {
	Date                calendar.Date               `json:"date"`
	Counts              repository.SummaryCounts    `json:"counts"`
	PaymentStatusCounts map[model.PaymentStatus]int `json:"payment_status_counts"`
	Overdue             []model.PaymentStatusView   `json:"overdue"`
	Today               []model.ClassDayView        `json:"today"`
	Revenue             []repository.MonthlyRevenue `json:"revenue"`
}

// DashboardService handles admin dashboard business logic.
type DashboardService struct {
	repo        DashboardStore
	studentRepo StudentStore
	classes     *ClassService
	payments    *PaymentService
	today       Clock
	log         zerolog.Logger
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(repo DashboardStore, studentRepo StudentStore, classes *ClassService, payments *PaymentService, today Clock, log zerolog.Logger) *DashboardService {
	return &DashboardService{
		repo:        repo,
		studentRepo: studentRepo,
		classes:     classes,
		payments:    payments,
		today:       today,
		log:         logger.Component(log, "dashboard_service"),
	}
}

// GetDashboardData gathers the dashboard metrics. Payment statuses use the
// strict policy over active students.
func (s *DashboardService) GetDashboardData(ctx context.Context) (*DashboardData, error) {
	today := s.today()

	counts, err := s.repo.GetSummaryCounts(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load summary counts")
		return nil, err
	}

	active := model.StudentActive
	students, err := s.studentRepo.List(ctx, model.StudentFilter{Status: &active})
	if err != nil {
		return nil, err
	}
	statuses, err := s.payments.StatusesFor(ctx, students)
	if err != nil {
		s.log.Error().Err(err).Int("students", len(students)).Msg("failed to resolve payment statuses")
		return nil, err
	}

	statusCounts := map[model.PaymentStatus]int{
		model.PaymentPaid:          0,
		model.PaymentPending:       0,
		model.PaymentOverdue:       0,
		model.PaymentPartialRefund: 0,
	}
	overdue := []model.PaymentStatusView{}
	for _, st := range students {
		v := statuses[st.ID]
		statusCounts[v.Status]++
		if v.Status == model.PaymentOverdue {
			overdue = append(overdue, v)
		}
	}

	board, err := s.classes.boardFor(ctx, today)
	if err != nil {
		return nil, err
	}

	since := calendar.NewDate(today.Year(), today.Month(), 1).AddMonths(-(revenueMonths - 1))
	revenue, err := s.repo.GetMonthlyRevenue(ctx, since)
	if err != nil {
		s.log.Error().Err(err).Str("since", since.String()).Msg("failed to load monthly revenue")
		return nil, err
	}
	if revenue == nil {
		revenue = []repository.MonthlyRevenue{}
	}

	return &DashboardData{
		Date:                today,
		Counts:              counts,
		PaymentStatusCounts: statusCounts,
		Overdue:             overdue,
		Today:               board,
		Revenue:             revenue,
	}, nil
}
