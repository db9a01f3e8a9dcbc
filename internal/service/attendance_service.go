package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/stemsi/tuition-backend/internal/attendance"
	"github.com/stemsi/tuition-backend/internal/calendar"
	"github.com/stemsi/tuition-backend/internal/logger"
	"github.com/stemsi/tuition-backend/internal/model"
	"github.com/stemsi/tuition-backend/internal/repository"
	"golang.org/x/sync/errgroup"
)

// AttendanceReport is the aggregate view of a set of attendance records.
type AttendanceReport struct {
	Summary attendance.Summary    `json:"summary"`
	Days    []attendance.DayGroup `json:"days"`
}

// AttendanceQuery selects records for listing and reports. StudentID wins
// over the date range; zero dates leave the range open.
type AttendanceQuery struct {
	StudentID *int
	From      calendar.Date
	To        calendar.Date
}

// AttendanceService handles attendance business logic.
type AttendanceService struct {
	attendanceRepo AttendanceStore
	studentRepo    StudentStore
	parallelism    int
	log            zerolog.Logger
	notify         listeners
}

// NewAttendanceService creates a new AttendanceService. parallelism bounds
// the concurrent deletes of a bulk delete.
func NewAttendanceService(attendanceRepo AttendanceStore, studentRepo StudentStore, parallelism int, log zerolog.Logger) *AttendanceService {
	if parallelism < 1 {
		parallelism = 1
	}
	return &AttendanceService{
		attendanceRepo: attendanceRepo,
		studentRepo:    studentRepo,
		parallelism:    parallelism,
		log:            logger.Component(log, "attendance_service"),
	}
}

// Notify registers l for changes to attendance.
func (s *AttendanceService) Notify(l StudentChangeListener) { s.notify = append(s.notify, l) }

// List returns the records selected by q, newest first.
func (s *AttendanceService) List(ctx context.Context, q AttendanceQuery) ([]model.AttendanceRecord, error) {
	var (
		records []model.AttendanceRecord
		err     error
	)
	if q.StudentID != nil {
		records, err = s.attendanceRepo.ListByStudent(ctx, *q.StudentID)
		records = attendance.InRange(records, q.From, q.To)
	} else {
		records, err = s.attendanceRepo.ListByDateRange(ctx, q.From, q.To)
	}
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.AttendanceRecord{}
	}
	return records, nil
}

// Report summarises the records selected by q and groups them by day.
func (s *AttendanceService) Report(ctx context.Context, q AttendanceQuery) (*AttendanceReport, error) {
	records, err := s.List(ctx, q)
	if err != nil {
		return nil, err
	}
	days := attendance.GroupByDate(records)
	if days == nil {
		days = []attendance.DayGroup{}
	}
	return &AttendanceReport{Summary: attendance.Summarize(records), Days: days}, nil
}

func (s *AttendanceService) checkStudent(ctx context.Context, studentID int) error {
	_, err := s.studentRepo.GetByID(ctx, studentID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUnknownStudent
	}
	return err
}

// Create records an attendance mark. Several marks for the same student
// and day are kept as separate records.
func (s *AttendanceService) Create(ctx context.Context, req model.AttendanceRequest) (*model.AttendanceRecord, error) {
	if err := s.checkStudent(ctx, req.StudentID); err != nil {
		return nil, err
	}
	rec := &model.AttendanceRecord{StudentID: req.StudentID, Date: req.Date, Status: req.Status}
	if err := s.attendanceRepo.Create(ctx, rec); err != nil {
		s.log.Error().Err(err).Int("student_id", req.StudentID).Msg("failed to create attendance")
		return nil, err
	}
	s.notify.studentChanged(ctx, rec.StudentID)
	return rec, nil
}

// Update replaces an attendance record.
func (s *AttendanceService) Update(ctx context.Context, id int, req model.AttendanceRequest) (*model.AttendanceRecord, error) {
	rec, err := s.attendanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.StudentID != req.StudentID {
		if err := s.checkStudent(ctx, req.StudentID); err != nil {
			return nil, err
		}
	}
	previous := rec.StudentID
	rec.StudentID, rec.Date, rec.Status = req.StudentID, req.Date, req.Status
	if err := s.attendanceRepo.Update(ctx, rec); err != nil {
		s.log.Error().Err(err).Int("attendance_id", id).Msg("failed to update attendance")
		return nil, err
	}
	s.notify.studentChanged(ctx, previous)
	if previous != rec.StudentID {
		s.notify.studentChanged(ctx, rec.StudentID)
	}
	return s.attendanceRepo.GetByID(ctx, id)
}

// Delete removes one attendance record.
func (s *AttendanceService) Delete(ctx context.Context, id int) error {
	rec, err := s.attendanceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.attendanceRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.notify.studentChanged(ctx, rec.StudentID)
	return nil
}

// BulkDelete deletes every id and reports each outcome in input order. A
// failing item never stops the others.
func (s *AttendanceService) BulkDelete(ctx context.Context, ids []int) []model.BulkResult {
	results := make([]model.BulkResult, len(ids))

	var g errgroup.Group
	g.SetLimit(s.parallelism)
	for i, id := range ids {
		g.Go(func() error {
			res := model.BulkResult{ID: id, Success: true}
			if err := s.attendanceRepo.Delete(ctx, id); err != nil {
				res.Success = false
				res.Error = bulkErrorText(err)
				if !errors.Is(err, repository.ErrNotFound) {
					s.log.Warn().Err(err).Int("attendance_id", id).Msg("bulk delete item failed")
				}
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	s.log.Info().Int("requested", len(ids)).Int("failed", failed).Msg("attendance bulk delete finished")
	return results
}

func bulkErrorText(err error) string {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return "not found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "delete failed"
	}
}
