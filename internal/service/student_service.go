package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/tuition-backend/internal/calendar"
	"github.com/stemsi/tuition-backend/internal/logger"
	"github.com/stemsi/tuition-backend/internal/model"
	"github.com/stemsi/tuition-backend/internal/repository"
	"github.com/stemsi/tuition-backend/internal/response"
)

// StudentService handles student business logic.
type StudentService struct {
	studentRepo StudentStore
	classRepo   ClassStore
	today       Clock
	log         zerolog.Logger
	notify      listeners
}

// NewStudentService creates a new StudentService.
func NewStudentService(studentRepo StudentStore, classRepo ClassStore, today Clock, log zerolog.Logger) *StudentService {
	return &StudentService{
		studentRepo: studentRepo,
		classRepo:   classRepo,
		today:       today,
		log:         logger.Component(log, "student_service"),
	}
}

// Notify registers l for changes to student data.
func (s *StudentService) Notify(l StudentChangeListener) { s.notify = append(s.notify, l) }

// GetByID retrieves a student by ID.
func (s *StudentService) GetByID(ctx context.Context, id int) (*model.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}

// ListStudents retrieves students matching the filter with pagination.
func (s *StudentService) ListStudents(ctx context.Context, f model.StudentFilter, page, perPage int) ([]model.Student, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	students, err := s.studentRepo.List(ctx, f)
	if err != nil {
		return nil, nil, err
	}

	total := len(students)
	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)
	pageItems := students[start:end]
	if pageItems == nil {
		pageItems = []model.Student{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return pageItems, pagination, nil
}

// EffectiveCycle is the student's own cycle type, else their class's, else monthly.
func (s *StudentService) EffectiveCycle(ctx context.Context, st *model.Student) (model.CycleType, *model.ClassOffering, error) {
	if st.ClassID == nil {
		return st.EffectiveCycle(nil), nil, nil
	}
	class, err := s.classRepo.GetByID(ctx, *st.ClassID)
	if errors.Is(err, repository.ErrNotFound) {
		return st.EffectiveCycle(nil), nil, nil
	}
	if err != nil {
		return "", nil, err
	}
	return st.EffectiveCycle(class), class, nil
}

func normalizeCycle(c *model.CycleType) (*model.CycleType, error) {
	if c == nil || *c == "" {
		return nil, nil
	}
	parsed, err := model.ParseCycleType(string(*c))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return &parsed, nil
}

// checkClass makes sure a student is only placed in an existing, open class.
func (s *StudentService) checkClass(ctx context.Context, classID *int) error {
	if classID == nil {
		return nil
	}
	class, err := s.classRepo.GetByID(ctx, *classID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUnknownClass
	}
	if err != nil {
		return err
	}
	if class.Status == model.ClassClosed {
		return ErrClassClosed
	}
	return nil
}

// Create registers a new active student.
func (s *StudentService) Create(ctx context.Context, req model.CreateStudentRequest) (*model.Student, error) {
	cycle, err := normalizeCycle(req.PaymentCycleType)
	if err != nil {
		return nil, err
	}
	if err := s.checkClass(ctx, req.ClassID); err != nil {
		return nil, err
	}

	registered := s.today()
	if req.RegistrationDate != nil && !req.RegistrationDate.IsZero() {
		registered = *req.RegistrationDate
	}

	st := &model.Student{
		Name:             strings.TrimSpace(req.Name),
		UniqueCode:       strings.ToUpper(strings.TrimSpace(req.UniqueCode)),
		Phone:            strings.TrimSpace(req.Phone),
		ClassID:          req.ClassID,
		RegistrationDate: registered,
		PaymentCycleType: cycle,
		Status:           model.StudentActive,
		SuspendHistory:   []model.SuspendPeriod{},
	}
	if err := s.studentRepo.Create(ctx, st); err != nil {
		s.log.Error().Err(err).Str("code", st.UniqueCode).Msg("failed to create student")
		return nil, err
	}
	return st, nil
}

// Update modifies a student's details. Moving a student to another class is
// allowed only into an open class.
func (s *StudentService) Update(ctx context.Context, id int, req model.UpdateStudentRequest) (*model.Student, error) {
	st, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cycle, err := normalizeCycle(req.PaymentCycleType)
	if err != nil {
		return nil, err
	}
	if req.ClassID != nil && (st.ClassID == nil || *st.ClassID != *req.ClassID) {
		if err := s.checkClass(ctx, req.ClassID); err != nil {
			return nil, err
		}
	}

	s.notify.studentChanged(ctx, id)

	st.Name = strings.TrimSpace(req.Name)
	st.UniqueCode = strings.ToUpper(strings.TrimSpace(req.UniqueCode))
	st.Phone = strings.TrimSpace(req.Phone)
	st.ClassID = req.ClassID
	st.PaymentCycleType = cycle
	if req.RegistrationDate != nil && !req.RegistrationDate.IsZero() {
		st.RegistrationDate = *req.RegistrationDate
	}

	if err := s.studentRepo.Update(ctx, st); err != nil {
		s.log.Error().Err(err).Int("student_id", id).Msg("failed to update student")
		return nil, err
	}
	return s.studentRepo.GetByID(ctx, id)
}

// Delete removes a student together with their attendance and payments.
func (s *StudentService) Delete(ctx context.Context, id int) error {
	s.notify.studentChanged(ctx, id)
	return s.studentRepo.Delete(ctx, id)
}

func (s *StudentService) changeLifecycle(ctx context.Context, id int, change func(*model.Student) error) (*model.Student, error) {
	st, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := change(st); err != nil {
		return nil, err
	}
	if err := s.studentRepo.UpdateLifecycle(ctx, st); err != nil {
		s.log.Error().Err(err).Int("student_id", id).Msg("failed to update student lifecycle")
		return nil, err
	}
	s.log.Info().Int("student_id", id).Str("status", string(st.Status)).Msg("student lifecycle changed")
	s.notify.studentChanged(ctx, id)
	return st, nil
}

func (s *StudentService) dateOrToday(d *calendar.Date) calendar.Date {
	if d != nil && !d.IsZero() {
		return *d
	}
	return s.today()
}

// Suspend pauses an active student.
func (s *StudentService) Suspend(ctx context.Context, id int, req model.SuspendStudentRequest) (*model.Student, error) {
	on := s.dateOrToday(req.SuspendDate)
	return s.changeLifecycle(ctx, id, func(st *model.Student) error {
		return suspend(st, on, req.Reason)
	})
}

// Restart resumes a suspended student and records the finished suspension.
func (s *StudentService) Restart(ctx context.Context, id int, req model.RestartStudentRequest) (*model.Student, error) {
	on := s.dateOrToday(req.RestartDate)
	return s.changeLifecycle(ctx, id, func(st *model.Student) error {
		return restart(st, on)
	})
}

// Deactivate marks a student as departed.
func (s *StudentService) Deactivate(ctx context.Context, id int) (*model.Student, error) {
	on := s.today()
	return s.changeLifecycle(ctx, id, func(st *model.Student) error {
		return deactivate(st, on)
	})
}
