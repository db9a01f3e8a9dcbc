package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/tuition-backend/internal/attendance"
	"github.com/stemsi/tuition-backend/internal/calendar"
	"github.com/stemsi/tuition-backend/internal/logger"
	"github.com/stemsi/tuition-backend/internal/model"
)

// ClassService handles class offering business logic.
type ClassService struct {
	classRepo      ClassStore
	studentRepo    StudentStore
	attendanceRepo AttendanceStore
	today          Clock
	log            zerolog.Logger
	notify         listeners
}

// NewClassService creates a new ClassService.
func NewClassService(classRepo ClassStore, studentRepo StudentStore, attendanceRepo AttendanceStore, today Clock, log zerolog.Logger) *ClassService {
	return &ClassService{
		classRepo:      classRepo,
		studentRepo:    studentRepo,
		attendanceRepo: attendanceRepo,
		today:          today,
		log:            logger.Component(log, "class_service"),
	}
}

// Notify registers l for changes to classes. It is told about every student
// of a class whose details, fee or status changed.
func (s *ClassService) Notify(l StudentChangeListener) { s.notify = append(s.notify, l) }

func (s *ClassService) classChanged(ctx context.Context, classID int) {
	if len(s.notify) == 0 {
		return
	}
	students, err := s.studentRepo.List(ctx, model.StudentFilter{ClassID: &classID})
	if err != nil {
		s.log.Warn().Err(err).Int("class_id", classID).Msg("failed to list students for change notification")
		return
	}
	for _, st := range students {
		s.notify.studentChanged(ctx, st.ID)
	}
}

// GetByID retrieves a class by its ID.
func (s *ClassService) GetByID(ctx context.Context, id int) (*model.ClassOffering, error) {
	return s.classRepo.GetByID(ctx, id)
}

// List retrieves classes sorted by name, optionally filtered by status.
func (s *ClassService) List(ctx context.Context, status *model.ClassStatus) ([]model.ClassOffering, error) {
	classes, err := s.classRepo.List(ctx, status)
	if err != nil {
		return nil, err
	}
	if classes == nil {
		classes = []model.ClassOffering{}
	}
	attendance.SortClassesByName(classes)
	return classes, nil
}

func classFromRequest(req model.ClassRequest) (model.ClassOffering, error) {
	cycle, err := model.ParseCycleType(string(req.PaymentCycleType))
	if err != nil {
		return model.ClassOffering{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	days := req.ScheduleDays
	if days == nil {
		days = []string{}
	}
	return model.ClassOffering{
		Name:             req.Name,
		BaseFee:          req.BaseFee,
		ScheduleDays:     days,
		Location:         req.Location,
		PaymentCycleType: cycle,
	}, nil
}

// Create creates a new active class.
func (s *ClassService) Create(ctx context.Context, req model.ClassRequest) (*model.ClassOffering, error) {
	class, err := classFromRequest(req)
	if err != nil {
		return nil, err
	}
	class.Status = model.ClassActive
	if err := s.classRepo.Create(ctx, &class); err != nil {
		s.log.Error().Err(err).Str("name", class.Name).Msg("failed to create class")
		return nil, err
	}
	return &class, nil
}

// Update modifies an existing class.
func (s *ClassService) Update(ctx context.Context, id int, req model.ClassRequest) (*model.ClassOffering, error) {
	if _, err := s.classRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	class, err := classFromRequest(req)
	if err != nil {
		return nil, err
	}
	class.ID = id
	if err := s.classRepo.Update(ctx, &class); err != nil {
		s.log.Error().Err(err).Int("class_id", id).Msg("failed to update class")
		return nil, err
	}
	s.classChanged(ctx, id)
	return s.classRepo.GetByID(ctx, id)
}

// Close stops a class from today or the given day, keeping its students
// and history.
func (s *ClassService) Close(ctx context.Context, id int, req model.CloseClassRequest) (*model.ClassOffering, error) {
	class, err := s.classRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if class.Status == model.ClassClosed {
		return nil, ErrClassClosed
	}

	on := s.today()
	if req.ClosedDate != nil && !req.ClosedDate.IsZero() {
		on = *req.ClosedDate
	}
	if err := s.classRepo.Close(ctx, id, on, req.Reason); err != nil {
		return nil, fmt.Errorf("close class %d: %w", id, err)
	}

	s.log.Info().Int("class_id", id).Str("closed_date", on.String()).Msg("class closed")
	s.classChanged(ctx, id)
	return s.classRepo.GetByID(ctx, id)
}

// Reopen reactivates a closed class.
func (s *ClassService) Reopen(ctx context.Context, id int) (*model.ClassOffering, error) {
	class, err := s.classRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if class.Status != model.ClassClosed {
		return nil, ErrClassNotClosed
	}
	if err := s.classRepo.Reopen(ctx, id); err != nil {
		return nil, fmt.Errorf("reopen class %d: %w", id, err)
	}
	s.classChanged(ctx, id)
	return s.classRepo.GetByID(ctx, id)
}

// Delete removes a class. Classes with students are refused by the store.
func (s *ClassService) Delete(ctx context.Context, id int) error {
	return s.classRepo.Delete(ctx, id)
}

// TodayBoard lists active classes with today's schedule and attendance
// state, classes still waiting for attendance first.
func (s *ClassService) TodayBoard(ctx context.Context) (calendar.Date, []model.ClassDayView, error) {
	today := s.today()
	views, err := s.boardFor(ctx, today)
	return today, views, err
}

func (s *ClassService) boardFor(ctx context.Context, day calendar.Date) ([]model.ClassDayView, error) {
	active := model.ClassActive
	classes, err := s.classRepo.List(ctx, &active)
	if err != nil {
		return nil, err
	}

	studentActive := model.StudentActive
	students, err := s.studentRepo.List(ctx, model.StudentFilter{Status: &studentActive})
	if err != nil {
		return nil, err
	}
	byClass := make(map[int][]int)
	for _, st := range students {
		if st.ClassID != nil {
			byClass[*st.ClassID] = append(byClass[*st.ClassID], st.ID)
		}
	}

	records, err := s.attendanceRepo.ListByDateRange(ctx, day, day)
	if err != nil {
		return nil, err
	}

	views := make([]model.ClassDayView, 0, len(classes))
	for _, c := range classes {
		ids := byClass[c.ID]
		views = append(views, model.ClassDayView{
			Class:          c,
			ActiveStudents: len(ids),
			ScheduledToday: attendance.ScheduledOn(c.ScheduleDays, day.Weekday()),
			AttendedToday:  attendance.ClassAttendedOn(ids, records, day),
		})
	}
	attendance.SortClassesForDay(views)
	return views, nil
}
