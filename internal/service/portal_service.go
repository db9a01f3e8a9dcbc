package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/tuition-backend/internal/attendance"
	"github.com/stemsi/tuition-backend/internal/calendar"
	"github.com/stemsi/tuition-backend/internal/config"
	"github.com/stemsi/tuition-backend/internal/logger"
	"github.com/stemsi/tuition-backend/internal/model"
	"github.com/stemsi/tuition-backend/internal/repository"
)

const (
	// portalAttendanceDays is how far back the portal shows attendance.
	portalAttendanceDays = 60
	portalRecentPayments = 5
)

// PortalStudent is the part of a student a parent may see.
type PortalStudent struct {
	Name             string              `json:"name"`
	UniqueCode       string              `json:"unique_code"`
	Status           model.StudentStatus `json:"status"`
	RegistrationDate calendar.Date       `json:"registration_date"`
}

// PortalClass is the part of a class a parent may see.
type PortalClass struct {
	Name         string            `json:"name"`
	ScheduleDays []string          `json:"schedule_days"`
	Location     string            `json:"location"`
	Status       model.ClassStatus `json:"status"`
}

// PortalView is what the parent portal shows for one student.
type PortalView struct {
	Student        PortalStudent           `json:"student"`
	Class          *PortalClass            `json:"class"`
	Payment        model.PaymentStatusView `json:"payment"`
	RecentPayments []model.PaymentRecord   `json:"recent_payments"`
	Attendance     AttendanceReport        `json:"attendance"`
	GeneratedAt    time.Time               `json:"generated_at"`
}

// PortalService answers parent lookups by student code and phone number.
type PortalService struct {
	studentRepo    StudentStore
	classRepo      ClassStore
	attendanceRepo AttendanceStore
	payments       *PaymentService
	rdb            redis.Cmdable
	ttl            time.Duration
	today          Clock
	log            zerolog.Logger
}

// NewPortalService creates a PortalService. A nil rdb or zero ttl disables caching.
func NewPortalService(
	studentRepo StudentStore,
	classRepo ClassStore,
	attendanceRepo AttendanceStore,
	payments *PaymentService,
	rdb redis.Cmdable,
	ttl time.Duration,
	today Clock,
	log zerolog.Logger,
) *PortalService {
	return &PortalService{
		studentRepo:    studentRepo,
		classRepo:      classRepo,
		attendanceRepo: attendanceRepo,
		payments:       payments,
		rdb:            rdb,
		ttl:            ttl,
		today:          today,
		log:            logger.Component(log, "portal_service"),
	}
}

func normalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
}

func (s *PortalService) cacheEnabled() bool { return s.rdb != nil && s.ttl > 0 }

// Lookup returns the portal view of the student with this code, provided
// the phone matches. A wrong phone is indistinguishable from a wrong code.
func (s *PortalService) Lookup(ctx context.Context, code, phone string) (*PortalView, error) {
	code, phone = strings.ToUpper(strings.TrimSpace(code)), normalizePhone(phone)
	if code == "" || phone == "" {
		return nil, ErrPortalNotFound
	}
	key := config.CacheKey.PortalLookupKey(code, phone)

	if s.cacheEnabled() {
		raw, err := s.rdb.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var view PortalView
			if err := json.Unmarshal(raw, &view); err == nil {
				return &view, nil
			}
			s.log.Warn().Str("key", key).Msg("discarding unreadable portal cache entry")
		case !errors.Is(err, redis.Nil):
			s.log.Warn().Err(err).Msg("portal cache read failed")
		}
	}

	st, err := s.studentRepo.GetByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPortalNotFound
	}
	if err != nil {
		return nil, err
	}
	if normalizePhone(st.Phone) != phone {
		return nil, ErrPortalNotFound
	}

	view, err := s.build(ctx, st)
	if err != nil {
		return nil, err
	}

	if s.cacheEnabled() {
		if raw, err := json.Marshal(view); err == nil {
			if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
				s.log.Warn().Err(err).Msg("portal cache write failed")
			}
		}
	}
	return view, nil
}

func (s *PortalService) build(ctx context.Context, st *model.Student) (*PortalView, error) {
	today := s.today()
	view := &PortalView{
		Student: PortalStudent{
			Name:             st.Name,
			UniqueCode:       st.UniqueCode,
			Status:           st.Status,
			RegistrationDate: st.RegistrationDate,
		},
		GeneratedAt: time.Now().UTC(),
	}

	if st.ClassID != nil {
		class, err := s.classRepo.GetByID(ctx, *st.ClassID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		if class != nil {
			view.Class = &PortalClass{
				Name:         class.Name,
				ScheduleDays: class.ScheduleDays,
				Location:     class.Location,
				Status:       class.Status,
			}
		}
	}

	status, err := s.payments.StudentStatus(ctx, st.ID)
	if err != nil {
		return nil, err
	}
	// Parents see the lenient status of the detail view.
	status.Status = status.DetailStatus
	view.Payment = *status

	payments, err := s.payments.List(ctx, &st.ID)
	if err != nil {
		return nil, err
	}
	view.RecentPayments = payments[:min(len(payments), portalRecentPayments)]

	records, err := s.attendanceRepo.ListByStudent(ctx, st.ID)
	if err != nil {
		return nil, err
	}
	recent := attendance.InRange(records, today.AddDays(-portalAttendanceDays), today)
	days := attendance.GroupByDate(recent)
	if days == nil {
		days = []attendance.DayGroup{}
	}
	view.Attendance = AttendanceReport{Summary: attendance.Summarize(recent), Days: days}

	return view, nil
}

// StudentChanged drops every cached portal answer for the student.
func (s *PortalService) StudentChanged(ctx context.Context, studentID int) {
	if !s.cacheEnabled() {
		return
	}
	st, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return
	}
	s.Invalidate(ctx, st.UniqueCode)
}

// FeeModeChanged drops every cached portal answer, since the amount due of
// every student depends on the fee mode.
func (s *PortalService) FeeModeChanged(ctx context.Context) {
	if !s.cacheEnabled() {
		return
	}
	s.dropMatching(ctx, config.CacheKey.PortalAllPattern())
}

// Invalidate drops every cached portal answer for a student code.
func (s *PortalService) Invalidate(ctx context.Context, code string) {
	if !s.cacheEnabled() || code == "" {
		return
	}
	s.dropMatching(ctx, config.CacheKey.PortalStudentPattern(code))
}

func (s *PortalService) dropMatching(ctx context.Context, pattern string) {
	iter := s.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.log.Warn().Err(err).Str("pattern", pattern).Msg("portal cache scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		s.log.Warn().Err(err).Str("pattern", pattern).Msg("portal cache invalidation failed")
	}
}
