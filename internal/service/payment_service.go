package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/tuition-backend/internal/attendance"
	"github.com/stemsi/tuition-backend/internal/billing"
	"github.com/stemsi/tuition-backend/internal/calendar"
	"github.com/stemsi/tuition-backend/internal/logger"
	"github.com/stemsi/tuition-backend/internal/model"
	"github.com/stemsi/tuition-backend/internal/repository"
)

// FeeModeSource supplies the current fee calculation mode.
type FeeModeSource interface {
	FeeMode(ctx context.Context) (model.FeeMode, error)
}

// ProrationResult is a stored proration and the student after any
// accompanying lifecycle change.
type ProrationResult struct {
	billing.Proration
	Student *model.Student `json:"student"`
}

// PaymentService handles payment confirmation, proration and status.
type PaymentService struct {
	paymentRepo    PaymentStore
	studentRepo    StudentStore
	classRepo      ClassStore
	attendanceRepo AttendanceStore
	fees           FeeModeSource
	today          Clock
	log            zerolog.Logger
	notify         listeners
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	paymentRepo PaymentStore,
	studentRepo StudentStore,
	classRepo ClassStore,
	attendanceRepo AttendanceStore,
	fees FeeModeSource,
	today Clock,
	log zerolog.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo:    paymentRepo,
		studentRepo:    studentRepo,
		classRepo:      classRepo,
		attendanceRepo: attendanceRepo,
		fees:           fees,
		today:          today,
		log:            logger.Component(log, "payment_service"),
	}
}

// Notify registers l for changes to payments.
func (s *PaymentService) Notify(l StudentChangeListener) { s.notify = append(s.notify, l) }

// billingContext is what fee and status calculations need about a student.
type billingContext struct {
	student model.Student
	class   *model.ClassOffering
	cycle   model.CycleType
}

// loadStudent fetches a student and their class, and pins the student's
// effective cycle type so the billing functions see the class default.
func (s *PaymentService) loadStudent(ctx context.Context, id int) (*billingContext, error) {
	st, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.contextFor(ctx, *st, nil)
}

func (s *PaymentService) contextFor(ctx context.Context, st model.Student, classes map[int]*model.ClassOffering) (*billingContext, error) {
	var class *model.ClassOffering
	if st.ClassID != nil {
		if classes != nil {
			class = classes[*st.ClassID]
		} else {
			c, err := s.classRepo.GetByID(ctx, *st.ClassID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			class = c
		}
	}
	cycle := st.EffectiveCycle(class)
	st.PaymentCycleType = &cycle
	return &billingContext{student: st, class: class, cycle: cycle}, nil
}

// cycleFee is the fee of one cycle. Students without a class, or in a
// closed class, accrue nothing.
func (b *billingContext) cycleFee(mode model.FeeMode) (baseFee, amount int64) {
	if b.class == nil || b.class.Status == model.ClassClosed {
		return 0, 0
	}
	return b.class.BaseFee, billing.CycleFee(b.class.BaseFee, b.cycle, mode)
}

// Quote computes what a student owes for their next cycle. The cycle starts
// at from when given, else right after the latest coverage, else today.
func (s *PaymentService) Quote(ctx context.Context, studentID int, from *calendar.Date) (*model.PaymentQuote, error) {
	bc, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	mode, err := s.fees.FeeMode(ctx)
	if err != nil {
		return nil, err
	}

	var validFrom, validTo calendar.Date
	switch {
	case from != nil && !from.IsZero():
		validFrom, validTo = *from, billing.EndOfCycle(*from, bc.cycle)
	default:
		payments, err := s.paymentRepo.ListByStudent(ctx, studentID)
		if err != nil {
			return nil, err
		}
		if latest := billing.LatestPayment(payments); latest != nil {
			validFrom, validTo = billing.NextCycle(latest.ValidTo, bc.cycle)
		} else {
			today := s.today()
			validFrom, validTo = today, billing.EndOfCycle(today, bc.cycle)
		}
	}

	base, amount := bc.cycleFee(mode)
	return &model.PaymentQuote{
		StudentID: studentID,
		ClassID:   bc.student.ClassID,
		CycleType: bc.cycle,
		FeeMode:   mode,
		BaseFee:   base,
		Amount:    amount,
		ValidFrom: validFrom,
		ValidTo:   validTo,
	}, nil
}

// GetByID retrieves a payment.
func (s *PaymentService) GetByID(ctx context.Context, id int) (*model.PaymentRecord, error) {
	return s.paymentRepo.GetByID(ctx, id)
}

// List returns one student's payments, or every payment when studentID is nil.
func (s *PaymentService) List(ctx context.Context, studentID *int) ([]model.PaymentRecord, error) {
	var (
		payments []model.PaymentRecord
		err      error
	)
	if studentID != nil {
		payments, err = s.paymentRepo.ListByStudent(ctx, *studentID)
	} else {
		payments, err = s.paymentRepo.ListAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	if payments == nil {
		payments = []model.PaymentRecord{}
	}
	return payments, nil
}

// Create confirms a payment. The amount defaults to the cycle fee and the
// coverage end to the end of the cycle starting at ValidFrom.
func (s *PaymentService) Create(ctx context.Context, req model.CreatePaymentRequest) (*model.PaymentRecord, error) {
	bc, err := s.loadStudent(ctx, req.StudentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnknownStudent
	}
	if err != nil {
		return nil, err
	}

	p := &model.PaymentRecord{
		StudentID:   req.StudentID,
		PaymentDate: s.today(),
		ValidFrom:   req.ValidFrom,
		ValidTo:     billing.EndOfCycle(req.ValidFrom, bc.cycle),
		Status:      model.PaymentPaid,
		Notes:       req.Notes,
	}
	if req.PaymentDate != nil && !req.PaymentDate.IsZero() {
		p.PaymentDate = *req.PaymentDate
	}
	if req.ValidTo != nil && !req.ValidTo.IsZero() {
		p.ValidTo = *req.ValidTo
	}
	if p.ValidTo.Before(p.ValidFrom) {
		return nil, ErrInvalidPeriod
	}
	if req.Status != "" {
		p.Status = req.Status
	}

	if req.Amount != nil {
		p.Amount = *req.Amount
	} else {
		mode, err := s.fees.FeeMode(ctx)
		if err != nil {
			return nil, err
		}
		_, p.Amount = bc.cycleFee(mode)
	}

	if err := s.paymentRepo.Create(ctx, p); err != nil {
		s.log.Error().Err(err).Int("student_id", req.StudentID).Msg("failed to create payment")
		return nil, err
	}
	s.notify.studentChanged(ctx, p.StudentID)
	s.log.Info().
		Int("payment_id", p.ID).
		Int("student_id", p.StudentID).
		Int64("amount", p.Amount).
		Str("valid_to", p.ValidTo.String()).
		Msg("payment recorded")
	return p, nil
}

// Update replaces the editable fields of a payment. Proration fields are kept.
func (s *PaymentService) Update(ctx context.Context, id int, req model.UpdatePaymentRequest) (*model.PaymentRecord, error) {
	if req.ValidTo.Before(req.ValidFrom) {
		return nil, ErrInvalidPeriod
	}
	p, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Amount = req.Amount
	p.PaymentDate = req.PaymentDate
	p.ValidFrom = req.ValidFrom
	p.ValidTo = req.ValidTo
	p.Status = req.Status
	p.Notes = req.Notes

	if err := s.paymentRepo.Update(ctx, p); err != nil {
		s.log.Error().Err(err).Int("payment_id", id).Msg("failed to update payment")
		return nil, err
	}
	s.notify.studentChanged(ctx, p.StudentID)
	return s.paymentRepo.GetByID(ctx, id)
}

// Delete removes a payment.
func (s *PaymentService) Delete(ctx context.Context, id int) error {
	p, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.paymentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.notify.studentChanged(ctx, p.StudentID)
	return nil
}

// Prorate shrinks a payment to the sessions actually attended and applies
// the optional student lifecycle change. Both are stored atomically.
// A payment is prorated at most once: its amount is already the adjusted
// total afterwards.
func (s *PaymentService) Prorate(ctx context.Context, id int, req model.ProrateRequest) (*ProrationResult, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.Status == model.PaymentPartialRefund {
		return nil, ErrAlreadyProrated
	}
	student, err := s.studentRepo.GetByID(ctx, payment.StudentID)
	if err != nil {
		return nil, fmt.Errorf("load student %d: %w", payment.StudentID, err)
	}
	bc, err := s.contextFor(ctx, *student, nil)
	if err != nil {
		return nil, err
	}

	planned := billing.SessionsPerCycle(bc.cycle)
	switch {
	case req.PlannedSessions != nil:
		planned = *req.PlannedSessions
	case payment.PlannedSessions != nil:
		planned = *payment.PlannedSessions
	}

	var actual int
	if req.ActualSessions != nil {
		actual = *req.ActualSessions
	} else {
		records, err := s.attendanceRepo.ListByStudent(ctx, payment.StudentID)
		if err != nil {
			return nil, err
		}
		actual = attendance.Summarize(attendance.InRange(records, payment.ValidFrom, payment.ValidTo)).Attended()
	}

	result := billing.Prorate(*payment, planned, actual, req.Reason)

	var changed *model.Student
	if req.StudentStatus != nil {
		today := s.today()
		switch *req.StudentStatus {
		case model.StudentSuspended:
			err = suspend(student, today, req.Reason)
		case model.StudentInactive:
			err = deactivate(student, today)
		default:
			err = fmt.Errorf("%w: unsupported student status %q", ErrInvalidInput, *req.StudentStatus)
		}
		if err != nil {
			return nil, err
		}
		changed = student
	}

	if err := s.paymentRepo.ApplyProration(ctx, &result.Payment, changed); err != nil {
		s.log.Error().Err(err).Int("payment_id", id).Msg("failed to store proration")
		return nil, err
	}

	s.log.Info().
		Int("payment_id", id).
		Int("planned", planned).
		Int("actual", actual).
		Int64("original", result.OriginalAmount).
		Int64("adjusted", result.AdjustedAmount).
		Msg("payment prorated")

	s.notify.studentChanged(ctx, payment.StudentID)

	return &ProrationResult{Proration: result, Student: student}, nil
}

// StudentStatus derives a student's payment status: the strict status used
// in listings, the grace-period status of the detail view, and what is due.
func (s *PaymentService) StudentStatus(ctx context.Context, studentID int) (*model.PaymentStatusView, error) {
	bc, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	mode, err := s.fees.FeeMode(ctx)
	if err != nil {
		return nil, err
	}
	view := s.statusView(bc, payments, mode, s.today())
	return &view, nil
}

// StatusesFor resolves the strict status of many students at once.
func (s *PaymentService) StatusesFor(ctx context.Context, students []model.Student) (map[int]model.PaymentStatusView, error) {
	views := make(map[int]model.PaymentStatusView, len(students))
	if len(students) == 0 {
		return views, nil
	}

	ids := make([]int, len(students))
	for i, st := range students {
		ids[i] = st.ID
	}
	payments, err := s.paymentRepo.ListByStudents(ctx, ids)
	if err != nil {
		return nil, err
	}
	classList, err := s.classRepo.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	classes := make(map[int]*model.ClassOffering, len(classList))
	for i := range classList {
		classes[classList[i].ID] = &classList[i]
	}
	mode, err := s.fees.FeeMode(ctx)
	if err != nil {
		return nil, err
	}

	today := s.today()
	for _, st := range students {
		bc, err := s.contextFor(ctx, st, classes)
		if err != nil {
			return nil, err
		}
		views[st.ID] = s.statusView(bc, payments[st.ID], mode, today)
	}
	return views, nil
}

func (s *PaymentService) statusView(bc *billingContext, payments []model.PaymentRecord, mode model.FeeMode, today calendar.Date) model.PaymentStatusView {
	strict := billing.ResolveStatus(bc.student, payments, today)
	detail := billing.ResolveDetailStatus(bc.student, payments, today)

	view := model.PaymentStatusView{
		StudentID:    bc.student.ID,
		CycleType:    bc.cycle,
		Status:       strict.Status,
		DetailStatus: detail.Status,
		NextDueFrom:  strict.NextDueFrom,
		NextDueTo:    strict.NextDueTo,
		Latest:       strict.Latest,
	}
	if strict.NextDueFrom != nil {
		_, view.AmountDue = bc.cycleFee(mode)
	}
	return view
}
