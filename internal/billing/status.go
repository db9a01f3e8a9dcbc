package billing

import (
	"github.com/stemsi/tuition-backend/internal/calendar"
	"github.com/stemsi/tuition-backend/internal/model"
)

// Grace windows of the per-student detail view. Fixed business policy.
const (
	GraceNoPaymentDays   = 14
	GraceAfterExpiryDays = 7
)

// Policy selects how strictly an expired or missing payment is judged.
type Policy int

const (
	// Strict marks a student overdue the day after their coverage ends.
	Strict Policy = iota
	// Grace is used by the student detail view: overdue only after
	// GraceNoPaymentDays without any payment, or GraceAfterExpiryDays past
	// the end of the latest coverage.
	Grace
)

// Resolution is the derived payment state of a student on a given day.
// NextDueFrom/NextDueTo are only set when the student has no current coverage.
type Resolution struct {
	Status      model.PaymentStatus
	NextDueFrom *calendar.Date
	NextDueTo   *calendar.Date
	Latest      *model.PaymentRecord
}

// ResolveStatus applies the Strict policy.
func ResolveStatus(student model.Student, payments []model.PaymentRecord, today calendar.Date) Resolution {
	return Resolve(student, payments, today, Strict)
}

// ResolveDetailStatus applies the Grace policy.
func ResolveDetailStatus(student model.Student, payments []model.PaymentRecord, today calendar.Date) Resolution {
	return Resolve(student, payments, today, Grace)
}

// Resolve derives a student's payment status from their payment history.
// The cycle type comes from the student; callers fill in the class default
// beforehand when the student has no override. Per-day students are never
// reported overdue.
func Resolve(student model.Student, payments []model.PaymentRecord, today calendar.Date, policy Policy) Resolution {
	cycle := student.EffectiveCycle(nil)
	perDay := cycle == model.CyclePerDay

	latest := LatestPayment(payments)
	if latest == nil {
		from, to := today, EndOfCycle(today, cycle)
		res := Resolution{Status: model.PaymentPending, NextDueFrom: &from, NextDueTo: &to}
		if policy == Grace && !perDay {
			since := student.ActiveSince()
			if !since.IsZero() && since.DaysUntil(today) >= GraceNoPaymentDays {
				res.Status = model.PaymentOverdue
			}
		}
		return res
	}

	res := Resolution{Latest: latest}
	if !today.After(latest.ValidTo) {
		res.Status = latest.Status
		return res
	}

	from, to := NextCycle(latest.ValidTo, cycle)
	res.NextDueFrom, res.NextDueTo = &from, &to

	switch {
	case perDay:
		if latest.Status == model.PaymentPaid {
			res.Status = model.PaymentPaid
		} else {
			res.Status = model.PaymentPending
		}
	case policy == Grace && latest.ValidTo.DaysUntil(today) < GraceAfterExpiryDays:
		res.Status = model.PaymentPending
	default:
		res.Status = model.PaymentOverdue
	}
	return res
}

// LatestPayment returns the payment with the latest coverage end, or nil.
// Ties go to the later payment date, then the higher id.
func LatestPayment(payments []model.PaymentRecord) *model.PaymentRecord {
	var latest *model.PaymentRecord
	for i := range payments {
		p := &payments[i]
		if latest == nil || laterThan(p, latest) {
			latest = p
		}
	}
	if latest == nil {
		return nil
	}
	cp := *latest
	return &cp
}

func laterThan(a, b *model.PaymentRecord) bool {
	if c := a.ValidTo.Compare(b.ValidTo); c != 0 {
		return c > 0
	}
	if c := a.PaymentDate.Compare(b.PaymentDate); c != 0 {
		return c > 0
	}
	return a.ID > b.ID
}
