package billing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stemsi/tuition-backend/internal/model"
)

// AdjustedAmount prorates original down to the sessions actually attended.
//
// The result is round-half-up of original/planned*actual. It returns
// original unchanged when planned <= 0 or when actual >= planned.
func AdjustedAmount(original int64, planned, actual int) int64 {
	if planned <= 0 || actual >= planned {
		return original
	}
	if actual < 0 {
		actual = 0
	}
	// Multiply before dividing so exact halves stay exact.
	return decimal.NewFromInt(original).
		Mul(decimal.NewFromInt(int64(actual))).
		DivRound(decimal.NewFromInt(int64(planned)), 0).
		IntPart()
}

// PerSessionAmount is original/planned, or zero when planned <= 0.
func PerSessionAmount(original int64, planned int) decimal.Decimal {
	if planned <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(original).Div(decimal.NewFromInt(int64(planned)))
}

// Proration is the outcome of prorating one payment.
type Proration struct {
	Payment        model.PaymentRecord `json:"payment"`
	OriginalAmount int64               `json:"original_amount"`
	AdjustedAmount int64               `json:"adjusted_amount"`
	RefundAmount   int64               `json:"refund_amount"`
	PerSession     decimal.Decimal     `json:"per_session_amount"`
}

// Adjusted reports whether the amount went down.
func (p Proration) Adjusted() bool {
	return p.AdjustedAmount < p.OriginalAmount
}

// Prorate applies AdjustedAmount to a payment and returns the updated copy.
// When the amount decreases the payment becomes partial_refund and a
// description of the adjustment is appended to its reason and notes.
func Prorate(payment model.PaymentRecord, planned, actual int, reason string) Proration {
	original := payment.Amount
	adjusted := AdjustedAmount(original, planned, actual)

	planned, actual = max(planned, 0), max(actual, 0)
	payment.PlannedSessions = &planned
	payment.ActualSessions = &actual

	if adjusted < original {
		note := AdjustmentNote(planned, actual, reason)
		payment.Amount = adjusted
		payment.Status = model.PaymentPartialRefund
		payment.AdjustmentReason = appendNote(payment.AdjustmentReason, note)
		payment.Notes = appendNote(payment.Notes, note)
	}

	return Proration{
		Payment:        payment,
		OriginalAmount: original,
		AdjustedAmount: adjusted,
		RefundAmount:   original - adjusted,
		PerSession:     PerSessionAmount(original, planned),
	}
}

// AdjustmentNote renders the human-readable proration description.
func AdjustmentNote(planned, actual int, reason string) string {
	note := fmt.Sprintf("Adjusted: %d/%d sessions.", actual, planned)
	if r := strings.TrimSpace(reason); r != "" {
		note += " " + r
	}
	return note
}

func appendNote(existing *string, note string) *string {
	if existing == nil || strings.TrimSpace(*existing) == "" {
		return &note
	}
	joined := *existing + "\n" + note
	return &joined
}
