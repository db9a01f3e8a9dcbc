package service

import "context"

// StudentChangeListener is told when data shown for a student changed.
type StudentChangeListener interface {
	StudentChanged(ctx context.Context, studentID int)
}

// FeeModeListener is told when the fee calculation mode changed, which
// affects the amount due of every student.
type FeeModeListener interface {
	FeeModeChanged(ctx context.Context)
}

type listeners []StudentChangeListener

func (ls listeners) studentChanged(ctx context.Context, studentID int) {
	for _, l := range ls {
		l.StudentChanged(ctx, studentID)
	}
}
