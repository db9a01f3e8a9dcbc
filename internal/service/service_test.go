package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/tuition-backend/internal/calendar"
	"github.com/stemsi/tuition-backend/internal/model"
	"github.com/stemsi/tuition-backend/internal/repository"
)

var (
	ctx   = context.Background()
	nop   = zerolog.Nop()
	today = calendar.MustParse("2024-06-15") // a Saturday
)

func mathClass() model.ClassOffering {
	return model.ClassOffering{
		ID:               1,
		Name:             "Toán 9",
		BaseFee:          125_000,
		ScheduleDays:     []string{"Thứ 3", "Thứ 7"},
		PaymentCycleType: model.CycleEightSessions,
		Status:           model.ClassActive,
	}
}

func student(id int, classID *int, registered string) model.Student {
	return model.Student{
		ID:               id,
		Name:             "Nguyễn Văn An",
		UniqueCode:       fmt.Sprintf("HS%03d", id),
		Phone:            "0901234567",
		ClassID:          classID,
		RegistrationDate: calendar.MustParse(registered),
		Status:           model.StudentActive,
		SuspendHistory:   []model.SuspendPeriod{},
	}
}

type fixture struct {
	classes    *memClasses
	students   *memStudents
	attendance *memAttendance
	payments   *memPayments
	settings   *memSettings
}

func newFixture() *fixture {
	students := newMemStudents(student(1, intPtr(1), "2024-05-01"), student(2, nil, "2024-05-01"))
	return &fixture{
		classes:    newMemClasses(mathClass()),
		students:   students,
		attendance: newMemAttendance(),
		payments:   newMemPayments(students),
		settings:   newMemSettings(),
	}
}

func (f *fixture) paymentService(mode model.FeeMode) *PaymentService {
	return NewPaymentService(f.payments, f.students, f.classes, f.attendance, fixedFees(mode), FixedClock(today), nop)
}

func TestFeeModeDefaultsToPerSession(t *testing.T) {
	settings := newMemSettings()
	svc := NewSettingService(settings, nil, nop)

	mode, err := svc.FeeMode(ctx)
	if err != nil || mode != model.FeePerSession {
		t.Fatalf("missing setting: mode=%q err=%v", mode, err)
	}

	settings.values[model.SettingFeeMode] = "garbage"
	if mode, _ := svc.FeeMode(ctx); mode != model.FeePerSession {
		t.Errorf("invalid stored value should fall back, got %q", mode)
	}

	if _, err := svc.SetFeeMode(ctx, "per_cycle"); err != nil {
		t.Fatalf("SetFeeMode: %v", err)
	}
	if settings.values[model.SettingFeeMode] != "PER_CYCLE" {
		t.Errorf("stored value = %q, want normalised PER_CYCLE", settings.values[model.SettingFeeMode])
	}
	if mode, _ := svc.FeeMode(ctx); mode != model.FeePerCycle {
		t.Errorf("mode after set = %q", mode)
	}

	if _, err := svc.SetFeeMode(ctx, "MONTHLY"); !errors.Is(err, ErrInvalidSetting) {
		t.Errorf("expected ErrInvalidSetting, got %v", err)
	}
	if err := svc.UpdateSettings(ctx, map[string]string{model.SettingFeeMode: "nope"}); !errors.Is(err, ErrInvalidSetting) {
		t.Errorf("bulk update should validate fee mode, got %v", err)
	}
}

func TestQuote(t *testing.T) {
	f := newFixture()

	quote, err := f.paymentService(model.FeePerSession).Quote(ctx, 1, nil)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if quote.Amount != 1_000_000 || quote.CycleType != model.CycleEightSessions {
		t.Errorf("per-session quote = %+v", quote)
	}
	if quote.ValidFrom != today || quote.ValidTo.String() != "2024-07-12" {
		t.Errorf("window = %s..%s", quote.ValidFrom, quote.ValidTo)
	}

	f.payments.rows[1] = model.PaymentRecord{
		ID: 1, StudentID: 1, Amount: 1_000_000, Status: model.PaymentPaid,
		PaymentDate: calendar.MustParse("2024-06-01"),
		ValidFrom:   calendar.MustParse("2024-06-01"),
		ValidTo:     calendar.MustParse("2024-06-28"),
	}
	quote, _ = f.paymentService(model.FeePerCycle).Quote(ctx, 1, nil)
	if quote.Amount != 125_000 {
		t.Errorf("per-cycle amount = %d", quote.Amount)
	}
	if quote.ValidFrom.String() != "2024-06-29" || quote.ValidTo.String() != "2024-07-26" {
		t.Errorf("next cycle = %s..%s", quote.ValidFrom, quote.ValidTo)
	}

	noClass, err := f.paymentService(model.FeePerSession).Quote(ctx, 2, nil)
	if err != nil {
		t.Fatalf("Quote without class: %v", err)
	}
	if noClass.Amount != 0 || noClass.CycleType != model.CycleMonthly {
		t.Errorf("student without class should owe nothing on a monthly cycle: %+v", noClass)
	}
}

func TestCreatePaymentDefaults(t *testing.T) {
	f := newFixture()
	svc := f.paymentService(model.FeePerSession)

	p, err := svc.Create(ctx, model.CreatePaymentRequest{StudentID: 1, ValidFrom: calendar.MustParse("2024-06-01")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Amount != 1_000_000 || p.ValidTo.String() != "2024-06-28" || p.Status != model.PaymentPaid || p.PaymentDate != today {
		t.Errorf("defaults not applied: %+v", p)
	}

	amount := int64(900_000)
	p, err = svc.Create(ctx, model.CreatePaymentRequest{
		StudentID: 1, Amount: &amount,
		ValidFrom: calendar.MustParse("2024-07-01"), ValidTo: datePtr("2024-07-31"),
	})
	if err != nil || p.Amount != 900_000 || p.ValidTo.String() != "2024-07-31" {
		t.Errorf("explicit values overridden: %+v err=%v", p, err)
	}

	_, err = svc.Create(ctx, model.CreatePaymentRequest{
		StudentID: 1, ValidFrom: calendar.MustParse("2024-07-01"), ValidTo: datePtr("2024-06-01"),
	})
	if !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("expected ErrInvalidPeriod, got %v", err)
	}

	_, err = svc.Create(ctx, model.CreatePaymentRequest{StudentID: 99, ValidFrom: today})
	if !errors.Is(err, ErrUnknownStudent) {
		t.Errorf("expected ErrUnknownStudent, got %v", err)
	}
}

func TestProrateWithSuspension(t *testing.T) {
	f := newFixture()
	f.payments.rows[7] = model.PaymentRecord{
		ID: 7, StudentID: 1, Amount: 1_000_000, Status: model.PaymentPaid,
		ValidFrom: calendar.MustParse("2024-06-01"), ValidTo: calendar.MustParse("2024-06-28"),
	}
	listener := &recordingListener{}
	svc := f.paymentService(model.FeePerSession)
	svc.Notify(listener)

	suspended := model.StudentSuspended
	res, err := svc.Prorate(ctx, 7, model.ProrateRequest{
		PlannedSessions: intPtr(8),
		ActualSessions:  intPtr(6),
		Reason:          "Nghỉ ốm",
		StudentStatus:   &suspended,
	})
	if err != nil {
		t.Fatalf("Prorate: %v", err)
	}
	if res.AdjustedAmount != 750_000 || res.RefundAmount != 250_000 {
		t.Errorf("amounts = %+v", res.Proration)
	}

	stored := f.payments.rows[7]
	if stored.Amount != 750_000 || stored.Status != model.PaymentPartialRefund {
		t.Errorf("stored payment = %+v", stored)
	}
	if stored.Notes == nil || *stored.Notes != "Adjusted: 6/8 sessions. Nghỉ ốm" {
		t.Errorf("notes = %v", stored.Notes)
	}

	st := f.students.rows[1]
	if st.Status != model.StudentSuspended || st.SuspendDate == nil || *st.SuspendDate != today {
		t.Errorf("student not suspended in the same write: %+v", st)
	}
	if f.payments.prorations != 1 || f.students.lifecycles != 0 {
		t.Errorf("writes must go through ApplyProration only (prorations=%d lifecycles=%d)",
			f.payments.prorations, f.students.lifecycles)
	}
	if len(listener.ids) != 1 || listener.ids[0] != 1 {
		t.Errorf("listener calls = %v", listener.ids)
	}
}

func TestProrateTwiceKeepsFirstAdjustment(t *testing.T) {
	f := newFixture()
	f.payments.rows[7] = model.PaymentRecord{
		ID: 7, StudentID: 1, Amount: 480_000, Status: model.PaymentPaid,
		ValidFrom: calendar.MustParse("2024-06-01"), ValidTo: calendar.MustParse("2024-06-28"),
	}
	svc := f.paymentService(model.FeePerSession)
	req := model.ProrateRequest{PlannedSessions: intPtr(8), ActualSessions: intPtr(4)}

	if _, err := svc.Prorate(ctx, 7, req); err != nil {
		t.Fatalf("first Prorate: %v", err)
	}
	first := f.payments.rows[7]
	if first.Amount != 240_000 {
		t.Fatalf("amount after first proration = %d, want 240000", first.Amount)
	}

	if _, err := svc.Prorate(ctx, 7, req); !errors.Is(err, ErrAlreadyProrated) {
		t.Fatalf("second Prorate error = %v, want ErrAlreadyProrated", err)
	}
	second := f.payments.rows[7]
	if second.Amount != 240_000 {
		t.Errorf("amount changed on repeat: %d", second.Amount)
	}
	if second.Notes == nil || *second.Notes != "Adjusted: 4/8 sessions." {
		t.Errorf("notes = %v", second.Notes)
	}
	if f.payments.prorations != 1 {
		t.Errorf("prorations stored = %d, want 1", f.payments.prorations)
	}
}

func TestProrateDefaultsFromAttendance(t *testing.T) {
	f := newFixture()
	f.payments.rows[7] = model.PaymentRecord{
		ID: 7, StudentID: 1, Amount: 1_000_000, Status: model.PaymentPaid,
		ValidFrom: calendar.MustParse("2024-06-01"), ValidTo: calendar.MustParse("2024-06-28"),
	}
	marks := []struct {
		date   string
		status model.AttendanceStatus
	}{
		{"2024-05-28", model.AttendancePresent}, // before coverage
		{"2024-06-04", model.AttendancePresent},
		{"2024-06-08", model.AttendanceMakeup},
		{"2024-06-11", model.AttendanceAbsent},
		{"2024-06-15", model.AttendanceTeacherAbsent},
		{"2024-06-18", model.AttendancePresent},
	}
	for i, m := range marks {
		f.attendance.rows[i+1] = model.AttendanceRecord{ID: i + 1, StudentID: 1, Date: calendar.MustParse(m.date), Status: m.status}
	}

	res, err := f.paymentService(model.FeePerSession).Prorate(ctx, 7, model.ProrateRequest{})
	if err != nil {
		t.Fatalf("Prorate: %v", err)
	}
	// 8 planned sessions from the cycle, 3 attended within coverage.
	if res.AdjustedAmount != 375_000 {
		t.Errorf("adjusted = %d, want 375000", res.AdjustedAmount)
	}
	if p := f.payments.rows[7]; *p.PlannedSessions != 8 || *p.ActualSessions != 3 {
		t.Errorf("sessions stored = %d/%d", *p.ActualSessions, *p.PlannedSessions)
	}
}

func TestProrateFailureLeavesStudentUntouched(t *testing.T) {
	f := newFixture()
	f.payments.rows[7] = model.PaymentRecord{ID: 7, StudentID: 1, Amount: 800_000, Status: model.PaymentPaid}
	f.payments.failProrate = true

	inactive := model.StudentInactive
	_, err := f.paymentService(model.FeePerSession).Prorate(ctx, 7, model.ProrateRequest{
		PlannedSessions: intPtr(8), ActualSessions: intPtr(2), StudentStatus: &inactive,
	})
	if err == nil {
		t.Fatal("expected the store error")
	}
	if f.students.rows[1].Status != model.StudentActive || f.payments.rows[7].Amount != 800_000 {
		t.Error("nothing may be written when the transaction fails")
	}
}

func TestStudentStatus(t *testing.T) {
	f := newFixture()
	svc := f.paymentService(model.FeePerSession)

	view, err := svc.StudentStatus(ctx, 1)
	if err != nil {
		t.Fatalf("StudentStatus: %v", err)
	}
	// Registered 45 days ago, never paid.
	if view.Status != model.PaymentPending || view.DetailStatus != model.PaymentOverdue {
		t.Errorf("statuses = %s / %s", view.Status, view.DetailStatus)
	}
	if view.AmountDue != 1_000_000 || view.NextDueFrom == nil || *view.NextDueFrom != today {
		t.Errorf("due = %d from %v", view.AmountDue, view.NextDueFrom)
	}

	f.payments.rows[1] = model.PaymentRecord{
		ID: 1, StudentID: 1, Status: model.PaymentPaid,
		ValidFrom: calendar.MustParse("2024-06-01"), ValidTo: calendar.MustParse("2024-06-28"),
	}
	view, _ = svc.StudentStatus(ctx, 1)
	if view.Status != model.PaymentPaid || view.AmountDue != 0 || view.NextDueFrom != nil {
		t.Errorf("covered student = %+v", view)
	}

	noClass, err := svc.StudentStatus(ctx, 2)
	if err != nil {
		t.Fatalf("StudentStatus without class: %v", err)
	}
	if noClass.AmountDue != 0 || noClass.Status != model.PaymentPending {
		t.Errorf("student without class = %+v", noClass)
	}

	if _, err := svc.StudentStatus(ctx, 42); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("unknown student: %v", err)
	}
}

func TestSuspendRestartHistory(t *testing.T) {
	f := newFixture()
	svc := NewStudentService(f.students, f.classes, FixedClock(today), nop)

	st, err := svc.Suspend(ctx, 1, model.SuspendStudentRequest{Reason: " Về quê ", SuspendDate: datePtr("2024-06-01")})
	if err != nil {
		t.Fatalf("Suspend: %v", err)
	}
	if st.Status != model.StudentSuspended || *st.SuspendReason != "Về quê" {
		t.Errorf("suspended student = %+v", st)
	}
	if _, err := svc.Suspend(ctx, 1, model.SuspendStudentRequest{Reason: "again"}); !errors.Is(err, ErrStudentNotActive) {
		t.Errorf("double suspend: %v", err)
	}
	if _, err := svc.Restart(ctx, 1, model.RestartStudentRequest{RestartDate: datePtr("2024-05-20")}); !errors.Is(err, ErrRestartBeforeSuspend) {
		t.Errorf("restart before suspend: %v", err)
	}

	st, err = svc.Restart(ctx, 1, model.RestartStudentRequest{})
	if err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if st.Status != model.StudentActive || st.SuspendDate != nil || st.SuspendReason != nil {
		t.Errorf("suspension fields must be cleared: %+v", st)
	}
	want := model.SuspendPeriod{
		SuspendDate: calendar.MustParse("2024-06-01"),
		RestartDate: today,
		Reason:      "Về quê",
	}
	if len(st.SuspendHistory) != 1 || st.SuspendHistory[0] != want {
		t.Errorf("history = %+v", st.SuspendHistory)
	}
	if st.ActiveSince() != today {
		t.Errorf("ActiveSince = %s, want restart date", st.ActiveSince())
	}

	if _, err := svc.Restart(ctx, 1, model.RestartStudentRequest{}); !errors.Is(err, ErrNotSuspended) {
		t.Errorf("restart of active student: %v", err)
	}

	st, err = svc.Deactivate(ctx, 1)
	if err != nil || st.Status != model.StudentInactive {
		t.Fatalf("Deactivate: %+v %v", st, err)
	}
	if _, err := svc.Deactivate(ctx, 1); !errors.Is(err, ErrStudentInactive) {
		t.Errorf("double deactivate: %v", err)
	}
}

func TestCreateStudentChecksClass(t *testing.T) {
	f := newFixture()
	closed := mathClass()
	closed.ID, closed.Status = 2, model.ClassClosed
	f.classes.rows[2] = closed
	svc := NewStudentService(f.students, f.classes, FixedClock(today), nop)

	monthly := model.CycleType("monthly")
	st, err := svc.Create(ctx, model.CreateStudentRequest{
		Name: "Trần Thị Bình", UniqueCode: "hs010", ClassID: intPtr(1), PaymentCycleType: &monthly,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if st.UniqueCode != "HS010" || *st.PaymentCycleType != model.CycleMonthly || st.RegistrationDate != today {
		t.Errorf("created student = %+v", st)
	}

	if _, err := svc.Create(ctx, model.CreateStudentRequest{Name: "X Y", UniqueCode: "hs011", ClassID: intPtr(2)}); !errors.Is(err, ErrClassClosed) {
		t.Errorf("closed class: %v", err)
	}
	if _, err := svc.Create(ctx, model.CreateStudentRequest{Name: "X Y", UniqueCode: "hs012", ClassID: intPtr(9)}); !errors.Is(err, ErrUnknownClass) {
		t.Errorf("unknown class: %v", err)
	}
}

func TestListStudentsPaginates(t *testing.T) {
	f := newFixture()
	for i := 3; i <= 25; i++ {
		f.students.rows[i] = student(i, intPtr(1), "2024-01-01")
	}
	svc := NewStudentService(f.students, f.classes, FixedClock(today), nop)

	page, pg, err := svc.ListStudents(ctx, model.StudentFilter{}, 2, 10)
	if err != nil {
		t.Fatalf("ListStudents: %v", err)
	}
	if len(page) != 10 || page[0].ID != 11 || pg.TotalItems != 25 || pg.TotalPages != 3 {
		t.Errorf("page 2 = %d items from %d, pagination %+v", len(page), page[0].ID, pg)
	}
	beyond, _, _ := svc.ListStudents(ctx, model.StudentFilter{}, 9, 10)
	if beyond == nil || len(beyond) != 0 {
		t.Errorf("page past the end should be empty, got %v", beyond)
	}
}

func TestBulkDeletePartialFailure(t *testing.T) {
	f := newFixture()
	for id := 1; id <= 6; id++ {
		f.attendance.rows[id] = model.AttendanceRecord{ID: id, StudentID: 1, Date: today, Status: model.AttendancePresent}
	}
	f.attendance.failIDs[4] = true
	svc := NewAttendanceService(f.attendance, f.students, 3, nop)

	results := svc.BulkDelete(ctx, []int{1, 2, 99, 4, 5})
	if len(results) != 5 {
		t.Fatalf("expected one result per id, got %d", len(results))
	}
	want := []struct {
		id      int
		success bool
		err     string
	}{
		{1, true, ""}, {2, true, ""}, {99, false, "not found"}, {4, false, "delete failed"}, {5, true, ""},
	}
	for i, w := range want {
		r := results[i]
		if r.ID != w.id || r.Success != w.success || r.Error != w.err {
			t.Errorf("result %d = %+v, want %+v", i, r, w)
		}
	}
	if _, ok := f.attendance.rows[4]; !ok {
		t.Error("failed item should still exist")
	}
	if _, ok := f.attendance.rows[6]; !ok {
		t.Error("unrequested record was deleted")
	}
}

func TestAttendanceReport(t *testing.T) {
	f := newFixture()
	svc := NewAttendanceService(f.attendance, f.students, 1, nop)

	for _, d := range []string{"2024-06-11", "2024-06-11", "2024-06-13"} {
		if _, err := svc.Create(ctx, model.AttendanceRequest{StudentID: 1, Date: calendar.MustParse(d), Status: model.AttendancePresent}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if _, err := svc.Create(ctx, model.AttendanceRequest{StudentID: 77, Date: today, Status: model.AttendancePresent}); !errors.Is(err, ErrUnknownStudent) {
		t.Errorf("unknown student: %v", err)
	}

	report, err := svc.Report(ctx, AttendanceQuery{StudentID: intPtr(1)})
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if report.Summary.Present != 2+1 || len(report.Days) != 2 || report.Days[0].Date.String() != "2024-06-13" {
		t.Errorf("report = %+v", report)
	}

	empty, _ := svc.Report(ctx, AttendanceQuery{From: calendar.MustParse("2020-01-01"), To: calendar.MustParse("2020-01-31")})
	if empty.Days == nil || empty.Summary.Total != 0 {
		t.Errorf("empty report = %+v", empty)
	}
}

func TestTodayBoard(t *testing.T) {
	f := newFixture()
	english := model.ClassOffering{ID: 2, Name: "Anh văn 2", ScheduleDays: []string{"Thứ 2"}, Status: model.ClassActive}
	physics := model.ClassOffering{ID: 3, Name: "Lý 10", ScheduleDays: []string{"Thứ 5, Thứ 7"}, Status: model.ClassActive}
	closed := model.ClassOffering{ID: 4, Name: "Hóa 1", ScheduleDays: []string{"Thứ 7"}, Status: model.ClassClosed}
	f.classes.rows[2], f.classes.rows[3], f.classes.rows[4] = english, physics, closed
	f.students.rows[3] = student(3, intPtr(3), "2024-01-01")
	f.attendance.rows[1] = model.AttendanceRecord{ID: 1, StudentID: 1, Date: today, Status: model.AttendancePresent}

	svc := NewClassService(f.classes, f.students, f.attendance, FixedClock(today), nop)
	day, board, err := svc.TodayBoard(ctx)
	if err != nil {
		t.Fatalf("TodayBoard: %v", err)
	}
	if day != today || len(board) != 3 {
		t.Fatalf("board for %s has %d classes", day, len(board))
	}
	// Lý 10 is scheduled and waiting, Toán 9 scheduled and done, Anh văn 2 not today.
	order := []string{"Lý 10", "Toán 9", "Anh văn 2"}
	for i, name := range order {
		if board[i].Class.Name != name {
			t.Fatalf("position %d = %s, want %s", i, board[i].Class.Name, name)
		}
	}
	if !board[1].AttendedToday || board[1].ActiveStudents != 1 {
		t.Errorf("Toán 9 view = %+v", board[1])
	}
}

func TestCloseAndReopenClass(t *testing.T) {
	f := newFixture()
	svc := NewClassService(f.classes, f.students, f.attendance, FixedClock(today), nop)

	c, err := svc.Close(ctx, 1, model.CloseClassRequest{Reason: "Hết học kỳ"})
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if c.Status != model.ClassClosed || *c.ClosedDate != today || *c.ClosedReason != "Hết học kỳ" {
		t.Errorf("closed class = %+v", c)
	}
	if _, err := svc.Close(ctx, 1, model.CloseClassRequest{Reason: "x"}); !errors.Is(err, ErrClassClosed) {
		t.Errorf("double close: %v", err)
	}

	quote, _ := f.paymentService(model.FeePerSession).Quote(ctx, 1, nil)
	if quote.Amount != 0 {
		t.Errorf("closed class should not accrue fees, quote %d", quote.Amount)
	}

	c, err = svc.Reopen(ctx, 1)
	if err != nil || c.Status != model.ClassActive || c.ClosedDate != nil {
		t.Fatalf("Reopen: %+v %v", c, err)
	}
	if _, err := svc.Reopen(ctx, 1); !errors.Is(err, ErrClassNotClosed) {
		t.Errorf("reopen of open class: %v", err)
	}
}

func TestCreateClassNormalisesCycle(t *testing.T) {
	f := newFixture()
	svc := NewClassService(f.classes, f.students, f.attendance, FixedClock(today), nop)

	c, err := svc.Create(ctx, model.ClassRequest{Name: "Văn 8", BaseFee: 100_000, PaymentCycleType: "ten-sessions"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.PaymentCycleType != model.CycleTenSessions || c.ScheduleDays == nil || c.Status != model.ClassActive {
		t.Errorf("created class = %+v", c)
	}
	if _, err := svc.Create(ctx, model.ClassRequest{Name: "x", BaseFee: 1, PaymentCycleType: "weekly"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("unknown cycle: %v", err)
	}
}

func TestClassChangesNotifyItsStudents(t *testing.T) {
	f := newFixture()
	f.students.rows[3] = student(3, intPtr(1), "2024-05-01")
	listener := &recordingListener{}
	svc := NewClassService(f.classes, f.students, f.attendance, FixedClock(today), nop)
	svc.Notify(listener)

	req := model.ClassRequest{Name: "Toán 9A", BaseFee: 150_000, PaymentCycleType: model.CycleEightSessions}
	if _, err := svc.Update(ctx, 1, req); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := svc.Close(ctx, 1, model.CloseClassRequest{Reason: "Hết học kỳ"}); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := svc.Reopen(ctx, 1); err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	// Student 2 has no class and must never be notified.
	want := []int{1, 3, 1, 3, 1, 3}
	if fmt.Sprint(listener.ids) != fmt.Sprint(want) {
		t.Errorf("notified %v, want %v", listener.ids, want)
	}

	listener.ids = nil
	if _, err := svc.Reopen(ctx, 1); !errors.Is(err, ErrClassNotClosed) {
		t.Fatalf("reopen of an active class: %v", err)
	}
	if len(listener.ids) != 0 {
		t.Errorf("a refused change notified %v", listener.ids)
	}
}

func TestFeeModeChangeNotifies(t *testing.T) {
	settings := newMemSettings()
	listener := &recordingListener{}
	svc := NewSettingService(settings, nil, nop)
	svc.Notify(listener)

	if _, err := svc.SetFeeMode(ctx, model.FeePerCycle); err != nil {
		t.Fatalf("SetFeeMode: %v", err)
	}
	if err := svc.UpdateSettings(ctx, map[string]string{model.SettingFeeMode: "per_session"}); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if err := svc.UpdateSettings(ctx, map[string]string{"center_name": "STEM"}); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if _, err := svc.SetFeeMode(ctx, "MONTHLY"); !errors.Is(err, ErrInvalidSetting) {
		t.Fatalf("expected ErrInvalidSetting, got %v", err)
	}
	if listener.feeModeSets != 2 {
		t.Errorf("fee mode notifications = %d, want 2", listener.feeModeSets)
	}
}

func TestDashboardData(t *testing.T) {
	f := newFixture()
	store := &memDashboard{counts: repository.SummaryCounts{TotalStudents: 2, ActiveStudents: 2, ActiveClasses: 1}}
	classes := NewClassService(f.classes, f.students, f.attendance, FixedClock(today), nop)
	svc := NewDashboardService(store, f.students, classes, f.paymentService(model.FeePerSession), FixedClock(today), nop)

	data, err := svc.GetDashboardData(ctx)
	if err != nil {
		t.Fatalf("GetDashboardData: %v", err)
	}
	if data.Date != today || data.Counts != store.counts {
		t.Errorf("header = %s %+v", data.Date, data.Counts)
	}
	total := 0
	for _, n := range data.PaymentStatusCounts {
		total += n
	}
	if total != 2 {
		t.Errorf("status counts %v cover %d students, want 2", data.PaymentStatusCounts, total)
	}
	if data.Revenue == nil || data.Overdue == nil {
		t.Error("dashboard lists must not be null")
	}
	if want := calendar.MustParse("2024-01-01"); store.since != want {
		t.Errorf("revenue since %s, want %s", store.since, want)
	}

	store.err = errors.New("connection refused")
	if _, err := svc.GetDashboardData(ctx); !errors.Is(err, store.err) {
		t.Errorf("store failure not returned: %v", err)
	}
}

func TestPortalLookup(t *testing.T) {
	f := newFixture()
	payments := f.paymentService(model.FeePerSession)
	svc := NewPortalService(f.students, f.classes, f.attendance, payments, nil, 0, FixedClock(today), nop)

	code := f.students.rows[1].UniqueCode
	view, err := svc.Lookup(ctx, strings.ToLower(code), "090 123 4567")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if view.Class == nil || view.Class.Name != "Toán 9" {
		t.Errorf("class = %+v", view.Class)
	}
	// The portal shows the grace-period status.
	if view.Payment.Status != model.PaymentOverdue {
		t.Errorf("portal status = %s", view.Payment.Status)
	}
	if view.RecentPayments == nil || view.Attendance.Days == nil {
		t.Error("portal lists must not be null")
	}

	if _, err := svc.Lookup(ctx, code, "0000000000"); !errors.Is(err, ErrPortalNotFound) {
		t.Errorf("wrong phone: %v", err)
	}
	if _, err := svc.Lookup(ctx, "NOPE", "0901234567"); !errors.Is(err, ErrPortalNotFound) {
		t.Errorf("wrong code: %v", err)
	}
}
