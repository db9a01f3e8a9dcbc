package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/stemsi/tuition-backend/internal/calendar"
	"github.com/stemsi/tuition-backend/internal/model"
	"github.com/stemsi/tuition-backend/internal/repository"
)

type memSettings struct {
	values map[string]string
}

func newMemSettings() *memSettings { return &memSettings{values: map[string]string{}} }

func (m *memSettings) GetAll(ctx context.Context) ([]model.AppSetting, error) {
	var out []model.AppSetting
	for k, v := range m.values {
		out = append(out, model.AppSetting{Key: k, Value: v})
	}
	return out, nil
}

func (m *memSettings) GetByKey(ctx context.Context, key string) (*model.AppSetting, error) {
	v, ok := m.values[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &model.AppSetting{Key: key, Value: v}, nil
}

func (m *memSettings) Upsert(ctx context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

type memClasses struct {
	rows   map[int]model.ClassOffering
	nextID int
}

func newMemClasses(classes ...model.ClassOffering) *memClasses {
	m := &memClasses{rows: map[int]model.ClassOffering{}, nextID: 100}
	for _, c := range classes {
		m.rows[c.ID] = c
	}
	return m
}

func (m *memClasses) GetByID(ctx context.Context, id int) (*model.ClassOffering, error) {
	c, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (m *memClasses) List(ctx context.Context, status *model.ClassStatus) ([]model.ClassOffering, error) {
	var out []model.ClassOffering
	for _, c := range m.rows {
		if status == nil || c.Status == *status {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memClasses) Create(ctx context.Context, c *model.ClassOffering) error {
	m.nextID++
	c.ID = m.nextID
	m.rows[c.ID] = *c
	return nil
}

func (m *memClasses) Update(ctx context.Context, c *model.ClassOffering) error {
	old, ok := m.rows[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	c.Status, c.ClosedDate, c.ClosedReason = old.Status, old.ClosedDate, old.ClosedReason
	m.rows[c.ID] = *c
	return nil
}

func (m *memClasses) Close(ctx context.Context, id int, on calendar.Date, reason string) error {
	c, ok := m.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Status, c.ClosedDate, c.ClosedReason = model.ClassClosed, &on, &reason
	m.rows[id] = c
	return nil
}

func (m *memClasses) Reopen(ctx context.Context, id int) error {
	c, ok := m.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Status, c.ClosedDate, c.ClosedReason = model.ClassActive, nil, nil
	m.rows[id] = c
	return nil
}

func (m *memClasses) Delete(ctx context.Context, id int) error {
	if _, ok := m.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type memStudents struct {
	rows       map[int]model.Student
	nextID     int
	lifecycles int
}

func newMemStudents(students ...model.Student) *memStudents {
	m := &memStudents{rows: map[int]model.Student{}, nextID: 100}
	for _, s := range students {
		m.rows[s.ID] = s
	}
	return m
}

func (m *memStudents) GetByID(ctx context.Context, id int) (*model.Student, error) {
	s, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	s.SuspendHistory = append([]model.SuspendPeriod(nil), s.SuspendHistory...)
	return &s, nil
}

func (m *memStudents) GetByCode(ctx context.Context, code string) (*model.Student, error) {
	for _, s := range m.rows {
		if s.UniqueCode == code {
			return m.GetByID(ctx, s.ID)
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStudents) List(ctx context.Context, f model.StudentFilter) ([]model.Student, error) {
	var out []model.Student
	for _, s := range m.rows {
		if f.ClassID != nil && (s.ClassID == nil || *s.ClassID != *f.ClassID) {
			continue
		}
		if f.Status != nil && s.Status != *f.Status {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStudents) Create(ctx context.Context, s *model.Student) error {
	m.nextID++
	s.ID = m.nextID
	m.rows[s.ID] = *s
	return nil
}

func (m *memStudents) Update(ctx context.Context, s *model.Student) error {
	if _, ok := m.rows[s.ID]; !ok {
		return repository.ErrNotFound
	}
	m.rows[s.ID] = *s
	return nil
}

func (m *memStudents) UpdateLifecycle(ctx context.Context, s *model.Student) error {
	if _, ok := m.rows[s.ID]; !ok {
		return repository.ErrNotFound
	}
	m.lifecycles++
	m.rows[s.ID] = *s
	return nil
}

func (m *memStudents) Delete(ctx context.Context, id int) error {
	if _, ok := m.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memStudents) CountByClass(ctx context.Context, status model.StudentStatus) (map[int]int, error) {
	counts := map[int]int{}
	for _, s := range m.rows {
		if s.ClassID != nil && s.Status == status {
			counts[*s.ClassID]++
		}
	}
	return counts, nil
}

// memAttendance is safe for concurrent use; bulk deletes run in parallel.
type memAttendance struct {
	mu      sync.Mutex
	rows    map[int]model.AttendanceRecord
	nextID  int
	failIDs map[int]bool
}

func newMemAttendance(records ...model.AttendanceRecord) *memAttendance {
	m := &memAttendance{rows: map[int]model.AttendanceRecord{}, nextID: 1000, failIDs: map[int]bool{}}
	for _, r := range records {
		m.rows[r.ID] = r
	}
	return m
}

func (m *memAttendance) GetByID(ctx context.Context, id int) (*model.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (m *memAttendance) sorted(keep func(model.AttendanceRecord) bool) []model.AttendanceRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.AttendanceRecord
	for _, r := range m.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *memAttendance) ListByStudent(ctx context.Context, studentID int) ([]model.AttendanceRecord, error) {
	return m.sorted(func(r model.AttendanceRecord) bool { return r.StudentID == studentID }), nil
}

func (m *memAttendance) ListByDateRange(ctx context.Context, from, to calendar.Date) ([]model.AttendanceRecord, error) {
	return m.sorted(func(r model.AttendanceRecord) bool {
		return (from.IsZero() || !r.Date.Before(from)) && (to.IsZero() || !r.Date.After(to))
	}), nil
}

func (m *memAttendance) ListByClassAndDate(ctx context.Context, classID int, day calendar.Date) ([]model.AttendanceRecord, error) {
	return nil, errors.New("not used")
}

func (m *memAttendance) Create(ctx context.Context, a *model.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	a.ID = m.nextID
	m.rows[a.ID] = *a
	return nil
}

func (m *memAttendance) Update(ctx context.Context, a *model.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[a.ID]; !ok {
		return repository.ErrNotFound
	}
	m.rows[a.ID] = *a
	return nil
}

func (m *memAttendance) Delete(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failIDs[id] {
		return errors.New("connection reset")
	}
	if _, ok := m.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type memPayments struct {
	rows        map[int]model.PaymentRecord
	nextID      int
	students    *memStudents
	prorations  int
	failProrate bool
}

func newMemPayments(students *memStudents, payments ...model.PaymentRecord) *memPayments {
	m := &memPayments{rows: map[int]model.PaymentRecord{}, nextID: 500, students: students}
	for _, p := range payments {
		m.rows[p.ID] = p
	}
	return m
}

func (m *memPayments) GetByID(ctx context.Context, id int) (*model.PaymentRecord, error) {
	p, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *memPayments) ListByStudent(ctx context.Context, studentID int) ([]model.PaymentRecord, error) {
	var out []model.PaymentRecord
	for _, p := range m.rows {
		if p.StudentID == studentID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ValidTo.After(out[j].ValidTo) })
	return out, nil
}

func (m *memPayments) ListByStudents(ctx context.Context, ids []int) (map[int][]model.PaymentRecord, error) {
	out := map[int][]model.PaymentRecord{}
	for _, id := range ids {
		ps, _ := m.ListByStudent(ctx, id)
		if len(ps) > 0 {
			out[id] = ps
		}
	}
	return out, nil
}

func (m *memPayments) ListAll(ctx context.Context) ([]model.PaymentRecord, error) {
	var out []model.PaymentRecord
	for _, p := range m.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memPayments) Create(ctx context.Context, p *model.PaymentRecord) error {
	if _, ok := m.students.rows[p.StudentID]; !ok {
		return repository.ErrUnknownReference
	}
	m.nextID++
	p.ID = m.nextID
	m.rows[p.ID] = *p
	return nil
}

func (m *memPayments) Update(ctx context.Context, p *model.PaymentRecord) error {
	if _, ok := m.rows[p.ID]; !ok {
		return repository.ErrNotFound
	}
	m.rows[p.ID] = *p
	return nil
}

func (m *memPayments) Delete(ctx context.Context, id int) error {
	if _, ok := m.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

// ApplyProration mimics the transaction: on failure nothing is written.
func (m *memPayments) ApplyProration(ctx context.Context, p *model.PaymentRecord, st *model.Student) error {
	if m.failProrate {
		return errors.New("tx aborted")
	}
	m.prorations++
	m.rows[p.ID] = *p
	if st != nil {
		m.students.rows[st.ID] = *st
	}
	return nil
}

type fixedFees model.FeeMode

func (f fixedFees) FeeMode(ctx context.Context) (model.FeeMode, error) { return model.FeeMode(f), nil }

type recordingListener struct {
	mu          sync.Mutex
	ids         []int
	feeModeSets int
}

func (l *recordingListener) FeeModeChanged(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.feeModeSets++
}

func (l *recordingListener) StudentChanged(ctx context.Context, id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ids = append(l.ids, id)
}

type memDashboard struct {
	counts  repository.SummaryCounts
	revenue []repository.MonthlyRevenue
	err     error
	since   calendar.Date
}

func (m *memDashboard) GetSummaryCounts(ctx context.Context) (repository.SummaryCounts, error) {
	return m.counts, m.err
}

func (m *memDashboard) GetMonthlyRevenue(ctx context.Context, since calendar.Date) ([]repository.MonthlyRevenue, error) {
	m.since = since
	return m.revenue, nil
}

func intPtr(v int) *int { return &v }

func datePtr(s string) *calendar.Date {
	d := calendar.MustParse(s)
	return &d
}
