package service

import (
	"context"

	"github.com/stemsi/tuition-backend/internal/calendar"
	"github.com/stemsi/tuition-backend/internal/model"
	"github.com/stemsi/tuition-backend/internal/repository"
)

// The store interfaces below are satisfied by the pgx repositories. Services
// depend on them rather than on concrete repositories.

type SettingStore interface {
	GetAll(ctx context.Context) ([]model.AppSetting, error)
	GetByKey(ctx context.Context, key string) (*model.AppSetting, error)
	Upsert(ctx context.Context, key, value string) error
}

type ClassStore interface {
	GetByID(ctx context.Context, id int) (*model.ClassOffering, error)
	List(ctx context.Context, status *model.ClassStatus) ([]model.ClassOffering, error)
	Create(ctx context.Context, c *model.ClassOffering) error
	Update(ctx context.Context, c *model.ClassOffering) error
	Close(ctx context.Context, id int, on calendar.Date, reason string) error
	Reopen(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
}

type StudentStore interface {
	GetByID(ctx context.Context, id int) (*model.Student, error)
	GetByCode(ctx context.Context, code string) (*model.Student, error)
	List(ctx context.Context, f model.StudentFilter) ([]model.Student, error)
	Create(ctx context.Context, s *model.Student) error
	Update(ctx context.Context, s *model.Student) error
	UpdateLifecycle(ctx context.Context, s *model.Student) error
	Delete(ctx context.Context, id int) error
	CountByClass(ctx context.Context, status model.StudentStatus) (map[int]int, error)
}

type AttendanceStore interface {
	GetByID(ctx context.Context, id int) (*model.AttendanceRecord, error)
	ListByStudent(ctx context.Context, studentID int) ([]model.AttendanceRecord, error)
	ListByDateRange(ctx context.Context, from, to calendar.Date) ([]model.AttendanceRecord, error)
	ListByClassAndDate(ctx context.Context, classID int, day calendar.Date) ([]model.AttendanceRecord, error)
	Create(ctx context.Context, a *model.AttendanceRecord) error
	Update(ctx context.Context, a *model.AttendanceRecord) error
	Delete(ctx context.Context, id int) error
}

type PaymentStore interface {
	GetByID(ctx context.Context, id int) (*model.PaymentRecord, error)
	ListByStudent(ctx context.Context, studentID int) ([]model.PaymentRecord, error)
	ListByStudents(ctx context.Context, studentIDs []int) (map[int][]model.PaymentRecord, error)
	ListAll(ctx context.Context) ([]model.PaymentRecord, error)
	Create(ctx context.Context, p *model.PaymentRecord) error
	Update(ctx context.Context, p *model.PaymentRecord) error
	Delete(ctx context.Context, id int) error
	ApplyProration(ctx context.Context, payment *model.PaymentRecord, student *model.Student) error
}

type AdminStore interface {
	GetByID(ctx context.Context, id int) (*model.Admin, error)
	GetByEmail(ctx context.Context, email string) (*model.Admin, error)
	Create(ctx context.Context, a *model.Admin) error
}

type RoleStore interface {
	GetPermissionsByRoleID(ctx context.Context, roleID int) ([]string, error)
}

type DashboardStore interface {
	GetSummaryCounts(ctx context.Context) (repository.SummaryCounts, error)
	GetMonthlyRevenue(ctx context.Context, since calendar.Date) ([]repository.MonthlyRevenue, error)
}

var (
	_ SettingStore    = (*repository.SettingRepository)(nil)
	_ ClassStore      = (*repository.ClassRepository)(nil)
	_ StudentStore    = (*repository.StudentRepository)(nil)
	_ AttendanceStore = (*repository.AttendanceRepository)(nil)
	_ PaymentStore    = (*repository.PaymentRepository)(nil)
	_ AdminStore      = (*repository.AdminRepository)(nil)
	_ RoleStore       = (*repository.RoleRepository)(nil)
	_ DashboardStore  = (*repository.DashboardRepository)(nil)
)
