package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stemsi/tuition-backend/internal/attendance"
	"github.com/stemsi/tuition-backend/internal/config"
	"github.com/stemsi/tuition-backend/internal/database"
	"github.com/stemsi/tuition-backend/internal/logger"
	"github.com/stemsi/tuition-backend/internal/model"
	"github.com/stemsi/tuition-backend/internal/repository"
	"github.com/stemsi/tuition-backend/internal/service"
)

type demoClass struct {
	req   model.ClassRequest
	names []string
}

var demo = []demoClass{
	{
		req: model.ClassRequest{
			Name: "Toán 9", BaseFee: 125000, Location: "Phòng 1",
			ScheduleDays: []string{"Thứ 3", "Thứ 7"}, PaymentCycleType: model.CycleEightSessions,
		},
		names: []string{"Nguyễn Văn An", "Trần Thị Bình", "Lê Hoàng Cường", "Phạm Minh Dũng"},
	},
	{
		req: model.ClassRequest{
			Name: "Anh văn 6", BaseFee: 900000, Location: "Phòng 2",
			ScheduleDays: []string{"Thứ 2", "Thứ 4", "Thứ 6"}, PaymentCycleType: model.CycleMonthly,
		},
		names: []string{"Võ Thị Em", "Đặng Quốc Gia", "Bùi Thu Hà", "Hồ Ngọc Khánh"},
	},
	{
		req: model.ClassRequest{
			Name: "Lý 12", BaseFee: 150000, Location: "Phòng 3",
			ScheduleDays: []string{"CN"}, PaymentCycleType: model.CycleTenSessions,
		},
		names: []string{"Đỗ Thành Long", "Ngô Mai Linh", "Dương Tuấn Minh", "Lý Bảo Ngọc"},
	},
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer db.Close()

	classRepo := repository.NewClassRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	today := service.LocalClock(cfg.Location)
	settingService := service.NewSettingService(settingRepo, nil, log)
	classService := service.NewClassService(classRepo, studentRepo, attendanceRepo, today, log)
	studentService := service.NewStudentService(studentRepo, classRepo, today, log)
	attendanceService := service.NewAttendanceService(attendanceRepo, studentRepo, cfg.BulkParallelism, log)
	paymentService := service.NewPaymentService(paymentRepo, studentRepo, classRepo, attendanceRepo, settingService, today, log)

	if _, err := settingService.SetFeeMode(ctx, model.FeePerSession); err != nil {
		log.Fatal().Err(err).Msg("Failed to set fee mode")
	}

	existing, err := classService.List(ctx, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list classes")
	}
	taken := make(map[string]bool, len(existing))
	for _, c := range existing {
		taken[c.Name] = true
	}

	fmt.Println("=== Seeding demo classes, students, attendance and payments ===")

	start := today().AddDays(-28)
	seq := 0
	for _, dc := range demo {
		if taken[dc.req.Name] {
			fmt.Printf("Class %s already exists, skipping\n", dc.req.Name)
			continue
		}
		class, err := classService.Create(ctx, dc.req)
		if err != nil {
			log.Fatal().Err(err).Str("class", dc.req.Name).Msg("Failed to create class")
		}

		for i, name := range dc.names {
			seq++
			st, err := studentService.Create(ctx, model.CreateStudentRequest{
				Name:             name,
				UniqueCode:       fmt.Sprintf("HS%03d", seq),
				Phone:            fmt.Sprintf("0901%06d", seq),
				ClassID:          &class.ID,
				RegistrationDate: &start,
			})
			if errors.Is(err, repository.ErrDuplicate) {
				fmt.Printf("Student code HS%03d already taken, skipping\n", seq)
				continue
			}
			if err != nil {
				log.Fatal().Err(err).Str("student", name).Msg("Failed to create student")
			}

			// Every scheduled day until yesterday; every fourth one is an absence.
			n := 0
			for d := start; d.Before(today()); d = d.AddDays(1) {
				if !attendance.ScheduledOn(class.ScheduleDays, d.Weekday()) {
					continue
				}
				status := model.AttendancePresent
				if n++; n%4 == 0 {
					status = model.AttendanceAbsent
				}
				if _, err := attendanceService.Create(ctx, model.AttendanceRequest{StudentID: st.ID, Date: d, Status: status}); err != nil {
					log.Fatal().Err(err).Msg("Failed to create attendance")
				}
			}

			// Half of each class has paid its first cycle.
			if i%2 == 0 {
				if _, err := paymentService.Create(ctx, model.CreatePaymentRequest{StudentID: st.ID, ValidFrom: start}); err != nil {
					log.Fatal().Err(err).Msg("Failed to create payment")
				}
			}
		}
		fmt.Printf("Created class %s with %d students\n", class.Name, len(dc.names))
	}

	fmt.Println("\nSeed completed!")
}
